package engine

import "errors"

var (
	ErrOutOfBounds  = errors.New("cell out of bounds")
	ErrCellOccupied = errors.New("cell already occupied")
)

// Mark is the symbol a seat plays with. The empty string means the cell is free.
type Mark string

const (
	Empty Mark = ""
	X     Mark = "X"
	O     Mark = "O"
)

// Size is the side length of the board.
const Size = 3

// Board is a 3x3 grid of marks. It serializes as nested JSON arrays of
// strings, matching the wire format clients render directly.
type Board [Size][Size]Mark

// MarkForSeat maps a seat index to its mark: seat 0 plays X, seat 1 plays O.
func MarkForSeat(seat int) Mark {
	if seat == 0 {
		return X
	}
	return O
}

// Apply places mark at (row, col). It fails with ErrOutOfBounds or
// ErrCellOccupied without touching the board; on success only the target
// cell changes.
func (b *Board) Apply(row, col int, mark Mark) error {
	if row < 0 || row >= Size || col < 0 || col >= Size {
		return ErrOutOfBounds
	}
	if b[row][col] != Empty {
		return ErrCellOccupied
	}
	b[row][col] = mark
	return nil
}

// Status is the evaluation outcome of a board.
type Status int

const (
	Ongoing Status = iota
	Won
	Draw
)

// Result describes the state of a board. Winner is set only when Status is Won.
type Result struct {
	Status Status
	Winner Mark
}

// lines indexes the 8 winning lines: 3 rows, 3 columns, 2 diagonals.
var lines = [8][3][2]int{
	{{0, 0}, {0, 1}, {0, 2}},
	{{1, 0}, {1, 1}, {1, 2}},
	{{2, 0}, {2, 1}, {2, 2}},
	{{0, 0}, {1, 0}, {2, 0}},
	{{0, 1}, {1, 1}, {2, 1}},
	{{0, 2}, {1, 2}, {2, 2}},
	{{0, 0}, {1, 1}, {2, 2}},
	{{0, 2}, {1, 1}, {2, 0}},
}

// Evaluate reports whether the board has a winning line, is a draw (full with
// no winner), or is still ongoing.
func Evaluate(b Board) Result {
	for _, line := range lines {
		first := b[line[0][0]][line[0][1]]
		if first == Empty {
			continue
		}
		if b[line[1][0]][line[1][1]] == first && b[line[2][0]][line[2][1]] == first {
			return Result{Status: Won, Winner: first}
		}
	}

	for row := 0; row < Size; row++ {
		for col := 0; col < Size; col++ {
			if b[row][col] == Empty {
				return Result{Status: Ongoing}
			}
		}
	}
	return Result{Status: Draw}
}
