// Package engine provides the core tic-tac-toe rules.
//
// The engine package implements the game mechanics including:
//   - Placing marks on the 3x3 board with bounds and occupancy checks
//   - Win detection over the 8 possible lines
//   - Draw detection on a full board
//
// Core Types:
//
// Board is a value type holding the grid; it has no I/O and no hidden state.
// Mark identifies a player's symbol, with seat 0 playing X and seat 1 playing
// O. Evaluate returns a Result describing whether the game is ongoing, won,
// or drawn.
//
// Usage:
//
//	var b engine.Board
//	if err := b.Apply(0, 0, engine.X); err != nil {
//		log.Fatal(err)
//	}
//	result := engine.Evaluate(b)
//
// Game Rules:
//
// Marks only transition empty to non-empty. A line wins when all three cells
// hold the same non-empty mark. A board with no winning line and no empty
// cells is a draw. Play stops at the winning move, so two winning lines for
// different marks cannot coexist.
package engine
