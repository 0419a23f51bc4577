package session

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/gregory-danquoins-learning/tic-tac-toe/game/engine"
	"github.com/gregory-danquoins-learning/tic-tac-toe/game/service"
)

const placeholderName = "???"

// creatorBinding holds the player who created a game but has not been
// assigned a seat yet. The binding is consumed by the first successful join.
type creatorBinding struct {
	conn service.Sender
	name string
}

// Session is one match between up to two players. Seat 0 plays X, seat 1
// plays O. All mutable state is guarded by mu; operations on one session are
// serialized, operations on different sessions proceed independently.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu         sync.Mutex
	creator    *creatorBinding
	seats      [2]service.Sender
	names      [2]string
	seated     int
	board      engine.Board
	turn       int
	status     string
	winnerSeat int
	draw       bool
	finishedAt time.Time
}

func newSession(id string, conn service.Sender, name string) *Session {
	return &Session{
		ID:         id,
		CreatedAt:  time.Now(),
		creator:    &creatorBinding{conn: conn, name: name},
		status:     service.StatusWaiting,
		winnerSeat: -1,
	}
}

// join seats conn into the session under name, following the reconnect rules:
// a name matching the provisional creator rebinds the creator's connection, a
// name already holding a seat rebinds that seat, anyone else takes the next
// free seat. Whenever both seats end up occupied, a fresh individualized
// start_game is sent to both so a rejoining client recovers the current board.
func (s *Session) join(conn service.Sender, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status == service.StatusFinished {
		return service.ErrGameFinished
	}

	// The lobby redirect opens a new socket, so the creator's first join
	// arrives on a different connection than the create_game request.
	if s.creator != nil && s.creator.name == name {
		s.creator.conn = conn
	}

	// Seat the provisional creator before handling the joiner.
	if s.creator != nil {
		s.seats[s.seated] = s.creator.conn
		s.names[s.seated] = s.creator.name
		s.seated++
		s.creator = nil
	}

	if idx := s.seatOf(name); idx >= 0 {
		s.seats[idx] = conn
	} else {
		if s.seated >= 2 {
			return service.ErrGameFull
		}
		s.seats[s.seated] = conn
		s.names[s.seated] = name
		s.seated++
	}

	if s.seated == 2 {
		if s.status == service.StatusWaiting {
			s.status = service.StatusPlaying
			s.turn = 0
			log.Info().Str("game", s.ID).Str("x", s.names[0]).Str("o", s.names[1]).Msg("game started")
		}
		s.sendStart()
	}

	return nil
}

// play applies a move on behalf of conn. Every illegal condition (not
// playing, wrong connection, wrong turn, bad cell) drops the request without
// a reply; an accepted move mutates board/turn/status atomically and then
// notifies both seats.
func (s *Session) play(conn service.Sender, row, col int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != service.StatusPlaying {
		return
	}

	seat := -1
	for i := 0; i < s.seated; i++ {
		if s.seats[i] == conn {
			seat = i
			break
		}
	}
	if seat != s.turn {
		return
	}

	mark := engine.MarkForSeat(seat)
	if err := s.board.Apply(row, col, mark); err != nil {
		log.Debug().Str("game", s.ID).Int("row", row).Int("col", col).Err(err).Msg("move rejected")
		return
	}

	switch result := engine.Evaluate(s.board); result.Status {
	case engine.Won:
		s.status = service.StatusFinished
		s.winnerSeat = seat
		s.finishedAt = time.Now()
		log.Info().Str("game", s.ID).Str("winner", s.names[seat]).Msg("game won")
	case engine.Draw:
		s.status = service.StatusFinished
		s.draw = true
		s.finishedAt = time.Now()
		log.Info().Str("game", s.ID).Msg("game drawn")
	default:
		s.turn = 1 - s.turn
	}

	s.sendMove(service.LastMove{Row: row, Col: col, Symbol: mark})
}

// sendStart delivers an individualized start_game to both seats. Caller holds mu.
func (s *Session) sendStart() {
	for i := 0; i < 2; i++ {
		s.seats[i].Send(service.Envelope{
			Type: service.TypeStartGame,
			Data: service.StartGamePayload{
				GameID:   s.ID,
				Board:    s.board,
				YourTurn: i == s.turn,
				Symbol:   engine.MarkForSeat(i),
				Opponent: s.names[1-i],
			},
		})
	}
}

// sendMove delivers the post-move update or game_over to both seats. Caller
// holds mu.
func (s *Session) sendMove(move service.LastMove) {
	if s.status == service.StatusFinished {
		winner := service.DrawMarker
		if !s.draw {
			winner = s.names[s.winnerSeat]
		}
		for i := 0; i < s.seated; i++ {
			s.seats[i].Send(service.Envelope{
				Type: service.TypeGameOver,
				Data: service.GameOverPayload{
					Board:    s.board,
					LastMove: move,
					Winner:   winner,
				},
			})
		}
		return
	}

	current := s.names[s.turn]
	for i := 0; i < s.seated; i++ {
		s.seats[i].Send(service.Envelope{
			Type: service.TypeUpdate,
			Data: service.UpdatePayload{
				Board:         s.board,
				LastMove:      move,
				YourTurn:      i == s.turn,
				CurrentPlayer: &current,
			},
		})
	}
}

// seatOf returns the seat index held by name, or -1. Caller holds mu.
func (s *Session) seatOf(name string) int {
	for i := 0; i < s.seated; i++ {
		if s.names[i] == name {
			return i
		}
	}
	return -1
}

// joinable reports whether the session still has room for a player.
func (s *Session) joinable() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seated < 2 && s.status != service.StatusFinished
}

// summary returns the lobby entry for the session: the provisional creator's
// name if still unseated, else the name in seat 0.
func (s *Session) summary() service.GameSummary {
	s.mu.Lock()
	defer s.mu.Unlock()

	creator := placeholderName
	switch {
	case s.creator != nil:
		creator = s.creator.name
	case s.seated > 0:
		creator = s.names[0]
	}
	return service.GameSummary{ID: s.ID, Creator: creator}
}

// snapshot returns a read-only view of the session for the REST API and MCP
// tools.
func (s *Session) snapshot() *service.GameInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	info := &service.GameInfo{
		ID:        s.ID,
		Status:    s.status,
		Players:   append([]string(nil), s.names[:s.seated]...),
		Board:     s.board,
		CreatedAt: s.CreatedAt,
	}
	if s.status == service.StatusPlaying {
		info.Turn = s.names[s.turn]
	}
	if s.status == service.StatusFinished {
		if s.draw {
			info.Winner = service.DrawMarker
		} else {
			info.Winner = s.names[s.winnerSeat]
		}
	}
	return info
}

// expired reports whether the session finished before the cutoff.
func (s *Session) expired(cutoff time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status == service.StatusFinished && s.finishedAt.Before(cutoff)
}
