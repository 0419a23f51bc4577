package service

import (
	"context"
	"fmt"
	"time"
)

// GameRegistry is the contract the session registry fulfills for the service
// layer. All methods are safe for concurrent use.
type GameRegistry interface {
	Create(conn Sender, name string) string
	Join(id string, conn Sender, name string) error
	Play(id string, conn Sender, row, col int)
	ListJoinable() []GameSummary
	Snapshot(id string) (*GameInfo, error)
	Snapshots() []*GameInfo
	PruneFinished(maxAge time.Duration) int
}

// GameService is the operation surface exposed to the transports (WebSocket
// router, REST API, MCP tools).
type GameService interface {
	// CreateGame opens a game with conn as provisional creator and returns
	// its id.
	CreateGame(ctx context.Context, conn Sender, name string) string

	// JoinGame seats conn into the game, or rebinds an existing seat when
	// name already occupies one. Errors are ErrGameNotFound, ErrGameFull or
	// ErrGameFinished.
	JoinGame(ctx context.Context, conn Sender, gameID, name string) error

	// Play applies a move on behalf of conn. Illegal moves are dropped
	// silently; accepted moves notify both seats.
	Play(ctx context.Context, conn Sender, gameID string, row, col int)

	// ListJoinable returns the lobby view: games waiting for an opponent.
	ListJoinable(ctx context.Context) []GameSummary

	// ListGames returns snapshots of every live game.
	ListGames(ctx context.Context) []*GameInfo

	// GetGame returns the snapshot of one game or ErrGameNotFound.
	GetGame(ctx context.Context, gameID string) (*GameInfo, error)

	// Stats summarizes registry occupancy.
	Stats(ctx context.Context) Stats
}

// gameService implements GameService on top of a GameRegistry.
type gameService struct {
	games GameRegistry
}

// NewGameService creates a new game service instance.
func NewGameService(games GameRegistry) GameService {
	return &gameService{games: games}
}

func (s *gameService) CreateGame(ctx context.Context, conn Sender, name string) string {
	return s.games.Create(conn, name)
}

func (s *gameService) JoinGame(ctx context.Context, conn Sender, gameID, name string) error {
	if err := s.games.Join(gameID, conn, name); err != nil {
		return fmt.Errorf("join game %s: %w", gameID, err)
	}
	return nil
}

func (s *gameService) Play(ctx context.Context, conn Sender, gameID string, row, col int) {
	s.games.Play(gameID, conn, row, col)
}

func (s *gameService) ListJoinable(ctx context.Context) []GameSummary {
	return s.games.ListJoinable()
}

func (s *gameService) ListGames(ctx context.Context) []*GameInfo {
	return s.games.Snapshots()
}

func (s *gameService) GetGame(ctx context.Context, gameID string) (*GameInfo, error) {
	return s.games.Snapshot(gameID)
}

func (s *gameService) Stats(ctx context.Context) Stats {
	stats := Stats{}
	for _, info := range s.games.Snapshots() {
		stats.Games++
		switch info.Status {
		case StatusWaiting:
			stats.Waiting++
		case StatusPlaying:
			stats.Playing++
		case StatusFinished:
			stats.Finished++
		}
	}
	return stats
}
