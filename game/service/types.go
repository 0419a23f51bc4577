package service

import (
	"errors"
	"time"

	"github.com/gregory-danquoins-learning/tic-tac-toe/game/engine"
)

// Business errors surfaced to the requester as error envelopes. Their text is
// the wire message; nothing else about a failed request mutates state.
var (
	ErrGameNotFound = errors.New("game not found")
	ErrGameFull     = errors.New("game is full")
	ErrGameFinished = errors.New("game already finished")
)

// DrawMarker is the winner value sent when a game ends with a full board and
// no winning line. Kept as-is for compatibility with existing clients.
const DrawMarker = "egality"

// Game lifecycle states as they appear in snapshots and REST responses.
const (
	StatusWaiting  = "waiting"
	StatusPlaying  = "playing"
	StatusFinished = "finished"
)

// Message types for the {type,data} wire envelope.
const (
	// Inbound (client -> server)
	TypeLogin      = "login"
	TypeLobbyJoin  = "lobby_join"
	TypeCreateGame = "create_game"
	TypeJoinGame   = "join_game"
	TypePlay       = "play"

	// Outbound (server -> client)
	TypeGameList  = "game_list"
	TypeJoined    = "joined"
	TypeStartGame = "start_game"
	TypeUpdate    = "update"
	TypeGameOver  = "game_over"
	TypeError     = "error"
)

// Envelope is the wire frame carried on every message in both directions.
type Envelope struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Sender delivers one outbound envelope to a connected peer. Delivery is
// best-effort: implementations must never block and must swallow failures to
// stale or closed connections.
type Sender interface {
	Send(Envelope)
}

// LoginRequest registers a display name for the connection.
type LoginRequest struct {
	Name string `json:"name"`
}

// CreateGameRequest opens a new game with the sender as provisional creator.
type CreateGameRequest struct {
	Name string `json:"name"`
}

// JoinGameRequest seats the sender (or rebinds their seat) in a game.
type JoinGameRequest struct {
	GameID string `json:"gameId"`
	Name   string `json:"name"`
}

// PlayRequest places a mark. Illegal plays are dropped without a reply.
type PlayRequest struct {
	GameID string `json:"gameId"`
	Row    int    `json:"row"`
	Col    int    `json:"col"`
}

// GameSummary is one lobby entry: a joinable game and who is waiting in it.
type GameSummary struct {
	ID      string `json:"id"`
	Creator string `json:"creator"`
}

// LastMove echoes the move that produced an update.
type LastMove struct {
	Row    int         `json:"row"`
	Col    int         `json:"col"`
	Symbol engine.Mark `json:"symbol"`
}

// StartGamePayload is sent to each seat when the second player arrives. The
// payload is individualized: each seat gets its own symbol and turn flag.
type StartGamePayload struct {
	GameID   string       `json:"gameId"`
	Board    engine.Board `json:"board"`
	YourTurn bool         `json:"yourTurn"`
	Symbol   engine.Mark  `json:"symbol"`
	Opponent string       `json:"opponent"`
}

// UpdatePayload is sent to both seats after an accepted move that does not
// end the game.
type UpdatePayload struct {
	Board         engine.Board `json:"board"`
	LastMove      LastMove     `json:"lastMove"`
	YourTurn      bool         `json:"yourTurn"`
	CurrentPlayer *string      `json:"currentPlayer"`
}

// GameOverPayload is sent to both seats after the move that ends the game.
// Winner holds the winning player's display name, or DrawMarker on a draw.
type GameOverPayload struct {
	Board         engine.Board `json:"board"`
	LastMove      LastMove     `json:"lastMove"`
	YourTurn      bool         `json:"yourTurn"`
	CurrentPlayer *string      `json:"currentPlayer"`
	Winner        string       `json:"winner"`
}

// GameInfo is a read-only snapshot of one game, served over the REST API and
// the MCP inspection tools.
type GameInfo struct {
	ID        string       `json:"id"`
	Status    string       `json:"status"`
	Players   []string     `json:"players"`
	Board     engine.Board `json:"board"`
	Turn      string       `json:"turn,omitempty"`
	Winner    string       `json:"winner,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
}

// Stats summarizes registry occupancy for the stats endpoint.
type Stats struct {
	Games    int `json:"games"`
	Waiting  int `json:"waiting"`
	Playing  int `json:"playing"`
	Finished int `json:"finished"`
}
