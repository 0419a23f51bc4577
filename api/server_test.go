package api_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/gregory-danquoins-learning/tic-tac-toe/api"
	"github.com/gregory-danquoins-learning/tic-tac-toe/game/service"
	"github.com/gregory-danquoins-learning/tic-tac-toe/game/session"
	ws "github.com/gregory-danquoins-learning/tic-tac-toe/transport/websocket"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	svc := service.NewGameService(session.NewManager())
	hub := ws.NewHub(svc)
	go hub.Run()

	srv := httptest.NewServer(api.NewServer(svc, hub, t.TempDir()))
	t.Cleanup(srv.Close)
	return srv
}

// wsClient is a test player speaking the wire protocol.
type wsClient struct {
	t    *testing.T
	conn *websocket.Conn
}

func dialWS(t *testing.T, srv *httptest.Server) *wsClient {
	t.Helper()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Failed to dial %s: %v", url, err)
	}
	t.Cleanup(func() { conn.Close() })
	return &wsClient{t: t, conn: conn}
}

func (c *wsClient) send(msgType string, data any) {
	c.t.Helper()
	if err := c.conn.WriteJSON(service.Envelope{Type: msgType, Data: data}); err != nil {
		c.t.Fatalf("Failed to send %s: %v", msgType, err)
	}
}

// waitFor reads frames until one of the wanted type arrives and decodes its
// payload into target.
func (c *wsClient) waitFor(msgType string, target any) {
	c.t.Helper()

	c.conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		var envelope struct {
			Type string          `json:"type"`
			Data json.RawMessage `json:"data"`
		}
		if err := c.conn.ReadJSON(&envelope); err != nil {
			c.t.Fatalf("Waiting for %s: %v", msgType, err)
		}
		if envelope.Type != msgType {
			continue
		}
		if target != nil {
			if err := json.Unmarshal(envelope.Data, target); err != nil {
				c.t.Fatalf("Bad %s payload: %v", msgType, err)
			}
		}
		return
	}
}

func getJSON(t *testing.T, url string, target any) int {
	t.Helper()

	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()

	if target != nil && resp.StatusCode == http.StatusOK {
		if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
			t.Fatalf("Decode %s: %v", url, err)
		}
	}
	return resp.StatusCode
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t)

	var body map[string]string
	if status := getJSON(t, srv.URL+"/healthz", &body); status != http.StatusOK {
		t.Fatalf("healthz status = %d", status)
	}
	if body["status"] != "healthy" {
		t.Errorf("healthz body = %v", body)
	}
}

func TestGetGame_NotFound(t *testing.T) {
	srv := newTestServer(t)

	if status := getJSON(t, srv.URL+"/api/games/missing", nil); status != http.StatusNotFound {
		t.Errorf("Status = %d, want 404", status)
	}
}

func TestListGames_Empty(t *testing.T) {
	srv := newTestServer(t)

	var body struct {
		Count int               `json:"count"`
		Games []json.RawMessage `json:"games"`
	}
	if status := getJSON(t, srv.URL+"/api/games", &body); status != http.StatusOK {
		t.Fatalf("Status = %d", status)
	}
	if body.Count != 0 || len(body.Games) != 0 {
		t.Errorf("Expected empty game list, got %+v", body)
	}
}

// TestFullMatchOverWebSocket drives a complete match through real
// connections: lobby, create, join, a won game, and the REST view of the
// result.
func TestFullMatchOverWebSocket(t *testing.T) {
	srv := newTestServer(t)

	alice := dialWS(t, srv)
	bob := dialWS(t, srv)

	// Lobby login
	var lobby []service.GameSummary
	alice.send(service.TypeLogin, service.LoginRequest{Name: "alice"})
	alice.waitFor(service.TypeGameList, &lobby)
	if len(lobby) != 0 {
		t.Fatalf("Fresh lobby = %+v", lobby)
	}

	// Create and pick the id up from the broadcast
	alice.send(service.TypeCreateGame, service.CreateGameRequest{Name: "alice"})
	alice.waitFor(service.TypeGameList, &lobby)
	if len(lobby) != 1 || lobby[0].Creator != "alice" {
		t.Fatalf("Lobby after create = %+v", lobby)
	}
	gameID := lobby[0].ID

	// Both players join; bob's join starts the game.
	alice.send(service.TypeJoinGame, service.JoinGameRequest{GameID: gameID, Name: "alice"})
	var joinedID string
	alice.waitFor(service.TypeJoined, &joinedID)
	if joinedID != gameID {
		t.Fatalf("joined = %q, want %q", joinedID, gameID)
	}

	bob.send(service.TypeLogin, service.LoginRequest{Name: "bob"})
	bob.send(service.TypeJoinGame, service.JoinGameRequest{GameID: gameID, Name: "bob"})

	var start service.StartGamePayload
	alice.waitFor(service.TypeStartGame, &start)
	if start.Symbol != "X" || !start.YourTurn || start.Opponent != "bob" {
		t.Fatalf("alice start_game = %+v", start)
	}
	bob.waitFor(service.TypeStartGame, &start)
	if start.Symbol != "O" || start.YourTurn || start.Opponent != "alice" {
		t.Fatalf("bob start_game = %+v", start)
	}

	// A play on a nonexistent game must be ignored without killing anything.
	alice.send(service.TypePlay, service.PlayRequest{GameID: "missing", Row: 0, Col: 0})

	// Alice takes the top row while bob plays the middle one.
	plays := []struct {
		client   *wsClient
		row, col int
	}{
		{alice, 0, 0}, {bob, 1, 0},
		{alice, 0, 1}, {bob, 1, 1},
	}
	for _, p := range plays {
		p.client.send(service.TypePlay, service.PlayRequest{GameID: gameID, Row: p.row, Col: p.col})
		var update service.UpdatePayload
		alice.waitFor(service.TypeUpdate, &update)
		bob.waitFor(service.TypeUpdate, &update)
	}

	alice.send(service.TypePlay, service.PlayRequest{GameID: gameID, Row: 0, Col: 2})

	var over service.GameOverPayload
	alice.waitFor(service.TypeGameOver, &over)
	bob.waitFor(service.TypeGameOver, &over)
	if over.Winner != "alice" {
		t.Errorf("Winner = %q, want alice", over.Winner)
	}

	// REST view of the finished game
	var info service.GameInfo
	if status := getJSON(t, srv.URL+"/api/games/"+gameID, &info); status != http.StatusOK {
		t.Fatalf("GET game status = %d", status)
	}
	if info.Status != service.StatusFinished || info.Winner != "alice" {
		t.Errorf("REST snapshot = %+v", info)
	}

	// The finished game left the lobby.
	var joinable struct {
		Count int `json:"count"`
	}
	getJSON(t, srv.URL+"/api/games?joinable=1", &joinable)
	if joinable.Count != 0 {
		t.Errorf("Joinable count = %d, want 0", joinable.Count)
	}

	// Stats reflect the match and both connections.
	var stats struct {
		Games       service.Stats `json:"games"`
		Connections int           `json:"connections"`
	}
	getJSON(t, srv.URL+"/api/stats", &stats)
	if stats.Games.Finished != 1 {
		t.Errorf("Stats = %+v, want one finished game", stats)
	}
}

// TestOpponentDisconnectDoesNotBreakPlay covers best-effort delivery: a
// vanished peer never blocks the remaining player's moves.
func TestOpponentDisconnectDoesNotBreakPlay(t *testing.T) {
	srv := newTestServer(t)

	alice := dialWS(t, srv)
	bob := dialWS(t, srv)

	alice.send(service.TypeCreateGame, service.CreateGameRequest{Name: "alice"})
	var lobby []service.GameSummary
	alice.waitFor(service.TypeGameList, &lobby)
	gameID := lobby[0].ID

	alice.send(service.TypeJoinGame, service.JoinGameRequest{GameID: gameID, Name: "alice"})
	bob.send(service.TypeJoinGame, service.JoinGameRequest{GameID: gameID, Name: "bob"})

	var start service.StartGamePayload
	alice.waitFor(service.TypeStartGame, &start)

	bob.conn.Close()
	time.Sleep(50 * time.Millisecond)

	alice.send(service.TypePlay, service.PlayRequest{GameID: gameID, Row: 0, Col: 0})

	var update service.UpdatePayload
	alice.waitFor(service.TypeUpdate, &update)
	if update.Board[0][0] != "X" {
		t.Errorf("Move not applied after opponent disconnect: %+v", update.Board)
	}
}
