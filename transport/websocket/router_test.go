package websocket

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"
)

// frame is a decoded outbound envelope with the payload left raw.
type frame struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// nextFrame pops one queued outbound frame, failing on an empty queue.
func nextFrame(t *testing.T, c *Client) frame {
	t.Helper()
	select {
	case raw := <-c.send:
		var f frame
		if err := json.Unmarshal(raw, &f); err != nil {
			t.Fatalf("Outbound frame is not valid JSON: %v", err)
		}
		return f
	case <-time.After(2 * time.Second):
		t.Fatal("No outbound frame queued")
		return frame{}
	}
}

// waitFrame reads frames until one of the wanted type arrives.
func waitFrame(t *testing.T, c *Client, msgType string) frame {
	t.Helper()
	for {
		f := nextFrame(t, c)
		if f.Type == msgType {
			return f
		}
	}
}

func routeRaw(h *Hub, c *Client, format string, args ...any) {
	h.route(c, []byte(fmt.Sprintf(format, args...)))
}

func startRoutedHub(t *testing.T) (*Hub, func() *Client) {
	t.Helper()
	hub := newTestHub()
	go hub.Run()

	connect := func() *Client {
		client := &Client{hub: hub, id: "test", send: make(chan []byte, 32)}
		hub.register <- client
		return client
	}
	return hub, connect
}

func TestRoute_MalformedEnvelope(t *testing.T) {
	hub, connect := startRoutedHub(t)
	client := connect()

	hub.route(client, []byte("{not json"))

	f := nextFrame(t, client)
	if f.Type != "error" {
		t.Errorf("Reply type = %s, want error", f.Type)
	}
}

func TestRoute_UnknownType(t *testing.T) {
	hub, connect := startRoutedHub(t)
	client := connect()

	routeRaw(hub, client, `{"type":"teleport","data":{}}`)

	f := nextFrame(t, client)
	if f.Type != "error" {
		t.Errorf("Reply type = %s, want error", f.Type)
	}
	var message string
	json.Unmarshal(f.Data, &message)
	if message != "unknown message type: teleport" {
		t.Errorf("Error message = %q", message)
	}
}

func TestRoute_MistypedFields(t *testing.T) {
	hub, connect := startRoutedHub(t)
	client := connect()

	routeRaw(hub, client, `{"type":"play","data":{"gameId":"g1","row":"zero","col":0}}`)

	f := nextFrame(t, client)
	if f.Type != "error" {
		t.Errorf("Reply type = %s, want error", f.Type)
	}
}

func TestRoute_MissingFields(t *testing.T) {
	hub, connect := startRoutedHub(t)
	client := connect()

	routeRaw(hub, client, `{"type":"login","data":{}}`)

	f := nextFrame(t, client)
	if f.Type != "error" {
		t.Errorf("Reply type = %s, want error", f.Type)
	}
}

func TestRoute_LoginRepliesGameList(t *testing.T) {
	hub, connect := startRoutedHub(t)
	client := connect()

	routeRaw(hub, client, `{"type":"login","data":{"name":"alice"}}`)

	f := nextFrame(t, client)
	if f.Type != "game_list" {
		t.Fatalf("Reply type = %s, want game_list", f.Type)
	}
	if string(f.Data) != "[]" {
		t.Errorf("Empty lobby encoded as %s, want []", f.Data)
	}
	if client.Name() != "alice" {
		t.Errorf("Login did not bind name: %q", client.Name())
	}
}

func TestRoute_CreateBroadcastsLobby(t *testing.T) {
	hub, connect := startRoutedHub(t)
	creator := connect()
	watcher := connect()

	routeRaw(hub, creator, `{"type":"create_game","data":{"name":"alice"}}`)

	var entries []struct {
		ID      string `json:"id"`
		Creator string `json:"creator"`
	}
	f := waitFrame(t, watcher, "game_list")
	if err := json.Unmarshal(f.Data, &entries); err != nil {
		t.Fatalf("Bad game_list payload: %v", err)
	}
	if len(entries) != 1 || entries[0].Creator != "alice" {
		t.Fatalf("Lobby = %+v, want one entry by alice", entries)
	}

	// The creator sees the same broadcast.
	waitFrame(t, creator, "game_list")
}

func TestRoute_FullGameFlow(t *testing.T) {
	hub, connect := startRoutedHub(t)
	alice := connect()
	bob := connect()

	routeRaw(hub, alice, `{"type":"create_game","data":{"name":"alice"}}`)
	f := waitFrame(t, alice, "game_list")

	var entries []struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(f.Data, &entries); err != nil || len(entries) != 1 {
		t.Fatalf("Lobby after create = %s", f.Data)
	}
	gameID := entries[0].ID

	routeRaw(hub, alice, `{"type":"join_game","data":{"gameId":%q,"name":"alice"}}`, gameID)
	joined := waitFrame(t, alice, "joined")
	var joinedID string
	json.Unmarshal(joined.Data, &joinedID)
	if joinedID != gameID {
		t.Errorf("joined = %q, want %q", joinedID, gameID)
	}

	routeRaw(hub, bob, `{"type":"join_game","data":{"gameId":%q,"name":"bob"}}`, gameID)
	waitFrame(t, bob, "joined")

	var start struct {
		Symbol   string `json:"symbol"`
		YourTurn bool   `json:"yourTurn"`
		Opponent string `json:"opponent"`
	}
	json.Unmarshal(waitFrame(t, alice, "start_game").Data, &start)
	if start.Symbol != "X" || !start.YourTurn || start.Opponent != "bob" {
		t.Errorf("alice start_game = %+v", start)
	}
	json.Unmarshal(waitFrame(t, bob, "start_game").Data, &start)
	if start.Symbol != "O" || start.YourTurn || start.Opponent != "alice" {
		t.Errorf("bob start_game = %+v", start)
	}

	// A play gets no direct reply; both seats get an update.
	routeRaw(hub, alice, `{"type":"play","data":{"gameId":%q,"row":0,"col":0}}`, gameID)

	var update struct {
		YourTurn bool `json:"yourTurn"`
		LastMove struct {
			Row    int    `json:"row"`
			Col    int    `json:"col"`
			Symbol string `json:"symbol"`
		} `json:"lastMove"`
	}
	json.Unmarshal(waitFrame(t, bob, "update").Data, &update)
	if !update.YourTurn || update.LastMove.Symbol != "X" || update.LastMove.Row != 0 {
		t.Errorf("bob update = %+v", update)
	}
}

func TestRoute_JoinErrors(t *testing.T) {
	hub, connect := startRoutedHub(t)
	client := connect()

	routeRaw(hub, client, `{"type":"join_game","data":{"gameId":"missing","name":"carol"}}`)
	f := waitFrame(t, client, "error")

	var message string
	json.Unmarshal(f.Data, &message)
	if message != "game not found" {
		t.Errorf("Error message = %q, want game not found", message)
	}
}

func TestRoute_JoinFullGame(t *testing.T) {
	hub, connect := startRoutedHub(t)
	alice := connect()
	bob := connect()
	carol := connect()

	routeRaw(hub, alice, `{"type":"create_game","data":{"name":"alice"}}`)
	f := waitFrame(t, alice, "game_list")
	var entries []struct {
		ID string `json:"id"`
	}
	json.Unmarshal(f.Data, &entries)
	gameID := entries[0].ID

	routeRaw(hub, alice, `{"type":"join_game","data":{"gameId":%q,"name":"alice"}}`, gameID)
	routeRaw(hub, bob, `{"type":"join_game","data":{"gameId":%q,"name":"bob"}}`, gameID)

	routeRaw(hub, carol, `{"type":"join_game","data":{"gameId":%q,"name":"carol"}}`, gameID)
	errFrame := waitFrame(t, carol, "error")

	var message string
	json.Unmarshal(errFrame.Data, &message)
	if message != "game is full" {
		t.Errorf("Error message = %q, want game is full", message)
	}
}

func TestRoute_PlayUnknownGameIsSilent(t *testing.T) {
	hub, connect := startRoutedHub(t)
	client := connect()

	routeRaw(hub, client, `{"type":"play","data":{"gameId":"missing","row":0,"col":0}}`)

	select {
	case raw := <-client.send:
		t.Errorf("Play on unknown game produced a reply: %s", raw)
	case <-time.After(50 * time.Millisecond):
	}
}
