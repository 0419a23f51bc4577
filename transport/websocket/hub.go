package websocket

import (
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/gregory-danquoins-learning/tic-tac-toe/game/service"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins in development
		// TODO: Configure this for production
		return true
	},
}

// Hub maintains the set of active connections and fans lobby updates out to
// all of them. Game-scoped messages go straight to the seats a session holds,
// not through the hub.
type Hub struct {
	service service.GameService

	// Connected clients; touched only by the Run loop.
	clients map[*Client]bool

	// Envelopes to deliver to every connection.
	broadcast chan service.Envelope

	// Register requests from clients.
	register chan *Client

	// Unregister requests from clients.
	unregister chan *Client

	count atomic.Int64
}

// NewHub creates a new WebSocket hub on top of the game service.
func NewHub(svc service.GameService) *Hub {
	return &Hub{
		service:    svc,
		clients:    make(map[*Client]bool),
		broadcast:  make(chan service.Envelope),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run starts the hub's event loop.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case envelope := <-h.broadcast:
			h.broadcastEnvelope(envelope)
		}
	}
}

// ServeWS upgrades an HTTP request and starts the connection's read and
// write pumps.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := newClient(h, conn)
	client.hub.register <- client

	go client.writePump()
	go client.readPump()
}

// BroadcastAll queues an envelope for delivery to every connected client.
func (h *Hub) BroadcastAll(envelope service.Envelope) {
	h.broadcast <- envelope
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	return int(h.count.Load())
}

func (h *Hub) registerClient(client *Client) {
	h.clients[client] = true
	h.count.Store(int64(len(h.clients)))
	log.Debug().Str("conn", client.id).Int("total", len(h.clients)).Msg("client connected")
}

// unregisterClient drops the connection and its display-name binding. Seats
// in live sessions keep their stale sender on purpose: there are no forfeit
// semantics, and a reconnect under the same name rebinds the seat.
func (h *Hub) unregisterClient(client *Client) {
	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	h.count.Store(int64(len(h.clients)))
	client.close()

	log.Debug().Str("conn", client.id).Str("name", client.Name()).Int("remaining", len(h.clients)).Msg("client disconnected")
}

// broadcastEnvelope sends an envelope to every connected client.
func (h *Hub) broadcastEnvelope(envelope service.Envelope) {
	for client := range h.clients {
		client.Send(envelope)
	}
}
