package websocket

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/gregory-danquoins-learning/tic-tac-toe/game/service"
)

// inboundEnvelope defers payload decoding until the type is known.
type inboundEnvelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// route decodes one inbound frame and dispatches it to the game service.
// Every failure is scoped to the sender: a malformed or unknown message gets
// an error reply and the connection stays open.
func (h *Hub) route(c *Client, raw []byte) {
	var envelope inboundEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		log.Debug().Str("conn", c.id).Err(err).Msg("malformed envelope")
		c.sendError("malformed message")
		return
	}

	ctx := context.Background()

	switch envelope.Type {
	case service.TypeLogin, service.TypeLobbyJoin:
		var req service.LoginRequest
		if !decode(c, envelope.Data, &req) || !require(c, req.Name != "") {
			return
		}
		c.setName(req.Name)
		c.Send(service.Envelope{Type: service.TypeGameList, Data: h.service.ListJoinable(ctx)})

	case service.TypeCreateGame:
		var req service.CreateGameRequest
		if !decode(c, envelope.Data, &req) || !require(c, req.Name != "") {
			return
		}
		c.setName(req.Name)
		h.service.CreateGame(ctx, c, req.Name)
		h.broadcastGameList(ctx)

	case service.TypeJoinGame:
		var req service.JoinGameRequest
		if !decode(c, envelope.Data, &req) || !require(c, req.GameID != "" && req.Name != "") {
			return
		}
		c.setName(req.Name)
		if err := h.service.JoinGame(ctx, c, req.GameID, req.Name); err != nil {
			c.sendError(businessMessage(err))
		} else {
			c.Send(service.Envelope{Type: service.TypeJoined, Data: req.GameID})
		}
		h.broadcastGameList(ctx)

	case service.TypePlay:
		var req service.PlayRequest
		if !decode(c, envelope.Data, &req) || !require(c, req.GameID != "") {
			return
		}
		// Outcome, if any, arrives via the session's own notifications.
		h.service.Play(ctx, c, req.GameID, req.Row, req.Col)

	default:
		log.Debug().Str("conn", c.id).Str("type", envelope.Type).Msg("unknown message type")
		c.sendError("unknown message type: " + envelope.Type)
	}
}

// broadcastGameList pushes the current lobby view to every connection.
func (h *Hub) broadcastGameList(ctx context.Context) {
	h.BroadcastAll(service.Envelope{Type: service.TypeGameList, Data: h.service.ListJoinable(ctx)})
}

// decode unmarshals a payload, replying with an error on mistyped fields.
func decode(c *Client, data json.RawMessage, target any) bool {
	if err := json.Unmarshal(data, target); err != nil {
		c.sendError("malformed message")
		return false
	}
	return true
}

// require rejects payloads with missing fields.
func require(c *Client, ok bool) bool {
	if !ok {
		c.sendError("missing required fields")
	}
	return ok
}

// businessMessage strips wrapping so the client sees the bare business error.
func businessMessage(err error) string {
	for _, sentinel := range []error{service.ErrGameNotFound, service.ErrGameFull, service.ErrGameFinished} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return err.Error()
}

// sendError delivers an error envelope to this connection only.
func (c *Client) sendError(message string) {
	c.Send(service.Envelope{Type: service.TypeError, Data: message})
}
