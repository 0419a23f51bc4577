// Package websocket provides the WebSocket transport for the tic-tac-toe
// server.
//
// The websocket package implements:
//   - Real-time bidirectional communication
//   - Per-connection read and write pumps with ping/pong keepalive
//   - Inbound envelope routing to the game service
//   - Display-name binding per connection
//   - Lobby broadcasts to all connected clients
//
// Architecture:
//
// The package uses a hub-and-spoke model where a central Hub tracks all
// connections for lobby fan-out. Game-scoped notifications (start_game,
// update, game_over) bypass the hub entirely: sessions hold their seats'
// Senders and deliver directly.
//
// Message Protocol:
//
// Every frame in both directions is a JSON envelope {type, data}. Inbound
// types are login/lobby_join, create_game, join_game and play; outbound types
// are game_list, joined, start_game, update, game_over and error. A frame
// that fails to decode or carries an unknown type yields an error reply to
// the sender only.
//
// Connection Lifecycle:
//
// 1. Client connects and is registered with the hub
// 2. Client logs in with a display name
// 3. Client creates or joins games and exchanges moves
// 4. Disconnection removes the name binding but never a seat: the remaining
//    player keeps the game, and a reconnect under the same name retakes it
//
// Concurrency:
//
// The hub's client set is owned by its Run loop. Client.Send is safe from
// any goroutine and never blocks; a slow or dead peer only loses its own
// messages.
package websocket
