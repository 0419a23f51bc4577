// Package session provides game session management for the tic-tac-toe server.
//
// The session package implements:
//   - Thread-safe session storage and retrieval
//   - Unique session ID generation
//   - Seat assignment and reconnect-by-name rebinding
//   - Turn validation and move application
//   - Notification fan-out to seated players
//
// Core Types:
//
// Manager is the registry owning all live sessions. Session represents one
// match: two seats, a board, the turn marker and the lifecycle status
// (waiting -> playing -> finished, strictly in that order).
//
// Session Identifiers:
//
// Sessions use short ids ("g" plus random hex) generated with cryptographic
// randomness. The manager retries on collision so an id never silently
// replaces another live session.
//
// Identity model:
//
// Players are identified by display name only. A join under a name that
// already holds a seat replaces that seat's connection, which is how clients
// reconnect after a page navigation. Two different people choosing the same
// name would therefore take over each other's seat; strengthening this
// requires a token scheme and a product decision, so the historical behavior
// is kept.
//
// Concurrency:
//
// The registry map is guarded by its own lock and every session carries a
// separate mutex. Join and play on the same session never interleave
// partially; operations on different sessions proceed concurrently.
package session
