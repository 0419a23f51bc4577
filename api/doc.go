// Package api provides the HTTP surface of the tic-tac-toe server: the
// WebSocket upgrade endpoint, a read-only REST view of live games, a health
// check, and the static client assets.
//
// Routes:
//
//	GET /api/games             all live games (snapshots)
//	GET /api/games?joinable=1  lobby view: games waiting for an opponent
//	GET /api/games/{id}        one game snapshot
//	GET /api/stats             registry and connection counts
//	GET /ws                    WebSocket upgrade
//	GET /healthz               health check
//	GET /...                   static client assets
//
// Gameplay itself happens over the WebSocket protocol; the REST endpoints
// never mutate game state since seats are bound to live connections.
package api
