package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/gregory-danquoins-learning/tic-tac-toe/game/service"
	"github.com/gregory-danquoins-learning/tic-tac-toe/transport/websocket"
)

// Server exposes the WebSocket endpoint, a read-only REST view of the games,
// and the static client assets. Mutations (create/join/play) are
// WebSocket-only because seats are bound to live connections.
type Server struct {
	service service.GameService
	hub     *websocket.Hub
	router  *mux.Router
	webDir  string
}

// NewServer creates a new API server. webDir is the directory holding the
// client assets served at the root.
func NewServer(gameService service.GameService, hub *websocket.Hub, webDir string) *Server {
	s := &Server{
		service: gameService,
		hub:     hub,
		router:  mux.NewRouter(),
		webDir:  webDir,
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all routes.
func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/games", s.handleListGames).Methods("GET")
	api.HandleFunc("/games/{id}", s.handleGetGame).Methods("GET")
	api.HandleFunc("/stats", s.handleStats).Methods("GET")

	// WebSocket
	s.router.HandleFunc("/ws", s.handleWebSocket)

	s.router.HandleFunc("/healthz", s.handleHealth).Methods("GET")

	// Client assets
	s.router.PathPrefix("/").Handler(http.FileServer(http.Dir(s.webDir)))
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Response helpers

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// Handlers

func (s *Server) handleListGames(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("joinable") != "" {
		games := s.service.ListJoinable(r.Context())
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"count": len(games),
			"games": games,
		})
		return
	}

	games := s.service.ListGames(r.Context())
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count": len(games),
		"games": games,
	})
}

func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	gameID := vars["id"]

	info, err := s.service.GetGame(r.Context(), gameID)
	if err != nil {
		if errors.Is(err, service.ErrGameNotFound) {
			respondError(w, http.StatusNotFound, err.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, info)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats := s.service.Stats(r.Context())
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"games":       stats,
		"connections": s.hub.ClientCount(),
	})
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	s.hub.ServeWS(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}
