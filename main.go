// Command tic-tac-toe starts the two-player game server.
//
// Players connect over WebSocket, pick a display name, and create or join
// games from a shared lobby. The server exposes the WebSocket endpoint, a
// read-only REST API, static client assets, and an optional /mcp endpoint
// for agent inspection.
//
// Flags override the environment (HOST, PORT, WEB_DIR, DEBUG, GAME_RETENTION,
// MCP_ENABLED); a .env file is loaded when present.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/gregory-danquoins-learning/tic-tac-toe/api"
	"github.com/gregory-danquoins-learning/tic-tac-toe/config"
	"github.com/gregory-danquoins-learning/tic-tac-toe/game/service"
	"github.com/gregory-danquoins-learning/tic-tac-toe/game/session"
	"github.com/gregory-danquoins-learning/tic-tac-toe/transport/mcp"
	"github.com/gregory-danquoins-learning/tic-tac-toe/transport/websocket"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Tic-Tac-Toe Game Server"
)

func main() {
	// Load .env file if it exists (ignore error if not found)
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Warning: error loading .env file: %v\n", err)
		}
	}

	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	port := flag.Int("port", cfg.Port, "HTTP server port")
	host := flag.String("host", cfg.Host, "HTTP server host")
	webDir := flag.String("web-dir", cfg.WebDir, "Directory containing client assets")
	debug := flag.Bool("debug", cfg.Debug, "Enable debug logging")
	version := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *version {
		fmt.Printf("%s v%s\n", AppName, Version)
		os.Exit(0)
	}

	cfg.Port = *port
	cfg.Host = *host
	cfg.WebDir = *webDir
	cfg.Debug = *debug

	setupLogging(cfg.Debug)
	log.Info().Str("version", Version).Str("addr", cfg.Addr()).Msg("starting server")

	runServer(cfg)
}

// setupLogging configures zerolog: human-readable console output in debug,
// structured JSON otherwise.
func setupLogging(debug bool) {
	if debug {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

// runServer wires the registry, service, hub and HTTP surface, then blocks
// until a shutdown signal arrives.
func runServer(cfg config.Config) {
	// Registry and service
	manager := session.NewManager()
	gameService := service.NewGameService(manager)

	// WebSocket hub
	hub := websocket.NewHub(gameService)
	go hub.Run()

	// Background pruning of finished games
	go pruneRoutine(manager, cfg.GameRetention)

	// HTTP surface
	apiServer := api.NewServer(gameService, hub, cfg.WebDir)
	mainRouter := http.NewServeMux()
	mainRouter.Handle("/", apiServer)

	if cfg.MCPEnabled {
		mcpClient := mcp.NewClient(fmt.Sprintf("http://%s", cfg.Addr()))
		mainRouter.HandleFunc("/mcp", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
				return
			}

			body, err := io.ReadAll(r.Body)
			if err != nil {
				http.Error(w, "Failed to read request", http.StatusBadRequest)
				return
			}
			defer r.Body.Close()

			response := mcpClient.GetMCPServer().HandleMessage(r.Context(), body)

			w.Header().Set("Content-Type", "application/json")
			responseData, err := json.Marshal(response)
			if err != nil {
				http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
				return
			}
			w.Write(responseData)
		})
	}

	httpServer := &http.Server{
		Addr:        cfg.Addr(),
		Handler:     mainRouter,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	// Handle shutdown signals
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Info().Str("ws", fmt.Sprintf("ws://%s/ws", cfg.Addr())).Str("api", fmt.Sprintf("http://%s/api", cfg.Addr())).Msg("listening")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	sig := <-stop
	log.Info().Str("signal", sig.String()).Msg("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("HTTP server shutdown error")
	}
	log.Info().Msg("server stopped")
}

// pruneRoutine periodically drops finished games older than the retention
// window. Waiting and playing games are never pruned.
func pruneRoutine(manager *session.Manager, retention time.Duration) {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for range ticker.C {
		if removed := manager.PruneFinished(retention); removed > 0 {
			log.Info().Int("removed", removed).Msg("pruned finished games")
		}
	}
}
