// Command tictacli is a terminal client for the tic-tac-toe game server.
//
// It speaks the same WebSocket protocol as the web client: list the lobby,
// create a game, or join one and play interactively by typing "row col"
// moves.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/urfave/cli/v3"

	"github.com/gregory-danquoins-learning/tic-tac-toe/game/engine"
	"github.com/gregory-danquoins-learning/tic-tac-toe/game/service"
)

func main() {
	cmd := &cli.Command{
		Name:  "tictacli",
		Usage: "terminal client for the tic-tac-toe game server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "server",
				Value: "ws://localhost:8080/ws",
				Usage: "WebSocket endpoint of the game server",
			},
			&cli.StringFlag{
				Name:     "name",
				Usage:    "display name to play under",
				Required: true,
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "list joinable games",
				Action: runList,
			},
			{
				Name:   "create",
				Usage:  "create a game and wait for an opponent",
				Action: runCreate,
			},
			{
				Name:      "join",
				Usage:     "join a game and play interactively",
				ArgsUsage: "<game-id>",
				Action:    runJoin,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// session is one client connection with envelope encode/decode helpers.
type session struct {
	conn *websocket.Conn
	name string
}

func dial(cmd *cli.Command) (*session, error) {
	server := cmd.String("server")
	conn, _, err := websocket.DefaultDialer.Dial(server, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", server, err)
	}
	return &session{conn: conn, name: cmd.String("name")}, nil
}

func (s *session) close() { s.conn.Close() }

func (s *session) send(msgType string, data any) error {
	return s.conn.WriteJSON(service.Envelope{Type: msgType, Data: data})
}

// recv reads one envelope, leaving the payload raw for type-directed decode.
func (s *session) recv() (string, json.RawMessage, error) {
	var envelope struct {
		Type string          `json:"type"`
		Data json.RawMessage `json:"data"`
	}
	if err := s.conn.ReadJSON(&envelope); err != nil {
		return "", nil, err
	}
	return envelope.Type, envelope.Data, nil
}

// waitFor reads envelopes until one of the wanted types arrives, failing on
// error envelopes along the way.
func (s *session) waitFor(types ...string) (string, json.RawMessage, error) {
	for {
		msgType, data, err := s.recv()
		if err != nil {
			return "", nil, err
		}
		if msgType == service.TypeError {
			var message string
			json.Unmarshal(data, &message)
			return "", nil, fmt.Errorf("server error: %s", message)
		}
		for _, want := range types {
			if msgType == want {
				return msgType, data, nil
			}
		}
	}
}

func runList(ctx context.Context, cmd *cli.Command) error {
	s, err := dial(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	if err := s.send(service.TypeLogin, service.LoginRequest{Name: s.name}); err != nil {
		return err
	}
	_, data, err := s.waitFor(service.TypeGameList)
	if err != nil {
		return err
	}

	var games []service.GameSummary
	if err := json.Unmarshal(data, &games); err != nil {
		return err
	}
	if len(games) == 0 {
		fmt.Println("No joinable games.")
		return nil
	}
	for _, g := range games {
		fmt.Printf("%s\twaiting: %s\n", g.ID, g.Creator)
	}
	return nil
}

func runCreate(ctx context.Context, cmd *cli.Command) error {
	s, err := dial(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	if err := s.send(service.TypeCreateGame, service.CreateGameRequest{Name: s.name}); err != nil {
		return err
	}
	_, data, err := s.waitFor(service.TypeGameList)
	if err != nil {
		return err
	}

	var games []service.GameSummary
	if err := json.Unmarshal(data, &games); err != nil {
		return err
	}
	var gameID string
	for _, g := range games {
		if g.Creator == s.name {
			gameID = g.ID
		}
	}
	if gameID == "" {
		return fmt.Errorf("created game did not appear in the lobby")
	}

	fmt.Printf("Created game %s, joining as %s...\n", gameID, s.name)
	return s.play(gameID)
}

func runJoin(ctx context.Context, cmd *cli.Command) error {
	gameID := cmd.Args().First()
	if gameID == "" {
		return fmt.Errorf("usage: tictacli --name <name> join <game-id>")
	}

	s, err := dial(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	return s.play(gameID)
}

// play joins the game and runs the interactive loop: server events print to
// stdout, and "row col" lines from stdin become play messages.
func (s *session) play(gameID string) error {
	if err := s.send(service.TypeJoinGame, service.JoinGameRequest{GameID: gameID, Name: s.name}); err != nil {
		return err
	}

	events := make(chan error, 1)
	go func() { events <- s.printEvents() }()

	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			var row, col int
			if _, err := fmt.Sscanf(strings.TrimSpace(scanner.Text()), "%d %d", &row, &col); err != nil {
				fmt.Println("Enter a move as: row col (0-2)")
				continue
			}
			s.send(service.TypePlay, service.PlayRequest{GameID: gameID, Row: row, Col: col})
		}
	}()

	return <-events
}

// printEvents renders server envelopes until the game ends or the
// connection drops.
func (s *session) printEvents() error {
	for {
		msgType, data, err := s.recv()
		if err != nil {
			return err
		}

		switch msgType {
		case service.TypeError:
			var message string
			json.Unmarshal(data, &message)
			return fmt.Errorf("server error: %s", message)

		case service.TypeJoined:
			var id string
			json.Unmarshal(data, &id)
			fmt.Printf("Joined game %s, waiting for opponent...\n", id)

		case service.TypeStartGame:
			var start service.StartGamePayload
			if err := json.Unmarshal(data, &start); err != nil {
				return err
			}
			fmt.Printf("Game on! You are %s against %s.\n", start.Symbol, start.Opponent)
			printBoard(start.Board)
			if start.YourTurn {
				fmt.Println("Your turn (row col):")
			}

		case service.TypeUpdate:
			var update service.UpdatePayload
			if err := json.Unmarshal(data, &update); err != nil {
				return err
			}
			printBoard(update.Board)
			if update.YourTurn {
				fmt.Println("Your turn (row col):")
			} else if update.CurrentPlayer != nil {
				fmt.Printf("Waiting for %s...\n", *update.CurrentPlayer)
			}

		case service.TypeGameOver:
			var over service.GameOverPayload
			if err := json.Unmarshal(data, &over); err != nil {
				return err
			}
			printBoard(over.Board)
			if over.Winner == service.DrawMarker {
				fmt.Println("Draw!")
			} else {
				fmt.Printf("%s wins!\n", over.Winner)
			}
			return nil
		}
	}
}

func printBoard(board engine.Board) {
	for row := 0; row < engine.Size; row++ {
		cells := make([]string, engine.Size)
		for col := 0; col < engine.Size; col++ {
			cell := string(board[row][col])
			if cell == "" {
				cell = "."
			}
			cells[col] = cell
		}
		fmt.Printf(" %s\n", strings.Join(cells, " | "))
	}
	fmt.Println()
}
