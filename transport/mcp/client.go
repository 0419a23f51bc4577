package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/gregory-danquoins-learning/tic-tac-toe/game/engine"
	"github.com/gregory-danquoins-learning/tic-tac-toe/game/service"
)

// Client is a thin MCP client that proxies to the REST API. The tools are
// read-only: seats are bound to live WebSocket connections, so an agent can
// watch games but not play them.
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API.
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// GetMCPServer returns the underlying MCP server.
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// initMCPServer initializes the MCP server with all tools.
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Tic-Tac-Toe Game Server",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Tic-Tac-Toe Game Server - MCP Interface

This is a thin client that proxies all requests to the REST API server.

The server hosts live two-player tic-tac-toe matches played over WebSocket.
These tools are read-only observers of the running games.

AVAILABLE TOOLS:
- list_games: List live games (optionally only joinable ones)
- get_game: Get one game's board, players, turn and outcome
- server_stats: Game and connection counts`),
	)

	c.registerTools()
}

// registerTools registers all MCP tools.
func (c *Client) registerTools() {
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_games",
		Description: "List live games on the server",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"joinable": map[string]interface{}{
					"type":        "boolean",
					"description": "Only list games still waiting for an opponent",
				},
			},
		},
	}, c.handleListGames)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_game",
		Description: "Get the board, players, turn and outcome of one game",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"game_id": map[string]interface{}{
					"type":        "string",
					"description": "Game ID to retrieve",
				},
			},
			Required: []string{"game_id"},
		},
	}, c.handleGetGame)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "server_stats",
		Description: "Get game and connection counts",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleServerStats)
}

// apiCall makes an HTTP request to the REST API.
func (c *Client) apiCall(method, path string, body interface{}, result interface{}) error {
	var reqBody *bytes.Buffer
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

// Tool handlers

func (c *Client) handleListGames(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})
	joinable, _ := args["joinable"].(bool)

	if joinable {
		var response struct {
			Count int                   `json:"count"`
			Games []service.GameSummary `json:"games"`
		}
		if err := c.apiCall("GET", "/api/games?joinable=1", nil, &response); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		result := fmt.Sprintf("Joinable Games (%d):\n\n", response.Count)
		for _, g := range response.Games {
			result += fmt.Sprintf("- %s (waiting: %s)\n", g.ID, g.Creator)
		}
		return mcp.NewToolResultText(result), nil
	}

	var response struct {
		Count int                 `json:"count"`
		Games []*service.GameInfo `json:"games"`
	}
	if err := c.apiCall("GET", "/api/games", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Live Games (%d):\n\n", response.Count)
	for _, g := range response.Games {
		result += fmt.Sprintf("- %s [%s] players=%s created=%s\n",
			g.ID, g.Status, strings.Join(g.Players, " vs "), g.CreatedAt.Format("15:04:05"))
	}
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleGetGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})
	gameID, _ := args["game_id"].(string)

	var info service.GameInfo
	if err := c.apiCall("GET", fmt.Sprintf("/api/games/%s", gameID), nil, &info); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatGameInfo(&info)), nil
}

func (c *Client) handleServerStats(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Games       service.Stats `json:"games"`
		Connections int           `json:"connections"`
	}
	if err := c.apiCall("GET", "/api/stats", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Games: %d (waiting=%d playing=%d finished=%d)\nConnections: %d\n",
		response.Games.Games, response.Games.Waiting, response.Games.Playing,
		response.Games.Finished, response.Connections)
	return mcp.NewToolResultText(result), nil
}

// formatGameInfo renders a game snapshot, board included, for tool output.
func formatGameInfo(info *service.GameInfo) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Game %s [%s]\n", info.ID, info.Status)
	if len(info.Players) > 0 {
		fmt.Fprintf(&b, "Players: %s\n", strings.Join(info.Players, " vs "))
	}
	if info.Turn != "" {
		fmt.Fprintf(&b, "Turn: %s\n", info.Turn)
	}
	if info.Winner != "" {
		if info.Winner == service.DrawMarker {
			b.WriteString("Result: draw\n")
		} else {
			fmt.Fprintf(&b, "Winner: %s\n", info.Winner)
		}
	}

	b.WriteString("\n")
	for row := 0; row < engine.Size; row++ {
		cells := make([]string, engine.Size)
		for col := 0; col < engine.Size; col++ {
			cell := string(info.Board[row][col])
			if cell == "" {
				cell = "."
			}
			cells[col] = cell
		}
		fmt.Fprintf(&b, " %s\n", strings.Join(cells, " | "))
	}

	return b.String()
}
