// Package mcp exposes the tic-tac-toe server to MCP agents.
//
// The package is a thin proxy: every tool call is translated into a request
// against the server's own REST API, so the MCP surface can never drift from
// what the HTTP surface reports. All tools are read-only: games are played
// over WebSocket by connections holding seats, which an MCP agent does not
// have.
package mcp
