// Package api provides the HTTP server that serves the relay's latest event
// to local clients.
package api

// Config is the API server configuration.
type Config struct {
	// ListenAddr is the address to listen on (e.g., "127.0.0.1:3459")
	ListenAddr string

	// MCP mounts the Model Context Protocol server at /mcp.
	MCP bool
}
