// Package utils holds small helpers shared by the masque binaries.
package utils

// Build metadata, set with -ldflags -X at release time. Version is also sent
// upstream in the relay's User-Agent and reported by the MCP server.
var (
	Version   = "dev"
	Sha       = "HEAD"
	Buildtime = "dev"
)
