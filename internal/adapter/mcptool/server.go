// Package mcptool exposes the normalizer as Model Context Protocol tools so
// extraction agents can convert values while they read source documents.
package mcptool

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/couchcryptid/mine-data-normalizer/internal/domain"
)

// Version is the MCP server version.
const Version = "0.1.0"

// Server is the MCP server for the mine normalizer.
type Server struct {
	normalizer *domain.Normalizer
	server     *mcp.Server
}

// NewServer creates an MCP server backed by normalizer. A nil normalizer
// uses the built-in rules.
func NewServer(normalizer *domain.Normalizer) *Server {
	if normalizer == nil {
		normalizer = domain.NewNormalizer(nil)
	}
	s := &Server{
		normalizer: normalizer,
		server: mcp.NewServer(&mcp.Implementation{
			Name:    "mine-data-normalizer",
			Version: Version,
		}, nil),
	}
	s.registerTools()
	return s
}

// Run serves over stdio until ctx is cancelled or the client disconnects.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}
