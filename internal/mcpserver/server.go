// Package mcpserver exposes connection checks, model listing and batch
// renames as MCP tools over stdio, so agents can drive the renamer.
package mcpserver

import (
	"context"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog/log"

	"github.com/fpang/vision-rename/internal/rename"
	"github.com/fpang/vision-rename/internal/vision"
)

// Dependencies are what the tools need to do their work.
type Dependencies struct {
	Service  vision.Service
	Preparer rename.Preparer
	Options  rename.Options

	// DefaultModel is used when a call names no model. Empty means the
	// first model the server lists.
	DefaultModel string
}

// Server wraps the MCP server.
type Server struct {
	mcp *mcp.Server
}

// New creates a server with every tool registered.
func New(version string, deps *Dependencies) *Server {
	s := mcp.NewServer(&mcp.Implementation{
		Name:    "vision-rename",
		Version: version,
	}, nil)
	s.AddReceivingMiddleware(loggingMiddleware)
	registerTools(s, deps)
	return &Server{mcp: s}
}

// Run serves on stdio until the client disconnects or ctx ends.
func (s *Server) Run(ctx context.Context) error {
	log.Info().Str("transport", "stdio").Msg("Starting MCP server")
	return s.mcp.Run(ctx, &mcp.StdioTransport{})
}

// MCPServer returns the underlying server.
func (s *Server) MCPServer() *mcp.Server {
	return s.mcp
}

const slowRequestThreshold = 2 * time.Second

func loggingMiddleware(next mcp.MethodHandler) mcp.MethodHandler {
	return func(ctx context.Context, method string, req mcp.Request) (mcp.Result, error) {
		start := time.Now()
		result, err := next(ctx, method, req)
		d := time.Since(start)

		switch {
		case err != nil:
			log.Error().Err(err).Str("method", method).Dur("duration", d).Msg("MCP request failed")
		case d > slowRequestThreshold:
			log.Warn().Str("method", method).Dur("duration", d).Msg("Slow MCP request")
		default:
			log.Debug().Str("method", method).Dur("duration", d).Msg("MCP request completed")
		}
		return result, err
	}
}
