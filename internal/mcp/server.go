// Package mcp serves typeshape's extraction over the Model Context Protocol
// so coding assistants can ask for the shapes of a file or the class tree.
package mcp

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mark3labs/mcp-go/server"
	log "github.com/sirupsen/logrus"

	"github.com/mvp-joe/typeshape/internal/config"
	"github.com/mvp-joe/typeshape/internal/extractor"
	"github.com/mvp-joe/typeshape/internal/extractor/parsers"
)

// ServerName is the MCP implementation name.
const ServerName = "typeshape-mcp"

// Server manages the MCP server lifecycle.
type Server struct {
	parser  *parsers.CachingParser
	metrics *extractor.LoadMetrics
	mcp     *server.MCPServer
}

// NewServer creates an MCP server for the project described by cfg.
// Every tool call reloads the source tree; unchanged files come from the
// parse cache.
func NewServer(cfg *config.Config, version string) (*Server, error) {
	parser, err := parsers.NewCachingParser(parsers.NewTypeScriptParser(), cfg.Cache.Capacity)
	if err != nil {
		return nil, err
	}

	metrics := extractor.NewLoadMetrics()
	ex, err := extractor.New(cfg, extractor.WithParser(parser), extractor.WithMetrics(metrics))
	if err != nil {
		parser.Close()
		return nil, fmt.Errorf("failed to create extractor: %w", err)
	}

	mcpServer := server.NewMCPServer(
		ServerName,
		version,
		server.WithToolCapabilities(true),
	)

	AddShapesTool(mcpServer, ex, cfg.Paths.Root, cfg.SourceDir())
	AddHierarchyTool(mcpServer, ex, cfg.Paths.Root)
	AddStatusTool(mcpServer, metrics, parser.Hits)

	return &Server{
		parser:  parser,
		metrics: metrics,
		mcp:     mcpServer,
	}, nil
}

// MCPServer returns the underlying mcp-go server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

// Metrics returns the load metrics of the server's tool calls.
func (s *Server) Metrics() *extractor.LoadMetrics {
	return s.metrics
}

// Serve starts the MCP server on stdio and blocks until shutdown.
func (s *Server) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	errCh := make(chan error, 1)
	go func() {
		log.Info("Starting MCP server on stdio")
		if err := server.ServeStdio(s.mcp); err != nil {
			errCh <- fmt.Errorf("MCP server error: %w", err)
		}
	}()

	select {
	case <-sigCh:
		log.Info("Received shutdown signal, stopping")
		return nil
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close releases the parse cache.
func (s *Server) Close() {
	s.parser.Close()
}
