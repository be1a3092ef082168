package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/typeshape/internal/mcp"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server for shape extraction",
	Long: `Start the Model Context Protocol (MCP) server so coding assistants can ask
for the declaration-only form of a file and for the class hierarchy.

The MCP server:
- Provides the typeshape_shapes tool (declaration-only output of one file)
- Provides the typeshape_hierarchy tool (class inheritance tree)
- Re-reads sources on every call, reusing parses of unchanged files
- Communicates via stdio (standard MCP transport)

Example:
  typeshape mcp`,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := loadProjectConfig()
	if err != nil {
		return err
	}

	// stdout carries the protocol
	fmt.Fprintf(os.Stderr, "Typeshape MCP Server\n")
	fmt.Fprintf(os.Stderr, "Source: %s\n\n", cfg.SourceDir())

	server, err := mcp.NewServer(cfg, Version)
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}
	defer server.Close()

	// Serve (blocks until shutdown)
	if err := server.Serve(ctx); err != nil {
		return fmt.Errorf("MCP server error: %w", err)
	}

	return nil
}
