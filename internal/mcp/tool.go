package mcp

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	log "github.com/sirupsen/logrus"

	"github.com/mvp-joe/typeshape/internal/emitter"
	"github.com/mvp-joe/typeshape/internal/extractor"
	"github.com/mvp-joe/typeshape/internal/symbols"
	"github.com/mvp-joe/typeshape/internal/syntax"
)

// ProgramSource loads the source tree and extracts single files from it.
// *extractor.Extractor satisfies it.
type ProgramSource interface {
	Load(ctx context.Context) (*extractor.Program, error)
	Extract(program *extractor.Program, path string) ([]syntax.Declaration, error)
	Renderer() *emitter.Renderer
}

type toolHandler = func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error)

// AddShapesTool registers the typeshape_shapes tool with an MCP server.
// Relative file arguments are resolved against each of baseDirs in turn.
func AddShapesTool(s *server.MCPServer, source ProgramSource, baseDirs ...string) {
	tool := mcp.NewTool(
		"typeshape_shapes",
		mcp.WithDescription("Return the declaration-only TypeScript output for one source file: enums, interfaces, type aliases, export directives and relative imports as written, and classes as interface shapes including their direct parent's fields."),
		mcp.WithString("file",
			mcp.Required(),
			mcp.Description("Source file path, relative to the project root or the source directory (e.g., 'src/models/user.ts')")),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
	)

	s.AddTool(tool, createShapesHandler(source, baseDirs))
}

func createShapesHandler(source ProgramSource, baseDirs []string) toolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		argsMap, errResult := parseToolArguments(request)
		if errResult != nil {
			return errResult, nil
		}

		file, err := requireStringArg(argsMap, "file")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		program, err := source.Load(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load sources: %w", err)
		}

		path, ok := resolveSource(program, file, baseDirs)
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("%s is not a source file of this project", file)), nil
		}

		decls, err := source.Extract(program, path)
		if err != nil {
			return nil, fmt.Errorf("failed to extract %s: %w", path, err)
		}

		log.WithFields(log.Fields{
			"file":         path,
			"declarations": len(decls),
		}).Debug("Served shapes")

		return mcp.NewToolResultText(string(source.Renderer().Render(decls))), nil
	}
}

// resolveSource maps a tool file argument onto a loaded source path.
func resolveSource(program *extractor.Program, file string, baseDirs []string) (string, bool) {
	file = filepath.FromSlash(file)
	if filepath.IsAbs(file) {
		_, ok := program.Source(file)
		return filepath.Clean(file), ok
	}

	for _, dir := range baseDirs {
		candidate := filepath.Join(dir, file)
		if _, ok := program.Source(candidate); ok {
			return candidate, true
		}
	}
	return "", false
}

// AddHierarchyTool registers the typeshape_hierarchy tool with an MCP server.
// Classes are labelled by their path relative to root.
func AddHierarchyTool(s *server.MCPServer, source ProgramSource, root string) {
	tool := mcp.NewTool(
		"typeshape_hierarchy",
		mcp.WithDescription("Return the class inheritance forest of the project. Each line is a class as 'path#Name', indented below the class it extends. Classes whose parent cannot be resolved are roots."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
	)

	s.AddTool(tool, createHierarchyHandler(source, root))
}

func createHierarchyHandler(source ProgramSource, root string) toolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if _, errResult := parseToolArguments(request); errResult != nil {
			return errResult, nil
		}

		program, err := source.Load(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load sources: %w", err)
		}
		if program.Hierarchy == nil {
			return mcp.NewToolResultError("class hierarchy is unavailable"), nil
		}
		if program.Hierarchy.Size() == 0 {
			return mcp.NewToolResultText("no classes found\n"), nil
		}

		var b strings.Builder
		if err := program.Hierarchy.WriteTree(&b, RelativeLabel(root)); err != nil {
			return nil, fmt.Errorf("failed to format hierarchy: %w", err)
		}
		return mcp.NewToolResultText(b.String()), nil
	}
}

// RelativeLabel labels a class as its slash-separated path relative to root
// followed by "#Name".
func RelativeLabel(root string) func(symbols.ClassNode) string {
	return func(n symbols.ClassNode) string {
		rel, err := filepath.Rel(root, n.Path)
		if err != nil {
			return n.ID
		}
		return symbols.ClassID(filepath.ToSlash(rel), n.Name)
	}
}

// StatusResponse is the result of the typeshape_status tool.
type StatusResponse struct {
	Loads          extractor.MetricsSnapshot `json:"loads"`
	ParseCacheHits int64                     `json:"parse_cache_hits"`
}

// AddStatusTool registers the typeshape_status tool with an MCP server.
// cacheHits reports the parse cache hit count; nil reports zero.
func AddStatusTool(s *server.MCPServer, metrics *extractor.LoadMetrics, cacheHits func() int64) {
	tool := mcp.NewTool(
		"typeshape_status",
		mcp.WithDescription("Return load statistics of the server as JSON: how many times the source tree was loaded, how many loads failed, the last error, the number of source files and parse cache hits."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
	)

	s.AddTool(tool, createStatusHandler(metrics, cacheHits))
}

func createStatusHandler(metrics *extractor.LoadMetrics, cacheHits func() int64) toolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		response := &StatusResponse{
			Loads: metrics.Snapshot(),
		}
		if cacheHits != nil {
			response.ParseCacheHits = cacheHits()
		}
		return marshalToolResponse(response)
	}
}
