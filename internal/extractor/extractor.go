// Package extractor runs the declaration extraction pipeline over a source tree:
// discovery, parsing, symbol indexing, filtering and emission.
package extractor

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/mvp-joe/typeshape/internal/config"
	"github.com/mvp-joe/typeshape/internal/emitter"
	"github.com/mvp-joe/typeshape/internal/extractor/parsers"
	"github.com/mvp-joe/typeshape/internal/shapes"
	"github.com/mvp-joe/typeshape/internal/symbols"
	"github.com/mvp-joe/typeshape/internal/syntax"
)

// ErrSourceNotFound is returned when a discovered path has no parsed file.
var ErrSourceNotFound = errors.New("source file not found")

// Program is the set of parsed source files of one run.
type Program struct {
	// Files lists the discovered paths in discovery order.
	Files []string
	// Index resolves type references across all parsed files.
	Index *symbols.Index
	// Hierarchy is the class inheritance graph, nil when it could not be built.
	Hierarchy *symbols.Hierarchy
}

// Source returns the parsed file at path.
func (p *Program) Source(path string) (*syntax.File, bool) {
	return p.Index.File(path)
}

// Stats summarizes one extraction run.
type Stats struct {
	RunID               string        `json:"run_id"`
	FilesProcessed      int           `json:"files_processed"`
	FilesWithErrors     int           `json:"files_with_errors"`
	DeclarationsKept    int           `json:"declarations_kept"`
	DeclarationsDropped int           `json:"declarations_dropped"`
	Shapes              int           `json:"shapes"`
	VerbatimClasses     int           `json:"verbatim_classes"`
	Outputs             []string      `json:"outputs"`
	DryRun              bool          `json:"dry_run"`
	Duration            time.Duration `json:"duration"`
}

// Extractor runs the extraction pipeline for one configuration.
type Extractor struct {
	cfg       *config.Config
	parser    parsers.Parser
	fs        afero.Fs
	progress  ProgressReporter
	metrics   *LoadMetrics
	dryRun    bool
	clean     bool
	discovery *FileDiscovery
	renderer  *emitter.Renderer
	writer    *emitter.Writer
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithProgress configures progress reporting.
func WithProgress(progress ProgressReporter) Option {
	return func(e *Extractor) {
		e.progress = progress
	}
}

// WithMetrics records the outcome of every Load in metrics.
func WithMetrics(metrics *LoadMetrics) Option {
	return func(e *Extractor) {
		e.metrics = metrics
	}
}

// WithParser replaces the default tree-sitter parser.
func WithParser(parser parsers.Parser) Option {
	return func(e *Extractor) {
		e.parser = parser
	}
}

// WithFs sets the filesystem outputs are written to. Sources are always read
// from the OS filesystem.
func WithFs(fs afero.Fs) Option {
	return func(e *Extractor) {
		e.fs = fs
	}
}

// WithDryRun parses and transforms without writing any output.
func WithDryRun(dryRun bool) Option {
	return func(e *Extractor) {
		e.dryRun = dryRun
	}
}

// WithClean removes the output root before writing.
func WithClean(clean bool) Option {
	return func(e *Extractor) {
		e.clean = clean
	}
}

// New creates an extractor for cfg.
func New(cfg *config.Config, opts ...Option) (*Extractor, error) {
	e := &Extractor{
		cfg:      cfg,
		progress: &NoOpProgressReporter{},
	}
	for _, opt := range opts {
		opt(e)
	}

	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if e.parser == nil {
		e.parser = parsers.NewTypeScriptParser()
	}
	if e.fs == nil {
		e.fs = afero.NewOsFs()
	}

	discovery, err := NewFileDiscovery(cfg.SourceDir(), cfg.Paths.Include, cfg.Paths.Ignore)
	if err != nil {
		return nil, fmt.Errorf("failed to compile path patterns: %w", err)
	}
	e.discovery = discovery
	e.renderer = emitter.NewRenderer(cfg.Output.Indent)
	e.writer = emitter.NewWriter(e.fs, cfg.Paths.Root, cfg.OutputDir())

	return e, nil
}

// Discovery returns the file discovery used by the extractor.
func (e *Extractor) Discovery() *FileDiscovery {
	return e.discovery
}

// Renderer returns the renderer used for output files.
func (e *Extractor) Renderer() *emitter.Renderer {
	return e.renderer
}

// Load discovers and parses every source file and builds the symbol index.
func (e *Extractor) Load(ctx context.Context) (program *Program, err error) {
	if e.metrics != nil {
		start := time.Now()
		defer func() {
			files := 0
			if program != nil {
				files = len(program.Files)
			}
			e.metrics.RecordLoad(time.Since(start), err, files)
		}()
	}

	e.progress.OnDiscoveryStart()
	files, err := e.discovery.Discover()
	if err != nil {
		return nil, fmt.Errorf("failed to discover files: %w", err)
	}
	e.progress.OnDiscoveryComplete(len(files))

	e.progress.OnParsingStart(len(files))
	parsed := make([]*syntax.File, 0, len(files))
	for _, path := range files {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		file, err := e.parser.ParseFile(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("processing %s: %w", path, err)
		}
		if file.HasErrors {
			log.WithField("file", path).Warn("Syntax errors found, extracting recovered declarations")
		}
		parsed = append(parsed, file)
		e.progress.OnFileParsed(filepath.Base(path))
	}

	program = &Program{
		Files: files,
		Index: symbols.NewIndex(parsed),
	}

	hierarchy, err := program.Index.Hierarchy()
	if err != nil {
		log.WithError(err).Warn("Failed to build class hierarchy")
	}
	program.Hierarchy = hierarchy

	return program, nil
}

// Extract returns the output declaration set of the file at path.
func (e *Extractor) Extract(program *Program, path string) ([]syntax.Declaration, error) {
	file, ok := program.Source(path)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, path)
	}
	return shapes.Filter(file, shapes.NewTransformer(program.Index)), nil
}

// Run extracts every source file and writes the mirrored output files.
// The first failing file stops the run.
func (e *Extractor) Run(ctx context.Context) (*Stats, error) {
	startTime := time.Now()
	stats := &Stats{
		RunID:  uuid.NewString(),
		DryRun: e.dryRun,
	}
	logger := log.WithField("run", stats.RunID)

	program, err := e.Load(ctx)
	if err != nil {
		return nil, err
	}

	if e.clean && !e.dryRun {
		logger.WithField("dir", e.writer.OutputRoot()).Info("Cleaning output directory")
		if err := e.writer.Clean(); err != nil {
			return nil, err
		}
	}

	e.progress.OnExtractionStart(len(program.Files))
	for _, path := range program.Files {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		logger.WithField("file", path).Info("Processing file")

		if err := e.extractFile(program, path, stats); err != nil {
			return nil, fmt.Errorf("processing %s: %w", path, err)
		}
		e.progress.OnFileExtracted(filepath.Base(path))
	}

	stats.Duration = time.Since(startTime)
	e.progress.OnComplete(stats)

	logger.WithFields(log.Fields{
		"files":    stats.FilesProcessed,
		"shapes":   stats.Shapes,
		"kept":     stats.DeclarationsKept,
		"dropped":  stats.DeclarationsDropped,
		"duration": stats.Duration,
	}).Info("Extraction complete")

	return stats, nil
}

func (e *Extractor) extractFile(program *Program, path string, stats *Stats) error {
	decls, err := e.Extract(program, path)
	if err != nil {
		return err
	}

	file, _ := program.Source(path)
	if file.HasErrors {
		stats.FilesWithErrors++
	}
	stats.FilesProcessed++
	stats.DeclarationsKept += len(decls)
	stats.DeclarationsDropped += len(file.Declarations) - len(decls)
	for _, decl := range decls {
		switch decl.(type) {
		case *syntax.ShapeDecl:
			stats.Shapes++
		case *syntax.ClassDecl:
			stats.VerbatimClasses++
		}
	}

	content := e.renderer.Render(decls)
	if e.dryRun {
		out, err := e.writer.Path(path)
		if err != nil {
			return err
		}
		stats.Outputs = append(stats.Outputs, out)
		return nil
	}

	out, err := e.writer.Write(path, content)
	if err != nil {
		return err
	}
	stats.Outputs = append(stats.Outputs, out)
	return nil
}
