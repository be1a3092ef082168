package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/mvp-joe/typeshape/internal/config"
	"github.com/mvp-joe/typeshape/internal/extractor"
	"github.com/mvp-joe/typeshape/internal/extractor/parsers"
)

// extractOptions holds the flags of the extract command.
type extractOptions struct {
	root   string
	source string
	output string
	dryRun bool
	clean  bool
	quiet  bool
	watch  bool
}

var extractFlags extractOptions

// extractCmd represents the extract command
var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract declaration-only TypeScript files",
	Long: `Extract parses every TypeScript file under the source directory and writes a
declaration-only copy of it under the output directory, at the same path
relative to the root folder.

  - Enums, interfaces, type aliases and export directives are copied as written
  - Relative imports are copied; package imports are dropped
  - Classes without static fields become exported interfaces. Fields of the
    direct parent class come first, then the class's own fields
  - Classes with static fields are copied as written
  - Functions, variables and other code are dropped

Examples:
  # Extract using .typeshape/config.yml in the current directory
  typeshape extract

  # Override the folders on the command line
  typeshape extract --root . --source server/src/util --output types

  # Show what would be written without touching the output tree
  typeshape extract --dry-run

  # Keep running and re-extract when sources change
  typeshape extract --watch
`,
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)
	extractCmd.Flags().StringVar(&extractFlags.root, "root", "", "Root folder; output paths mirror source paths relative to it")
	extractCmd.Flags().StringVar(&extractFlags.source, "source", "", "Source subfolder under the root to scan")
	extractCmd.Flags().StringVarP(&extractFlags.output, "output", "o", "", "Output root folder")
	extractCmd.Flags().BoolVar(&extractFlags.dryRun, "dry-run", false, "Parse and transform without writing output files")
	extractCmd.Flags().BoolVar(&extractFlags.clean, "clean", false, "Remove the output folder before writing")
	extractCmd.Flags().BoolVarP(&extractFlags.quiet, "quiet", "q", false, "Disable progress bars and non-error output")
	extractCmd.Flags().BoolVarP(&extractFlags.watch, "watch", "w", false, "Watch for file changes and re-extract")
}

func runExtract(cmd *cobra.Command, args []string) error {
	configureLogging(extractFlags.quiet)

	// Set up context with cancellation for Ctrl+C
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case <-sigChan:
			fmt.Fprintln(os.Stderr, "\nInterrupted! Stopping extraction...")
			cancel()
		case <-ctx.Done():
		}
	}()

	cfg, err := loadProjectConfig()
	if err != nil {
		return err
	}

	return executeExtract(ctx, cfg, extractFlags, cmd.OutOrStdout())
}

// applyOverrides replaces configured paths with the non-empty command line
// values and validates the result.
func (o extractOptions) applyOverrides(cfg *config.Config) error {
	if o.root != "" {
		cfg.Paths.Root = o.root
	}
	if o.source != "" {
		cfg.Paths.Source = o.source
	}
	if o.output != "" {
		cfg.Output.Dir = o.output
	}
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// executeExtract runs one extraction, then keeps watching when opts.watch is set.
func executeExtract(ctx context.Context, cfg *config.Config, opts extractOptions, out io.Writer) error {
	if err := opts.applyOverrides(cfg); err != nil {
		return err
	}

	progress := NewCLIProgressReporter(opts.quiet)
	progress.out = out

	extractorOpts := []extractor.Option{
		extractor.WithProgress(progress),
		extractor.WithDryRun(opts.dryRun),
		extractor.WithClean(opts.clean),
	}

	if opts.watch {
		// Watch mode re-parses only the files whose content changed.
		cache, err := parsers.NewCachingParser(parsers.NewTypeScriptParser(), cfg.Cache.Capacity)
		if err != nil {
			return err
		}
		defer cache.Close()
		extractorOpts = append(extractorOpts, extractor.WithParser(cache))
	}

	ex, err := extractor.New(cfg, extractorOpts...)
	if err != nil {
		return fmt.Errorf("failed to create extractor: %w", err)
	}

	stats, err := ex.Run(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("extraction cancelled")
		}
		return fmt.Errorf("extraction failed: %w", err)
	}

	// OnComplete already printed the summary unless quiet
	if opts.quiet {
		fmt.Fprintf(out, "Extraction complete: %d files, %d shapes in %.2fs\n",
			stats.FilesProcessed, stats.Shapes, stats.Duration.Seconds())
	}

	if !opts.watch {
		return nil
	}

	return watchAndExtract(ctx, ex, cfg, opts.quiet, out)
}

// watchAndExtract re-runs ex after source changes until ctx is cancelled.
func watchAndExtract(ctx context.Context, ex *extractor.Extractor, cfg *config.Config, quiet bool, out io.Writer) error {
	watcher, err := extractor.NewWatcher(ex, ex.Discovery(), cfg.Debounce(),
		extractor.WithOnRun(func(stats *extractor.Stats, err error) {
			if err != nil || !quiet {
				return
			}
			fmt.Fprintf(out, "Re-extracted %d files in %.2fs\n", stats.FilesProcessed, stats.Duration.Seconds())
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}

	log.WithFields(log.Fields{
		"dir":      cfg.SourceDir(),
		"debounce": cfg.Debounce(),
	}).Info("Watching for changes")

	watcher.Start(ctx)
	select {
	case <-ctx.Done():
	case <-watcher.Done():
	}
	watcher.Stop()

	log.Info("Watch mode stopped")
	return nil
}
