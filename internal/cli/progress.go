package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
	log "github.com/sirupsen/logrus"

	"github.com/mvp-joe/typeshape/internal/extractor"
)

// CLIProgressReporter implements progress reporting with progress bars.
type CLIProgressReporter struct {
	quiet        bool
	out          io.Writer
	parseBar     *progressbar.ProgressBar
	extractBar   *progressbar.ProgressBar
	totalFiles   int
	parsedFiles  int
	writtenFiles int
}

// NewCLIProgressReporter creates a new CLI progress reporter writing to stdout.
func NewCLIProgressReporter(quiet bool) *CLIProgressReporter {
	return &CLIProgressReporter{
		quiet: quiet,
		out:   os.Stdout,
	}
}

func (c *CLIProgressReporter) newBar(total int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(c.out),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("files/s"),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(c.out)
		}),
	)
}

func (c *CLIProgressReporter) OnDiscoveryStart() {
	if c.quiet {
		return
	}
	log.Info("Discovering files...")
}

func (c *CLIProgressReporter) OnDiscoveryComplete(files int) {
	c.totalFiles = files
	if c.quiet {
		return
	}
	log.WithField("files", files).Info("Discovery complete")
}

func (c *CLIProgressReporter) OnParsingStart(totalFiles int) {
	c.parsedFiles = 0
	if c.quiet {
		return
	}
	c.parseBar = c.newBar(totalFiles, "Parsing files")
}

func (c *CLIProgressReporter) OnFileParsed(fileName string) {
	c.parsedFiles++
	if c.quiet || c.parseBar == nil {
		return
	}
	c.parseBar.Add(1)
}

func (c *CLIProgressReporter) OnExtractionStart(totalFiles int) {
	c.writtenFiles = 0
	if c.quiet {
		return
	}
	if c.parseBar != nil {
		c.parseBar.Finish()
		c.parseBar = nil
	}
	c.extractBar = c.newBar(totalFiles, "Extracting shapes")
}

func (c *CLIProgressReporter) OnFileExtracted(fileName string) {
	c.writtenFiles++
	if c.quiet || c.extractBar == nil {
		return
	}
	c.extractBar.Add(1)
}

func (c *CLIProgressReporter) OnComplete(stats *extractor.Stats) {
	if c.extractBar != nil {
		c.extractBar.Finish()
		c.extractBar = nil
	}
	if c.quiet {
		return
	}

	fmt.Fprintln(c.out)
	printSummary(c.out, stats)
}

// printSummary writes the result of a run.
func printSummary(w io.Writer, stats *extractor.Stats) {
	verb := "Wrote"
	if stats.DryRun {
		verb = "Would write"
	}
	fmt.Fprintf(w, "✓ Extraction complete: %d files in %.1fs\n", stats.FilesProcessed, stats.Duration.Seconds())
	fmt.Fprintf(w, "  %s %d output files\n", verb, len(stats.Outputs))
	fmt.Fprintf(w, "  Shapes:           %d\n", stats.Shapes)
	fmt.Fprintf(w, "  Verbatim classes: %d\n", stats.VerbatimClasses)
	fmt.Fprintf(w, "  Declarations:     %d kept, %d dropped\n", stats.DeclarationsKept, stats.DeclarationsDropped)
	if stats.FilesWithErrors > 0 {
		fmt.Fprintf(w, "  Files with syntax errors: %d\n", stats.FilesWithErrors)
	}
}
