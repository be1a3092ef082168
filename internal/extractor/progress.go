package extractor

// ProgressReporter provides callbacks for reporting extraction progress.
// Implementations can display progress bars, log messages, or remain silent.
type ProgressReporter interface {
	// OnDiscoveryStart is called when file discovery begins.
	OnDiscoveryStart()

	// OnDiscoveryComplete is called when file discovery finishes.
	OnDiscoveryComplete(files int)

	// OnParsingStart is called before source files are parsed.
	OnParsingStart(totalFiles int)

	// OnFileParsed is called after each file is parsed.
	OnFileParsed(fileName string)

	// OnExtractionStart is called before declarations are extracted.
	OnExtractionStart(totalFiles int)

	// OnFileExtracted is called after each output file is produced.
	OnFileExtracted(fileName string)

	// OnComplete is called when the run completes successfully.
	OnComplete(stats *Stats)
}

// NoOpProgressReporter is a progress reporter that does nothing.
// Used when progress reporting is disabled (e.g., --quiet flag).
type NoOpProgressReporter struct{}

func (n *NoOpProgressReporter) OnDiscoveryStart()                {}
func (n *NoOpProgressReporter) OnDiscoveryComplete(files int)    {}
func (n *NoOpProgressReporter) OnParsingStart(totalFiles int)    {}
func (n *NoOpProgressReporter) OnFileParsed(fileName string)     {}
func (n *NoOpProgressReporter) OnExtractionStart(totalFiles int) {}
func (n *NoOpProgressReporter) OnFileExtracted(fileName string)  {}
func (n *NoOpProgressReporter) OnComplete(stats *Stats)          {}
