package distiller

// ProgressReporter provides callbacks for reporting extraction progress.
// Implementations can display progress bars, log messages, or remain silent.
type ProgressReporter interface {
	// OnDiscoveryStart is called when documentation discovery begins.
	OnDiscoveryStart()

	// OnDiscoveryComplete is called when documentation discovery finishes.
	OnDiscoveryComplete(statementFiles, functionFiles int)

	// OnFileProcessingStart is called before scanning files.
	OnFileProcessingStart(totalFiles int)

	// OnFileProcessed is called after each file is scanned.
	OnFileProcessed(fileName string)

	// OnEncodingStart is called before the schemas are assembled and compressed.
	OnEncodingStart()

	// OnWritingOutputs is called when writing output files begins.
	OnWritingOutputs()

	// OnComplete is called when extraction completes successfully.
	OnComplete(stats *Stats)
}

// NoOpProgressReporter is a progress reporter that does nothing.
// Used when progress reporting is disabled (e.g., --quiet flag).
type NoOpProgressReporter struct{}

func (n *NoOpProgressReporter) OnDiscoveryStart()                                     {}
func (n *NoOpProgressReporter) OnDiscoveryComplete(statementFiles, functionFiles int) {}
func (n *NoOpProgressReporter) OnFileProcessingStart(totalFiles int)                  {}
func (n *NoOpProgressReporter) OnFileProcessed(fileName string)                       {}
func (n *NoOpProgressReporter) OnEncodingStart()                                      {}
func (n *NoOpProgressReporter) OnWritingOutputs()                                     {}
func (n *NoOpProgressReporter) OnComplete(stats *Stats)                               {}
