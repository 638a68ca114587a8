// Package config holds configuration value objects shared between the
// command-line layer and the infrastructure adapters that build a running
// collector. It is intentionally small: the bulk of per-run configuration
// lives in runconfig and catalog, this package only carries the pieces that
// are cross-cutting enough to be needed by the logging infrastructure too.
package config

// RotationConfig controls when a FileWriter should roll its log file.
// A zero value disables rotation: the file grows unbounded.
type RotationConfig struct {
	// MaxSizeBytes is the size at which the active log file is rotated.
	// Zero disables size-based rotation.
	MaxSizeBytes int64
	// MaxBackups bounds how many rotated files are retained.
	MaxBackups int
}

// FileWriterConfig configures a plain-text file log writer.
type FileWriterConfig struct {
	Path     string
	Rotation RotationConfig
}

// JSONWriterConfig configures a structured JSON-lines log writer.
type JSONWriterConfig struct {
	Path string
}

// WriterConfig describes a single configured log sink.
type WriterConfig struct {
	// Type selects the writer implementation: "console", "file" or "json".
	Type  string
	Level string
	File  FileWriterConfig
	JSON  JSONWriterConfig
}

// CollectorLogging is the set of writers that compose a running collector's
// logger.
type CollectorLogging struct {
	Writers []WriterConfig
}

// DefaultCollectorLogging returns the logging configuration used when no
// explicit writers were configured: a single console writer at info level.
func DefaultCollectorLogging() CollectorLogging {
	return CollectorLogging{
		Writers: []WriterConfig{
			{Type: "console", Level: "info"},
		},
	}
}
