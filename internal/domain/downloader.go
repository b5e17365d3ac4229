package domain

import "context"

// Extractor is the contract for the media extraction engine
type Extractor interface {
	// Extract runs the engine for spec, writing output under outputDir
	Extract(ctx context.Context, spec *ExtractionSpec, outputDir string) (*DownloadResult, error)

	// Name identifies the engine (binary name for subprocess engines)
	Name() string

	// Available reports whether the engine can be invoked
	Available() bool
}
