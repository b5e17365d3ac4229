package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingParameter is returned when a required request parameter is absent
	ErrMissingParameter = errors.New("missing parameter")

	// ErrInvalidMode is returned for a result type other than video or gif
	ErrInvalidMode = errors.New("invalid mode")

	// ErrNotFound is returned when no produced file can be located
	ErrNotFound = errors.New("output file not found")
)

// InvalidURLError reports input that matches none of the accepted URL shapes
type InvalidURLError struct {
	Input string
}

func (e *InvalidURLError) Error() string {
	return "Invalid URL: " + e.Input
}

// ExtractionFailure classifies why the extraction engine failed
type ExtractionFailure string

const (
	FailureNetwork   ExtractionFailure = "network"
	FailureNoFormat  ExtractionFailure = "no_format"
	FailureTranscode ExtractionFailure = "transcode"
	FailureUnknown   ExtractionFailure = "unknown"
)

// ExtractionError wraps a failed extraction run
type ExtractionError struct {
	Kind   ExtractionFailure
	URL    string
	Output string // tail of the engine's diagnostic output
	Err    error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extraction of %s failed (%s): %v", e.URL, e.Kind, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}
