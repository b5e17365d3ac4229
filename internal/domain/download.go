package domain

import (
	"fmt"
	"strings"
)

// Mode selects what the pipeline produces for a video
type Mode string

const (
	ModeVideo Mode = "video" // size-capped video with audio
	ModeGIF   Mode = "gif"   // silent 8fps gif re-encode
)

// TestVideoID is the known-good video used by the smoke-test endpoint
const TestVideoID = "BaW_jenozKc"

// ParseMode maps a form or query value to a Mode.
// The *_small values are accepted for older form revisions.
func ParseMode(value string) (Mode, error) {
	switch strings.TrimSpace(value) {
	case "video", "video_small":
		return ModeVideo, nil
	case "gif", "gif_small":
		return ModeGIF, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidMode, value)
	}
}

// ExpectedExtension returns the extension (with dot) a directory scan prefers
func (m Mode) ExpectedExtension() string {
	if m == ModeGIF {
		return ".gif"
	}
	return ".mp4"
}

// Accepts reports whether a file with ext can be the output of mode.
// Video selectors other than the first branch may leave any container.
func (m Mode) Accepts(ext string) bool {
	ext = normalizeExt(ext)
	if m == ModeGIF {
		return ext == "gif"
	}
	return videoExtensions[ext]
}

// DownloadRequest is a single inbound download ask
type DownloadRequest struct {
	Input string // URL or bare video ID
	Mode  Mode
}

// PostProcessor is a transformation the engine applies after download
type PostProcessor struct {
	Kind         string `json:"kind"`
	TargetFormat string `json:"target_format,omitempty"`
	ExtraArgs    string `json:"extra_args,omitempty"`
}

// ExtractionSpec is everything the extraction engine needs for one run
type ExtractionSpec struct {
	TargetURL         string            `json:"target_url"`
	Mode              Mode              `json:"mode"`
	FormatSelector    string            `json:"format_selector"`
	OutputTemplate    string            `json:"output_template,omitempty"`
	PostProcessors    []PostProcessor   `json:"post_processors,omitempty"`
	PostProcessorArgs map[string]string `json:"post_processor_args,omitempty"`
}

// DownloadResult lists the files an extraction run reported
type DownloadResult struct {
	FilePaths []string
}

// ResolvedFile is the single file chosen to answer a request
type ResolvedFile struct {
	Path      string
	Extension string // lower case, no dot
	MimeType  string
	WorkDir   string // per-request directory owning Path
}
