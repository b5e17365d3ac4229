package domain

import (
	"fmt"
	"strings"
)

// Post-processor kinds understood by the extraction engine
const (
	PostProcessorVideoConvertor = "FFmpegVideoConvertor"
	PostProcessorVideoRemuxer   = "FFmpegVideoRemuxer"
)

// Format selector branches for video mode. The engine tries them left to right,
// so the order here decides which stream wins.
var videoFormatChain = []string{
	"bestvideo*[ext=mp4][filesize<=20M]+bestaudio[ext=m4a][filesize<=4M]",
	"bestvideo*[filesize<=19M]+bestaudio[filesize<=4M]",
	"best[filesize<=25M]",
	"worst",
	"best",
}

// Best video-only stream under 512KB, otherwise the worst video-only stream.
var gifFormatChain = []string{
	"bv[filesize<=512K]",
	"wv",
}

const (
	videoOutputTemplate = "%(title|Untitled)s - %(uploader|Unknown)s [%(id)s].%(ext)s"
	gifFrameRateArgs    = "-r 8 -an"
	formatSeparator     = " / "
	watchURLPrefix      = "https://www.youtube.com/watch?v="
)

// WatchURL returns the canonical watch page for a video ID
func WatchURL(videoID string) string {
	return watchURLPrefix + videoID
}

// BuildExtractionSpec returns the engine parameters for a mode.
// TargetURL is left for the caller to fill in.
func BuildExtractionSpec(mode Mode) (*ExtractionSpec, error) {
	switch mode {
	case ModeVideo:
		return &ExtractionSpec{
			Mode:           ModeVideo,
			FormatSelector: strings.Join(videoFormatChain, formatSeparator),
			OutputTemplate: videoOutputTemplate,
		}, nil
	case ModeGIF:
		// No output template: a custom name template breaks the recode step.
		return &ExtractionSpec{
			Mode:           ModeGIF,
			FormatSelector: strings.Join(gifFormatChain, formatSeparator),
			PostProcessors: []PostProcessor{
				{Kind: PostProcessorVideoConvertor, TargetFormat: "gif"},
			},
			PostProcessorArgs: map[string]string{
				"VideoConvertor": gifFrameRateArgs,
			},
		}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidMode, mode)
	}
}

// FormatBranches splits a selector back into its fallback branches
func (s *ExtractionSpec) FormatBranches() []string {
	parts := strings.Split(s.FormatSelector, "/")
	branches := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			branches = append(branches, p)
		}
	}
	return branches
}
