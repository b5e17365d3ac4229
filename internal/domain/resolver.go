package domain

import (
	"regexp"
	"strings"
)

var (
	watchIDPattern  = regexp.MustCompile(`v=(.+?)\b`)
	shortsIDPattern = regexp.MustCompile(`/shorts/(.+?)\b`)
	shortIDPattern  = regexp.MustCompile(`youtu\.be/(.+?)\b`)
)

// ResolveVideoID extracts the video ID from a watch, shorts or youtu.be URL.
// The extracted text is not validated further.
func ResolveVideoID(raw string) (string, error) {
	var pattern *regexp.Regexp
	switch {
	case strings.Contains(raw, "/watch"):
		pattern = watchIDPattern
	case strings.Contains(raw, "/shorts"):
		pattern = shortsIDPattern
	case strings.Contains(raw, "youtu.be/"):
		pattern = shortIDPattern
	default:
		return "", &InvalidURLError{Input: raw}
	}

	m := pattern.FindStringSubmatch(raw)
	if m == nil {
		return "", &InvalidURLError{Input: raw}
	}
	return m[1], nil
}

// LooksLikeURL reports whether input should go through ResolveVideoID
// rather than be treated as a bare ID.
func LooksLikeURL(input string) bool {
	return strings.Contains(input, "/")
}
