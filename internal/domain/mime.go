package domain

import (
	"path/filepath"
	"strings"
)

// DefaultMimeType is served for extensions missing from the table
const DefaultMimeType = "video/mp4"

var mimeTypes = map[string]string{
	"3gp":  "video/3gpp",
	"3g2":  "video/3gpp2",
	"avi":  "video/x-msvideo",
	"mpeg": "video/mpeg",
	"mp4":  "video/mp4",
	"ogv":  "video/ogg",
	"ts":   "video/mp2t",
	"webm": "video/webm",
	"gif":  "image/gif",
}

// Containers yt-dlp may produce for a video download
var videoExtensions = map[string]bool{
	"3gp":  true,
	"3g2":  true,
	"avi":  true,
	"flv":  true,
	"m4v":  true,
	"mkv":  true,
	"mov":  true,
	"mpeg": true,
	"mp4":  true,
	"ogv":  true,
	"ts":   true,
	"webm": true,
}

// MimeTypeFor looks up the content type for an extension, with or without dot
func MimeTypeFor(ext string) string {
	if mt, ok := mimeTypes[normalizeExt(ext)]; ok {
		return mt
	}
	return DefaultMimeType
}

// NewResolvedFile describes path for serving
func NewResolvedFile(path, workDir string) *ResolvedFile {
	ext := normalizeExt(filepath.Ext(path))
	return &ResolvedFile{
		Path:      path,
		Extension: ext,
		MimeType:  MimeTypeFor(ext),
		WorkDir:   workDir,
	}
}

func normalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}
