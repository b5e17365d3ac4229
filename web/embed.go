package web

import (
	"embed"
	"io/fs"
)

//go:embed templates/*
var content embed.FS

// GetTemplatesFS returns the embedded templates filesystem
func GetTemplatesFS() fs.FS {
	templatesFS, _ := fs.Sub(content, "templates")
	return templatesFS
}
