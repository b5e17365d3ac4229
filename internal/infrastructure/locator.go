package infrastructure

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/yourusername/yt-fetch-go/internal/domain"
)

// OutputLocator picks the one file a request will serve
type OutputLocator struct{}

// NewOutputLocator creates a new output locator
func NewOutputLocator() *OutputLocator {
	return &OutputLocator{}
}

// Locate prefers the first path the extractor reported. When nothing was
// reported it scans workDir for a file mode accepts.
func (l *OutputLocator) Locate(result *domain.DownloadResult, workDir string, mode domain.Mode) (*domain.ResolvedFile, error) {
	if result != nil && len(result.FilePaths) > 0 {
		path := result.FilePaths[0]
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			return nil, fmt.Errorf("%w: reported path %s", domain.ErrNotFound, path)
		}
		return domain.NewResolvedFile(path, workDir), nil
	}

	path, err := l.scan(workDir, mode)
	if err != nil {
		return nil, err
	}
	return domain.NewResolvedFile(path, workDir), nil
}

// scan walks workDir in os.ReadDir (lexical) order. A regular file with
// the mode's preferred extension wins; otherwise the first file the mode
// accepts.
func (l *OutputLocator) scan(workDir string, mode domain.Mode) (string, error) {
	entries, err := os.ReadDir(workDir)
	if err != nil {
		return "", fmt.Errorf("%w: cannot read %s: %v", domain.ErrNotFound, workDir, err)
	}

	preferred := mode.ExpectedExtension()
	fallback := ""
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		if strings.EqualFold(ext, preferred) {
			return filepath.Join(workDir, entry.Name()), nil
		}
		if fallback == "" && mode.Accepts(ext) {
			fallback = filepath.Join(workDir, entry.Name())
		}
	}
	if fallback != "" {
		return fallback, nil
	}
	return "", fmt.Errorf("%w: no %s output in %s", domain.ErrNotFound, mode, workDir)
}
