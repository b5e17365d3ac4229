package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/yourusername/yt-fetch-go/internal/domain"
	"github.com/yourusername/yt-fetch-go/internal/infrastructure"
	"go.uber.org/zap"
)

// DownloadService runs the request pipeline: build the extraction spec,
// invoke the extractor in an isolated directory, locate the output.
type DownloadService struct {
	extractor domain.Extractor
	locator   *infrastructure.OutputLocator
	limiter   *ExtractionLimiter
	config    *domain.DownloadConfig
	logger    *zap.Logger
}

// NewDownloadService creates a new download service
func NewDownloadService(
	extractor domain.Extractor,
	locator *infrastructure.OutputLocator,
	config *domain.DownloadConfig,
	logger *zap.Logger,
) *DownloadService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if locator == nil {
		locator = infrastructure.NewOutputLocator()
	}
	return &DownloadService{
		extractor: extractor,
		locator:   locator,
		limiter:   NewExtractionLimiter(config.MaxConcurrent, logger),
		config:    config,
		logger:    logger,
	}
}

// Extractor returns the underlying extraction engine
func (s *DownloadService) Extractor() domain.Extractor {
	return s.extractor
}

// Limiter returns the extraction concurrency limiter
func (s *DownloadService) Limiter() *ExtractionLimiter {
	return s.limiter
}

// Process handles a request whose input is a URL
func (s *DownloadService) Process(ctx context.Context, req domain.DownloadRequest) (*domain.ResolvedFile, error) {
	videoID, err := domain.ResolveVideoID(req.Input)
	if err != nil {
		return nil, err
	}
	return s.Fetch(ctx, videoID, req.Mode)
}

// Fetch downloads videoID in the given mode and returns the file to serve.
// The caller owns the result and should hand it to Release once served.
func (s *DownloadService) Fetch(ctx context.Context, videoID string, mode domain.Mode) (*domain.ResolvedFile, error) {
	if videoID == "" {
		return nil, fmt.Errorf("%w: video id", domain.ErrMissingParameter)
	}

	spec, err := domain.BuildExtractionSpec(mode)
	if err != nil {
		return nil, err
	}
	spec.TargetURL = domain.WatchURL(videoID)

	workDir, err := s.newWorkDir()
	if err != nil {
		return nil, err
	}

	s.logger.Info("Extracting",
		zap.String("video_id", videoID),
		zap.String("mode", string(mode)),
		zap.String("work_dir", workDir))

	start := time.Now()
	var result *domain.DownloadResult
	err = s.limiter.Run(ctx, videoID, func() error {
		var extractErr error
		// Extraction outlives a disconnected client
		result, extractErr = s.extractor.Extract(context.WithoutCancel(ctx), spec, workDir)
		return extractErr
	})
	if err != nil {
		s.removeWorkDir(workDir)
		return nil, err
	}

	file, err := s.locator.Locate(result, workDir, mode)
	if err != nil {
		s.removeWorkDir(workDir)
		return nil, err
	}

	s.logger.Info("Extraction finished",
		zap.String("video_id", videoID),
		zap.String("file", file.Path),
		zap.String("mime_type", file.MimeType),
		zap.Duration("elapsed", time.Since(start)))

	return file, nil
}

// Release removes the file's work directory when cleanup is enabled
func (s *DownloadService) Release(file *domain.ResolvedFile) {
	if file == nil || !s.config.Cleanup {
		return
	}
	s.removeWorkDir(file.WorkDir)
}

// newWorkDir creates a fresh directory for one request under the work root
func (s *DownloadService) newWorkDir() (string, error) {
	root, err := filepath.Abs(s.config.WorkDir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve work directory: %w", err)
	}
	dir := filepath.Join(root, uuid.New().String())
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create work directory: %w", err)
	}
	return dir, nil
}

func (s *DownloadService) removeWorkDir(dir string) {
	if dir == "" || !s.config.Cleanup || !s.ownsDir(dir) {
		return
	}
	if err := os.RemoveAll(dir); err != nil {
		s.logger.Warn("Failed to remove work directory", zap.String("dir", dir), zap.Error(err))
	}
}

// ownsDir reports whether dir sits directly under the work root
func (s *DownloadService) ownsDir(dir string) bool {
	root, err := filepath.Abs(s.config.WorkDir)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(root, dir)
	if err != nil {
		return false
	}
	return rel != "." && !strings.Contains(rel, string(filepath.Separator)) && !strings.HasPrefix(rel, "..")
}
