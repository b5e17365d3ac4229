package infrastructure

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/yourusername/yt-fetch-go/internal/domain"
	"go.uber.org/zap"
)

const stderrTailSize = 4096

// YTDLPExtractor implements domain.Extractor by running yt-dlp
type YTDLPExtractor struct {
	config  *domain.ExtractorConfig
	logsDir string
	logger  *zap.Logger
}

// NewYTDLPExtractor creates a new yt-dlp extractor. logsDir may be empty to
// skip the per-day download log.
func NewYTDLPExtractor(config *domain.ExtractorConfig, logsDir string, logger *zap.Logger) *YTDLPExtractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &YTDLPExtractor{
		config:  config,
		logsDir: logsDir,
		logger:  logger,
	}
}

// Name returns the configured binary
func (e *YTDLPExtractor) Name() string {
	return e.config.Binary
}

// Available reports whether the binary resolves on PATH
func (e *YTDLPExtractor) Available() bool {
	_, err := exec.LookPath(e.config.Binary)
	return err == nil
}

// Args builds the yt-dlp command line for spec
func (e *YTDLPExtractor) Args(spec *domain.ExtractionSpec, outputDir string) []string {
	args := []string{
		"--no-playlist",
		"--restrict-filenames",
		"-P", outputDir,
		"-f", spec.FormatSelector,
	}

	if spec.OutputTemplate != "" {
		args = append(args, "-o", spec.OutputTemplate)
	}

	for _, pp := range spec.PostProcessors {
		switch pp.Kind {
		case domain.PostProcessorVideoConvertor:
			args = append(args, "--recode-video", pp.TargetFormat)
		case domain.PostProcessorVideoRemuxer:
			args = append(args, "--remux-video", pp.TargetFormat)
		default:
			args = append(args, "--use-postprocessor", pp.Kind)
		}
		if pp.ExtraArgs != "" {
			args = append(args, "--postprocessor-args", strings.TrimPrefix(pp.Kind, "FFmpeg")+":"+pp.ExtraArgs)
		}
	}

	// Sorted so the command line is stable across runs
	names := make([]string, 0, len(spec.PostProcessorArgs))
	for name := range spec.PostProcessorArgs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		args = append(args, "--postprocessor-args", name+":"+spec.PostProcessorArgs[name])
	}

	if e.config.CookieFile != "" && fileExists(e.config.CookieFile) {
		args = append(args, "--cookies", e.config.CookieFile)
	}

	if e.config.ReportPaths {
		args = append(args, "--no-simulate", "--print", "after_move:filepath")
	}

	args = append(args, e.config.ExtraArgs...)
	return append(args, spec.TargetURL)
}

// Extract runs yt-dlp for spec and returns the paths it printed
func (e *YTDLPExtractor) Extract(ctx context.Context, spec *domain.ExtractionSpec, outputDir string) (*domain.DownloadResult, error) {
	if spec.TargetURL == "" {
		return nil, fmt.Errorf("extraction spec has no target URL")
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	if e.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.config.Timeout)
		defer cancel()
	}

	args := e.Args(spec, outputDir)
	cmdLine := ShellEscapeCommand(e.config.Binary, args...)

	var stdout bytes.Buffer
	stderr := newTailBuffer(stderrTailSize)
	var errWriter io.Writer = stderr

	downloadLog, err := e.openLogFile()
	if err != nil {
		e.logger.Warn("Download log unavailable", zap.Error(err))
	}
	if downloadLog != nil {
		defer downloadLog.Close()
		writeLogHeader(downloadLog, spec.TargetURL, cmdLine)
		errWriter = io.MultiWriter(stderr, downloadLog)
	}

	e.logger.Debug("Running extractor", zap.String("cmd", cmdLine))

	cmd := exec.CommandContext(ctx, e.config.Binary, args...)
	cmd.Dir = outputDir
	cmd.Stdout = &stdout
	cmd.Stderr = errWriter

	if err := cmd.Run(); err != nil {
		if downloadLog != nil {
			writeLogFooter(downloadLog, false, err.Error())
		}
		output := stderr.String()
		if ctx.Err() != nil {
			err = fmt.Errorf("%w: %v", ctx.Err(), err)
		}
		return nil, &domain.ExtractionError{
			Kind:   classifyFailure(output),
			URL:    spec.TargetURL,
			Output: output,
			Err:    err,
		}
	}

	result := &domain.DownloadResult{FilePaths: parsePrintedPaths(stdout.String(), outputDir)}
	if downloadLog != nil {
		writeLogFooter(downloadLog, true, fmt.Sprintf("%d file(s) reported", len(result.FilePaths)))
	}
	return result, nil
}

// openLogFile opens today's download log, or returns nil when logging to file is off
func (e *YTDLPExtractor) openLogFile() (*os.File, error) {
	if e.logsDir == "" {
		return nil, nil
	}
	if err := os.MkdirAll(e.logsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create logs directory: %w", err)
	}

	dateStr := time.Now().Format("20060102")
	downloadPath := filepath.Join(e.logsDir, "download-"+dateStr+".log")
	return os.OpenFile(downloadPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
}

func writeLogHeader(w io.Writer, target, cmdLine string) {
	timestamp := time.Now().Format("2006-01-02 15:04:05")
	fmt.Fprintf(w, "\n=== [%s] Extract: %s ===\n", timestamp, target)
	fmt.Fprintf(w, "$ %s\n", cmdLine)
}

func writeLogFooter(w io.Writer, success bool, message string) {
	timestamp := time.Now().Format("2006-01-02 15:04:05")
	status := "SUCCESS"
	if !success {
		status = "FAILED"
	}
	fmt.Fprintf(w, "[%s] %s: %s\n", timestamp, status, message)
	fmt.Fprint(w, "=== END ===\n\n")
}

// parsePrintedPaths reads the after_move:filepath lines yt-dlp wrote to stdout.
// Relative paths are taken relative to outputDir.
func parsePrintedPaths(output, outputDir string) []string {
	var paths []string
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "[") {
			continue
		}
		if !filepath.IsAbs(line) {
			line = filepath.Join(outputDir, line)
		}
		paths = append(paths, line)
	}
	return paths
}

// classifyFailure maps yt-dlp diagnostics to a failure kind
func classifyFailure(output string) domain.ExtractionFailure {
	lower := strings.ToLower(output)
	switch {
	case strings.Contains(lower, "requested format is not available"),
		strings.Contains(lower, "no video formats found"):
		return domain.FailureNoFormat
	case strings.Contains(lower, "postprocessing"),
		strings.Contains(lower, "ffmpeg"),
		strings.Contains(lower, "conversion failed"):
		return domain.FailureTranscode
	case strings.Contains(lower, "unable to download"),
		strings.Contains(lower, "urlopen error"),
		strings.Contains(lower, "timed out"),
		strings.Contains(lower, "connection"),
		strings.Contains(lower, "http error"):
		return domain.FailureNetwork
	default:
		return domain.FailureUnknown
	}
}

// tailBuffer keeps the last max bytes written to it
type tailBuffer struct {
	buf []byte
	max int
}

func newTailBuffer(max int) *tailBuffer {
	return &tailBuffer{max: max}
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	t.buf = append(t.buf, p...)
	if over := len(t.buf) - t.max; over > 0 {
		t.buf = t.buf[over:]
	}
	return len(p), nil
}

func (t *tailBuffer) String() string {
	return strings.TrimSpace(string(t.buf))
}

// fileExists checks if a file exists
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
