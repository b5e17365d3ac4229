package handlers

import (
	"errors"
	"mime"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/yourusername/yt-fetch-go/internal/app"
	"github.com/yourusername/yt-fetch-go/internal/domain"
	"go.uber.org/zap"
)

const (
	msgMissingID       = "Please specify `id`"
	msgMissingVideoURL = "Please specify `video_url`"
)

// DownloadHandler handles download-related HTTP requests
type DownloadHandler struct {
	service *app.DownloadService
	logger  *zap.Logger
}

// NewDownloadHandler creates a new download handler
func NewDownloadHandler(service *app.DownloadService, logger *zap.Logger) *DownloadHandler {
	return &DownloadHandler{
		service: service,
		logger:  logger,
	}
}

// Index handles GET /
func (h *DownloadHandler) Index(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", gin.H{
		"Password": c.Query("pw"),
	})
}

// Submit handles POST / from the form
func (h *DownloadHandler) Submit(c *gin.Context) {
	videoURL := c.PostForm("video_url")
	if videoURL == "" {
		c.String(http.StatusBadRequest, msgMissingVideoURL)
		return
	}

	resultSelect := c.PostForm("result_select")
	mode, err := domain.ParseMode(resultSelect)
	if err != nil {
		c.String(http.StatusBadRequest, "Invalid result type: "+resultSelect)
		return
	}

	file, err := h.service.Process(c.Request.Context(), domain.DownloadRequest{
		Input: videoURL,
		Mode:  mode,
	})
	h.respond(c, file, err)
}

// Video handles GET /video?id=
func (h *DownloadHandler) Video(c *gin.Context) {
	h.fetchByID(c, domain.ModeVideo)
}

// GIF handles GET /gif?id=
func (h *DownloadHandler) GIF(c *gin.Context) {
	h.fetchByID(c, domain.ModeGIF)
}

// Test handles GET /test with a known-good video
func (h *DownloadHandler) Test(c *gin.Context) {
	file, err := h.service.Fetch(c.Request.Context(), domain.TestVideoID, domain.ModeVideo)
	h.respond(c, file, err)
}

func (h *DownloadHandler) fetchByID(c *gin.Context, mode domain.Mode) {
	videoID := c.Query("id")
	if videoID == "" {
		c.String(http.StatusBadRequest, msgMissingID)
		return
	}

	file, err := h.service.Fetch(c.Request.Context(), videoID, mode)
	h.respond(c, file, err)
}

func (h *DownloadHandler) respond(c *gin.Context, file *domain.ResolvedFile, err error) {
	if err != nil {
		h.writeError(c, err)
		return
	}
	defer h.service.Release(file)

	h.logger.Info("Serving file", zap.String("file", file.Path), zap.String("mime_type", file.MimeType))
	if err := serveFile(c, file); err != nil {
		h.logger.Error("Failed to serve file", zap.String("file", file.Path), zap.Error(err))
		if !c.Writer.Written() {
			c.String(http.StatusInternalServerError, "Failed to read file")
		}
	}
}

// serveFile streams file as an attachment. The handle is closed when the
// body has been written or the client went away.
func serveFile(c *gin.Context, file *domain.ResolvedFile) error {
	f, err := os.Open(file.Path)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}

	c.DataFromReader(http.StatusOK, info.Size(), file.MimeType, f, map[string]string{
		"Content-Disposition": attachmentDisposition(filepath.Base(file.Path)),
	})
	return nil
}

func attachmentDisposition(filename string) string {
	if v := mime.FormatMediaType("attachment", map[string]string{"filename": filename}); v != "" {
		return v
	}
	return "attachment"
}

// writeError maps pipeline errors to responses
func (h *DownloadHandler) writeError(c *gin.Context, err error) {
	_ = c.Error(err)

	var invalidURL *domain.InvalidURLError
	var extractErr *domain.ExtractionError

	switch {
	case errors.As(err, &invalidURL):
		c.String(http.StatusBadRequest, invalidURL.Error())
	case errors.Is(err, domain.ErrMissingParameter):
		c.String(http.StatusBadRequest, msgMissingID)
	case errors.Is(err, domain.ErrInvalidMode):
		c.String(http.StatusBadRequest, err.Error())
	case errors.As(err, &extractErr):
		h.logger.Error("Extraction failed",
			zap.String("url", extractErr.URL),
			zap.String("kind", string(extractErr.Kind)),
			zap.String("output", extractErr.Output),
			zap.Error(extractErr.Err))
		c.String(http.StatusInternalServerError, "Extraction failed: "+string(extractErr.Kind))
	case errors.Is(err, domain.ErrNotFound):
		h.logger.Error("Downloaded file not found", zap.Error(err))
		c.String(http.StatusInternalServerError, "Downloaded file not found")
	default:
		h.logger.Error("Download failed", zap.Error(err))
		c.String(http.StatusInternalServerError, "Internal server error")
	}
}
