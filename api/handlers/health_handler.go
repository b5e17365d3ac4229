package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yourusername/yt-fetch-go/internal/app"
	"github.com/yourusername/yt-fetch-go/internal/domain"
)

// Version is reported by the health endpoint
const Version = "1.0.0"

// HealthHandler handles health check requests
type HealthHandler struct {
	extractor domain.Extractor
	limiter   *app.ExtractionLimiter
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(service *app.DownloadService) *HealthHandler {
	return &HealthHandler{
		extractor: service.Extractor(),
		limiter:   service.Limiter(),
	}
}

// HealthResponse represents a health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Version   string `json:"version"`
	Extractor struct {
		Binary    string `json:"binary"`
		Available bool   `json:"available"`
	} `json:"extractor"`
	Extractions domain.ExtractionStats `json:"extractions"`
}

// Health handles GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	response := HealthResponse{
		Status:  "ok",
		Version: Version,
	}
	response.Extractor.Binary = h.extractor.Name()
	response.Extractor.Available = h.extractor.Available()
	response.Extractions = h.limiter.Stats()

	c.JSON(http.StatusOK, response)
}

// Ready handles GET /ready
func (h *HealthHandler) Ready(c *gin.Context) {
	if !h.extractor.Available() {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not ready",
			"reason": "extractor binary not found: " + h.extractor.Name(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

// Robots handles GET /robots.txt
func Robots(c *gin.Context) {
	c.String(http.StatusOK, "User-agent: *\nDisallow: /")
}
