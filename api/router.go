package api

import (
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yourusername/yt-fetch-go/api/handlers"
	"github.com/yourusername/yt-fetch-go/api/middleware"
	"github.com/yourusername/yt-fetch-go/internal/app"
	"github.com/yourusername/yt-fetch-go/internal/domain"
	"github.com/yourusername/yt-fetch-go/web"
)

// SetupRouter sets up the HTTP router. Every route, including unknown
// paths, passes through the access gate.
func SetupRouter(auth domain.AuthConfig, service *app.DownloadService, log *zap.Logger) *gin.Engine {
	if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Middleware
	router.Use(middleware.Logger(log))
	router.Use(middleware.Recovery(log))
	router.Use(middleware.AccessGate(auth))

	router.SetHTMLTemplate(template.Must(template.ParseFS(web.GetTemplatesFS(), "*.html")))

	// Health endpoints
	healthHandler := handlers.NewHealthHandler(service)
	router.GET("/health", healthHandler.Health)
	router.GET("/ready", healthHandler.Ready)

	// Download endpoints
	downloadHandler := handlers.NewDownloadHandler(service, log)
	router.GET("/", downloadHandler.Index)
	router.POST("/", downloadHandler.Submit)
	router.GET("/video", downloadHandler.Video)
	router.GET("/gif", downloadHandler.GIF)
	router.GET("/test", downloadHandler.Test)

	router.GET("/robots.txt", handlers.Robots)

	router.NoRoute(func(c *gin.Context) {
		c.String(http.StatusNotFound, "Not Found")
	})

	return router
}
