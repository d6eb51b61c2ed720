package server

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"golang.org/x/time/rate"

	"github.com/librarease/assetcatalog/internal/config"
)

func (s *Server) RegisterRoutes() http.Handler {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		TargetHeader: config.HEADER_KEY_X_REQUEST_ID,
	}))
	e.Use(otelecho.Middleware("assetcatalog", otelecho.WithSkipper(skipper)))
	e.Use(NewRequestLogger(s.logger))
	e.Use(middleware.Recover())

	e.GET("/api/health", s.healthHandler)

	var uploadGroup = e.Group("/api/uploads", s.presignLimiter()...)
	uploadGroup.GET("/presign", s.PresignUpload)
	uploadGroup.GET("/download-url", s.GetDownloadURL)

	var assetGroup = e.Group("/api/assets")
	assetGroup.GET("", s.ListAssets)
	assetGroup.POST("", s.CreateAsset)
	assetGroup.GET("/:id", s.GetAssetByID)
	assetGroup.PUT("/:id", s.UpdateAsset)
	assetGroup.DELETE("/:id", s.DeleteAsset)

	var tagGroup = e.Group("/api/tags")
	tagGroup.GET("", s.ListTags)
	tagGroup.POST("", s.CreateTag)
	tagGroup.GET("/:id", s.GetTagByID)
	tagGroup.PUT("/:id", s.RenameTag)
	tagGroup.DELETE("/:id", s.DeleteTag)

	return e
}

// presignLimiter throttles credential issuance per client IP.
func (s *Server) presignLimiter() []echo.MiddlewareFunc {
	if s.presignRateLimit <= 0 {
		return nil
	}
	burst := int(s.presignRateLimit)
	if burst < 1 {
		burst = 1
	}
	store := middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(s.presignRateLimit),
		Burst:     burst,
		ExpiresIn: 3 * time.Minute,
	})
	return []echo.MiddlewareFunc{
		middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
			Store: store,
			DenyHandler: func(c echo.Context, _ string, _ error) error {
				return c.JSON(http.StatusTooManyRequests, map[string]string{"error": "too many requests"})
			},
		}),
	}
}
