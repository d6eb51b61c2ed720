package server

import (
	"log/slog"
	"slices"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

var unloggedPaths = []string{
	"/api/health",
	"/favicon.ico",
}

func skipper(c echo.Context) bool {
	return slices.Contains(unloggedPaths, c.Request().URL.Path)
}

// requestLevel picks the record level from the outcome: server faults are
// errors, client mistakes warnings, everything else info.
func requestLevel(status int, err error) slog.Level {
	switch {
	case err != nil, status >= 500:
		return slog.LevelError
	case status >= 400:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

// NewRequestLogger writes one record per request. Presigned URLs travel in
// response bodies only, so nothing logged here carries a signature.
func NewRequestLogger(l *slog.Logger) echo.MiddlewareFunc {
	l = l.With("component", "http")

	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		Skipper:          skipper,
		HandleError:      true, // let echo's error handler pick the status before it is logged
		LogStatus:        true,
		LogError:         true,
		LogMethod:        true,
		LogURIPath:       true,
		LogRoutePath:     true,
		LogRequestID:     true,
		LogRemoteIP:      true,
		LogLatency:       true,
		LogContentLength: true,
		LogResponseSize:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			level := requestLevel(v.Status, v.Error)

			attrs := []slog.Attr{
				slog.String("request_id", v.RequestID),
				slog.String("method", v.Method),
				slog.String("path", v.URIPath),
				slog.String("route", v.RoutePath),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
				slog.String("remote_ip", v.RemoteIP),
				slog.String("bytes_in", v.ContentLength),
				slog.Int64("bytes_out", v.ResponseSize),
			}
			if v.Error != nil {
				attrs = append(attrs, slog.String("err", v.Error.Error()))
			}

			l.LogAttrs(c.Request().Context(), level, "request", attrs...)
			return nil
		},
	})
}
