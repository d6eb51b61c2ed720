package server

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/librarease/assetcatalog/internal/usecase"
)

// errorJSON maps usecase errors onto status codes. Server side failures are
// logged and only carry details outside production.
func (s *Server) errorJSON(ctx echo.Context, err error) error {
	var (
		validationErr usecase.ErrValidation
		notFoundErr   usecase.ErrNotFound
		conflictErr   usecase.ErrNameConflict
		configErr     usecase.ErrConfiguration
	)

	switch {
	case errors.As(err, &validationErr):
		return ctx.JSON(http.StatusBadRequest, ErrorRes{Error: validationErr.Message})
	case errors.As(err, &notFoundErr):
		return ctx.JSON(http.StatusNotFound, ErrorRes{Error: notFoundErr.Message})
	case errors.As(err, &conflictErr):
		return ctx.JSON(http.StatusBadRequest, ErrorRes{Error: "tag name already exists"})
	case errors.As(err, &configErr):
		return s.internalError(ctx, "storage is not configured", err)
	default:
		return s.internalError(ctx, "internal", err)
	}
}

func (s *Server) internalError(ctx echo.Context, msg string, err error) error {
	s.logger.ErrorContext(ctx.Request().Context(), "request failed",
		"method", ctx.Request().Method,
		"route", ctx.Path(),
		"err", err,
	)
	res := ErrorRes{Error: msg}
	if !s.isProduction {
		res.Detail = err.Error()
	}
	return ctx.JSON(http.StatusInternalServerError, res)
}

func badRequest(ctx echo.Context, err error) error {
	return ctx.JSON(http.StatusBadRequest, ErrorRes{Error: err.Error()})
}
