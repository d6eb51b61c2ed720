package server

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

type PresignUploadRequest struct {
	Filename    string `query:"filename" validate:"max=1024"`
	ContentType string `query:"contentType" validate:"max=255"`
}

type PresignUploadResponse struct {
	UploadURL string            `json:"uploadUrl"`
	GetURL    string            `json:"getUrl"`
	PublicURL string            `json:"publicUrl"`
	Key       string            `json:"key"`
	Headers   map[string]string `json:"headers"`
	ExpiresAt string            `json:"expiresAt"`
}

func (s *Server) PresignUpload(ctx echo.Context) error {
	var req PresignUploadRequest
	if err := ctx.Bind(&req); err != nil {
		return badRequest(ctx, err)
	}
	if err := s.validator.Struct(req); err != nil {
		return badRequest(ctx, err)
	}

	ticket, err := s.server.GetUploadTicket(ctx.Request().Context(), req.Filename, req.ContentType)
	if err != nil {
		return s.errorJSON(ctx, err)
	}

	headers := ticket.Upload.Headers
	if headers == nil {
		headers = map[string]string{"Content-Type": ticket.ContentType}
	}

	return ctx.JSON(http.StatusOK, PresignUploadResponse{
		UploadURL: ticket.Upload.URL,
		GetURL:    ticket.Download.URL,
		PublicURL: ticket.PublicURL,
		Key:       ticket.Key,
		Headers:   headers,
		ExpiresAt: ticket.Upload.ExpiresAt.UTC().Format(time.RFC3339),
	})
}

type GetDownloadURLRequest struct {
	Key string `query:"key" validate:"storage_key"`
}

type DownloadURLResponse struct {
	URL       string `json:"url"`
	ExpiresAt string `json:"expiresAt"`
}

func (s *Server) GetDownloadURL(ctx echo.Context) error {
	var req GetDownloadURLRequest
	if err := ctx.Bind(&req); err != nil {
		return badRequest(ctx, err)
	}
	if err := s.validator.Struct(req); err != nil {
		return badRequest(ctx, err)
	}

	signed, err := s.server.GetDownloadURL(ctx.Request().Context(), req.Key)
	if err != nil {
		return s.errorJSON(ctx, err)
	}

	return ctx.JSON(http.StatusOK, DownloadURLResponse{
		URL:       signed.URL,
		ExpiresAt: signed.ExpiresAt.UTC().Format(time.RFC3339),
	})
}
