package server

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/librarease/assetcatalog/internal/usecase"
)

type Asset struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description *string  `json:"description"`
	URL         *string  `json:"url"`
	Key         *string  `json:"key"`
	ContentType *string  `json:"content_type"`
	Tags        []string `json:"tags"`
	CreatedAt   *string  `json:"created_at"`
	UpdatedAt   *string  `json:"updated_at"`
}

func toAsset(a usecase.Asset) Asset {
	tags := make([]string, 0, len(a.Tags))
	for _, t := range a.Tags {
		tags = append(tags, t.Name)
	}
	return Asset{
		ID:          a.ID.String(),
		Name:        a.Name,
		Description: a.Description,
		URL:         a.URL,
		Key:         a.Key,
		ContentType: a.ContentType,
		Tags:        tags,
		CreatedAt:   formatTime(a.CreatedAt),
		UpdatedAt:   formatTime(a.UpdatedAt),
	}
}

type ListAssetsRequest struct {
	Tag    string `query:"tag" validate:"max=64"`
	Limit  int    `query:"limit" validate:"gte=0,lte=500"`
	Offset int    `query:"offset" validate:"gte=0"`
}

func (s *Server) ListAssets(ctx echo.Context) error {
	var req ListAssetsRequest
	if err := ctx.Bind(&req); err != nil {
		return badRequest(ctx, err)
	}
	if err := s.validator.Struct(req); err != nil {
		return badRequest(ctx, err)
	}

	assets, err := s.server.ListAssets(ctx.Request().Context(), usecase.ListAssetsOption{
		Tag:    req.Tag,
		Limit:  req.Limit,
		Offset: req.Offset,
	})
	if err != nil {
		return s.errorJSON(ctx, err)
	}

	list := make([]Asset, 0, len(assets))
	for _, a := range assets {
		list = append(list, toAsset(a))
	}

	return ctx.JSON(http.StatusOK, list)
}

func (s *Server) GetAssetByID(ctx echo.Context) error {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return assetNotFound(ctx)
	}

	asset, err := s.server.GetAssetByID(ctx.Request().Context(), id)
	if err != nil {
		return s.errorJSON(ctx, err)
	}

	return ctx.JSON(http.StatusOK, toAsset(asset))
}

// CreateAssetRequest also accepts s3_key, the field name older clients send.
type CreateAssetRequest struct {
	Name        string   `json:"name" validate:"max=255"`
	Description *string  `json:"description"`
	Key         *string  `json:"key" validate:"omitempty,storage_key"`
	S3Key       *string  `json:"s3_key" validate:"omitempty,storage_key"`
	URL         *string  `json:"url" validate:"omitempty,max=2048"`
	ContentType *string  `json:"content_type" validate:"omitempty,max=255"`
	Tags        []string `json:"tags"`
}

func (s *Server) CreateAsset(ctx echo.Context) error {
	var req CreateAssetRequest
	if err := ctx.Bind(&req); err != nil {
		return badRequest(ctx, err)
	}
	if err := s.validator.Struct(req); err != nil {
		return badRequest(ctx, err)
	}

	key := req.Key
	if key == nil {
		key = req.S3Key
	}

	created, err := s.server.CreateAsset(ctx.Request().Context(), usecase.Asset{
		Name:        req.Name,
		Description: req.Description,
		Key:         key,
		URL:         req.URL,
		ContentType: req.ContentType,
	}, req.Tags)
	if err != nil {
		return s.errorJSON(ctx, err)
	}

	return ctx.JSON(http.StatusCreated, toAsset(created))
}

type UpdateAssetRequest struct {
	Name        *string   `json:"name" validate:"omitempty,max=255"`
	Description *string   `json:"description"`
	Tags        *[]string `json:"tags"`
}

func (s *Server) UpdateAsset(ctx echo.Context) error {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return assetNotFound(ctx)
	}

	var req UpdateAssetRequest
	if err := ctx.Bind(&req); err != nil {
		return badRequest(ctx, err)
	}
	if err := s.validator.Struct(req); err != nil {
		return badRequest(ctx, err)
	}

	updated, err := s.server.UpdateAsset(ctx.Request().Context(), id, usecase.UpdateAssetRequest{
		Name:        req.Name,
		Description: req.Description,
		Tags:        req.Tags,
	})
	if err != nil {
		return s.errorJSON(ctx, err)
	}

	return ctx.JSON(http.StatusOK, toAsset(updated))
}

func (s *Server) DeleteAsset(ctx echo.Context) error {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return assetNotFound(ctx)
	}

	if err := s.server.DeleteAsset(ctx.Request().Context(), id); err != nil {
		return s.errorJSON(ctx, err)
	}

	return ctx.JSON(http.StatusOK, map[string]bool{"ok": true})
}

func assetNotFound(ctx echo.Context) error {
	return ctx.JSON(http.StatusNotFound, ErrorRes{Error: "asset not found"})
}
