package server

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/librarease/assetcatalog/internal/usecase"
)

type Tag struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	// Only set on the detail view.
	Assets []string `json:"assets,omitempty"`
}

func toTag(t usecase.Tag) Tag {
	return Tag{
		ID:   t.ID.String(),
		Name: t.Name,
	}
}

func (s *Server) ListTags(ctx echo.Context) error {
	tags, err := s.server.ListTags(ctx.Request().Context())
	if err != nil {
		return s.errorJSON(ctx, err)
	}

	list := make([]Tag, 0, len(tags))
	for _, t := range tags {
		list = append(list, toTag(t))
	}

	return ctx.JSON(http.StatusOK, list)
}

func (s *Server) GetTagByID(ctx echo.Context) error {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return tagNotFound(ctx)
	}

	tag, err := s.server.GetTagByID(ctx.Request().Context(), id)
	if err != nil {
		return s.errorJSON(ctx, err)
	}

	res := toTag(tag)
	res.Assets = make([]string, 0, len(tag.AssetIDs))
	for _, aid := range tag.AssetIDs {
		res.Assets = append(res.Assets, aid.String())
	}

	return ctx.JSON(http.StatusOK, res)
}

type TagRequest struct {
	Name string `json:"name"`
}

// CreateTag answers 201 when the tag is new and 200 when it already existed.
func (s *Server) CreateTag(ctx echo.Context) error {
	var req TagRequest
	if err := ctx.Bind(&req); err != nil {
		return badRequest(ctx, err)
	}

	tag, created, err := s.server.CreateTag(ctx.Request().Context(), req.Name)
	if err != nil {
		return s.errorJSON(ctx, err)
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	return ctx.JSON(status, toTag(tag))
}

func (s *Server) RenameTag(ctx echo.Context) error {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return tagNotFound(ctx)
	}

	var req TagRequest
	if err := ctx.Bind(&req); err != nil {
		return badRequest(ctx, err)
	}

	tag, err := s.server.RenameTag(ctx.Request().Context(), id, req.Name)
	if err != nil {
		return s.errorJSON(ctx, err)
	}

	return ctx.JSON(http.StatusOK, toTag(tag))
}

func (s *Server) DeleteTag(ctx echo.Context) error {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return tagNotFound(ctx)
	}

	if err := s.server.DeleteTag(ctx.Request().Context(), id); err != nil {
		return s.errorJSON(ctx, err)
	}

	return ctx.JSON(http.StatusOK, map[string]bool{"ok": true})
}

func tagNotFound(ctx echo.Context) error {
	return ctx.JSON(http.StatusNotFound, ErrorRes{Error: "tag not found"})
}
