package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/haatos/pipeline-composer/internal"
	"github.com/haatos/pipeline-composer/internal/store"
	"github.com/labstack/echo/v4"
)

func SetupCompositionRoutes(g *echo.Group, compositionService CompositionServicer) {
	h := NewCompositionHandler(compositionService)
	compositionsGroup := g.Group("/compositions")
	compositionsGroup.GET("", h.GetCompositions)
	compositionsGroup.POST("", h.PostComposition)
	compositionsGroup.GET("/:composition_id", h.GetComposition)
	compositionsGroup.PUT("/:composition_id", h.PutComposition)
	compositionsGroup.DELETE("/:composition_id", h.DeleteComposition)
	compositionsGroup.GET("/:composition_id/renders", h.GetRenders)
	compositionsGroup.POST("/:composition_id/renders", h.PostRender)
	compositionsGroup.GET("/:composition_id/renders/:render_id", h.GetRender)
}

type CompositionWriter interface {
	CreateComposition(context.Context, string, string, string) (*store.Composition, error)
	UpdateComposition(context.Context, string, string, string, string) error
	DeleteComposition(context.Context, string) error
	RenderComposition(context.Context, string) (*store.Render, error)
}

type CompositionReader interface {
	GetCompositionByID(context.Context, string) (*store.Composition, error)
	ListCompositions(context.Context) ([]*store.Composition, error)
	ListRenders(context.Context, string) ([]*store.Render, error)
	GetRenderByID(context.Context, string) (*store.Render, error)
}

type CompositionServicer interface {
	CompositionWriter
	CompositionReader
}

type CompositionHandler struct {
	compositionService CompositionServicer
}

func NewCompositionHandler(compositionService CompositionServicer) *CompositionHandler {
	return &CompositionHandler{compositionService}
}

func (h *CompositionHandler) GetCompositions(c echo.Context) error {
	compositions, err := h.compositionService.ListCompositions(c.Request().Context())
	if err != nil {
		return serviceError(err, "unable to list compositions")
	}
	if compositions == nil {
		compositions = []*store.Composition{}
	}
	return c.JSON(http.StatusOK, compositions)
}

func (h *CompositionHandler) PostComposition(c echo.Context) error {
	cp, err := bindComposition(c)
	if err != nil {
		return err
	}
	composition, err := h.compositionService.CreateComposition(
		c.Request().Context(), cp.Name, cp.Description, cp.Definition,
	)
	if err != nil {
		return serviceError(err, "unable to create composition")
	}
	return c.JSON(http.StatusCreated, composition)
}

func (h *CompositionHandler) GetComposition(c echo.Context) error {
	cp := new(CompositionParams)
	if err := c.Bind(cp); err != nil {
		return newError(err, http.StatusBadRequest, "invalid composition id")
	}
	composition, err := h.compositionService.GetCompositionByID(c.Request().Context(), cp.CompositionID)
	if err != nil {
		return serviceError(err, "unable to get composition")
	}
	return c.JSON(http.StatusOK, composition)
}

func (h *CompositionHandler) PutComposition(c echo.Context) error {
	cp, err := bindComposition(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	if err := h.compositionService.UpdateComposition(
		ctx, cp.CompositionID, cp.Name, cp.Description, cp.Definition,
	); err != nil {
		return serviceError(err, "unable to update composition")
	}
	composition, err := h.compositionService.GetCompositionByID(ctx, cp.CompositionID)
	if err != nil {
		return serviceError(err, "unable to get composition")
	}
	return c.JSON(http.StatusOK, composition)
}

func (h *CompositionHandler) DeleteComposition(c echo.Context) error {
	cp := new(CompositionParams)
	if err := c.Bind(cp); err != nil {
		return newError(err, http.StatusBadRequest, "invalid composition id")
	}
	if err := h.compositionService.DeleteComposition(c.Request().Context(), cp.CompositionID); err != nil {
		return serviceError(err, "unable to delete composition")
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *CompositionHandler) GetRenders(c echo.Context) error {
	rp := new(RenderParams)
	if err := c.Bind(rp); err != nil {
		return newError(err, http.StatusBadRequest, "invalid composition id")
	}
	renders, err := h.compositionService.ListRenders(c.Request().Context(), rp.CompositionID)
	if err != nil {
		return serviceError(err, "unable to list renders")
	}
	if renders == nil {
		renders = []*store.Render{}
	}
	return c.JSON(http.StatusOK, renders)
}

func (h *CompositionHandler) PostRender(c echo.Context) error {
	rp := new(RenderParams)
	if err := c.Bind(rp); err != nil {
		return newError(err, http.StatusBadRequest, "invalid composition id")
	}
	r, err := h.compositionService.RenderComposition(c.Request().Context(), rp.CompositionID)
	if err != nil {
		return serviceError(err, "unable to render composition")
	}
	return c.JSON(http.StatusCreated, r)
}

// GetRender returns the rendered document of a single render.
func (h *CompositionHandler) GetRender(c echo.Context) error {
	rp := new(RenderParams)
	if err := c.Bind(rp); err != nil {
		return newError(err, http.StatusBadRequest, "invalid render id")
	}
	r, err := h.compositionService.GetRenderByID(c.Request().Context(), rp.RenderID)
	if err != nil {
		return serviceError(err, "unable to get render")
	}
	if r.RenderCompositionID != rp.CompositionID {
		return newError(nil, http.StatusNotFound, "not found")
	}
	return c.Blob(http.StatusOK, internal.YAMLMIMEType, []byte(r.Output))
}

func bindComposition(c echo.Context) (*CompositionParams, error) {
	cp := new(CompositionParams)
	if err := c.Bind(cp); err != nil {
		return nil, newError(err, http.StatusBadRequest, "invalid composition data")
	}
	cp.Name = strings.TrimSpace(cp.Name)
	if cp.Name == "" {
		return nil, newError(nil, http.StatusBadRequest, "name is required")
	}
	if strings.TrimSpace(cp.Definition) == "" {
		return nil, newError(nil, http.StatusBadRequest, "definition is required")
	}
	return cp, nil
}
