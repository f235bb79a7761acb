package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/haatos/pipeline-composer/internal"
	"github.com/haatos/pipeline-composer/internal/service"
	"github.com/labstack/echo/v4"
)

func SetupRenderRoutes(g *echo.Group, renderService RenderServicer) {
	h := NewRenderHandler(renderService)
	g.POST("/render", h.PostRender)
	g.POST("/validate", h.PostValidate)
}

type RenderServicer interface {
	Render([]byte) (*service.Rendered, error)
	Validate([]byte) (*service.Rendered, error)
}

type RenderHandler struct {
	renderService RenderServicer
}

func NewRenderHandler(renderService RenderServicer) *RenderHandler {
	return &RenderHandler{renderService}
}

type ValidationResponse struct {
	Valid  bool     `json:"valid"`
	Jobs   int      `json:"jobs"`
	Stages []string `json:"stages"`
	Error  string   `json:"error,omitempty"`
}

// PostRender renders the definition in the request body.
func (h *RenderHandler) PostRender(c echo.Context) error {
	body, err := readDefinition(c)
	if err != nil {
		return err
	}
	rendered, err := h.renderService.Render(body)
	if err != nil {
		return serviceError(err, "unable to render definition")
	}
	return c.Blob(http.StatusOK, internal.YAMLMIMEType, rendered.Output)
}

func (h *RenderHandler) PostValidate(c echo.Context) error {
	body, err := readDefinition(c)
	if err != nil {
		return err
	}
	rendered, err := h.renderService.Validate(body)
	if errors.Is(err, service.ErrInvalidDefinition) {
		return c.JSON(http.StatusUnprocessableEntity, ValidationResponse{
			Stages: []string{},
			Error:  err.Error(),
		})
	}
	if err != nil {
		return serviceError(err, "unable to validate definition")
	}
	return c.JSON(http.StatusOK, ValidationResponse{
		Valid:  true,
		Jobs:   rendered.Jobs,
		Stages: rendered.Stages,
	})
}

func readDefinition(c echo.Context) ([]byte, error) {
	body, err := io.ReadAll(c.Request().Body)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return nil, he
	}
	if err != nil {
		return nil, newError(err, http.StatusBadRequest, "unable to read request body")
	}
	if len(body) == 0 {
		return nil, newError(nil, http.StatusBadRequest, "definition is empty")
	}
	return body, nil
}
