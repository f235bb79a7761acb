package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/haatos/pipeline-composer/internal/store"
)

type UUIDGenerator interface {
	GenerateUUID() string
}

func NewUUIDGen() *UUIDGen {
	return &UUIDGen{}
}

type UUIDGen struct{}

func (ug *UUIDGen) GenerateUUID() string {
	return uuid.NewString()
}

type Renderer interface {
	Render([]byte) (*Rendered, error)
	Validate([]byte) (*Rendered, error)
}

type CompositionService struct {
	compositionStore store.CompositionStore
	renderStore      store.RenderStore
	renderer         Renderer
	uuidGenerator    UUIDGenerator
}

func NewCompositionService(
	compositionStore store.CompositionStore,
	renderStore store.RenderStore,
	renderer Renderer,
	uuidGenerator UUIDGenerator,
) *CompositionService {
	return &CompositionService{compositionStore, renderStore, renderer, uuidGenerator}
}

// CreateComposition stores definition after checking that it renders.
func (s *CompositionService) CreateComposition(
	ctx context.Context,
	name, description, definition string,
) (*store.Composition, error) {
	if _, err := s.renderer.Validate([]byte(definition)); err != nil {
		return nil, err
	}
	id := s.uuidGenerator.GenerateUUID()
	return s.compositionStore.CreateComposition(ctx, id, name, description, definition)
}

func (s *CompositionService) GetCompositionByID(
	ctx context.Context,
	id string,
) (*store.Composition, error) {
	return s.compositionStore.ReadCompositionByID(ctx, id)
}

func (s *CompositionService) UpdateComposition(
	ctx context.Context,
	id, name, description, definition string,
) error {
	if _, err := s.renderer.Validate([]byte(definition)); err != nil {
		return err
	}
	return s.compositionStore.UpdateComposition(ctx, id, name, description, definition)
}

func (s *CompositionService) DeleteComposition(ctx context.Context, id string) error {
	return s.compositionStore.DeleteComposition(ctx, id)
}

func (s *CompositionService) ListCompositions(ctx context.Context) ([]*store.Composition, error) {
	return s.compositionStore.ListCompositions(ctx)
}

// RenderComposition renders the stored composition id and records the
// result in its render history.
func (s *CompositionService) RenderComposition(ctx context.Context, id string) (*store.Render, error) {
	c, err := s.compositionStore.ReadCompositionByID(ctx, id)
	if err != nil {
		return nil, err
	}
	rendered, err := s.renderer.Render([]byte(c.Definition))
	if err != nil {
		return nil, err
	}
	r, err := s.renderStore.CreateRender(
		ctx,
		s.uuidGenerator.GenerateUUID(),
		c.CompositionID,
		string(rendered.Output),
		int64(rendered.Jobs),
	)
	if err != nil {
		return nil, err
	}
	slog.Info("composition rendered",
		"composition_id", c.CompositionID,
		"render_id", r.RenderID,
		"jobs", r.JobCount,
	)
	return r, nil
}

// ListRenders returns the render history of composition id, newest first.
func (s *CompositionService) ListRenders(ctx context.Context, id string) ([]*store.Render, error) {
	if _, err := s.compositionStore.ReadCompositionByID(ctx, id); err != nil {
		return nil, err
	}
	return s.renderStore.ListRendersByCompositionID(ctx, id)
}

func (s *CompositionService) GetRenderByID(ctx context.Context, id string) (*store.Render, error) {
	return s.renderStore.ReadRenderByID(ctx, id)
}

// DeleteExpiredRenders removes renders older than retention.
func (s *CompositionService) DeleteExpiredRenders(
	ctx context.Context,
	retention time.Duration,
) (int64, error) {
	return s.renderStore.DeleteRendersBefore(ctx, time.Now().UTC().Add(-retention))
}
