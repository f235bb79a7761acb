package testutil

import (
	"context"

	"github.com/haatos/pipeline-composer/internal/store"
	"github.com/stretchr/testify/mock"
)

type MockCompositionService struct {
	mock.Mock
}

func (m *MockCompositionService) CreateComposition(
	ctx context.Context,
	name, description, definition string,
) (*store.Composition, error) {
	args := m.Called(ctx, name, description, definition)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*store.Composition), args.Error(1)
}

func (m *MockCompositionService) GetCompositionByID(
	ctx context.Context,
	id string,
) (*store.Composition, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*store.Composition), args.Error(1)
}

func (m *MockCompositionService) UpdateComposition(
	ctx context.Context,
	id, name, description, definition string,
) error {
	args := m.Called(ctx, id, name, description, definition)
	return args.Error(0)
}

func (m *MockCompositionService) DeleteComposition(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCompositionService) ListCompositions(ctx context.Context) ([]*store.Composition, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*store.Composition), args.Error(1)
}

func (m *MockCompositionService) RenderComposition(ctx context.Context, id string) (*store.Render, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*store.Render), args.Error(1)
}

func (m *MockCompositionService) ListRenders(ctx context.Context, id string) ([]*store.Render, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*store.Render), args.Error(1)
}

func (m *MockCompositionService) GetRenderByID(ctx context.Context, id string) (*store.Render, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*store.Render), args.Error(1)
}
