package testutil

import (
	"github.com/haatos/pipeline-composer/internal/service"
	"github.com/stretchr/testify/mock"
)

type MockRenderService struct {
	mock.Mock
}

func (m *MockRenderService) Render(definition []byte) (*service.Rendered, error) {
	args := m.Called(definition)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Rendered), args.Error(1)
}

func (m *MockRenderService) Validate(definition []byte) (*service.Rendered, error) {
	args := m.Called(definition)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Rendered), args.Error(1)
}
