package pipeline

import "github.com/goccy/go-yaml"

// Service is a container image started next to every job of the pipeline.
type Service struct {
	name string
}

func NewService(name string) *Service {
	return &Service{name: name}
}

func (s *Service) Name() string {
	return s.name
}

func (s *Service) Render() yaml.MapSlice {
	return yaml.MapSlice{{Key: "name", Value: s.name}}
}
