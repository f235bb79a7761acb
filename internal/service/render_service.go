package service

import (
	"errors"
	"fmt"
	"sync"

	"github.com/goccy/go-yaml"
	"github.com/haatos/pipeline-composer/internal/definition"
	"github.com/haatos/pipeline-composer/internal/pipeline"
	"github.com/haatos/pipeline-composer/internal/predefined"
)

// Rendered is a rendered definition.
type Rendered struct {
	Output []byte
	Jobs   int
	Stages []string
}

// resolveMu serializes renders since the predefined resolver is process wide.
var resolveMu sync.Mutex

type RenderService struct {
	resolver predefined.Resolver
}

// NewRenderService returns a service resolving predefined variables with
// resolver. A nil resolver resolves nothing so every variable renders as its
// runtime expression.
func NewRenderService(resolver predefined.Resolver) *RenderService {
	if resolver == nil {
		resolver = predefined.MapResolver{}
	}
	return &RenderService{resolver}
}

// Render parses, builds and renders definition.
func (s *RenderService) Render(definitionYAML []byte) (*Rendered, error) {
	resolveMu.Lock()
	defer resolveMu.Unlock()
	restore := predefined.Use(s.resolver)
	defer restore()

	doc, err := definition.Parse(definitionYAML)
	if err != nil {
		return nil, invalidDefinition(err)
	}
	p, err := doc.Build()
	if err != nil {
		return nil, invalidDefinition(err)
	}
	return render(p)
}

// Validate parses and builds definition and reports its jobs and stages
// without serializing it.
func (s *RenderService) Validate(definitionYAML []byte) (*Rendered, error) {
	rendered, err := s.Render(definitionYAML)
	if err != nil {
		return nil, err
	}
	rendered.Output = nil
	return rendered, nil
}

func render(p *pipeline.Pipeline) (*Rendered, error) {
	document, err := p.Render()
	if err != nil {
		return nil, invalidDefinition(err)
	}
	rendered := &Rendered{}
	for _, item := range document {
		switch item.Key {
		case "include", "services":
		case "stages":
			rendered.Stages, _ = item.Value.([]string)
		default:
			rendered.Jobs++
		}
	}
	rendered.Output, err = yaml.MarshalWithOptions(document, yaml.IndentSequence(true))
	if err != nil {
		return nil, fmt.Errorf("marshal rendered pipeline: %w", err)
	}
	return rendered, nil
}

func invalidDefinition(err error) error {
	if isDefinitionError(err) {
		return &InvalidDefinitionError{Err: err}
	}
	return err
}

func isDefinitionError(err error) bool {
	return errors.Is(err, definition.ErrInvalid) ||
		errors.Is(err, pipeline.ErrConfiguration) ||
		errors.Is(err, pipeline.ErrDependencyType) ||
		errors.Is(err, pipeline.ErrDuplicateJobName) ||
		errors.Is(err, pipeline.ErrUnresolvedReference)
}
