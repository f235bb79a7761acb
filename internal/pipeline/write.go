package pipeline

import (
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-yaml"
)

// DefaultOutputFile is the file name GitLab child pipelines conventionally
// read the generated configuration from.
const DefaultOutputFile = "generated-config.yml"

// MarshalYAML renders the pipeline and serializes it.
func (p *Pipeline) MarshalYAML() ([]byte, error) {
	rendered, err := p.Render()
	if err != nil {
		return nil, err
	}
	b, err := yaml.MarshalWithOptions(rendered, yaml.IndentSequence(true))
	if err != nil {
		return nil, fmt.Errorf("marshal pipeline: %w", err)
	}
	return b, nil
}

func (p *Pipeline) WriteYAML(w io.Writer) error {
	b, err := p.MarshalYAML()
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

// WriteFile writes the pipeline to path, or to DefaultOutputFile if path is
// empty.
func (p *Pipeline) WriteFile(path string) error {
	if path == "" {
		path = DefaultOutputFile
	}
	b, err := p.MarshalYAML()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write pipeline to %s: %w", path, err)
	}
	return nil
}
