package definition

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"dario.cat/mergo"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-yaml"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Load reads and parses the document at path.
func Load(path string) (*Document, error) {
	b, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read definition: %w", err)
	}
	doc, err := Parse(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// Parse decodes and validates a document and merges the defaults into its
// jobs. Unknown keys are rejected.
func Parse(b []byte) (*Document, error) {
	var doc Document
	if err := yaml.UnmarshalWithOptions(b, &doc, yaml.DisallowUnknownField()); err != nil {
		return nil, newDefinitionError("", fmt.Errorf("decode: %w", err))
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	if err := doc.applyDefaults(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Validate checks the structure of the document. References between ids are
// checked by Build.
func (d *Document) Validate() error {
	err := validate.Struct(d)
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return newDefinitionError("", err)
	}
	errs := make([]error, 0, len(validationErrors))
	for _, fe := range validationErrors {
		path := strings.TrimPrefix(fe.Namespace(), "Document.")
		errs = append(errs, newDefinitionError(path, fmt.Errorf("failed %q validation", fe.Tag())))
	}
	return errors.Join(errs...)
}

func (d *Document) applyDefaults() error {
	if d.Defaults == nil {
		return nil
	}
	defaults := *d.Defaults
	defaults.Name, defaults.Stage = "", ""
	for id, job := range d.Jobs {
		if err := mergo.Merge(&job, defaults, mergo.WithoutDereference); err != nil {
			return newDefinitionError("jobs."+id, fmt.Errorf("merge defaults: %w", err))
		}
		d.Jobs[id] = job
	}
	return nil
}
