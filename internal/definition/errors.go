package definition

import (
	"errors"
	"fmt"
)

var (
	ErrInvalid          = errors.New("invalid definition")
	ErrUnknownReference = errors.New("unknown reference")
	ErrCycle            = errors.New("collection cycle")
)

// DefinitionError locates a problem in a document. Path uses the YAML keys of
// the document, e.g. collections.linux.children[0].
type DefinitionError struct {
	Path string
	Err  error
}

func (e *DefinitionError) Error() string {
	if e.Path == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *DefinitionError) Unwrap() []error {
	return []error{ErrInvalid, e.Err}
}

func newDefinitionError(path string, err error) *DefinitionError {
	return &DefinitionError{Path: path, Err: err}
}
