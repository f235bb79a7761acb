package service

import "errors"

var ErrInvalidDefinition = errors.New("invalid definition")

// InvalidDefinitionError wraps an error caused by the content of a
// definition rather than by the server.
type InvalidDefinitionError struct {
	Err error
}

func (e *InvalidDefinitionError) Error() string {
	return e.Err.Error()
}

func (e *InvalidDefinitionError) Unwrap() []error {
	return []error{ErrInvalidDefinition, e.Err}
}
