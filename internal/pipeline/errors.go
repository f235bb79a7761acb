package pipeline

import (
	"errors"
	"fmt"
)

var (
	ErrConfiguration       = errors.New("invalid configuration")
	ErrDependencyType      = errors.New("invalid dependency")
	ErrDuplicateJobName    = errors.New("duplicate job name")
	ErrUnresolvedReference = errors.New("unresolved reference")
)

// ConfigurationError reports a value object or job that was constructed with
// an invalid combination of attributes.
type ConfigurationError struct {
	Object  string
	Message string
}

func newConfigurationError(object, format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Object: object, Message: fmt.Sprintf(format, args...)}
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Object, e.Message)
}

func (e *ConfigurationError) Unwrap() error {
	return ErrConfiguration
}

// DependencyTypeError reports an entry of needs or dependencies that cannot
// be rendered.
type DependencyTypeError struct {
	Job   string
	Field string
	Index int
	Value Dependency
}

func (e *DependencyTypeError) Error() string {
	return fmt.Sprintf(
		"job %q: %s[%d]: %T cannot be rendered as a job, job collection or need",
		e.Job, e.Field, e.Index, e.Value,
	)
}

func (e *DependencyTypeError) Unwrap() error {
	return ErrDependencyType
}

type DuplicateJobNameError struct {
	Name string
}

func (e *DuplicateJobNameError) Error() string {
	return fmt.Sprintf(
		"two jobs have the name %q, give them a different name or stage when adding them to their collections",
		e.Name,
	)
}

func (e *DuplicateJobNameError) Unwrap() error {
	return ErrDuplicateJobName
}

// UnresolvedReferenceError is returned when the original of a job is
// requested but the job was never copied from another one.
type UnresolvedReferenceError struct {
	Job string
}

func (e *UnresolvedReferenceError) Error() string {
	return fmt.Sprintf("job %q is not a copy of another job", e.Job)
}

func (e *UnresolvedReferenceError) Unwrap() error {
	return ErrUnresolvedReference
}
