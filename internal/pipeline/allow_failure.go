package pipeline

import (
	"slices"

	"github.com/goccy/go-yaml"
)

type allowFailureKind int

const (
	allowFailureUntouched allowFailureKind = iota
	allowFailureBool
	allowFailureExitCodes
)

// AllowFailure is either untouched (the zero value), a boolean or a list of
// exit codes that do not fail the pipeline.
type AllowFailure struct {
	kind      allowFailureKind
	allowed   bool
	exitCodes []int
}

var AllowFailureUntouched = AllowFailure{}

func AllowFailureBool(allowed bool) AllowFailure {
	return AllowFailure{kind: allowFailureBool, allowed: allowed}
}

func AllowFailureExitCodes(codes ...int) AllowFailure {
	return AllowFailure{kind: allowFailureExitCodes, exitCodes: slices.Clone(codes)}
}

func (af AllowFailure) Untouched() bool {
	return af.kind == allowFailureUntouched
}

func (af AllowFailure) ExitCodes() []int {
	return slices.Clone(af.exitCodes)
}

func (af AllowFailure) copy() AllowFailure {
	af.exitCodes = slices.Clone(af.exitCodes)
	return af
}

// render returns nil for untouched values.
func (af AllowFailure) render() any {
	switch af.kind {
	case allowFailureBool:
		return af.allowed
	case allowFailureExitCodes:
		return yaml.MapSlice{{Key: "exit_codes", Value: slices.Clone(af.exitCodes)}}
	}
	return nil
}
