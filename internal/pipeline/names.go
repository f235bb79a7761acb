package pipeline

import (
	"slices"
	"sort"
	"strings"

	"github.com/goccy/go-yaml"
)

const (
	// DefaultStage is the stage GitLab assigns to jobs without one.
	DefaultStage = "test"

	// nameSeparator joins name and stage parts of job names and stages.
	nameSeparator = "-"
)

// joinNonEmpty joins the non-empty parts with sep.
func joinNonEmpty(sep string, parts ...string) string {
	nonEmpty := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return strings.Join(nonEmpty, sep)
}

// Mount is the name and stage a collection gives a child when adding it.
// Both are optional.
type Mount struct {
	Name  string
	Stage string
}

// suffix is the part of an instance name contributed by this mount.
func (m Mount) suffix() string {
	return joinNonEmpty(nameSeparator, m.Name, m.Stage)
}

type stringSet map[string]struct{}

func (s stringSet) add(values ...string) {
	for _, v := range values {
		s[v] = struct{}{}
	}
}

func (s stringSet) sorted() []string {
	values := make([]string, 0, len(s))
	for v := range s {
		values = append(values, v)
	}
	sort.Strings(values)
	return values
}

// appendUnique appends the values missing from ordered, keeping the order of
// first appearance.
func appendUnique(ordered []string, values ...string) []string {
	for _, v := range values {
		if !slices.Contains(ordered, v) {
			ordered = append(ordered, v)
		}
	}
	return ordered
}

func cloneVariables(vars map[string]string) map[string]string {
	if vars == nil {
		return nil
	}
	cloned := make(map[string]string, len(vars))
	for k, v := range vars {
		cloned[k] = v
	}
	return cloned
}

// renderVariables renders vars with sorted keys.
func renderVariables(vars map[string]string) yaml.MapSlice {
	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	rendered := make(yaml.MapSlice, 0, len(keys))
	for _, k := range keys {
		rendered = append(rendered, yaml.MapItem{Key: k, Value: vars[k]})
	}
	return rendered
}
