package pipeline

import (
	"slices"

	"github.com/goccy/go-yaml"
	"github.com/google/go-cmp/cmp"
)

type RuleConfig struct {
	If string
	// When defaults to WhenOnSuccess.
	When         When
	AllowFailure bool
	Changes      []string
	Exists       []string
	Variables    map[string]string
}

// Rule decides whether a job is added to a pipeline. Rules are immutable.
type Rule struct {
	ifStatement  string
	when         When
	allowFailure bool
	changes      []string
	exists       []string
	variables    map[string]string
}

func NewRule(cfg RuleConfig) (*Rule, error) {
	when := cfg.When
	if when == "" {
		when = WhenOnSuccess
	}
	if !when.valid() {
		return nil, newConfigurationError("rule", "unknown when %q", cfg.When)
	}
	return &Rule{
		ifStatement:  cfg.If,
		when:         when,
		allowFailure: cfg.AllowFailure,
		changes:      slices.Clone(cfg.Changes),
		exists:       slices.Clone(cfg.Exists),
		variables:    cloneVariables(cfg.Variables),
	}, nil
}

func MustNewRule(cfg RuleConfig) *Rule {
	r, err := NewRule(cfg)
	if err != nil {
		panic(err)
	}
	return r
}

func (r *Rule) If() string {
	return r.ifStatement
}

func (r *Rule) When() When {
	return r.when
}

func (r *Rule) AllowFailure() bool {
	return r.allowFailure
}

// Never returns a copy of the rule that excludes the job.
func (r *Rule) Never() *Rule {
	cp := r.copy()
	cp.when = WhenNever
	return cp
}

func (r *Rule) copy() *Rule {
	return &Rule{
		ifStatement:  r.ifStatement,
		when:         r.when,
		allowFailure: r.allowFailure,
		changes:      slices.Clone(r.changes),
		exists:       slices.Clone(r.exists),
		variables:    cloneVariables(r.variables),
	}
}

func (r *Rule) Render() yaml.MapSlice {
	rendered := yaml.MapSlice{}
	if r.ifStatement != "" {
		rendered = append(rendered, yaml.MapItem{Key: "if", Value: r.ifStatement})
	}
	if len(r.changes) > 0 {
		rendered = append(rendered, yaml.MapItem{Key: "changes", Value: slices.Clone(r.changes)})
	}
	if len(r.exists) > 0 {
		rendered = append(rendered, yaml.MapItem{Key: "exists", Value: slices.Clone(r.exists)})
	}
	if len(r.variables) > 0 {
		rendered = append(rendered, yaml.MapItem{Key: "variables", Value: renderVariables(r.variables)})
	}
	return append(rendered,
		yaml.MapItem{Key: "when", Value: string(r.when)},
		yaml.MapItem{Key: "allow_failure", Value: r.allowFailure},
	)
}

func (r *Rule) IsEqual(other *Rule) bool {
	if r == nil || other == nil {
		return r == other
	}
	return cmp.Equal(r.Render(), other.Render())
}
