package pipeline

import (
	"github.com/goccy/go-yaml"
	"github.com/google/go-cmp/cmp"
	"github.com/haatos/pipeline-composer/internal/predefined"
)

const defaultNeedRef = "main"

type NeedConfig struct {
	Job string
	// Project makes the need refer to a job of another project; Ref defaults
	// to main.
	Project  string
	Ref      string
	Pipeline string
	// Artifacts defaults to true.
	Artifacts *bool
}

// Need is an explicit reference to a job by name, optionally in another
// project or pipeline.
type Need struct {
	job       string
	project   string
	ref       string
	pipeline  string
	artifacts bool
}

func NewNeed(cfg NeedConfig) (*Need, error) {
	switch {
	case cfg.Job != "" && cfg.Pipeline != "":
		return nil, newConfigurationError("need", "job and pipeline are mutually exclusive")
	case cfg.Job == "" && cfg.Pipeline == "":
		return nil, newConfigurationError("need", "one of job or pipeline must be set")
	case cfg.Project != "" && cfg.Pipeline != "":
		return nil, newConfigurationError("need", "project and pipeline are mutually exclusive")
	case cfg.Ref != "" && cfg.Project == "":
		return nil, newConfigurationError("need", "ref requires project")
	case cfg.Pipeline != "" && cfg.Pipeline == predefined.CIPipelineID():
		return nil, newConfigurationError("need", "pipeline %q is the current pipeline", cfg.Pipeline)
	}

	n := &Need{
		job:       cfg.Job,
		project:   cfg.Project,
		ref:       cfg.Ref,
		pipeline:  cfg.Pipeline,
		artifacts: true,
	}
	if cfg.Artifacts != nil {
		n.artifacts = *cfg.Artifacts
	}
	if n.project != "" && n.ref == "" {
		n.ref = defaultNeedRef
	}
	return n, nil
}

func MustNewNeed(cfg NeedConfig) *Need {
	n, err := NewNeed(cfg)
	if err != nil {
		panic(err)
	}
	return n
}

func (n *Need) dependency() {}

func (n *Need) Job() string {
	return n.job
}

// local reports whether the need names a job of the current pipeline.
func (n *Need) local() bool {
	return n.job != "" && n.project == "" && n.pipeline == ""
}

func (n *Need) Render() yaml.MapSlice {
	rendered := yaml.MapSlice{}
	if n.job != "" {
		rendered = append(rendered, yaml.MapItem{Key: "job", Value: n.job})
	}
	if n.project != "" {
		rendered = append(rendered,
			yaml.MapItem{Key: "project", Value: n.project},
			yaml.MapItem{Key: "ref", Value: n.ref},
		)
	}
	if n.pipeline != "" {
		rendered = append(rendered, yaml.MapItem{Key: "pipeline", Value: n.pipeline})
	}
	return append(rendered, yaml.MapItem{Key: "artifacts", Value: n.artifacts})
}

func (n *Need) IsEqual(other *Need) bool {
	if n == nil || other == nil {
		return n == other
	}
	return cmp.Equal(n.Render(), other.Render())
}
