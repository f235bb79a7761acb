package pipeline

import (
	"slices"

	"github.com/goccy/go-yaml"
)

// Pipeline is the root collection. It renders the complete document.
type Pipeline struct {
	*JobCollection

	includes []Include
	services []*Service
}

func NewPipeline() *Pipeline {
	return &Pipeline{JobCollection: NewJobCollection()}
}

func (p *Pipeline) AddIncludes(includes ...Include) *Pipeline {
	for _, include := range includes {
		if include == nil {
			p.errs = append(p.errs, newConfigurationError("pipeline", "include must not be nil"))
			continue
		}
		p.includes = append(p.includes, include)
	}
	return p
}

func (p *Pipeline) AddServices(services ...*Service) *Pipeline {
	for _, service := range services {
		if service == nil {
			p.errs = append(p.errs, newConfigurationError("pipeline", "service must not be nil"))
			continue
		}
		p.services = append(p.services, service)
	}
	return p
}

func (p *Pipeline) Includes() []Include {
	return slices.Clone(p.includes)
}

func (p *Pipeline) Services() []*Service {
	return slices.Clone(p.services)
}

// Render populates the pipeline and returns the document: includes and
// services if any, the stages in order of first appearance, then every job
// under its name.
func (p *Pipeline) Render() (yaml.MapSlice, error) {
	jobs, err := p.PopulatedJobs()
	if err != nil {
		return nil, err
	}

	rendered := yaml.MapSlice{}
	if len(p.includes) > 0 {
		includes := make([]yaml.MapSlice, 0, len(p.includes))
		for _, include := range p.includes {
			includes = append(includes, include.Render())
		}
		rendered = append(rendered, yaml.MapItem{Key: "include", Value: includes})
	}
	if len(p.services) > 0 {
		services := make([]yaml.MapSlice, 0, len(p.services))
		for _, service := range p.services {
			services = append(services, service.Render())
		}
		rendered = append(rendered, yaml.MapItem{Key: "services", Value: services})
	}

	stages := []string{}
	for _, job := range jobs {
		stages = appendUnique(stages, job.Stage())
	}
	rendered = append(rendered, yaml.MapItem{Key: "stages", Value: stages})

	names := make(map[string]struct{}, len(jobs))
	for _, job := range jobs {
		if _, ok := names[job.Name()]; ok {
			return nil, &DuplicateJobNameError{Name: job.Name()}
		}
		names[job.Name()] = struct{}{}

		renderedJob, err := job.Render()
		if err != nil {
			return nil, err
		}
		rendered = append(rendered, yaml.MapItem{Key: job.Name(), Value: renderedJob})
	}
	return rendered, nil
}

// Stages returns the stages of the populated pipeline in order of first
// appearance.
func (p *Pipeline) Stages() ([]string, error) {
	jobs, err := p.PopulatedJobs()
	if err != nil {
		return nil, err
	}
	stages := []string{}
	for _, job := range jobs {
		stages = appendUnique(stages, job.Stage())
	}
	return stages, nil
}
