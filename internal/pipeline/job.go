package pipeline

import (
	"slices"
	"sort"

	"github.com/goccy/go-yaml"
)

// Dependency is an entry of the needs or dependencies of a job. It is
// implemented by *Job, *JobCollection and *Need.
type Dependency interface {
	dependency()
}

type JobConfig struct {
	Name  string
	Stage string

	Scripts      []string
	Image        *Image
	AllowFailure AllowFailure
	Variables    map[string]string
	Tags         []string
	// Rules, Needs and Dependencies are unset when nil. An empty, non-nil
	// slice renders as an empty list.
	Rules        []*Rule
	Needs        []Dependency
	Dependencies []Dependency
	Cache        *Cache
	Artifacts    *Artifacts
}

// Job is a single unit of work. Its name is the composite of the name and
// stage given at construction, extended by every collection it is hoisted
// through.
type Job struct {
	name  string
	stage string

	scripts      []string
	image        *Image
	allowFailure AllowFailure
	variables    map[string]string
	tags         []string
	rules        []*Rule
	needs        []Dependency
	dependencies []Dependency
	cache        *Cache
	artifacts    *Artifacts

	// parents are the collections this job was added to. They are only
	// walked to resolve instance names.
	parents []*JobCollection
	// original is the job this one was copied from.
	original *Job
}

func NewJob(cfg JobConfig) (*Job, error) {
	if cfg.Name == "" && cfg.Stage == "" {
		return nil, newConfigurationError("job", "at least one of name or stage must be set")
	}
	return &Job{
		name:         joinNonEmpty(nameSeparator, cfg.Name, cfg.Stage),
		stage:        cfg.Stage,
		scripts:      slices.Clone(cfg.Scripts),
		image:        cfg.Image,
		allowFailure: cfg.AllowFailure.copy(),
		variables:    cloneVariables(cfg.Variables),
		tags:         appendUnique(nil, cfg.Tags...),
		rules:        slices.Clone(cfg.Rules),
		needs:        slices.Clone(cfg.Needs),
		dependencies: slices.Clone(cfg.Dependencies),
		cache:        cfg.Cache.Copy(),
		artifacts:    cfg.Artifacts.Copy(),
	}, nil
}

func MustNewJob(cfg JobConfig) *Job {
	j, err := NewJob(cfg)
	if err != nil {
		panic(err)
	}
	return j
}

func (j *Job) dependency() {}

func (j *Job) addParent(c *JobCollection) {
	if !slices.Contains(j.parents, c) {
		j.parents = append(j.parents, c)
	}
}

func (j *Job) populate(map[*JobCollection]bool) ([]*Job, error) {
	return []*Job{j.Copy()}, nil
}

func (j *Job) Name() string {
	return j.name
}

func (j *Job) Stage() string {
	if j.stage == "" {
		return DefaultStage
	}
	return j.stage
}

func (j *Job) Scripts() []string {
	return slices.Clone(j.scripts)
}

func (j *Job) Image() *Image {
	return j.image
}

func (j *Job) AllowFailure() AllowFailure {
	return j.allowFailure.copy()
}

func (j *Job) Variables() map[string]string {
	return cloneVariables(j.variables)
}

func (j *Job) Tags() []string {
	return slices.Clone(j.tags)
}

func (j *Job) Rules() []*Rule {
	return slices.Clone(j.rules)
}

func (j *Job) Needs() []Dependency {
	return slices.Clone(j.needs)
}

func (j *Job) Dependencies() []Dependency {
	return slices.Clone(j.dependencies)
}

func (j *Job) Cache() *Cache {
	return j.cache
}

func (j *Job) Artifacts() *Artifacts {
	return j.artifacts
}

// Original returns the job this job was copied from.
func (j *Job) Original() (*Job, error) {
	if j.original == nil {
		return nil, &UnresolvedReferenceError{Job: j.name}
	}
	return j.original, nil
}

// ExtendName prepends part to the name of the job.
func (j *Job) ExtendName(part string) *Job {
	if part != "" {
		j.name = joinNonEmpty(nameSeparator, part, j.name)
	}
	return j
}

// ExtendStage prepends part to both the stage and the name of the job.
func (j *Job) ExtendStage(part string) *Job {
	if part != "" {
		j.ExtendName(part)
		j.stage = joinNonEmpty(nameSeparator, part, j.stage)
	}
	return j
}

func (j *Job) AppendScripts(scripts ...string) *Job {
	j.scripts = append(j.scripts, scripts...)
	return j
}

func (j *Job) PrependScripts(scripts ...string) *Job {
	j.scripts = append(slices.Clone(scripts), j.scripts...)
	return j
}

func (j *Job) AssignImage(image *Image) *Job {
	j.image = image
	return j
}

func (j *Job) AssignAllowFailure(af AllowFailure) *Job {
	j.allowFailure = af.copy()
	return j
}

// AddVariables merges vars into the variables of the job, overwriting
// existing keys.
func (j *Job) AddVariables(vars map[string]string) *Job {
	j.variables = mergeVariables(j.variables, vars)
	return j
}

func (j *Job) AddTags(tags ...string) *Job {
	j.tags = appendUnique(j.tags, tags...)
	return j
}

func (j *Job) AppendRules(rules ...*Rule) *Job {
	j.rules = append(j.rules, rules...)
	return j
}

func (j *Job) PrependRules(rules ...*Rule) *Job {
	j.rules = append(slices.Clone(rules), j.rules...)
	return j
}

func (j *Job) AddNeeds(needs ...Dependency) *Job {
	j.needs = appendDependencies(j.needs, needs)
	return j
}

// AssignNeeds replaces the needs of the job. Calling it without arguments
// makes the job start without waiting for earlier stages.
func (j *Job) AssignNeeds(needs ...Dependency) *Job {
	j.needs = append([]Dependency{}, needs...)
	return j
}

func (j *Job) AddDependencies(dependencies ...Dependency) *Job {
	j.dependencies = appendDependencies(j.dependencies, dependencies)
	return j
}

// AssignDependencies replaces the dependencies of the job. Calling it without
// arguments makes the job download no artifacts.
func (j *Job) AssignDependencies(dependencies ...Dependency) *Job {
	j.dependencies = append([]Dependency{}, dependencies...)
	return j
}

func (j *Job) AssignCache(cache *Cache) *Job {
	j.cache = cache.Copy()
	return j
}

func (j *Job) AssignArtifacts(artifacts *Artifacts) *Job {
	j.artifacts = artifacts.Copy()
	return j
}

// Copy returns an independent copy of the job that remembers j as its
// original. Referenced jobs and collections in needs and dependencies are
// not copied.
func (j *Job) Copy() *Job {
	return &Job{
		name:         j.name,
		stage:        j.stage,
		scripts:      slices.Clone(j.scripts),
		image:        j.image,
		allowFailure: j.allowFailure.copy(),
		variables:    cloneVariables(j.variables),
		tags:         slices.Clone(j.tags),
		rules:        slices.Clone(j.rules),
		needs:        slices.Clone(j.needs),
		dependencies: slices.Clone(j.dependencies),
		cache:        j.cache.Copy(),
		artifacts:    j.artifacts.Copy(),
		original:     j,
	}
}

// instanceNames returns every name the job resolves to across all
// collections it was added to. A job outside any collection resolves to its
// own name.
func (j *Job) instanceNames() []string {
	if len(j.parents) == 0 {
		return []string{j.name}
	}
	names := stringSet{}
	for _, parent := range j.parents {
		for _, prefix := range parent.instanceNamesOf(j) {
			names.add(joinNonEmpty(nameSeparator, prefix, j.name))
		}
	}
	return names.sorted()
}

// Render returns the configuration of the job. Jobs and collections in needs
// and dependencies are resolved to the names of all their instances.
func (j *Job) Render() (yaml.MapSlice, error) {
	rendered := yaml.MapSlice{}
	if j.image != nil {
		rendered = append(rendered, yaml.MapItem{Key: "image", Value: j.image.Render()})
	}
	if !j.allowFailure.Untouched() {
		rendered = append(rendered, yaml.MapItem{Key: "allow_failure", Value: j.allowFailure.render()})
	}
	if j.dependencies != nil {
		dependencies, err := j.renderDependencies()
		if err != nil {
			return nil, err
		}
		rendered = append(rendered, yaml.MapItem{Key: "dependencies", Value: dependencies})
	}
	if j.needs != nil {
		needs, err := j.renderNeeds()
		if err != nil {
			return nil, err
		}
		rendered = append(rendered, yaml.MapItem{Key: "needs", Value: needs})
	}
	rendered = append(rendered,
		yaml.MapItem{Key: "stage", Value: j.Stage()},
		yaml.MapItem{Key: "script", Value: append([]string{}, j.scripts...)},
	)
	if len(j.variables) > 0 {
		rendered = append(rendered, yaml.MapItem{Key: "variables", Value: renderVariables(j.variables)})
	}
	if len(j.rules) > 0 {
		rules := make([]yaml.MapSlice, 0, len(j.rules))
		for _, r := range j.rules {
			rules = append(rules, r.Render())
		}
		rendered = append(rendered, yaml.MapItem{Key: "rules", Value: rules})
	}
	if j.cache != nil {
		rendered = append(rendered, yaml.MapItem{Key: "cache", Value: j.cache.Render()})
	}
	if j.artifacts != nil && !j.artifacts.Empty() {
		rendered = append(rendered, yaml.MapItem{Key: "artifacts", Value: j.artifacts.Render()})
	}
	if len(j.tags) > 0 {
		rendered = append(rendered, yaml.MapItem{Key: "tags", Value: slices.Clone(j.tags)})
	}
	return rendered, nil
}

func (j *Job) renderNeeds() ([]yaml.MapSlice, error) {
	var needs []*Need
	for i, d := range j.needs {
		switch d := d.(type) {
		case *Need:
			if d == nil {
				return nil, j.dependencyTypeError("needs", i, d)
			}
			needs = append(needs, d)
		case *Job, *JobCollection:
			names, err := resolveInstanceNames(d)
			if err != nil {
				return nil, err
			}
			if names == nil {
				return nil, j.dependencyTypeError("needs", i, d)
			}
			for _, name := range names {
				needs = append(needs, &Need{job: name, artifacts: true})
			}
		default:
			return nil, j.dependencyTypeError("needs", i, d)
		}
	}

	seen := make(map[Need]struct{}, len(needs))
	unique := make([]*Need, 0, len(needs))
	for _, n := range needs {
		if _, ok := seen[*n]; ok {
			continue
		}
		seen[*n] = struct{}{}
		unique = append(unique, n)
	}
	sort.SliceStable(unique, func(a, b int) bool {
		return unique[a].job < unique[b].job
	})

	rendered := make([]yaml.MapSlice, 0, len(unique))
	for _, n := range unique {
		rendered = append(rendered, n.Render())
	}
	return rendered, nil
}

func (j *Job) renderDependencies() ([]string, error) {
	names := stringSet{}
	for i, d := range j.dependencies {
		switch d := d.(type) {
		case *Need:
			if d == nil || !d.local() {
				return nil, j.dependencyTypeError("dependencies", i, d)
			}
			names.add(d.job)
		case *Job, *JobCollection:
			resolved, err := resolveInstanceNames(d)
			if err != nil {
				return nil, err
			}
			if resolved == nil {
				return nil, j.dependencyTypeError("dependencies", i, d)
			}
			names.add(resolved...)
		default:
			return nil, j.dependencyTypeError("dependencies", i, d)
		}
	}
	return names.sorted(), nil
}

func (j *Job) dependencyTypeError(field string, index int, d Dependency) error {
	return &DependencyTypeError{Job: j.name, Field: field, Index: index, Value: d}
}

// resolveInstanceNames returns the instance names a job stands for, or those
// of the last jobs executed by a collection. It returns nil for nil pointers.
func resolveInstanceNames(d Dependency) ([]string, error) {
	switch d := d.(type) {
	case *Job:
		if d == nil {
			return nil, nil
		}
		return d.instanceNames(), nil
	case *JobCollection:
		if d == nil {
			return nil, nil
		}
		jobs, err := d.LastJobsExecuted()
		if err != nil {
			return nil, err
		}
		names := stringSet{}
		for _, job := range jobs {
			names.add(job.instanceNames()...)
		}
		return names.sorted(), nil
	}
	return nil, nil
}

func mergeVariables(current, vars map[string]string) map[string]string {
	if len(vars) == 0 {
		return current
	}
	merged := cloneVariables(current)
	if merged == nil {
		merged = make(map[string]string, len(vars))
	}
	for k, v := range vars {
		merged[k] = v
	}
	return merged
}

func appendDependencies(current, dependencies []Dependency) []Dependency {
	if current == nil {
		current = []Dependency{}
	}
	return append(current, dependencies...)
}
