package definition

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/haatos/pipeline-composer/internal/pipeline"
)

type builder struct {
	doc         *Document
	pipeline    *pipeline.Pipeline
	jobs        map[string]*pipeline.Job
	collections map[string]*pipeline.JobCollection
}

// Build turns the document into a pipeline. Every job and collection id is
// built once, so an id mounted twice mounts the same object twice and needs
// on it resolve to both instances.
func (d *Document) Build() (*pipeline.Pipeline, error) {
	b := &builder{
		doc:         d,
		pipeline:    pipeline.NewPipeline(),
		jobs:        make(map[string]*pipeline.Job, len(d.Jobs)),
		collections: make(map[string]*pipeline.JobCollection, len(d.Collections)),
	}
	if err := b.checkCycles(); err != nil {
		return nil, err
	}
	// Jobs and collections are allocated before anything is wired, so that
	// needs may point at ids declared later in the document.
	for _, id := range slices.Sorted(maps.Keys(d.Jobs)) {
		j, err := b.newJob(id, d.Jobs[id])
		if err != nil {
			return nil, err
		}
		b.jobs[id] = j
	}
	for _, id := range slices.Sorted(maps.Keys(d.Collections)) {
		b.collections[id] = pipeline.NewJobCollection()
	}

	for _, id := range slices.Sorted(maps.Keys(d.Jobs)) {
		if err := b.wireJob("jobs."+id, b.jobs[id], d.Jobs[id]); err != nil {
			return nil, err
		}
	}
	for _, id := range slices.Sorted(maps.Keys(d.Collections)) {
		if err := b.wireCollection("collections."+id, b.collections[id], d.Collections[id]); err != nil {
			return nil, err
		}
	}
	if err := b.wireCollection("pipeline", b.pipeline.JobCollection, d.Pipeline); err != nil {
		return nil, err
	}

	for i, spec := range d.Includes {
		include, err := spec.build()
		if err != nil {
			return nil, newDefinitionError(fmt.Sprintf("includes[%d]", i), err)
		}
		b.pipeline.AddIncludes(include)
	}
	for _, name := range d.Services {
		b.pipeline.AddServices(pipeline.NewService(name))
	}
	return b.pipeline, nil
}

// checkCycles fails for collections that contain themselves through their
// children.
func (b *builder) checkCycles() error {
	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[string]int, len(b.doc.Collections))
	var visit func(id string, trail []string) error
	visit = func(id string, trail []string) error {
		switch state[id] {
		case visiting:
			return newDefinitionError(
				"collections."+trail[0]+".children",
				fmt.Errorf("%w: %s", ErrCycle, strings.Join(append(trail, id), " -> ")),
			)
		case done:
			return nil
		}
		state[id] = visiting
		for _, child := range b.doc.Collections[id].Children {
			if _, ok := b.doc.Collections[child.Collection]; !ok {
				continue
			}
			if err := visit(child.Collection, append(slices.Clone(trail), id)); err != nil {
				return err
			}
		}
		state[id] = done
		return nil
	}
	for _, id := range slices.Sorted(maps.Keys(b.doc.Collections)) {
		if err := visit(id, nil); err != nil {
			return err
		}
	}
	return nil
}

func (b *builder) newJob(id string, spec JobSpec) (*pipeline.Job, error) {
	path := "jobs." + id
	name := spec.Name
	if name == "" {
		name = id
	}
	cfg := pipeline.JobConfig{
		Name:      name,
		Stage:     spec.Stage,
		Scripts:   spec.Script,
		Variables: spec.Variables,
		Tags:      spec.Tags,
	}
	if spec.Image != nil {
		cfg.Image = spec.Image.build()
	}
	if spec.AllowFailure != nil {
		cfg.AllowFailure = spec.AllowFailure.value()
	}
	if spec.Rules != nil {
		rules, err := buildRules(path+".rules", spec.Rules)
		if err != nil {
			return nil, err
		}
		cfg.Rules = rules
	}
	if spec.Cache != nil {
		cache, err := spec.Cache.build()
		if err != nil {
			return nil, newDefinitionError(path+".cache", err)
		}
		cfg.Cache = cache
	}
	if spec.Artifacts != nil {
		artifacts, err := spec.Artifacts.build()
		if err != nil {
			return nil, newDefinitionError(path+".artifacts", err)
		}
		cfg.Artifacts = artifacts
	}
	j, err := pipeline.NewJob(cfg)
	if err != nil {
		return nil, newDefinitionError(path, err)
	}
	return j, nil
}

func (b *builder) wireJob(path string, j *pipeline.Job, spec JobSpec) error {
	if spec.Needs != nil {
		needs, err := b.dependencies(path+".needs", spec.Needs)
		if err != nil {
			return err
		}
		j.AssignNeeds(needs...)
	}
	if spec.Dependencies != nil {
		dependencies, err := b.dependencies(path+".dependencies", spec.Dependencies)
		if err != nil {
			return err
		}
		j.AssignDependencies(dependencies...)
	}
	return nil
}

func (b *builder) wireCollection(path string, c *pipeline.JobCollection, spec CollectionSpec) error {
	for i, childSpec := range spec.Children {
		child, err := b.child(fmt.Sprintf("%s.children[%d]", path, i), childSpec)
		if err != nil {
			return err
		}
		c.AddChildren(pipeline.Mount{Name: childSpec.Name, Stage: childSpec.Stage}, child)
	}

	if len(spec.PrependScripts) > 0 {
		c.PrependScripts(spec.PrependScripts...)
	}
	if len(spec.AppendScripts) > 0 {
		c.AppendScripts(spec.AppendScripts...)
	}
	if len(spec.PrependRules) > 0 {
		rules, err := buildRules(path+".prepend_rules", spec.PrependRules)
		if err != nil {
			return err
		}
		c.PrependRules(rules...)
	}

	if err := b.applyAttributes(path, spec.attributes(), assignTier(c)); err != nil {
		return err
	}
	if spec.Initialize != nil {
		if err := b.applyAttributes(path+".initialize", *spec.Initialize, initializeTier(c)); err != nil {
			return err
		}
	}
	if spec.Override != nil {
		if err := b.applyAttributes(path+".override", *spec.Override, overrideTier(c)); err != nil {
			return err
		}
	}
	return nil
}

func (b *builder) child(path string, spec ChildSpec) (pipeline.Child, error) {
	switch {
	case spec.Job != "" && spec.Collection != "":
		return nil, newDefinitionError(path, errors.New("job and collection are mutually exclusive"))
	case spec.Job != "":
		j, ok := b.jobs[spec.Job]
		if !ok {
			return nil, newDefinitionError(path, fmt.Errorf("%w: job %q", ErrUnknownReference, spec.Job))
		}
		return j, nil
	case spec.Collection != "":
		c, ok := b.collections[spec.Collection]
		if !ok {
			return nil, newDefinitionError(path, fmt.Errorf("%w: collection %q", ErrUnknownReference, spec.Collection))
		}
		return c, nil
	}
	return nil, newDefinitionError(path, errors.New("one of job or collection must be set"))
}

func (b *builder) dependencies(path string, specs []DependencySpec) ([]pipeline.Dependency, error) {
	dependencies := make([]pipeline.Dependency, 0, len(specs))
	for i, spec := range specs {
		entryPath := fmt.Sprintf("%s[%d]", path, i)
		set := 0
		for _, ok := range []bool{spec.Job != "", spec.Collection != "", spec.Need != nil} {
			if ok {
				set++
			}
		}
		if set != 1 {
			return nil, newDefinitionError(entryPath, errors.New("exactly one of job, collection or need must be set"))
		}

		switch {
		case spec.Job != "":
			j, ok := b.jobs[spec.Job]
			if !ok {
				return nil, newDefinitionError(entryPath, fmt.Errorf("%w: job %q", ErrUnknownReference, spec.Job))
			}
			dependencies = append(dependencies, j)
		case spec.Collection != "":
			c, ok := b.collections[spec.Collection]
			if !ok {
				return nil, newDefinitionError(entryPath, fmt.Errorf("%w: collection %q", ErrUnknownReference, spec.Collection))
			}
			dependencies = append(dependencies, c)
		default:
			n, err := pipeline.NewNeed(pipeline.NeedConfig{
				Job:       spec.Need.Job,
				Project:   spec.Need.Project,
				Ref:       spec.Need.Ref,
				Pipeline:  spec.Need.Pipeline,
				Artifacts: spec.Need.Artifacts,
			})
			if err != nil {
				return nil, newDefinitionError(entryPath+".need", err)
			}
			dependencies = append(dependencies, n)
		}
	}
	return dependencies, nil
}

// tier sets attributes on one of the three tiers of a collection.
type tier struct {
	image        func(*pipeline.Image) *pipeline.JobCollection
	allowFailure func(pipeline.AllowFailure) *pipeline.JobCollection
	variables    func(map[string]string) *pipeline.JobCollection
	tags         func(...string) *pipeline.JobCollection
	rules        func(...*pipeline.Rule) *pipeline.JobCollection
	needs        func(...pipeline.Dependency) *pipeline.JobCollection
	dependencies func(...pipeline.Dependency) *pipeline.JobCollection
	cache        func(*pipeline.Cache) *pipeline.JobCollection
	artifacts    func(*pipeline.Artifacts) *pipeline.JobCollection
}

func initializeTier(c *pipeline.JobCollection) tier {
	return tier{
		image:        c.InitializeImage,
		allowFailure: c.InitializeAllowFailure,
		variables:    c.InitializeVariables,
		tags:         c.InitializeTags,
		rules:        c.InitializeRules,
		needs:        c.InitializeNeeds,
		dependencies: c.InitializeDependencies,
		cache:        c.InitializeCache,
		artifacts:    c.InitializeArtifacts,
	}
}

func assignTier(c *pipeline.JobCollection) tier {
	return tier{
		image:        c.AssignImage,
		allowFailure: c.AssignAllowFailure,
		variables:    c.AddVariables,
		tags:         c.AddTags,
		rules:        c.AppendRules,
		needs:        c.AddNeeds,
		dependencies: c.AddDependencies,
		cache:        c.AssignCache,
		artifacts:    c.AssignArtifacts,
	}
}

func overrideTier(c *pipeline.JobCollection) tier {
	return tier{
		image:        c.OverrideImage,
		allowFailure: c.OverrideAllowFailure,
		variables:    c.OverrideVariables,
		tags:         c.OverrideTags,
		rules:        c.OverrideRules,
		needs:        c.OverrideNeeds,
		dependencies: c.OverrideDependencies,
		cache:        c.OverrideCache,
		artifacts:    c.OverrideArtifacts,
	}
}

func (b *builder) applyAttributes(path string, attrs Attributes, t tier) error {
	if attrs.Image != nil {
		t.image(attrs.Image.build())
	}
	if attrs.AllowFailure != nil {
		t.allowFailure(attrs.AllowFailure.value())
	}
	if attrs.Variables != nil {
		t.variables(attrs.Variables)
	}
	if attrs.Tags != nil {
		t.tags(attrs.Tags...)
	}
	if attrs.Rules != nil {
		rules, err := buildRules(path+".rules", attrs.Rules)
		if err != nil {
			return err
		}
		t.rules(rules...)
	}
	if attrs.Needs != nil {
		needs, err := b.dependencies(path+".needs", attrs.Needs)
		if err != nil {
			return err
		}
		t.needs(needs...)
	}
	if attrs.Dependencies != nil {
		dependencies, err := b.dependencies(path+".dependencies", attrs.Dependencies)
		if err != nil {
			return err
		}
		t.dependencies(dependencies...)
	}
	if attrs.Cache != nil {
		cache, err := attrs.Cache.build()
		if err != nil {
			return newDefinitionError(path+".cache", err)
		}
		t.cache(cache)
	}
	if attrs.Artifacts != nil {
		artifacts, err := attrs.Artifacts.build()
		if err != nil {
			return newDefinitionError(path+".artifacts", err)
		}
		t.artifacts(artifacts)
	}
	return nil
}

func buildRules(path string, specs []RuleSpec) ([]*pipeline.Rule, error) {
	rules := make([]*pipeline.Rule, 0, len(specs))
	for i, spec := range specs {
		r, err := spec.build()
		if err != nil {
			return nil, newDefinitionError(fmt.Sprintf("%s[%d]", path, i), err)
		}
		rules = append(rules, r)
	}
	return rules, nil
}

func (s *ImageSpec) build() *pipeline.Image {
	image := pipeline.NewImage(s.Name)
	if s.Tag != "" {
		image = image.WithTag(s.Tag)
	}
	if len(s.Entrypoint) > 0 {
		image = image.WithEntrypoint(s.Entrypoint...)
	}
	return image
}

func (s *AllowFailureSpec) value() pipeline.AllowFailure {
	if s.Allowed != nil {
		return pipeline.AllowFailureBool(*s.Allowed)
	}
	return pipeline.AllowFailureExitCodes(s.ExitCodes...)
}

func (s RuleSpec) build() (*pipeline.Rule, error) {
	return pipeline.NewRule(pipeline.RuleConfig{
		If:           s.If,
		When:         pipeline.When(s.When),
		AllowFailure: s.AllowFailure,
		Changes:      s.Changes,
		Exists:       s.Exists,
		Variables:    s.Variables,
	})
}

func (s *CacheSpec) build() (*pipeline.Cache, error) {
	cfg := pipeline.CacheConfig{
		Paths:     s.Paths,
		Untracked: s.Untracked,
		When:      pipeline.When(s.When),
		Policy:    pipeline.CachePolicy(s.Policy),
	}
	if s.Key != nil {
		key, err := pipeline.NewCacheKey(pipeline.CacheKeyConfig{
			Key:    s.Key.Key,
			Files:  s.Key.Files,
			Prefix: s.Key.Prefix,
		})
		if err != nil {
			return nil, err
		}
		cfg.Key = key
	}
	return pipeline.NewCache(cfg)
}

func (s *ArtifactsSpec) build() (*pipeline.Artifacts, error) {
	var reports map[pipeline.ArtifactsReport]string
	if len(s.Reports) > 0 {
		reports = make(map[pipeline.ArtifactsReport]string, len(s.Reports))
		for report, path := range s.Reports {
			reports[pipeline.ArtifactsReport(report)] = path
		}
	}
	return pipeline.NewArtifacts(pipeline.ArtifactsConfig{
		Paths:     s.Paths,
		Excludes:  s.Exclude,
		ExpireIn:  s.ExpireIn,
		ExposeAs:  s.ExposeAs,
		Name:      s.Name,
		Public:    s.Public,
		Reports:   reports,
		Untracked: s.Untracked,
		When:      pipeline.When(s.When),
	})
}

func (s IncludeSpec) build() (pipeline.Include, error) {
	set := 0
	for _, ok := range []bool{s.Local != "", len(s.File) > 0, s.Remote != "", s.Template != ""} {
		if ok {
			set++
		}
	}
	if set != 1 {
		return nil, errors.New("exactly one of local, file, remote or template must be set")
	}
	switch {
	case s.Local != "":
		return &pipeline.IncludeLocal{Local: s.Local}, nil
	case len(s.File) > 0:
		return &pipeline.IncludeFile{Project: s.Project, Files: s.File, Ref: s.Ref}, nil
	case s.Remote != "":
		remote, err := pipeline.NewIncludeRemote(s.Remote)
		if err != nil {
			return nil, err
		}
		return remote, nil
	}
	return &pipeline.IncludeTemplate{Template: s.Template}, nil
}
