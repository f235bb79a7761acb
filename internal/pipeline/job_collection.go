package pipeline

import (
	"errors"
	"slices"
)

// Child is anything a JobCollection can hold: a *Job or a *JobCollection.
type Child interface {
	populate(visiting map[*JobCollection]bool) ([]*Job, error)
	addParent(c *JobCollection)
}

type childEntry struct {
	mount Mount
	child Child
}

// JobCollection groups jobs and nested collections. Attributes set on a
// collection are applied to copies of its jobs when the collection is
// populated, never to the jobs themselves.
type JobCollection struct {
	children []childEntry
	parents  []*JobCollection
	// errs are configuration errors recorded while adding children. They
	// are returned by population.
	errs []error

	prependScripts []string
	appendScripts  []string

	image        layer[*Image]
	allowFailure layer[AllowFailure]
	variables    layer[map[string]string]
	tags         layer[[]string]
	rules        layer[[]*Rule]
	prependRules []*Rule
	needs        layer[[]Dependency]
	dependencies layer[[]Dependency]
	cache        layer[*Cache]
	artifacts    layer[*Artifacts]
}

func NewJobCollection() *JobCollection {
	return &JobCollection{}
}

func (c *JobCollection) dependency() {}

func (c *JobCollection) addParent(parent *JobCollection) {
	if !slices.Contains(c.parents, parent) {
		c.parents = append(c.parents, parent)
	}
}

// AddChildren adds jobs or collections under the given mount. The same child
// may be added more than once, with different mounts.
func (c *JobCollection) AddChildren(mount Mount, children ...Child) *JobCollection {
	for _, child := range children {
		switch ch := child.(type) {
		case nil:
			c.errs = append(c.errs, newConfigurationError("job collection", "child must not be nil"))
			continue
		case *Job:
			if ch == nil {
				c.errs = append(c.errs, newConfigurationError("job collection", "child must not be nil"))
				continue
			}
		case *JobCollection:
			if ch == nil {
				c.errs = append(c.errs, newConfigurationError("job collection", "child must not be nil"))
				continue
			}
		case *Pipeline:
			c.errs = append(c.errs, newConfigurationError("job collection", "a pipeline cannot be a child"))
			continue
		}
		c.children = append(c.children, childEntry{mount: mount, child: child})
		child.addParent(c)
	}
	return c
}

func (c *JobCollection) PrependScripts(scripts ...string) *JobCollection {
	c.prependScripts = append(slices.Clone(scripts), c.prependScripts...)
	return c
}

func (c *JobCollection) AppendScripts(scripts ...string) *JobCollection {
	c.appendScripts = append(c.appendScripts, scripts...)
	return c
}

func (c *JobCollection) InitializeImage(image *Image) *JobCollection {
	c.image.initialize(image)
	return c
}

func (c *JobCollection) AssignImage(image *Image) *JobCollection {
	c.image.add(image)
	return c
}

func (c *JobCollection) OverrideImage(image *Image) *JobCollection {
	c.image.replace(image)
	return c
}

func (c *JobCollection) InitializeAllowFailure(af AllowFailure) *JobCollection {
	c.allowFailure.initialize(af)
	return c
}

func (c *JobCollection) AssignAllowFailure(af AllowFailure) *JobCollection {
	c.allowFailure.add(af)
	return c
}

func (c *JobCollection) OverrideAllowFailure(af AllowFailure) *JobCollection {
	c.allowFailure.replace(af)
	return c
}

func (c *JobCollection) InitializeVariables(vars map[string]string) *JobCollection {
	c.variables.initialize(cloneVariables(vars))
	return c
}

func (c *JobCollection) AddVariables(vars map[string]string) *JobCollection {
	c.variables.add(cloneVariables(vars))
	return c
}

func (c *JobCollection) OverrideVariables(vars map[string]string) *JobCollection {
	c.variables.replace(cloneVariables(vars))
	return c
}

func (c *JobCollection) InitializeTags(tags ...string) *JobCollection {
	c.tags.initialize(appendUnique(nil, tags...))
	return c
}

func (c *JobCollection) AddTags(tags ...string) *JobCollection {
	c.tags.add(appendUnique(nil, tags...))
	return c
}

func (c *JobCollection) OverrideTags(tags ...string) *JobCollection {
	c.tags.replace(appendUnique(nil, tags...))
	return c
}

func (c *JobCollection) InitializeRules(rules ...*Rule) *JobCollection {
	c.rules.initialize(slices.Clone(rules))
	return c
}

func (c *JobCollection) AppendRules(rules ...*Rule) *JobCollection {
	c.rules.add(slices.Clone(rules))
	return c
}

// PrependRules puts rules in front of the rules of every job, after
// initialized and appended rules were applied.
func (c *JobCollection) PrependRules(rules ...*Rule) *JobCollection {
	c.prependRules = append(slices.Clone(rules), c.prependRules...)
	return c
}

func (c *JobCollection) OverrideRules(rules ...*Rule) *JobCollection {
	c.rules.replace(slices.Clone(rules))
	return c
}

// InitializeNeeds and the other needs methods only apply to the jobs of the
// first stage of the collection.
func (c *JobCollection) InitializeNeeds(needs ...Dependency) *JobCollection {
	c.needs.initialize(append([]Dependency{}, needs...))
	return c
}

func (c *JobCollection) AddNeeds(needs ...Dependency) *JobCollection {
	c.needs.add(append([]Dependency{}, needs...))
	return c
}

func (c *JobCollection) OverrideNeeds(needs ...Dependency) *JobCollection {
	c.needs.replace(append([]Dependency{}, needs...))
	return c
}

func (c *JobCollection) InitializeDependencies(dependencies ...Dependency) *JobCollection {
	c.dependencies.initialize(append([]Dependency{}, dependencies...))
	return c
}

func (c *JobCollection) AddDependencies(dependencies ...Dependency) *JobCollection {
	c.dependencies.add(append([]Dependency{}, dependencies...))
	return c
}

func (c *JobCollection) OverrideDependencies(dependencies ...Dependency) *JobCollection {
	c.dependencies.replace(append([]Dependency{}, dependencies...))
	return c
}

func (c *JobCollection) InitializeCache(cache *Cache) *JobCollection {
	c.cache.initialize(cache)
	return c
}

func (c *JobCollection) AssignCache(cache *Cache) *JobCollection {
	c.cache.add(cache)
	return c
}

func (c *JobCollection) OverrideCache(cache *Cache) *JobCollection {
	c.cache.replace(cache)
	return c
}

func (c *JobCollection) InitializeArtifacts(artifacts *Artifacts) *JobCollection {
	c.artifacts.initialize(artifacts)
	return c
}

func (c *JobCollection) AssignArtifacts(artifacts *Artifacts) *JobCollection {
	c.artifacts.add(artifacts)
	return c
}

func (c *JobCollection) OverrideArtifacts(artifacts *Artifacts) *JobCollection {
	c.artifacts.replace(artifacts)
	return c
}

// PopulatedJobs returns copies of all jobs below the collection with the
// configuration of every collection on the way applied and their names
// extended by every mount.
func (c *JobCollection) PopulatedJobs() ([]*Job, error) {
	return c.populate(map[*JobCollection]bool{})
}

func (c *JobCollection) populate(visiting map[*JobCollection]bool) ([]*Job, error) {
	if len(c.errs) > 0 {
		return nil, errors.Join(c.errs...)
	}
	if visiting[c] {
		return nil, newConfigurationError("job collection", "collection contains itself")
	}
	visiting[c] = true
	defer delete(visiting, c)

	var jobs []*Job
	for _, entry := range c.children {
		populated, err := entry.child.populate(visiting)
		if err != nil {
			return nil, err
		}
		for _, job := range populated {
			job.ExtendStage(entry.mount.Stage)
			job.ExtendName(entry.mount.Name)
		}
		jobs = append(jobs, populated...)
	}

	for _, job := range jobs {
		c.applyTo(job)
	}
	if len(jobs) > 0 {
		firstStage := jobs[0].Stage()
		for _, job := range jobs {
			if job.Stage() == firstStage {
				job.needs = c.needs.apply(job.needs, dependencyAttribute)
				job.dependencies = c.dependencies.apply(job.dependencies, dependencyAttribute)
			}
		}
	}
	return jobs, nil
}

func (c *JobCollection) applyTo(job *Job) {
	if len(c.prependScripts) > 0 || len(c.appendScripts) > 0 {
		scripts := make([]string, 0, len(c.prependScripts)+len(job.scripts)+len(c.appendScripts))
		scripts = append(scripts, c.prependScripts...)
		scripts = append(scripts, job.scripts...)
		job.scripts = append(scripts, c.appendScripts...)
	}
	job.image = c.image.apply(job.image, imageAttribute)
	job.allowFailure = c.allowFailure.apply(job.allowFailure, allowFailureAttribute)
	job.variables = c.variables.apply(job.variables, variablesAttribute)
	job.tags = c.tags.apply(job.tags, tagsAttribute)
	job.rules = c.rules.apply(job.rules, rulesAttribute)
	if len(c.prependRules) > 0 && !c.rules.hasOverride {
		job.rules = append(slices.Clone(c.prependRules), job.rules...)
	}
	job.cache = c.cache.apply(job.cache, cacheAttribute)
	job.artifacts = c.artifacts.apply(job.artifacts, artifactsAttribute)
}

// LastJobsExecuted returns the source jobs of the populated jobs in the last
// stage of the collection. Stages are ordered by first appearance.
func (c *JobCollection) LastJobsExecuted() ([]*Job, error) {
	jobs, err := c.PopulatedJobs()
	if err != nil {
		return nil, err
	}
	if len(jobs) == 0 {
		return nil, nil
	}

	var stages []string
	for _, job := range jobs {
		stages = appendUnique(stages, job.Stage())
	}
	lastStage := stages[len(stages)-1]

	var last []*Job
	for _, job := range jobs {
		if job.Stage() != lastStage {
			continue
		}
		original, err := job.Original()
		if err != nil {
			return nil, err
		}
		if !slices.Contains(last, original) {
			last = append(last, original)
		}
	}
	return last, nil
}

// instanceNamesOf returns the name prefixes child has within this collection,
// one per mount of child here and per instance name of this collection in
// its own parents.
func (c *JobCollection) instanceNamesOf(child Child) []string {
	return c.walkInstanceNames(child, map[*JobCollection]bool{})
}

func (c *JobCollection) walkInstanceNames(child Child, path map[*JobCollection]bool) []string {
	var local []string
	for _, entry := range c.children {
		if entry.child == child {
			local = appendUnique(local, entry.mount.suffix())
		}
	}

	path[c] = true
	defer delete(path, c)
	prefixes := stringSet{}
	for _, parent := range c.parents {
		if !path[parent] {
			prefixes.add(parent.walkInstanceNames(c, path)...)
		}
	}
	if len(prefixes) == 0 {
		return local
	}

	names := stringSet{}
	for _, prefix := range prefixes.sorted() {
		for _, suffix := range local {
			names.add(joinNonEmpty(nameSeparator, prefix, suffix))
		}
	}
	return names.sorted()
}
