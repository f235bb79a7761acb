// Package definition reads pipeline compositions from YAML.
//
// A document declares job templates and collections by id. Collections mount
// jobs and other collections by id, so the same template can appear at many
// places of the pipeline. Build turns a document into a pipeline.Pipeline.
package definition

import (
	"fmt"

	"github.com/goccy/go-yaml"
)

type Document struct {
	// Defaults are merged into every job. Values set on a job win.
	Defaults    *JobSpec                  `yaml:"defaults"`
	Jobs        map[string]JobSpec        `yaml:"jobs" validate:"dive"`
	Collections map[string]CollectionSpec `yaml:"collections" validate:"dive"`
	Includes    []IncludeSpec             `yaml:"includes" validate:"dive"`
	Services    []string                  `yaml:"services" validate:"dive,required"`
	Pipeline    CollectionSpec            `yaml:"pipeline"`
}

type JobSpec struct {
	Name   string   `yaml:"name"`
	Stage  string   `yaml:"stage"`
	Script []string `yaml:"script"`

	Image        *ImageSpec        `yaml:"image"`
	AllowFailure *AllowFailureSpec `yaml:"allow_failure"`
	Variables    map[string]string `yaml:"variables"`
	Tags         []string          `yaml:"tags"`
	Rules        []RuleSpec        `yaml:"rules" validate:"dive"`
	Needs        []DependencySpec  `yaml:"needs" validate:"dive"`
	Dependencies []DependencySpec  `yaml:"dependencies" validate:"dive"`
	Cache        *CacheSpec        `yaml:"cache"`
	Artifacts    *ArtifactsSpec    `yaml:"artifacts"`
}

// attributes returns the attributes a job shares with collections.
func (s JobSpec) attributes() Attributes {
	return Attributes{
		Image:        s.Image,
		AllowFailure: s.AllowFailure,
		Variables:    s.Variables,
		Tags:         s.Tags,
		Rules:        s.Rules,
		Needs:        s.Needs,
		Dependencies: s.Dependencies,
		Cache:        s.Cache,
		Artifacts:    s.Artifacts,
	}
}

// Attributes is one tier of collection attributes.
type Attributes struct {
	Image        *ImageSpec        `yaml:"image"`
	AllowFailure *AllowFailureSpec `yaml:"allow_failure"`
	Variables    map[string]string `yaml:"variables"`
	Tags         []string          `yaml:"tags"`
	Rules        []RuleSpec        `yaml:"rules" validate:"dive"`
	Needs        []DependencySpec  `yaml:"needs" validate:"dive"`
	Dependencies []DependencySpec  `yaml:"dependencies" validate:"dive"`
	Cache        *CacheSpec        `yaml:"cache"`
	Artifacts    *ArtifactsSpec    `yaml:"artifacts"`
}

type CollectionSpec struct {
	Children []ChildSpec `yaml:"children" validate:"dive"`

	PrependScripts []string   `yaml:"prepend_scripts"`
	AppendScripts  []string   `yaml:"append_scripts"`
	PrependRules   []RuleSpec `yaml:"prepend_rules" validate:"dive"`

	Image        *ImageSpec        `yaml:"image"`
	AllowFailure *AllowFailureSpec `yaml:"allow_failure"`
	Variables    map[string]string `yaml:"variables"`
	Tags         []string          `yaml:"tags"`
	Rules        []RuleSpec        `yaml:"rules" validate:"dive"`
	Needs        []DependencySpec  `yaml:"needs" validate:"dive"`
	Dependencies []DependencySpec  `yaml:"dependencies" validate:"dive"`
	Cache        *CacheSpec        `yaml:"cache"`
	Artifacts    *ArtifactsSpec    `yaml:"artifacts"`

	Initialize *Attributes `yaml:"initialize"`
	Override   *Attributes `yaml:"override"`
}

// attributes returns the attributes added directly to the collection.
func (s CollectionSpec) attributes() Attributes {
	return Attributes{
		Image:        s.Image,
		AllowFailure: s.AllowFailure,
		Variables:    s.Variables,
		Tags:         s.Tags,
		Rules:        s.Rules,
		Needs:        s.Needs,
		Dependencies: s.Dependencies,
		Cache:        s.Cache,
		Artifacts:    s.Artifacts,
	}
}

// ChildSpec mounts a job or a collection by id.
type ChildSpec struct {
	Job        string `yaml:"job" validate:"required_without=Collection,excluded_with=Collection"`
	Collection string `yaml:"collection" validate:"required_without=Job"`
	Name       string `yaml:"name"`
	Stage      string `yaml:"stage"`
}

// DependencySpec references a job or collection by id, or names a need
// explicitly.
type DependencySpec struct {
	Job        string    `yaml:"job"`
	Collection string    `yaml:"collection"`
	Need       *NeedSpec `yaml:"need"`
}

type NeedSpec struct {
	Job       string `yaml:"job"`
	Project   string `yaml:"project"`
	Ref       string `yaml:"ref"`
	Pipeline  string `yaml:"pipeline"`
	Artifacts *bool  `yaml:"artifacts"`
}

// ImageSpec is either a plain image reference or a mapping.
type ImageSpec struct {
	Name       string   `yaml:"name" validate:"required"`
	Tag        string   `yaml:"tag"`
	Entrypoint []string `yaml:"entrypoint"`
}

func (s *ImageSpec) UnmarshalYAML(b []byte) error {
	if name, ok := scalarString(b); ok {
		*s = ImageSpec{Name: name}
		return nil
	}
	type plain ImageSpec
	var p plain
	if err := yaml.UnmarshalWithOptions(b, &p, yaml.DisallowUnknownField()); err != nil {
		return err
	}
	*s = ImageSpec(p)
	return nil
}

// AllowFailureSpec is either a boolean or a mapping with exit codes.
type AllowFailureSpec struct {
	Allowed   *bool
	ExitCodes []int
}

func (s *AllowFailureSpec) UnmarshalYAML(b []byte) error {
	var raw any
	if err := yaml.Unmarshal(b, &raw); err != nil {
		return err
	}
	if allowed, ok := raw.(bool); ok {
		*s = AllowFailureSpec{Allowed: &allowed}
		return nil
	}
	var codes struct {
		ExitCodes []int `yaml:"exit_codes"`
	}
	if err := yaml.UnmarshalWithOptions(b, &codes, yaml.DisallowUnknownField()); err != nil {
		return err
	}
	*s = AllowFailureSpec{ExitCodes: codes.ExitCodes}
	return nil
}

type RuleSpec struct {
	If           string            `yaml:"if"`
	When         string            `yaml:"when" validate:"omitempty,oneof=always delayed manual never on_failure on_success"`
	AllowFailure bool              `yaml:"allow_failure"`
	Changes      []string          `yaml:"changes"`
	Exists       []string          `yaml:"exists"`
	Variables    map[string]string `yaml:"variables"`
}

type CacheKeySpec struct {
	Key    string
	Files  []string
	Prefix string
}

// UnmarshalYAML accepts a plain key or a mapping with files and prefix.
func (s *CacheKeySpec) UnmarshalYAML(b []byte) error {
	if key, ok := scalarString(b); ok {
		*s = CacheKeySpec{Key: key}
		return nil
	}
	var files struct {
		Files  []string `yaml:"files"`
		Prefix string   `yaml:"prefix"`
	}
	if err := yaml.UnmarshalWithOptions(b, &files, yaml.DisallowUnknownField()); err != nil {
		return err
	}
	*s = CacheKeySpec{Files: files.Files, Prefix: files.Prefix}
	return nil
}

type CacheSpec struct {
	Key       *CacheKeySpec `yaml:"key"`
	Paths     []string      `yaml:"paths"`
	Untracked *bool         `yaml:"untracked"`
	When      string        `yaml:"when" validate:"omitempty,oneof=always on_failure on_success"`
	Policy    string        `yaml:"policy" validate:"omitempty,oneof=pull-push pull push"`
}

type ArtifactsSpec struct {
	Name      string            `yaml:"name"`
	Paths     []string          `yaml:"paths"`
	Exclude   []string          `yaml:"exclude"`
	ExpireIn  string            `yaml:"expire_in"`
	ExposeAs  string            `yaml:"expose_as"`
	Public    *bool             `yaml:"public"`
	Reports   map[string]string `yaml:"reports"`
	Untracked *bool             `yaml:"untracked"`
	When      string            `yaml:"when" validate:"omitempty,oneof=always on_failure on_success"`
}

// IncludeSpec sets exactly one of local, file, remote or template. Project is
// required with file.
type IncludeSpec struct {
	Local    string     `yaml:"local"`
	Project  string     `yaml:"project" validate:"required_with=File"`
	File     StringList `yaml:"file"`
	Ref      string     `yaml:"ref"`
	Remote   string     `yaml:"remote" validate:"omitempty,url"`
	Template string     `yaml:"template"`
}

// StringList is a list of strings that may be written as a single string.
type StringList []string

func (l *StringList) UnmarshalYAML(b []byte) error {
	if single, ok := scalarString(b); ok {
		*l = StringList{single}
		return nil
	}
	var list []string
	if err := yaml.Unmarshal(b, &list); err != nil {
		return err
	}
	*l = list
	return nil
}

// scalarString reports whether b holds a scalar and returns it as a string.
func scalarString(b []byte) (string, bool) {
	var raw any
	if err := yaml.Unmarshal(b, &raw); err != nil {
		return "", false
	}
	switch v := raw.(type) {
	case nil, map[string]any, map[any]any, yaml.MapSlice, []any:
		return "", false
	case string:
		return v, true
	default:
		return fmt.Sprint(v), true
	}
}
