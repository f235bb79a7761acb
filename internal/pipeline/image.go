package pipeline

import (
	"slices"

	"github.com/goccy/go-yaml"
	"github.com/google/go-cmp/cmp"
)

// Image is a container image. It is immutable; the With* methods return
// modified copies.
type Image struct {
	name       string
	tag        string
	entrypoint []string
}

func NewImage(name string) *Image {
	return &Image{name: name}
}

func (i *Image) Name() string {
	return i.name
}

func (i *Image) Tag() string {
	return i.tag
}

func (i *Image) Entrypoint() []string {
	return slices.Clone(i.entrypoint)
}

// WithTag returns a copy of the image with the given tag.
func (i *Image) WithTag(tag string) *Image {
	cp := i.copy()
	cp.tag = tag
	return cp
}

// WithEntrypoint returns a copy of the image with the given entrypoint.
func (i *Image) WithEntrypoint(entrypoint ...string) *Image {
	cp := i.copy()
	cp.entrypoint = slices.Clone(entrypoint)
	return cp
}

func (i *Image) copy() *Image {
	return &Image{
		name:       i.name,
		tag:        i.tag,
		entrypoint: slices.Clone(i.entrypoint),
	}
}

func (i *Image) reference() string {
	if i.tag == "" {
		return i.name
	}
	return i.name + ":" + i.tag
}

func (i *Image) Render() yaml.MapSlice {
	rendered := yaml.MapSlice{{Key: "name", Value: i.reference()}}
	if len(i.entrypoint) > 0 {
		rendered = append(rendered, yaml.MapItem{Key: "entrypoint", Value: slices.Clone(i.entrypoint)})
	}
	return rendered
}

func (i *Image) IsEqual(other *Image) bool {
	if i == nil || other == nil {
		return i == other
	}
	return cmp.Equal(i.Render(), other.Render())
}
