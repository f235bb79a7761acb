package pipeline

import (
	"net/url"

	"github.com/goccy/go-yaml"
)

// Include is a configuration file included into the pipeline.
type Include interface {
	Render() yaml.MapSlice
}

// IncludeLocal includes a file of the same repository.
type IncludeLocal struct {
	Local string
}

func (i *IncludeLocal) Render() yaml.MapSlice {
	return yaml.MapSlice{{Key: "local", Value: i.Local}}
}

// IncludeFile includes files of another project. Ref is optional.
type IncludeFile struct {
	Project string
	Files   []string
	Ref     string
}

func (i *IncludeFile) Render() yaml.MapSlice {
	rendered := yaml.MapSlice{{Key: "project", Value: i.Project}}
	if len(i.Files) == 1 {
		rendered = append(rendered, yaml.MapItem{Key: "file", Value: i.Files[0]})
	} else {
		rendered = append(rendered, yaml.MapItem{Key: "file", Value: append([]string{}, i.Files...)})
	}
	if i.Ref != "" {
		rendered = append(rendered, yaml.MapItem{Key: "ref", Value: i.Ref})
	}
	return rendered
}

type IncludeRemote struct {
	remote string
}

// NewIncludeRemote includes a file by its http(s) URL.
func NewIncludeRemote(remote string) (*IncludeRemote, error) {
	u, err := url.Parse(remote)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, newConfigurationError("include", "remote %q is not a valid http(s) URL", remote)
	}
	return &IncludeRemote{remote: remote}, nil
}

func (i *IncludeRemote) Render() yaml.MapSlice {
	return yaml.MapSlice{{Key: "remote", Value: i.remote}}
}

// IncludeTemplate includes one of the templates shipped with GitLab.
type IncludeTemplate struct {
	Template string
}

func (i *IncludeTemplate) Render() yaml.MapSlice {
	return yaml.MapSlice{{Key: "template", Value: i.Template}}
}
