// Package predefined resolves GitLab predefined CI variables.
//
// Values come from a Resolver. A variable that cannot be resolved becomes the
// expression ${NAME}, which GitLab expands when the job runs.
package predefined

import (
	"os"
	"strings"
	"sync"

	"github.com/gosimple/slug"
)

// Resolver looks up the value of a variable.
type Resolver interface {
	Lookup(name string) (string, bool)
}

// EnvResolver reads variables from the process environment.
type EnvResolver struct{}

func (EnvResolver) Lookup(name string) (string, bool) {
	return os.LookupEnv(name)
}

// MapResolver resolves variables from a fixed map.
type MapResolver map[string]string

func (m MapResolver) Lookup(name string) (string, bool) {
	v, ok := m[name]
	return v, ok
}

var (
	mu       sync.RWMutex
	resolver Resolver = EnvResolver{}
)

// Use makes r the resolver used by the package functions and returns a
// function restoring the previous one.
func Use(r Resolver) (restore func()) {
	mu.Lock()
	previous := resolver
	resolver = r
	mu.Unlock()
	return func() {
		mu.Lock()
		resolver = previous
		mu.Unlock()
	}
}

func lookup(name string) (string, bool) {
	mu.RLock()
	defer mu.RUnlock()
	v, ok := resolver.Lookup(name)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// Get returns the value of name or the expression ${name}.
func Get(name string) string {
	if v, ok := lookup(name); ok {
		return v
	}
	return expression(name)
}

func expression(name string) string {
	return "${" + name + "}"
}

const maxSlugLength = 63

func CIProjectDir() string {
	return Get("CI_PROJECT_DIR")
}

func CIPipelineID() string {
	return Get("CI_PIPELINE_ID")
}

func CICommitRefName() string {
	return Get("CI_COMMIT_REF_NAME")
}

func CIProjectPath() string {
	return Get("CI_PROJECT_PATH")
}

func CIDefaultBranch() string {
	return Get("CI_DEFAULT_BRANCH")
}

func CIRegistryImage() string {
	return Get("CI_REGISTRY_IMAGE")
}

// CICommitRefSlug returns CI_COMMIT_REF_SLUG, or a slug of CI_COMMIT_REF_NAME
// built the way GitLab does: lowercased, at most 63 characters, with
// everything but 0-9 and a-z replaced by -.
func CICommitRefSlug() string {
	if v, ok := lookup("CI_COMMIT_REF_SLUG"); ok {
		return v
	}
	ref, ok := lookup("CI_COMMIT_REF_NAME")
	if !ok {
		return expression("CI_COMMIT_REF_SLUG")
	}
	s := strings.ReplaceAll(slug.Make(ref), "_", "-")
	if len(s) > maxSlugLength {
		s = s[:maxSlugLength]
	}
	return strings.Trim(s, "-")
}
