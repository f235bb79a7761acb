package pipeline

import (
	"testing"

	"github.com/goccy/go-yaml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewNeed(t *testing.T) {
	t.Run("success - defaults", func(t *testing.T) {
		// act
		n, err := NewNeed(NeedConfig{Job: "build", Project: "group/lib"})

		// assert
		require.NoError(t, err)
		assert.Equal(t, yaml.MapSlice{
			{Key: "job", Value: "build"},
			{Key: "project", Value: "group/lib"},
			{Key: "ref", Value: "main"},
			{Key: "artifacts", Value: true},
		}, n.Render())
	})

	t.Run("success - upstream pipeline without artifacts", func(t *testing.T) {
		// arrange
		artifacts := false

		// act
		n, err := NewNeed(NeedConfig{Pipeline: "42", Artifacts: &artifacts})

		// assert
		require.NoError(t, err)
		assert.Equal(t, yaml.MapSlice{
			{Key: "pipeline", Value: "42"},
			{Key: "artifacts", Value: false},
		}, n.Render())
	})

	t.Run("failure - invalid combinations", func(t *testing.T) {
		for _, cfg := range []NeedConfig{
			{},
			{Job: "build", Pipeline: "42"},
			{Project: "group/lib", Pipeline: "42"},
			{Job: "build", Ref: "develop"},
			{Pipeline: "100"},
		} {
			// act
			n, err := NewNeed(cfg)

			// assert
			assert.Nil(t, n)
			assert.ErrorIs(t, err, ErrConfiguration, "%+v", cfg)
		}
	})

	t.Run("success - equality", func(t *testing.T) {
		// arrange
		a := MustNewNeed(NeedConfig{Job: "build"})
		b := MustNewNeed(NeedConfig{Job: "build"})
		c := MustNewNeed(NeedConfig{Job: "lint"})

		// assert
		assert.True(t, a.IsEqual(b))
		assert.False(t, a.IsEqual(c))
	})
}

func TestRule(t *testing.T) {
	t.Run("success - render with defaults", func(t *testing.T) {
		// act
		r, err := NewRule(RuleConfig{If: `$CI_COMMIT_BRANCH == "main"`, Changes: []string{"go.mod"}})

		// assert
		require.NoError(t, err)
		assert.Equal(t, yaml.MapSlice{
			{Key: "if", Value: `$CI_COMMIT_BRANCH == "main"`},
			{Key: "changes", Value: []string{"go.mod"}},
			{Key: "when", Value: "on_success"},
			{Key: "allow_failure", Value: false},
		}, r.Render())
	})

	t.Run("success - never returns a modified copy", func(t *testing.T) {
		// arrange
		r := MustNewRule(RuleConfig{If: "$A", When: WhenManual})

		// act
		never := r.Never()

		// assert
		assert.Equal(t, WhenNever, never.When())
		assert.Equal(t, WhenManual, r.When())
		assert.Equal(t, "$A", never.If())
	})

	t.Run("failure - unknown when", func(t *testing.T) {
		// act
		r, err := NewRule(RuleConfig{When: "sometimes"})

		// assert
		assert.Nil(t, r)
		assert.ErrorIs(t, err, ErrConfiguration)
	})
}

func TestCache(t *testing.T) {
	t.Run("success - default key is the ref slug", func(t *testing.T) {
		// act
		c, err := NewCache(CacheConfig{Paths: []string{"/builds/group/project/.cache", "vendor"}})

		// assert
		require.NoError(t, err)
		assert.Equal(t, yaml.MapSlice{
			{Key: "key", Value: "main"},
			{Key: "paths", Value: []string{"./.cache", "./vendor"}},
		}, c.Render())
	})

	t.Run("success - key is normalized", func(t *testing.T) {
		// act
		ck, err := NewCacheKey(CacheKeyConfig{Key: "feature/v1.2"})

		// assert
		require.NoError(t, err)
		assert.Equal(t, "feature_v1-2", ck.Key())
	})

	t.Run("success - file based key", func(t *testing.T) {
		// arrange
		ck := MustNewCacheKey(CacheKeyConfig{Files: []string{"go.sum"}, Prefix: "go"})

		// act
		c, err := NewCache(CacheConfig{Key: ck, Policy: CachePolicyPull, When: WhenAlways})

		// assert
		require.NoError(t, err)
		assert.Equal(t, yaml.MapSlice{
			{Key: "key", Value: yaml.MapSlice{{Key: "files", Value: []string{"go.sum"}}, {Key: "prefix", Value: "go"}}},
			{Key: "paths", Value: []string{}},
			{Key: "when", Value: "always"},
			{Key: "policy", Value: "pull"},
		}, c.Render())
	})

	t.Run("failure - invalid configuration", func(t *testing.T) {
		// act
		_, keyErr := NewCacheKey(CacheKeyConfig{Key: "a", Files: []string{"go.sum"}})
		_, prefixErr := NewCacheKey(CacheKeyConfig{Prefix: "go"})
		_, whenErr := NewCache(CacheConfig{When: WhenManual})
		_, policyErr := NewCache(CacheConfig{Policy: "pull-only"})

		// assert
		assert.ErrorIs(t, keyErr, ErrConfiguration)
		assert.ErrorIs(t, prefixErr, ErrConfiguration)
		assert.ErrorIs(t, whenErr, ErrConfiguration)
		assert.ErrorIs(t, policyErr, ErrConfiguration)
	})
}

func TestArtifacts(t *testing.T) {
	t.Run("success - render", func(t *testing.T) {
		// arrange
		public := false
		a, err := NewArtifacts(ArtifactsConfig{
			Paths:    []string{"bin", "./bin"},
			ExpireIn: "1 week",
			Public:   &public,
			Reports:  map[ArtifactsReport]string{ReportJUnit: "report.xml", ReportDotenv: "build.env"},
			When:     WhenAlways,
		})
		require.NoError(t, err)

		// act
		rendered := a.Render()

		// assert
		assert.Equal(t, yaml.MapSlice{
			{Key: "paths", Value: []string{"./bin"}},
			{Key: "expire_in", Value: "1 week"},
			{Key: "public", Value: false},
			{Key: "reports", Value: yaml.MapSlice{
				{Key: "dotenv", Value: "build.env"},
				{Key: "junit", Value: "report.xml"},
			}},
			{Key: "when", Value: "always"},
		}, rendered)
	})

	t.Run("success - empty artifacts are not rendered", func(t *testing.T) {
		// arrange
		a := MustNewArtifacts(ArtifactsConfig{Name: "unused"})
		j := MustNewJob(JobConfig{Name: "build", Artifacts: a})

		// act
		rendered, err := j.Render()

		// assert
		require.NoError(t, err)
		assert.True(t, a.Empty())
		assert.Nil(t, a.Render())
		assert.Nil(t, valueOf(rendered, "artifacts"))
	})

	t.Run("failure - unknown report", func(t *testing.T) {
		// act
		a, err := NewArtifacts(ArtifactsConfig{Reports: map[ArtifactsReport]string{"coverage": "c.xml"}})

		// assert
		assert.Nil(t, a)
		assert.ErrorIs(t, err, ErrConfiguration)
	})
}

func TestIncludes(t *testing.T) {
	t.Run("success - file include with one and many files", func(t *testing.T) {
		// arrange
		one := &IncludeFile{Project: "group/ci", Files: []string{"go.yml"}, Ref: "v1"}
		many := &IncludeFile{Project: "group/ci", Files: []string{"go.yml", "lint.yml"}}

		// assert
		assert.Equal(t, yaml.MapSlice{
			{Key: "project", Value: "group/ci"},
			{Key: "file", Value: "go.yml"},
			{Key: "ref", Value: "v1"},
		}, one.Render())
		assert.Equal(t, yaml.MapSlice{
			{Key: "project", Value: "group/ci"},
			{Key: "file", Value: []string{"go.yml", "lint.yml"}},
		}, many.Render())
	})

	t.Run("failure - remote include needs an http url", func(t *testing.T) {
		for _, remote := range []string{"ftp://example.com/ci.yml", "ci.yml", "https://"} {
			// act
			i, err := NewIncludeRemote(remote)

			// assert
			assert.Nil(t, i)
			assert.ErrorIs(t, err, ErrConfiguration, remote)
		}
	})
}

func TestImage(t *testing.T) {
	t.Run("success - with methods return copies", func(t *testing.T) {
		// arrange
		base := NewImage("golang")

		// act
		tagged := base.WithTag("1.25").WithEntrypoint("")

		// assert
		assert.Equal(t, "", base.Tag())
		assert.Equal(t, yaml.MapSlice{
			{Key: "name", Value: "golang:1.25"},
			{Key: "entrypoint", Value: []string{""}},
		}, tagged.Render())
		assert.True(t, tagged.IsEqual(NewImage("golang").WithTag("1.25").WithEntrypoint("")))
	})
}
