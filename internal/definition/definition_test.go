package definition

import (
	"os"
	"testing"

	"github.com/goccy/go-yaml"
	"github.com/haatos/pipeline-composer/internal/pipeline"
	"github.com/haatos/pipeline-composer/internal/predefined"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	restore := predefined.Use(predefined.MapResolver{
		"CI_PROJECT_DIR":     "/builds/group/project",
		"CI_COMMIT_REF_SLUG": "main",
	})
	code := m.Run()
	restore()
	os.Exit(code)
}

func valueOf(ms yaml.MapSlice, key string) any {
	for _, item := range ms {
		if item.Key == key {
			return item.Value
		}
	}
	return nil
}

func keysOf(ms yaml.MapSlice) []string {
	keys := make([]string, 0, len(ms))
	for _, item := range ms {
		keys = append(keys, item.Key.(string))
	}
	return keys
}

func TestLoad(t *testing.T) {
	t.Run("success - composition renders every mount", func(t *testing.T) {
		// arrange
		doc, err := Load("testdata/composition.yml")
		require.NoError(t, err)

		// act
		p, err := doc.Build()
		require.NoError(t, err)
		rendered, err := p.Render()

		// assert
		require.NoError(t, err)
		assert.Equal(t, []string{
			"include", "services", "stages",
			"linux-build-build", "linux-test-test",
			"windows-build-build", "windows-test-test",
			"deploy-deploy",
		}, keysOf(rendered))
		assert.Equal(t, []string{"build", "test", "deploy"}, valueOf(rendered, "stages"))

		deploy := valueOf(rendered, "deploy-deploy").(yaml.MapSlice)
		assert.Equal(t, []yaml.MapSlice{
			{{Key: "job", Value: "linux-test-test"}, {Key: "artifacts", Value: true}},
			{{Key: "job", Value: "windows-test-test"}, {Key: "artifacts", Value: true}},
		}, valueOf(deploy, "needs"))
		assert.Equal(t, yaml.MapSlice{{Key: "name", Value: "alpine:3.20"}}, valueOf(deploy, "image"))
		assert.Equal(t, []string{"docker"}, valueOf(deploy, "tags"))
		assert.Nil(t, valueOf(deploy, "cache"))

		build := valueOf(rendered, "linux-build-build").(yaml.MapSlice)
		assert.Equal(t, yaml.MapSlice{{Key: "name", Value: "golang:1.25"}}, valueOf(build, "image"))
		assert.Equal(t, yaml.MapSlice{{Key: "CGO_ENABLED", Value: "0"}}, valueOf(build, "variables"))
		assert.NotNil(t, valueOf(build, "cache"))
	})

	t.Run("failure - missing file", func(t *testing.T) {
		// act
		doc, err := Load("testdata/missing.yml")

		// assert
		assert.Nil(t, doc)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestParse(t *testing.T) {
	t.Run("success - name defaults to id", func(t *testing.T) {
		// arrange
		doc, err := Parse([]byte(`
jobs:
  lint:
    script: [golangci-lint run]
pipeline:
  children:
    - job: lint
`))
		require.NoError(t, err)

		// act
		p, err := doc.Build()
		require.NoError(t, err)
		jobs, err := p.PopulatedJobs()

		// assert
		require.NoError(t, err)
		require.Len(t, jobs, 1)
		assert.Equal(t, "lint", jobs[0].Name())
		assert.Equal(t, pipeline.DefaultStage, jobs[0].Stage())
	})

	t.Run("success - allow failure forms", func(t *testing.T) {
		// arrange
		doc, err := Parse([]byte(`
jobs:
  flaky:
    allow_failure: true
  partial:
    allow_failure:
      exit_codes: [2, 3]
`))
		require.NoError(t, err)

		// assert
		require.NotNil(t, doc.Jobs["flaky"].AllowFailure)
		assert.True(t, *doc.Jobs["flaky"].AllowFailure.Allowed)
		assert.Equal(t, []int{2, 3}, doc.Jobs["partial"].AllowFailure.ExitCodes)
	})

	t.Run("failure - unknown key", func(t *testing.T) {
		// act
		doc, err := Parse([]byte("jobz:\n  build: {}\n"))

		// assert
		assert.Nil(t, doc)
		assert.ErrorIs(t, err, ErrInvalid)
	})

	t.Run("failure - child without job or collection", func(t *testing.T) {
		// act
		doc, err := Parse([]byte(`
pipeline:
  children:
    - name: linux
`))

		// assert
		assert.Nil(t, doc)
		assert.ErrorIs(t, err, ErrInvalid)
		assert.Contains(t, err.Error(), "pipeline.children[0]")
	})

	t.Run("failure - invalid rule when", func(t *testing.T) {
		// act
		_, err := Parse([]byte(`
jobs:
  build:
    rules:
      - when: sometimes
`))

		// assert
		assert.ErrorIs(t, err, ErrInvalid)
		assert.Contains(t, err.Error(), "jobs[build].rules[0].when")
	})
}

func TestBuild(t *testing.T) {
	t.Run("failure - unknown job", func(t *testing.T) {
		// arrange
		doc, err := Parse([]byte(`
pipeline:
  children:
    - job: build
`))
		require.NoError(t, err)

		// act
		p, err := doc.Build()

		// assert
		assert.Nil(t, p)
		assert.ErrorIs(t, err, ErrUnknownReference)
		var defErr *DefinitionError
		require.ErrorAs(t, err, &defErr)
		assert.Equal(t, "pipeline.children[0]", defErr.Path)
	})

	t.Run("failure - unknown need", func(t *testing.T) {
		// arrange
		doc, err := Parse([]byte(`
jobs:
  deploy:
    needs:
      - collection: release
`))
		require.NoError(t, err)

		// act
		_, err = doc.Build()

		// assert
		assert.ErrorIs(t, err, ErrUnknownReference)
	})

	t.Run("failure - collection cycle", func(t *testing.T) {
		// arrange
		doc, err := Parse([]byte(`
collections:
  a:
    children:
      - collection: b
  b:
    children:
      - collection: a
`))
		require.NoError(t, err)

		// act
		p, err := doc.Build()

		// assert
		assert.Nil(t, p)
		assert.ErrorIs(t, err, ErrCycle)
		assert.Contains(t, err.Error(), "a -> b -> a")
	})

	t.Run("failure - need with job and collection", func(t *testing.T) {
		// arrange
		doc, err := Parse([]byte(`
jobs:
  build: {}
collections:
  go:
    children:
      - job: build
  release:
    needs:
      - job: build
        collection: go
`))
		require.NoError(t, err)

		// act
		_, err = doc.Build()

		// assert
		assert.ErrorIs(t, err, ErrInvalid)
	})

	t.Run("failure - invalid need", func(t *testing.T) {
		// arrange
		doc, err := Parse([]byte(`
jobs:
  deploy:
    needs:
      - need: {job: build, ref: develop}
`))
		require.NoError(t, err)

		// act
		_, err = doc.Build()

		// assert
		assert.ErrorIs(t, err, pipeline.ErrConfiguration)
	})

	t.Run("success - override tier", func(t *testing.T) {
		// arrange
		doc, err := Parse([]byte(`
jobs:
  build:
    stage: build
    tags: [linux]
collections:
  windows:
    children:
      - job: build
    override:
      tags: [windows]
pipeline:
  children:
    - collection: windows
`))
		require.NoError(t, err)

		// act
		p, err := doc.Build()
		require.NoError(t, err)
		jobs, err := p.PopulatedJobs()

		// assert
		require.NoError(t, err)
		assert.Equal(t, []string{"windows"}, jobs[0].Tags())
	})
}

func TestRuleSpecRoundTrip(t *testing.T) {
	t.Run("success - rendered rule parses back to an equal rule", func(t *testing.T) {
		// arrange
		rule := pipeline.MustNewRule(pipeline.RuleConfig{
			If:           `$CI_PIPELINE_SOURCE == "merge_request_event"`,
			When:         pipeline.WhenManual,
			AllowFailure: true,
			Changes:      []string{"go.mod", "go.sum"},
			Variables:    map[string]string{"DEPLOY": "true"},
		})
		b, err := yaml.Marshal(rule.Render())
		require.NoError(t, err)

		// act
		var spec RuleSpec
		require.NoError(t, yaml.Unmarshal(b, &spec))
		parsed, err := spec.build()

		// assert
		require.NoError(t, err)
		assert.True(t, rule.IsEqual(parsed))
	})
}
