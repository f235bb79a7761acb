package predefined

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGet(t *testing.T) {
	t.Run("success - value from resolver", func(t *testing.T) {
		// arrange
		restore := Use(MapResolver{"CI_PIPELINE_ID": "4711"})
		defer restore()

		// act
		id := CIPipelineID()

		// assert
		assert.Equal(t, "4711", id)
	})

	t.Run("success - missing variable resolves to expression", func(t *testing.T) {
		// arrange
		restore := Use(MapResolver{})
		defer restore()

		// act
		dir := CIProjectDir()

		// assert
		assert.Equal(t, "${CI_PROJECT_DIR}", dir)
	})

	t.Run("success - restore brings back previous resolver", func(t *testing.T) {
		// arrange
		restoreOuter := Use(MapResolver{"CI_DEFAULT_BRANCH": "main"})
		defer restoreOuter()
		restoreInner := Use(MapResolver{"CI_DEFAULT_BRANCH": "develop"})

		// act
		inner := CIDefaultBranch()
		restoreInner()
		outer := CIDefaultBranch()

		// assert
		assert.Equal(t, "develop", inner)
		assert.Equal(t, "main", outer)
	})

	t.Run("success - environment resolver", func(t *testing.T) {
		// arrange
		t.Setenv("CI_PROJECT_PATH", "group/project")
		restore := Use(EnvResolver{})
		defer restore()

		// act
		path := CIProjectPath()

		// assert
		assert.Equal(t, "group/project", path)
	})
}

func TestCICommitRefSlug(t *testing.T) {
	t.Run("success - explicit slug", func(t *testing.T) {
		// arrange
		restore := Use(MapResolver{"CI_COMMIT_REF_SLUG": "feature-x", "CI_COMMIT_REF_NAME": "Feature/X"})
		defer restore()

		// act
		s := CICommitRefSlug()

		// assert
		assert.Equal(t, "feature-x", s)
	})

	t.Run("success - slug of ref name", func(t *testing.T) {
		// arrange
		restore := Use(MapResolver{"CI_COMMIT_REF_NAME": "Feature/Add_Login"})
		defer restore()

		// act
		s := CICommitRefSlug()

		// assert
		assert.Equal(t, "feature-add-login", s)
	})

	t.Run("success - long ref name is truncated", func(t *testing.T) {
		// arrange
		restore := Use(MapResolver{"CI_COMMIT_REF_NAME": "a-very-long-branch-name-that-keeps-going-and-going-beyond-the-limit"})
		defer restore()

		// act
		s := CICommitRefSlug()

		// assert
		assert.LessOrEqual(t, len(s), 63)
		assert.Equal(t, "a-very-long-branch-name-that-keeps-going-and-going-beyond-the-l", s)
	})

	t.Run("success - no ref resolves to expression", func(t *testing.T) {
		// arrange
		restore := Use(MapResolver{})
		defer restore()

		// act
		s := CICommitRefSlug()

		// assert
		assert.Equal(t, "${CI_COMMIT_REF_SLUG}", s)
	})
}
