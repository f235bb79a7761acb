package store

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderSQLStore_CreateRender(t *testing.T) {
	t.Run("success - render created", func(t *testing.T) {
		// arrange
		c := generateComposition(t)
		id := uuid.NewString()

		// act
		r, err := renderStore.CreateRender(context.Background(), id, c.CompositionID, "stages: []\n", 3)

		// assert
		assert.NoError(t, err)
		assert.Equal(t, id, r.RenderID)
		assert.Equal(t, c.CompositionID, r.RenderCompositionID)
		assert.Equal(t, int64(3), r.JobCount)
		assert.False(t, r.RenderedOn.IsZero())
	})

	t.Run("failure - unknown composition", func(t *testing.T) {
		// act
		r, err := renderStore.CreateRender(context.Background(), uuid.NewString(), uuid.NewString(), "", 0)

		// assert
		assert.Error(t, err)
		assert.Nil(t, r)
	})
}

func TestRenderSQLStore_ReadRenderByID(t *testing.T) {
	t.Run("success - render found", func(t *testing.T) {
		// arrange
		c := generateComposition(t)
		expected := generateRender(t, c)

		// act
		r, err := renderStore.ReadRenderByID(context.Background(), expected.RenderID)

		// assert
		assert.NoError(t, err)
		assert.Equal(t, expected.Output, r.Output)
		assert.Equal(t, expected.JobCount, r.JobCount)
	})

	t.Run("failure - render not found", func(t *testing.T) {
		// act
		r, err := renderStore.ReadRenderByID(context.Background(), uuid.NewString())

		// assert
		assert.ErrorIs(t, err, sql.ErrNoRows)
		assert.Nil(t, r)
	})
}

func TestRenderSQLStore_ListRendersByCompositionID(t *testing.T) {
	t.Run("success - only renders of the composition", func(t *testing.T) {
		// arrange
		c := generateComposition(t)
		other := generateComposition(t)
		generateRender(t, c)
		generateRender(t, c)
		generateRender(t, other)

		// act
		renders, err := renderStore.ListRendersByCompositionID(context.Background(), c.CompositionID)

		// assert
		assert.NoError(t, err)
		assert.Len(t, renders, 2)
		for _, r := range renders {
			assert.Equal(t, c.CompositionID, r.RenderCompositionID)
		}
	})
}

func TestRenderSQLStore_DeleteRendersBefore(t *testing.T) {
	t.Run("success - only old renders are deleted", func(t *testing.T) {
		// arrange
		c := generateComposition(t)
		r := generateRender(t, c)

		// act
		deletedNone, errNone := renderStore.DeleteRendersBefore(context.Background(), time.Now().Add(-time.Hour))
		_, readErr := renderStore.ReadRenderByID(context.Background(), r.RenderID)
		deleted, err := renderStore.DeleteRendersBefore(context.Background(), time.Now().Add(time.Hour))

		// assert
		require.NoError(t, errNone)
		require.NoError(t, err)
		assert.Equal(t, int64(0), deletedNone)
		assert.NoError(t, readErr)
		assert.GreaterOrEqual(t, deleted, int64(1))
		_, readErr = renderStore.ReadRenderByID(context.Background(), r.RenderID)
		assert.ErrorIs(t, readErr, sql.ErrNoRows)
	})
}
