package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

func TestCompositionSQLStore_CreateComposition(t *testing.T) {
	t.Run("success - composition created", func(t *testing.T) {
		// arrange
		id := uuid.NewString()
		name := "create composition success"
		description := "create composition success"

		// act
		c, err := compositionStore.CreateComposition(
			context.Background(),
			id, name, description, testDefinition,
		)

		// assert
		assert.NoError(t, err)
		assert.Equal(t, id, c.CompositionID)
		assert.Equal(t, name, c.Name)
		assert.Equal(t, description, c.Description)
		assert.Equal(t, testDefinition, c.Definition)
		assert.False(t, c.CreatedOn.IsZero())
	})

	t.Run("failure - duplicate name", func(t *testing.T) {
		// arrange
		existing := generateComposition(t)

		// act
		c, err := compositionStore.CreateComposition(
			context.Background(),
			uuid.NewString(), existing.Name, "", testDefinition,
		)

		// assert
		assert.Error(t, err)
		assert.Nil(t, c)
		var sqliteErr *sqlite.Error
		assert.True(t, errors.As(err, &sqliteErr))
		assert.Equal(t, sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqliteErr.Code())
	})
}

func TestCompositionSQLStore_ReadCompositionByID(t *testing.T) {
	t.Run("success - composition found", func(t *testing.T) {
		// arrange
		expected := generateComposition(t)

		// act
		c, err := compositionStore.ReadCompositionByID(context.Background(), expected.CompositionID)

		// assert
		assert.NoError(t, err)
		assert.Equal(t, expected.Name, c.Name)
		assert.Equal(t, expected.Description, c.Description)
		assert.Equal(t, expected.Definition, c.Definition)
	})

	t.Run("failure - composition not found", func(t *testing.T) {
		// act
		c, err := compositionStore.ReadCompositionByID(context.Background(), uuid.NewString())

		// assert
		assert.Error(t, err)
		assert.True(t, errors.Is(err, sql.ErrNoRows))
		assert.Nil(t, c)
	})
}

func TestCompositionSQLStore_UpdateComposition(t *testing.T) {
	t.Run("success - composition updates", func(t *testing.T) {
		// arrange
		expected := generateComposition(t)
		newName := "composition updated " + uuid.NewString()
		newDescription := "composition description updated"
		newDefinition := "jobs: {}\n"

		// act
		updateErr := compositionStore.UpdateComposition(
			context.Background(),
			expected.CompositionID,
			newName, newDescription, newDefinition,
		)
		c, readErr := compositionStore.ReadCompositionByID(context.Background(), expected.CompositionID)

		// assert
		assert.NoError(t, updateErr)
		assert.NoError(t, readErr)
		assert.Equal(t, newName, c.Name)
		assert.Equal(t, newDescription, c.Description)
		assert.Equal(t, newDefinition, c.Definition)
	})

	t.Run("failure - composition not found", func(t *testing.T) {
		// act
		err := compositionStore.UpdateComposition(context.Background(), uuid.NewString(), "missing", "", "")

		// assert
		assert.ErrorIs(t, err, sql.ErrNoRows)
	})
}

func TestCompositionSQLStore_DeleteComposition(t *testing.T) {
	t.Run("success - composition and its renders are deleted", func(t *testing.T) {
		// arrange
		c := generateComposition(t)
		r := generateRender(t, c)

		// act
		err := compositionStore.DeleteComposition(context.Background(), c.CompositionID)

		// assert
		assert.NoError(t, err)
		_, readErr := compositionStore.ReadCompositionByID(context.Background(), c.CompositionID)
		assert.ErrorIs(t, readErr, sql.ErrNoRows)
		_, renderErr := renderStore.ReadRenderByID(context.Background(), r.RenderID)
		assert.ErrorIs(t, renderErr, sql.ErrNoRows)
	})

	t.Run("failure - composition not found", func(t *testing.T) {
		// act
		err := compositionStore.DeleteComposition(context.Background(), uuid.NewString())

		// assert
		assert.ErrorIs(t, err, sql.ErrNoRows)
	})
}

func TestCompositionSQLStore_ListCompositions(t *testing.T) {
	t.Run("success - compositions listed", func(t *testing.T) {
		// arrange
		expected := generateComposition(t)

		// act
		compositions, err := compositionStore.ListCompositions(context.Background())

		// assert
		assert.NoError(t, err)
		found := false
		for _, c := range compositions {
			if c.CompositionID == expected.CompositionID {
				found = true
			}
		}
		assert.True(t, found)
	})
}
