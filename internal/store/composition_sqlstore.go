package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/georgysavva/scany/v2/sqlscan"
	"github.com/haatos/pipeline-composer/internal"
)

type CompositionSQLStore struct {
	rdb, rwdb *sql.DB
}

func NewCompositionSQLStore(rdb, rwdb *sql.DB) *CompositionSQLStore {
	return &CompositionSQLStore{rdb, rwdb}
}

func (store *CompositionSQLStore) CreateComposition(
	ctx context.Context,
	id, name, description, definition string,
) (*Composition, error) {
	c := &Composition{
		CompositionID: id,
		Name:          name,
		Description:   description,
		Definition:    definition,
	}
	query := `insert into compositions (
		composition_id,
		name,
		description,
		definition
	)
	values ($1, $2, $3, $4)
	returning created_on, updated_on`
	if err := sqlscan.Get(
		ctx, store.rwdb, c, query,
		c.CompositionID,
		c.Name,
		c.Description,
		c.Definition,
	); err != nil {
		return nil, err
	}
	return c, nil
}

func (store *CompositionSQLStore) ReadCompositionByID(
	ctx context.Context,
	id string,
) (*Composition, error) {
	c := new(Composition)
	query := "select * from compositions where composition_id = $1"
	if err := sqlscan.Get(ctx, store.rdb, c, query, id); err != nil {
		return nil, err
	}
	return c, nil
}

// UpdateComposition returns sql.ErrNoRows if there is no composition with id.
func (store *CompositionSQLStore) UpdateComposition(
	ctx context.Context,
	id, name, description, definition string,
) error {
	query := `update compositions
	set name = $1,
		description = $2,
		definition = $3,
		updated_on = $4
	where composition_id = $5`
	result, err := store.rwdb.ExecContext(
		ctx, query,
		name,
		description,
		definition,
		time.Now().UTC().Format(internal.DBTimestampLayout),
		id,
	)
	if err != nil {
		return err
	}
	return requireAffected(result)
}

func (store *CompositionSQLStore) DeleteComposition(ctx context.Context, id string) error {
	query := "delete from compositions where composition_id = $1"
	result, err := store.rwdb.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	return requireAffected(result)
}

func (store *CompositionSQLStore) ListCompositions(ctx context.Context) ([]*Composition, error) {
	query := "select * from compositions order by name"
	compositions := make([]*Composition, 0)
	err := sqlscan.Select(ctx, store.rdb, &compositions, query)
	return compositions, err
}

func requireAffected(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
