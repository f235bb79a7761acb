package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/georgysavva/scany/v2/sqlscan"
	"github.com/haatos/pipeline-composer/internal"
)

type RenderSQLStore struct {
	rdb, rwdb *sql.DB
}

func NewRenderSQLStore(rdb, rwdb *sql.DB) *RenderSQLStore {
	return &RenderSQLStore{rdb, rwdb}
}

func (store *RenderSQLStore) CreateRender(
	ctx context.Context,
	id, compositionID, output string,
	jobCount int64,
) (*Render, error) {
	r := &Render{
		RenderID:            id,
		RenderCompositionID: compositionID,
		Output:              output,
		JobCount:            jobCount,
	}
	query := `insert into renders (
		render_id,
		render_composition_id,
		output,
		job_count
	)
	values ($1, $2, $3, $4)
	returning rendered_on`
	if err := sqlscan.Get(
		ctx, store.rwdb, r, query,
		r.RenderID,
		r.RenderCompositionID,
		r.Output,
		r.JobCount,
	); err != nil {
		return nil, err
	}
	return r, nil
}

func (store *RenderSQLStore) ReadRenderByID(ctx context.Context, id string) (*Render, error) {
	r := new(Render)
	query := "select * from renders where render_id = $1"
	if err := sqlscan.Get(ctx, store.rdb, r, query, id); err != nil {
		return nil, err
	}
	return r, nil
}

// ListRendersByCompositionID returns the renders of a composition, newest
// first.
func (store *RenderSQLStore) ListRendersByCompositionID(
	ctx context.Context,
	compositionID string,
) ([]*Render, error) {
	query := `select * from renders
	where render_composition_id = $1
	order by rendered_on desc, render_id`
	renders := make([]*Render, 0)
	err := sqlscan.Select(ctx, store.rdb, &renders, query, compositionID)
	return renders, err
}

// DeleteRendersBefore deletes renders older than before and returns how many
// were deleted.
func (store *RenderSQLStore) DeleteRendersBefore(ctx context.Context, before time.Time) (int64, error) {
	query := "delete from renders where rendered_on < $1"
	result, err := store.rwdb.ExecContext(ctx, query, before.UTC().Format(internal.DBTimestampLayout))
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
