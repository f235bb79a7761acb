package store

import (
	"context"
	"time"
)

// Render is a document rendered from a stored composition.
type Render struct {
	RenderID            string    `json:"render_id"             param:"render_id"`
	RenderCompositionID string    `json:"render_composition_id"`
	Output              string    `json:"output"`
	JobCount            int64     `json:"job_count"`
	RenderedOn          time.Time `json:"rendered_on"`
}

type RenderStore interface {
	CreateRender(context.Context, string, string, string, int64) (*Render, error)
	ReadRenderByID(context.Context, string) (*Render, error)
	ListRendersByCompositionID(context.Context, string) ([]*Render, error)
	DeleteRendersBefore(context.Context, time.Time) (int64, error)
}
