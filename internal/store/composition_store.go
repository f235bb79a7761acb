package store

import (
	"context"
	"time"
)

// Composition is a stored definition document.
type Composition struct {
	CompositionID string    `json:"composition_id" param:"composition_id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	Definition    string    `json:"definition"`
	CreatedOn     time.Time `json:"created_on"`
	UpdatedOn     time.Time `json:"updated_on"`
}

type CompositionStore interface {
	CreateComposition(context.Context, string, string, string, string) (*Composition, error)
	ReadCompositionByID(context.Context, string) (*Composition, error)
	UpdateComposition(context.Context, string, string, string, string) error
	DeleteComposition(context.Context, string) error
	ListCompositions(context.Context) ([]*Composition, error)
}
