// Package store persists screened entities and sanction list records,
// backed by Postgres or a local SQLite file.
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/kesiliance/screening-cli/internal/model"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = eris.New("store: not found")

// EntityFilter selects entities for listing. Query is a case-insensitive
// substring match on the name.
type EntityFilter struct {
	Query  string
	Limit  int
	Offset int
}

// SanctionFilter selects sanction records for listing.
type SanctionFilter struct {
	Query  string
	Source string
	Limit  int
	Offset int
}

// Store is the persistence interface for entities and sanction records.
type Store interface {
	// Entities
	CreateEntity(ctx context.Context, e model.Entity) (*model.Entity, error)
	GetEntity(ctx context.Context, id int64) (*model.Entity, error)
	ListEntities(ctx context.Context, f EntityFilter) ([]model.Entity, error)
	ImportEntities(ctx context.Context, entities []model.Entity) (int64, error)

	// Sanctions
	ImportSanctions(ctx context.Context, sanctions []model.Sanction) (int64, error)
	ListSanctions(ctx context.Context, f SanctionFilter) ([]model.Sanction, error)
	// AllSanctions returns every sanction record in insertion order; the
	// screening pipeline's tie-break depends on that order being stable.
	AllSanctions(ctx context.Context) ([]model.Sanction, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
