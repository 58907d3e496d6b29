package cases

import "context"

// Store persists analysis case records. Swap with concrete storage without
// touching the verdict service.
type Store interface {
	// Save stores a record under its case ID.
	Save(ctx context.Context, record Record) error
	// Get returns the record for a case ID, or sentinel.ErrNotFound.
	Get(ctx context.Context, id string) (Record, error)
	// List returns up to limit records, most recent first.
	List(ctx context.Context, limit int) ([]Record, error)
}
