package sensor

import "context"

// Repository persists entity configurations so they survive restarts.
type Repository interface {
	Upsert(ctx context.Context, cfg Config) error
	GetByID(ctx context.Context, id string) (Config, bool, error)
	List(ctx context.Context) ([]Config, error)
	Delete(ctx context.Context, id string) error
}
