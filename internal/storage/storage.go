// Package storage defines the strategy contract shared by every entity
// backend. Both concrete implementations (postgres, jsonfile) satisfy the
// same interface, and the hybrid coordinator selects between them.
package storage

import "context"

// Store is the per-entity access contract. T is the entity type, P its patch
// type carrying recognized update options.
//
// Conventions:
//   - owner == "" means "all owners" on List and Search.
//   - Get and Update return common.ErrNotFound for an absent id; that is an
//     ordinary outcome, never a backend fault.
//   - Delete is idempotent: deleting an absent id succeeds.
//   - Search performs case-insensitive substring matching over the entity's
//     searchable text fields.
type Store[T any, P any] interface {
	List(ctx context.Context, owner string) ([]*T, error)
	Get(ctx context.Context, id string) (*T, error)
	Create(ctx context.Context, rec *T) (*T, error)
	Update(ctx context.Context, id string, patch P) (*T, error)
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, owner, query string) ([]*T, error)
}
