package activity

import "context"

type Repository interface {
	Create(ctx context.Context, e Entry) error
	// ListByOwner devuelve las entradas del owner, más recientes primero.
	ListByOwner(ctx context.Context, ownerID string) ([]Entry, error)
}
