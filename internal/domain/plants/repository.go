package plants

import "context"

type Repository interface {
	// Create persiste una Plant completa. El ID viene generado del lado cliente,
	// así que un retry del mismo create no debe duplicar registros (upsert por ID).
	Create(ctx context.Context, p Plant) error

	// ListByOwner devuelve todas las Plants del owner. El motor de sincronización
	// no depende del orden que devuelva el repo: reordena él mismo.
	ListByOwner(ctx context.Context, ownerID string) ([]Plant, error)

	// UpdateDescription es un update parcial de un solo campo.
	UpdateDescription(ctx context.Context, id, description string) error
}
