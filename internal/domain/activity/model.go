package activity

import "time"

// Kind clasifica las entradas del feed de actividad.
// @Enum photo_added, description_edited
type Kind string

const (
	KindPhotoAdded        Kind = "photo_added"
	KindDescriptionEdited Kind = "description_edited"
)

// Entry es una entrada append-only del feed de un usuario.
// Se registra recién cuando la escritura remota correspondiente aterrizó:
// el feed nunca afirma una escritura durable que falló.
type Entry struct {
	ID      string
	OwnerID string

	Kind      Kind
	PlantID   string
	SlotIndex int

	RecordedAt time.Time
}
