package plants

import "time"

// SlotCount es la capacidad fija de la galería: 4 fotos por usuario.
const SlotCount = 4

// Plant representa una foto capturada, descrita y subida por un usuario.
type Plant struct {
	ID      string
	OwnerID string

	// Name se asigna al crear ("Plant N", con N = slot+1) y no se edita después.
	Name        string
	Description string

	// ImageURL queda vacío hasta completar la subida del blob.
	// Una vez seteado es una referencia estable: nunca vuelve a vacío.
	ImageURL string

	// LocalPath apunta al archivo scratch local mientras la subida está en vuelo.
	// Nunca se persiste; se limpia cuando ImageURL queda seteado.
	LocalPath string

	CreatedAt time.Time
}

// Uploaded indica si el blob de la planta ya está subido.
func (p Plant) Uploaded() bool { return p.ImageURL != "" }

// Slot es una de las 4 posiciones fijas de la galería (índices 0..3),
// vacía u ocupada por exactamente una Plant.
type Slot struct {
	Index    int
	Occupied bool
	Plant    Plant
}
