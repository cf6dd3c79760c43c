package plants

import "errors"

// Taxonomía de fallas de la galería. Los fallos de red/servicio llegan
// envueltos desde el repo o el blob store; acá solo lo que decide el core.
var (
	ErrUnauthenticated  = errors.New("no authenticated principal")
	ErrNotFound         = errors.New("plant not found")
	ErrCapacityExceeded = errors.New("all photo slots are full")
	ErrStaging          = errors.New("staging capture failed")
	ErrInvalidInput     = errors.New("invalid input")
)
