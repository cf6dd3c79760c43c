// Package blob define el port de almacenamiento binario que usa la galería.
// La superficie es deliberadamente chica: subir una imagen bajo una key
// fresca y volver a leerla para servirla en drivers locales.
package blob

import (
	"context"
	"errors"
	"io"
	"time"
)

// Driver identifica la implementación concreta del store.
type Driver string

const (
	DriverMemory     Driver = "memory" // dev / tests
	DriverFilesystem Driver = "fs"     // disco local
	DriverS3         Driver = "s3"     // S3 / MinIO
)

// PutOptions son los parámetros opcionales de una escritura.
type PutOptions struct {
	ContentType string
}

// Info describe un blob almacenado.
type Info struct {
	Key          string
	Size         int64
	ContentType  string
	LastModified time.Time

	// URL es la referencia durable y resoluble del blob: lo que termina
	// persistido como ImageURL de la Plant.
	URL string
}

// Store es el contrato común de los drivers memory/fs/s3.
type Store interface {
	Put(ctx context.Context, key string, r io.Reader, opts PutOptions) (Info, error)
	Get(ctx context.Context, key string) (Info, io.ReadCloser, error)
	Driver() Driver
}

var ErrNotFound = errors.New("blob not found")
