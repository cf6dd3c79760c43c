// Package memory implementa un blob store en memoria para dev y tests.
package memory

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"plant-photo-gallery/internal/ports/blob"
)

type entry struct {
	info blob.Info
	data []byte
}

type Store struct {
	mu      sync.RWMutex
	urlBase string
	objs    map[string]entry
}

// New crea un store en memoria. urlBase es el prefijo con el que el router
// sirve los blobs locales (default "/blobs").
func New(urlBase string) *Store {
	if strings.TrimSpace(urlBase) == "" {
		urlBase = "/blobs"
	}
	return &Store{
		urlBase: strings.TrimRight(urlBase, "/"),
		objs:    make(map[string]entry),
	}
}

func (s *Store) Driver() blob.Driver { return blob.DriverMemory }

// Put guarda un blob nuevo; falla si la key ya existe (las keys de la galería
// son frescas por construcción, un choque indica un bug del caller).
func (s *Store) Put(_ context.Context, key string, r io.Reader, opts blob.PutOptions) (blob.Info, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.TrimSpace(key) == "" {
		return blob.Info{}, fmt.Errorf("empty blob key")
	}
	if _, exists := s.objs[key]; exists {
		return blob.Info{}, fmt.Errorf("blob %s already exists", key)
	}

	b, err := io.ReadAll(r)
	if err != nil {
		return blob.Info{}, err
	}

	info := blob.Info{
		Key:          key,
		Size:         int64(len(b)),
		ContentType:  opts.ContentType,
		LastModified: time.Now().UTC(),
		URL:          s.urlBase + "/" + key,
	}
	s.objs[key] = entry{info: info, data: b}
	return info, nil
}

func (s *Store) Get(_ context.Context, key string) (blob.Info, io.ReadCloser, error) {
	s.mu.RLock()
	e, ok := s.objs[key]
	s.mu.RUnlock()
	if !ok {
		return blob.Info{}, nil, blob.ErrNotFound
	}

	data := make([]byte, len(e.data))
	copy(data, e.data)
	return e.info, io.NopCloser(bytes.NewReader(data)), nil
}
