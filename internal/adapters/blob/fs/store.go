// Package fs implementa un blob store sobre el filesystem local.
// Cada key mapea a un archivo bajo root más un sidecar `.meta` con el
// content type. Suficiente para un solo proceso escritor.
package fs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"plant-photo-gallery/internal/ports/blob"
)

type Store struct {
	root    string
	urlBase string
}

// New crea un store sobre root (se crea si no existe). urlBase es el prefijo
// con el que el router sirve los blobs (default "/blobs").
func New(root, urlBase string) (*Store, error) {
	if strings.TrimSpace(root) == "" {
		root = "./blobdata"
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	if strings.TrimSpace(urlBase) == "" {
		urlBase = "/blobs"
	}
	return &Store{root: root, urlBase: strings.TrimRight(urlBase, "/")}, nil
}

func (s *Store) Driver() blob.Driver { return blob.DriverFilesystem }

// sanitizeKey rechaza keys que escapen de root (traversal, absolutas).
func sanitizeKey(key string) (string, error) {
	if strings.TrimSpace(key) == "" {
		return "", fmt.Errorf("empty blob key")
	}
	if strings.Contains(key, "..") {
		return "", fmt.Errorf("invalid key: contains '..'")
	}
	if strings.HasPrefix(key, "/") {
		return "", fmt.Errorf("invalid key: absolute path")
	}
	clean := filepath.ToSlash(filepath.Clean(key))
	if strings.HasPrefix(clean, "..") {
		return "", fmt.Errorf("invalid key: traversal")
	}
	return clean, nil
}

func (s *Store) paths(key string) (dataPath, metaPath string, err error) {
	k, err := sanitizeKey(key)
	if err != nil {
		return "", "", err
	}
	dataPath = filepath.Join(s.root, filepath.FromSlash(k))
	metaPath = dataPath + ".meta"
	return dataPath, metaPath, nil
}

type metaFile struct {
	ContentType string    `json:"content_type,omitempty"`
	Size        int64     `json:"size"`
	CreatedAt   time.Time `json:"created_at"`
}

func (s *Store) Put(_ context.Context, key string, r io.Reader, opts blob.PutOptions) (blob.Info, error) {
	dataPath, metaPath, err := s.paths(key)
	if err != nil {
		return blob.Info{}, err
	}
	if _, err := os.Stat(dataPath); err == nil {
		return blob.Info{}, fmt.Errorf("blob %s already exists", key)
	}
	if err := os.MkdirAll(filepath.Dir(dataPath), 0o755); err != nil {
		return blob.Info{}, err
	}

	// Escribe a un temp y renombra, para no dejar archivos a medias.
	tmp, err := os.CreateTemp(filepath.Dir(dataPath), ".tmp-*")
	if err != nil {
		return blob.Info{}, err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	size, err := io.Copy(tmp, r)
	if err != nil {
		_ = tmp.Close()
		return blob.Info{}, err
	}
	if err := tmp.Close(); err != nil {
		return blob.Info{}, err
	}
	if err := os.Rename(tmp.Name(), dataPath); err != nil {
		return blob.Info{}, err
	}

	now := time.Now().UTC()
	meta := metaFile{ContentType: opts.ContentType, Size: size, CreatedAt: now}
	mb, _ := json.Marshal(meta)
	if err := os.WriteFile(metaPath, mb, 0o644); err != nil {
		_ = os.Remove(dataPath)
		return blob.Info{}, err
	}

	return blob.Info{
		Key:          key,
		Size:         size,
		ContentType:  opts.ContentType,
		LastModified: now,
		URL:          s.urlBase + "/" + key,
	}, nil
}

func (s *Store) Get(_ context.Context, key string) (blob.Info, io.ReadCloser, error) {
	dataPath, metaPath, err := s.paths(key)
	if err != nil {
		return blob.Info{}, nil, err
	}

	f, err := os.Open(dataPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return blob.Info{}, nil, blob.ErrNotFound
		}
		return blob.Info{}, nil, err
	}

	var meta metaFile
	if mb, err := os.ReadFile(metaPath); err == nil {
		_ = json.Unmarshal(mb, &meta)
	}

	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return blob.Info{}, nil, err
	}

	info := blob.Info{
		Key:          key,
		Size:         st.Size(),
		ContentType:  meta.ContentType,
		LastModified: st.ModTime().UTC(),
		URL:          s.urlBase + "/" + key,
	}
	return info, f, nil
}
