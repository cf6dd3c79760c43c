package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"plant-photo-gallery/internal/domain/plants"
)

var ErrNotFound = errors.New("not found")

type plantsRepo struct {
	mu   sync.RWMutex
	byID map[string]plants.Plant
}

func NewPlantsRepo() plants.Repository {
	return &plantsRepo{
		byID: make(map[string]plants.Plant),
	}
}

// Create es upsert por ID: el replay de un create con el mismo id no duplica
// ni pisa (el id se genera del lado cliente, un choque real no ocurre).
func (r *plantsRepo) Create(ctx context.Context, p plants.Plant) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(p.ID) == "" {
		return errors.New("plant id required")
	}
	if _, exists := r.byID[p.ID]; exists {
		return nil
	}
	r.byID[p.ID] = p
	return nil
}

func (r *plantsRepo) ListByOwner(ctx context.Context, ownerID string) ([]plants.Plant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]plants.Plant, 0)
	for _, p := range r.byID {
		if p.OwnerID == ownerID {
			out = append(out, p)
		}
	}

	// Orden estable por created_at asc (solo para consistencia en dev;
	// el motor reordena igual).
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})

	return out, nil
}

func (r *plantsRepo) UpdateDescription(ctx context.Context, id, description string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.byID[id]
	if !ok {
		return ErrNotFound
	}
	p.Description = description
	r.byID[id] = p
	return nil
}
