package activity

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrInvalidInput = errors.New("invalid input")

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

// Record agrega una entrada al feed del owner.
func (s *Service) Record(ctx context.Context, ownerID string, kind Kind, plantID string, slotIndex int) (Entry, error) {
	if strings.TrimSpace(ownerID) == "" {
		return Entry{}, ErrInvalidInput
	}
	if kind != KindPhotoAdded && kind != KindDescriptionEdited {
		return Entry{}, ErrInvalidInput
	}
	if strings.TrimSpace(plantID) == "" {
		return Entry{}, ErrInvalidInput
	}

	e := Entry{
		ID:         uuid.NewString(),
		OwnerID:    ownerID,
		Kind:       kind,
		PlantID:    plantID,
		SlotIndex:  slotIndex,
		RecordedAt: s.now(),
	}

	if err := s.repo.Create(ctx, e); err != nil {
		return Entry{}, err
	}
	return e, nil
}

func (s *Service) ListByOwner(ctx context.Context, ownerID string) ([]Entry, error) {
	return s.repo.ListByOwner(ctx, ownerID)
}
