package plants

import (
	"context"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"plant-photo-gallery/internal/platform/logger"
	"plant-photo-gallery/internal/platform/metrics"
	"plant-photo-gallery/internal/ports/blob"

	"github.com/google/uuid"
)

// Service es el motor de sincronización de la galería: reconcilia la tabla de
// slots de cada owner contra el store remoto y propaga las mutaciones locales
// (subida nueva, edición de descripción).
type Service struct {
	repo  Repository
	blobs blob.Store
	log   logger.Logger
	met   *metrics.Gallery

	now   func() time.Time
	newID func() string

	stagingDir string

	mu     sync.Mutex
	tables map[string]*SlotTable // una tabla por owner
}

type Options struct {
	Log        logger.Logger
	Metrics    *metrics.Gallery
	StagingDir string // default: os.TempDir()
}

func NewService(repo Repository, blobs blob.Store, opts Options) *Service {
	log := opts.Log
	if log == nil {
		log = logger.Nop()
	}
	met := opts.Metrics
	if met == nil {
		met = metrics.NewNop()
	}
	dir := opts.StagingDir
	if dir == "" {
		dir = os.TempDir()
	}
	return &Service{
		repo:       repo,
		blobs:      blobs,
		log:        log,
		met:        met,
		now:        time.Now,
		newID:      uuid.NewString,
		stagingDir: dir,
		tables:     make(map[string]*SlotTable),
	}
}

// table devuelve la tabla de slots del owner, creándola si no existe.
func (s *Service) table(ownerID string) *SlotTable {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tables[ownerID]
	if !ok {
		t = NewSlotTable()
		s.tables[ownerID] = t
	}
	return t
}

// ReconcileOnLoad reconstruye la galería del owner desde el store remoto:
// ordena por created_at ascendente con desempate por id (el store no promete
// orden; la política determinista la impone el motor), trunca a SlotCount y
// asigna a los slots 0..k-1.
func (s *Service) ReconcileOnLoad(ctx context.Context, ownerID string) ([]Slot, error) {
	if ownerID == "" {
		return nil, ErrUnauthenticated
	}

	records, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list plants: %w", err)
	}

	sort.Slice(records, func(i, j int) bool {
		if !records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].CreatedAt.Before(records[j].CreatedAt)
		}
		return records[i].ID < records[j].ID
	})

	tbl := s.table(ownerID)
	tbl.Reset(records)
	s.met.Reconciles.Inc()

	return tbl.Snapshot(), nil
}

// Capture corre el workflow completo de una captura:
// Captured → Staged → BlobUploading → BlobUploaded → RecordCreating → RecordCreated.
// Capacidad y principal se chequean antes de cualquier llamada remota, para
// no gastar subidas que no pueden terminar en un slot.
func (s *Service) Capture(ctx context.Context, ownerID string, capture []byte) (int, Plant, error) {
	if ownerID == "" {
		return -1, Plant{}, ErrUnauthenticated
	}
	if len(capture) == 0 {
		return -1, Plant{}, ErrInvalidInput
	}

	tbl := s.table(ownerID)
	if tbl.Full() {
		s.met.UploadsRejected.Inc()
		return -1, Plant{}, ErrCapacityExceeded
	}

	s.met.UploadsStarted.Inc()
	u := &uploadRun{state: StateCaptured}

	if err := s.stage(u, capture); err != nil {
		s.met.UploadsFailed.WithLabelValues(metrics.StageStaging).Inc()
		return -1, Plant{}, err
	}
	// El scratch no sobrevive al workflow: terminó en RecordCreated o Failed.
	defer func() { _ = os.Remove(u.scratch) }()

	if err := s.uploadBlob(ctx, u, ownerID); err != nil {
		s.met.UploadsFailed.WithLabelValues(metrics.StageBlobUpload).Inc()
		return -1, Plant{}, err
	}

	p := Plant{
		ID:        s.newID(),
		OwnerID:   ownerID,
		Name:      fmt.Sprintf("Plant %d", tbl.Occupied()+1),
		ImageURL:  u.info.URL,
		CreatedAt: s.now(),
	}

	if err := s.createRecord(ctx, u, p); err != nil {
		s.met.UploadsFailed.WithLabelValues(metrics.StageRecordCreate).Inc()
		return -1, Plant{}, err
	}

	idx, err := tbl.Assign(p)
	if err != nil {
		// Subidas concurrentes llenaron la tabla mientras esta estaba en vuelo.
		return -1, Plant{}, err
	}

	s.met.UploadsCompleted.Inc()
	s.log.Info("plant uploaded", map[string]any{"owner": ownerID, "plant": p.ID, "slot": idx})
	return idx, p, nil
}

// EditDescription aplica una edición de descripción sobre un slot.
//
// Slot vacío: no-op silencioso, sin llamada remota (todavía no hay id para
// rutear el update; comportamiento contractual, no un bug a arreglar).
// Slot ocupado: primero se aplica el valor local (optimista) y después se
// dispara el update remoto. Si el remoto falla NO se revierte el valor local;
// el error se devuelve para que el caller avise al usuario. Ediciones en
// vuelo para el mismo slot compiten sin cola: remotamente gana la que
// aterrice última.
func (s *Service) EditDescription(ctx context.Context, ownerID string, index int, text string) (Plant, bool, error) {
	if ownerID == "" {
		return Plant{}, false, ErrUnauthenticated
	}

	tbl := s.table(ownerID)
	p, ok := tbl.Bound(index)
	if !ok {
		s.met.EditsDropped.Inc()
		return Plant{}, false, nil
	}

	tbl.SetDescription(index, text)
	p.Description = text

	s.met.DescriptionEdits.Inc()
	if err := s.repo.UpdateDescription(ctx, p.ID, text); err != nil {
		s.log.Warn("remote description update failed, local value kept", map[string]any{
			"owner": ownerID,
			"plant": p.ID,
			"slot":  index,
			"err":   err.Error(),
		})
		return p, true, fmt.Errorf("update description: %w", err)
	}

	return p, true, nil
}

// Snapshot devuelve el estado actual de la galería sin tocar el store remoto.
func (s *Service) Snapshot(ownerID string) []Slot {
	return s.table(ownerID).Snapshot()
}
