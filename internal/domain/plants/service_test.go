package plants

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"io"
	"sort"
	"sync"
	"testing"
	"time"

	"plant-photo-gallery/internal/ports/blob"
)

// --- fakes ---

type fakeRepo struct {
	mu          sync.Mutex
	byID        map[string]Plant
	createCalls int
	updateCalls int
	failCreate  error
	failUpdate  error
	failList    error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{byID: make(map[string]Plant)}
}

func (r *fakeRepo) Create(_ context.Context, p Plant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.createCalls++
	if r.failCreate != nil {
		return r.failCreate
	}
	if _, ok := r.byID[p.ID]; ok {
		return nil // replay del mismo id: idempotente
	}
	r.byID[p.ID] = p
	return nil
}

func (r *fakeRepo) ListByOwner(_ context.Context, ownerID string) ([]Plant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failList != nil {
		return nil, r.failList
	}
	var out []Plant
	for _, p := range r.byID {
		if p.OwnerID == ownerID {
			out = append(out, p)
		}
	}
	// orden arbitrario a propósito: el motor no debe depender del repo
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *fakeRepo) UpdateDescription(_ context.Context, id, description string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updateCalls++
	if r.failUpdate != nil {
		return r.failUpdate
	}
	p, ok := r.byID[id]
	if !ok {
		return errors.New("not found")
	}
	p.Description = description
	r.byID[id] = p
	return nil
}

func (r *fakeRepo) stored(id string) (Plant, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byID[id]
	return p, ok
}

type fakeBlob struct {
	mu       sync.Mutex
	putCalls int
	failPut  error
	keys     []string
}

func (s *fakeBlob) Put(_ context.Context, key string, r io.Reader, opts blob.PutOptions) (blob.Info, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.putCalls++
	if s.failPut != nil {
		return blob.Info{}, s.failPut
	}
	n, err := io.Copy(io.Discard, r)
	if err != nil {
		return blob.Info{}, err
	}
	s.keys = append(s.keys, key)
	return blob.Info{
		Key:         key,
		Size:        n,
		ContentType: opts.ContentType,
		URL:         "https://blobs.test/" + key,
	}, nil
}

func (s *fakeBlob) Get(context.Context, string) (blob.Info, io.ReadCloser, error) {
	return blob.Info{}, nil, blob.ErrNotFound
}

func (s *fakeBlob) Driver() blob.Driver { return blob.DriverMemory }

// --- helpers ---

func jpegBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for x := 0; x < 8; x++ {
		for y := 0; y < 8; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 30), G: uint8(y * 30), A: 255})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("encode test jpeg: %v", err)
	}
	return buf.Bytes()
}

func newTestService(t *testing.T, repo Repository, blobs blob.Store) *Service {
	t.Helper()
	svc := NewService(repo, blobs, Options{StagingDir: t.TempDir()})
	var seq int
	svc.newID = func() string {
		seq++
		return fmt.Sprintf("id-%03d", seq)
	}
	base := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	var ticks int
	svc.now = func() time.Time {
		ticks++
		return base.Add(time.Duration(ticks) * time.Second)
	}
	return svc
}

// --- Capture ---

func TestCapture_FillsSlotsInOrder(t *testing.T) {
	repo := newFakeRepo()
	blobs := &fakeBlob{}
	svc := newTestService(t, repo, blobs)
	ctx := context.Background()

	capture := jpegBytes(t)
	for i := 0; i < SlotCount; i++ {
		idx, p, err := svc.Capture(ctx, "u1", capture)
		if err != nil {
			t.Fatalf("Capture #%d error: %v", i, err)
		}
		if idx != i {
			t.Fatalf("expected slot %d, got %d", i, idx)
		}
		want := fmt.Sprintf("Plant %d", i+1)
		if p.Name != want {
			t.Fatalf("expected name %q, got %q", want, p.Name)
		}
		if p.ImageURL == "" {
			t.Fatal("plant persisted without ImageURL")
		}
		if _, ok := repo.stored(p.ID); !ok {
			t.Fatalf("plant %s not created remotely", p.ID)
		}
	}

	if blobs.putCalls != SlotCount {
		t.Fatalf("expected %d blob uploads, got %d", SlotCount, blobs.putCalls)
	}
}

func TestCapture_FullGalleryRejectedBeforeRemoteCalls(t *testing.T) {
	repo := newFakeRepo()
	blobs := &fakeBlob{}
	svc := newTestService(t, repo, blobs)
	ctx := context.Background()

	capture := jpegBytes(t)
	for i := 0; i < SlotCount; i++ {
		if _, _, err := svc.Capture(ctx, "u1", capture); err != nil {
			t.Fatalf("Capture error: %v", err)
		}
	}
	puts, creates := blobs.putCalls, repo.createCalls

	_, _, err := svc.Capture(ctx, "u1", capture)
	if !errors.Is(err, ErrCapacityExceeded) {
		t.Fatalf("expected ErrCapacityExceeded, got %v", err)
	}
	if blobs.putCalls != puts || repo.createCalls != creates {
		t.Fatal("rejected capture still reached the remote store")
	}
}

func TestCapture_Unauthenticated(t *testing.T) {
	svc := newTestService(t, newFakeRepo(), &fakeBlob{})
	if _, _, err := svc.Capture(context.Background(), "", jpegBytes(t)); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestCapture_BadImageFailsStaging(t *testing.T) {
	repo := newFakeRepo()
	blobs := &fakeBlob{}
	svc := newTestService(t, repo, blobs)

	_, _, err := svc.Capture(context.Background(), "u1", []byte("definitely not an image"))
	if !errors.Is(err, ErrStaging) {
		t.Fatalf("expected ErrStaging, got %v", err)
	}
	if blobs.putCalls != 0 || repo.createCalls != 0 {
		t.Fatal("staging failure must not reach the remote store")
	}
}

func TestCapture_BlobFailureCreatesNoRecord(t *testing.T) {
	repo := newFakeRepo()
	blobs := &fakeBlob{failPut: errors.New("network down")}
	svc := newTestService(t, repo, blobs)

	_, _, err := svc.Capture(context.Background(), "u1", jpegBytes(t))
	if err == nil {
		t.Fatal("expected error")
	}
	if repo.createCalls != 0 {
		t.Fatal("record created despite blob upload failure")
	}
	if got := svc.Snapshot("u1"); got[0].Occupied {
		t.Fatal("slot occupied despite failed upload")
	}
}

func TestCapture_RecordFailureLeaksBlobOnly(t *testing.T) {
	repo := newFakeRepo()
	repo.failCreate = errors.New("store rejected write")
	blobs := &fakeBlob{}
	svc := newTestService(t, repo, blobs)

	_, _, err := svc.Capture(context.Background(), "u1", jpegBytes(t))
	if err == nil {
		t.Fatal("expected error")
	}
	if blobs.putCalls != 1 {
		t.Fatalf("expected 1 blob upload, got %d", blobs.putCalls)
	}
	if len(repo.byID) != 0 {
		t.Fatal("record persisted despite create failure")
	}
	if got := svc.Snapshot("u1"); got[0].Occupied {
		t.Fatal("slot occupied despite failed upload")
	}
}

// --- ReconcileOnLoad ---

func TestReconcileOnLoad_OrdersAndTruncates(t *testing.T) {
	repo := newFakeRepo()
	base := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 6; i++ {
		repo.byID[fmt.Sprintf("p-%d", i)] = Plant{
			ID:        fmt.Sprintf("p-%d", i),
			OwnerID:   "u1",
			Name:      fmt.Sprintf("Plant %d", i+1),
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
	}
	// registros de otro owner no deben filtrarse
	repo.byID["x-1"] = Plant{ID: "x-1", OwnerID: "u2", CreatedAt: base}

	svc := newTestService(t, repo, &fakeBlob{})
	slots, err := svc.ReconcileOnLoad(context.Background(), "u1")
	if err != nil {
		t.Fatalf("ReconcileOnLoad error: %v", err)
	}

	for i := 0; i < SlotCount; i++ {
		if !slots[i].Occupied {
			t.Fatalf("slot %d empty after reconcile", i)
		}
		if slots[i].Plant.ID != fmt.Sprintf("p-%d", i) {
			t.Fatalf("slot %d holds %s, expected the %d-th oldest record", i, slots[i].Plant.ID, i)
		}
	}
}

func TestReconcileOnLoad_TiesBreakByID(t *testing.T) {
	repo := newFakeRepo()
	same := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	repo.byID["b"] = Plant{ID: "b", OwnerID: "u1", CreatedAt: same}
	repo.byID["a"] = Plant{ID: "a", OwnerID: "u1", CreatedAt: same}

	svc := newTestService(t, repo, &fakeBlob{})
	slots, err := svc.ReconcileOnLoad(context.Background(), "u1")
	if err != nil {
		t.Fatalf("ReconcileOnLoad error: %v", err)
	}

	if slots[0].Plant.ID != "a" || slots[1].Plant.ID != "b" {
		t.Fatalf("ties must break by id: got %s, %s", slots[0].Plant.ID, slots[1].Plant.ID)
	}
}

func TestReconcileOnLoad_RemoteFailure(t *testing.T) {
	repo := newFakeRepo()
	repo.failList = errors.New("store unreachable")
	svc := newTestService(t, repo, &fakeBlob{})

	if _, err := svc.ReconcileOnLoad(context.Background(), "u1"); err == nil {
		t.Fatal("expected error")
	}
}

// --- EditDescription ---

func TestEditDescription_EmptySlotIsSilentNoop(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(t, repo, &fakeBlob{})

	p, applied, err := svc.EditDescription(context.Background(), "u1", 2, "basil")
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if applied {
		t.Fatal("edit on empty slot must not apply")
	}
	if p.ID != "" {
		t.Fatalf("unexpected plant returned: %+v", p)
	}
	if repo.updateCalls != 0 {
		t.Fatal("edit on empty slot must not reach the remote store")
	}
}

func TestEditDescription_PropagatesToRemote(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(t, repo, &fakeBlob{})
	ctx := context.Background()

	_, p0, err := svc.Capture(ctx, "u1", jpegBytes(t))
	if err != nil {
		t.Fatalf("Capture error: %v", err)
	}

	p, applied, err := svc.EditDescription(ctx, "u1", 0, "basil")
	if err != nil || !applied {
		t.Fatalf("edit failed: applied=%v err=%v", applied, err)
	}
	if p.Description != "basil" {
		t.Fatalf("returned plant has description %q", p.Description)
	}

	stored, _ := repo.stored(p0.ID)
	if stored.Description != "basil" {
		t.Fatalf("remote record has description %q", stored.Description)
	}
}

func TestEditDescription_RemoteFailureKeepsLocalValue(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(t, repo, &fakeBlob{})
	ctx := context.Background()

	if _, _, err := svc.Capture(ctx, "u1", jpegBytes(t)); err != nil {
		t.Fatalf("Capture error: %v", err)
	}
	repo.failUpdate = errors.New("store unreachable")

	p, applied, err := svc.EditDescription(ctx, "u1", 0, "basil")
	if err == nil {
		t.Fatal("expected remote error")
	}
	if !applied {
		t.Fatal("local value must apply even when the remote update fails")
	}
	if p.Description != "basil" {
		t.Fatalf("returned plant has description %q", p.Description)
	}
	// sin rollback: el snapshot conserva el valor optimista
	if got := svc.Snapshot("u1"); got[0].Plant.Description != "basil" {
		t.Fatalf("snapshot lost the optimistic value: %q", got[0].Plant.Description)
	}
}

func TestEditDescription_LastWriteWinsRemotely(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(t, repo, &fakeBlob{})
	ctx := context.Background()

	_, p0, err := svc.Capture(ctx, "u1", jpegBytes(t))
	if err != nil {
		t.Fatalf("Capture error: %v", err)
	}

	for _, text := range []string{"first", "second", "third"} {
		if _, _, err := svc.EditDescription(ctx, "u1", 0, text); err != nil {
			t.Fatalf("edit %q: %v", text, err)
		}
	}

	stored, _ := repo.stored(p0.ID)
	if stored.Description != "third" {
		t.Fatalf("remote record converged to %q, expected the last edit", stored.Description)
	}
}

// --- escenario completo: captura, edición y recarga en otra sesión ---

func TestGallery_EditSurvivesReload(t *testing.T) {
	repo := newFakeRepo()
	blobs := &fakeBlob{}
	ctx := context.Background()

	first := newTestService(t, repo, blobs)
	if _, _, err := first.Capture(ctx, "u1", jpegBytes(t)); err != nil {
		t.Fatalf("Capture error: %v", err)
	}
	if _, _, err := first.EditDescription(ctx, "u1", 0, "basil"); err != nil {
		t.Fatalf("edit error: %v", err)
	}

	// sesión nueva contra el mismo store remoto
	second := newTestService(t, repo, blobs)
	slots, err := second.ReconcileOnLoad(ctx, "u1")
	if err != nil {
		t.Fatalf("ReconcileOnLoad error: %v", err)
	}

	if !slots[0].Occupied {
		t.Fatal("slot 0 empty after reload")
	}
	if slots[0].Plant.Name != "Plant 1" {
		t.Fatalf("expected Plant 1, got %q", slots[0].Plant.Name)
	}
	if slots[0].Plant.Description != "basil" {
		t.Fatalf("description lost across reload: %q", slots[0].Plant.Description)
	}
	for i := 1; i < SlotCount; i++ {
		if slots[i].Occupied {
			t.Fatalf("slot %d unexpectedly occupied", i)
		}
	}
}
