package plants

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png" // capturas que llegan como PNG se re-encodean igual
	"os"
	"path"

	"plant-photo-gallery/internal/ports/blob"
)

// jpegQuality es la calidad fija de compresión al stagear una captura.
const jpegQuality = 90

// UploadState es el estado de una captura dentro del workflow de subida.
type UploadState string

const (
	StateCaptured       UploadState = "captured"
	StateStaged         UploadState = "staged"
	StateBlobUploading  UploadState = "blob_uploading"
	StateBlobUploaded   UploadState = "blob_uploaded"
	StateRecordCreating UploadState = "record_creating"
	StateRecordCreated  UploadState = "record_created"
	StateFailed         UploadState = "failed"
)

// uploadRun lleva una captura desde bytes crudos hasta registro durable.
// Una vez arrancado corre hasta RecordCreated o Failed; no es cancelable.
type uploadRun struct {
	state   UploadState
	scratch string
	info    blob.Info
}

func (u *uploadRun) fail(err error) error {
	u.state = StateFailed
	return err
}

// stage decodifica la captura y la persiste como JPEG (calidad fija) en un
// archivo scratch privado, para que sobreviva a la llamada de subida.
// Una falla acá es fatal para esta captura: no hay retry.
func (s *Service) stage(u *uploadRun, capture []byte) error {
	src, _, err := image.Decode(bytes.NewReader(capture))
	if err != nil {
		return u.fail(fmt.Errorf("%w: decode: %v", ErrStaging, err))
	}

	f, err := os.CreateTemp(s.stagingDir, "capture-*.jpg")
	if err != nil {
		return u.fail(fmt.Errorf("%w: %v", ErrStaging, err))
	}
	if err := jpeg.Encode(f, src, &jpeg.Options{Quality: jpegQuality}); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return u.fail(fmt.Errorf("%w: encode: %v", ErrStaging, err))
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(f.Name())
		return u.fail(fmt.Errorf("%w: %v", ErrStaging, err))
	}

	u.scratch = f.Name()
	u.state = StateStaged
	return nil
}

// uploadBlob sube el scratch bajo una key fresca scoped por owner.
// Si falla, no se crea ningún registro: nunca queda una Plant con
// ImageURL "vacío pero prometido".
func (s *Service) uploadBlob(ctx context.Context, u *uploadRun, ownerID string) error {
	u.state = StateBlobUploading

	f, err := os.Open(u.scratch)
	if err != nil {
		return u.fail(fmt.Errorf("%w: reopen scratch: %v", ErrStaging, err))
	}
	defer f.Close()

	key := path.Join(ownerID, "plants", s.newID())
	info, err := s.blobs.Put(ctx, key, f, blob.PutOptions{ContentType: "image/jpeg"})
	if err != nil {
		return u.fail(fmt.Errorf("upload blob: %w", err))
	}

	u.info = info
	u.state = StateBlobUploaded
	return nil
}

// createRecord escribe la Plant ya completa. Si esto falla, el blob recién
// subido queda huérfano: se loguea la key para que un sweep externo lo recoja.
func (s *Service) createRecord(ctx context.Context, u *uploadRun, p Plant) error {
	u.state = StateRecordCreating
	if err := s.repo.Create(ctx, p); err != nil {
		s.log.Warn("plant record create failed, blob orphaned", map[string]any{
			"owner":    p.OwnerID,
			"blob_key": u.info.Key,
			"err":      err.Error(),
		})
		return u.fail(fmt.Errorf("create record: %w", err))
	}
	u.state = StateRecordCreated
	return nil
}
