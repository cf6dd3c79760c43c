package plants

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"plant-photo-gallery/internal/domain/activity"
	"plant-photo-gallery/internal/middleware"

	"github.com/go-chi/chi/v5"
)

// maxCaptureBytes limita el body de una captura (la app manda thumbnails JPEG).
const maxCaptureBytes = 10 << 20

func RegisterRoutes(r chi.Router, svc *Service, feed *activity.Service) {
	r.Route("/gallery", func(gr chi.Router) {
		// Snapshot reconciliado contra el store remoto (carga de la app)
		gr.Get("/", getGalleryHandler(svc))

		// Evento de captura: bytes crudos de imagen en el body
		gr.Post("/photos", capturePhotoHandler(svc, feed))

		// Edición de descripción de un slot
		gr.Patch("/slots/{index}", editDescriptionHandler(svc, feed))
	})
}

type plantResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	ImageURL    string    `json:"image_url"`
	CreatedAt   time.Time `json:"created_at"`
}

type slotResponse struct {
	Index    int            `json:"index"`
	Occupied bool           `json:"occupied"`
	Plant    *plantResponse `json:"plant,omitempty"`
}

type captureResponse struct {
	SlotIndex int           `json:"slot_index"`
	Plant     plantResponse `json:"plant"`
}

type editDescriptionRequest struct {
	Description string `json:"description"`
}

func getGalleryHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		slots, err := svc.ReconcileOnLoad(r.Context(), claims.UserID)
		if err != nil {
			http.Error(w, "remote store error: "+err.Error(), http.StatusBadGateway)
			return
		}

		writeJSON(w, http.StatusOK, toSlotResponses(slots))
	}
}

func capturePhotoHandler(svc *Service, feed *activity.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		capture, err := io.ReadAll(io.LimitReader(r.Body, maxCaptureBytes))
		if err != nil {
			http.Error(w, "invalid body", http.StatusBadRequest)
			return
		}

		idx, p, err := svc.Capture(r.Context(), claims.UserID, capture)
		if err != nil {
			switch {
			case errors.Is(err, ErrCapacityExceeded):
				http.Error(w, err.Error(), http.StatusConflict)
			case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrStaging):
				http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			default:
				http.Error(w, "upload failed: "+err.Error(), http.StatusBadGateway)
			}
			return
		}

		// Feed best-effort: la foto ya está durable aunque esto falle.
		_, _ = feed.Record(r.Context(), claims.UserID, activity.KindPhotoAdded, p.ID, idx)

		writeJSON(w, http.StatusCreated, captureResponse{
			SlotIndex: idx,
			Plant:     toPlantResponse(p),
		})
	}
}

func editDescriptionHandler(svc *Service, feed *activity.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		idx, err := strconv.Atoi(chi.URLParam(r, "index"))
		if err != nil || idx < 0 || idx >= SlotCount {
			http.Error(w, "slot index must be 0..3", http.StatusBadRequest)
			return
		}

		var req editDescriptionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		p, applied, err := svc.EditDescription(r.Context(), claims.UserID, idx, req.Description)
		if !applied {
			// Slot vacío: la edición se descarta en silencio (no hay id que rutear).
			w.WriteHeader(http.StatusNoContent)
			return
		}
		if err != nil {
			// El valor local quedó aplicado; solo avisamos que el remoto falló.
			http.Error(w, "description kept locally, remote update failed", http.StatusBadGateway)
			return
		}

		_, _ = feed.Record(r.Context(), claims.UserID, activity.KindDescriptionEdited, p.ID, idx)

		writeJSON(w, http.StatusOK, toPlantResponse(p))
	}
}

func toPlantResponse(p Plant) plantResponse {
	return plantResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		ImageURL:    p.ImageURL,
		CreatedAt:   p.CreatedAt,
	}
}

func toSlotResponses(slots []Slot) []slotResponse {
	out := make([]slotResponse, 0, len(slots))
	for _, s := range slots {
		sr := slotResponse{Index: s.Index, Occupied: s.Occupied}
		if s.Occupied {
			pr := toPlantResponse(s.Plant)
			sr.Plant = &pr
		}
		out = append(out, sr)
	}
	return out
}

// writeJSON está duplicado a propósito entre handlers de distintos módulos
// (plants/activity); extraer un helper común recién vale si aparece un tercero.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
