package activity

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"plant-photo-gallery/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Get("/activity", listActivityHandler(svc))
}

type entryResponse struct {
	ID         string    `json:"id"`
	Kind       string    `json:"kind"`
	PlantID    string    `json:"plant_id"`
	SlotIndex  int       `json:"slot_index"`
	RecordedAt time.Time `json:"recorded_at"`
}

func listActivityHandler(svc *Service) http.HandlerFunc {
	// Owner-only: el feed nunca mezcla actividad de otros usuarios.
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		items, err := svc.ListByOwner(r.Context(), claims.UserID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]entryResponse, 0, len(items))
		for _, e := range items {
			out = append(out, entryResponse{
				ID:         e.ID,
				Kind:       string(e.Kind),
				PlantID:    e.PlantID,
				SlotIndex:  e.SlotIndex,
				RecordedAt: e.RecordedAt,
			})
		}

		writeJSON(w, http.StatusOK, out)
	}
}

// writeJSON está duplicado a propósito entre handlers de distintos módulos
// (plants/activity); extraer un helper común recién vale si aparece un tercero.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
