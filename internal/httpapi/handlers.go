package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Yagnik-Gohil/skribbl-server/internal/registry"
	"github.com/Yagnik-Gohil/skribbl-server/internal/room"
)

type roomResponse struct {
	Status  int            `json:"status"`
	Message string         `json:"message"`
	Data    *room.Snapshot `json:"data,omitempty"`
}

// GetRoom is the read-only introspection endpoint: the full room
// snapshot, or a not-found body. Never mutates.
func GetRoom(g *registry.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		roomID := chi.URLParam(r, "roomID")

		w.Header().Set("Content-Type", "application/json")

		snap, ok := g.RoomDetails(r.Context(), roomID)
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_ = json.NewEncoder(w).Encode(roomResponse{
				Status:  0,
				Message: "Room not found!",
			})
			return
		}

		_ = json.NewEncoder(w).Encode(roomResponse{
			Status:  1,
			Message: "Room Found Successfully",
			Data:    &snap,
		})
	}
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
