package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Yagnik-Gohil/skribbl-server/internal/registry"
	"github.com/Yagnik-Gohil/skribbl-server/internal/ws"
)

func SetupRoutes(g *registry.Registry, log *zap.Logger, originPatterns []string) http.Handler {
	r := chi.NewRouter()

	// Public routes
	r.Get("/rooms/{roomID}", GetRoom(g))
	r.Get("/healthz", Healthz)
	r.Get("/ws", ws.Handler(g, log, originPatterns))
	return r
}
