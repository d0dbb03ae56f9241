package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/unhinged-listings/listing-service/internal/auth"
	"github.com/unhinged-listings/listing-service/internal/platform/metrics"
	"go.uber.org/zap"
)

// NewRouter assembles the public API, the password-gated admin API and the
// SPA static fallback.
func NewRouter(h *Handler, gate *auth.Gate, m *metrics.Manager, logger *zap.Logger, corsOrigin, staticDir string) http.Handler {
	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger(logger))
	r.Use(CORS(corsOrigin))
	r.Use(Metrics(m))

	r.Get("/api/listings", h.HandleListListings)
	r.Get("/api/listings/{id}", h.HandleGetListing)
	r.Get("/api/categories", h.HandleGetCategories)
	r.Get("/api/settings", h.HandleGetSettings)

	r.Post("/api/admin/verify", h.HandleVerifyAdmin)

	r.Group(func(admin chi.Router) {
		admin.Use(AdminAuth(gate))
		admin.Post("/api/admin/listings", h.HandleCreateListing)
		admin.Put("/api/admin/listings/{id}", h.HandleUpdateListing)
		admin.Delete("/api/admin/listings/{id}", h.HandleDeleteListing)
		admin.Put("/api/admin/reorder", h.HandleReorderListings)
		admin.Put("/api/admin/settings", h.HandleUpdateSettings)
	})

	spa := NewSPAHandler(staticDir)
	r.NotFound(spa.ServeHTTP)

	return r
}
