package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/unhinged-listings/listing-service/internal/auth"
	"github.com/unhinged-listings/listing-service/internal/entity"
	"github.com/unhinged-listings/listing-service/internal/platform/metrics"
	"github.com/unhinged-listings/listing-service/internal/port/repository"
	"github.com/unhinged-listings/listing-service/internal/usecase"
	"go.uber.org/zap"
)

type Handler struct {
	listings *usecase.ListingUseCase
	settings *usecase.SettingsUseCase
	gate     *auth.Gate
	metrics  *metrics.Manager
	logger   *zap.Logger
}

func NewHandler(
	listings *usecase.ListingUseCase,
	settings *usecase.SettingsUseCase,
	gate *auth.Gate,
	m *metrics.Manager,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		listings: listings,
		settings: settings,
		gate:     gate,
		metrics:  m,
		logger:   logger,
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeListingError maps usecase errors onto the API's error taxonomy.
func (h *Handler) writeListingError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "Listing not found")
	case errors.Is(err, usecase.ErrEmptyUpdate):
		writeError(w, http.StatusBadRequest, "No fields to update")
	case errors.Is(err, usecase.ErrInvalidInput):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// GET /api/listings?category=
func (h *Handler) HandleListListings(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	listings, err := h.listings.ListListings(r.Context(), category)
	if err != nil {
		h.writeListingError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toListingResponses(listings))
}

// GET /api/listings/{id}
func (h *Handler) HandleGetListing(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	listing, err := h.listings.GetListing(r.Context(), id)
	if err != nil {
		h.writeListingError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toListingResponse(listing))
}

// POST /api/admin/listings?password=
func (h *Handler) HandleCreateListing(w http.ResponseWriter, r *http.Request) {
	var req createListingRequest
	if err := decodeStrict(r, &req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if req.Price == nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid listing data: price is required")
		return
	}

	listing, err := h.listings.CreateListing(r.Context(), req.toInput())
	if err != nil {
		h.writeListingError(w, err)
		return
	}
	if h.metrics != nil {
		h.metrics.ListingsCreatedTotal.Inc()
	}
	writeJSON(w, http.StatusCreated, toListingResponse(listing))
}

// PUT /api/admin/listings/{id}?password=
func (h *Handler) HandleUpdateListing(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req updateListingRequest
	if err := decodeStrict(r, &req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	listing, err := h.listings.UpdateListing(r.Context(), id, req.toInput())
	if err != nil {
		h.writeListingError(w, err)
		return
	}
	if h.metrics != nil {
		h.metrics.ListingUpdatesTotal.Inc()
	}
	writeJSON(w, http.StatusOK, toListingResponse(listing))
}

// DELETE /api/admin/listings/{id}?password=
func (h *Handler) HandleDeleteListing(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.listings.DeleteListing(r.Context(), id); err != nil {
		h.writeListingError(w, err)
		return
	}
	if h.metrics != nil {
		h.metrics.ListingDeletesTotal.Inc()
	}
	writeJSON(w, http.StatusOK, okResponse{OK: true, Deleted: id})
}

// PUT /api/admin/reorder?password=
func (h *Handler) HandleReorderListings(w http.ResponseWriter, r *http.Request) {
	var req reorderRequest
	if err := decodeStrict(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.listings.ReorderListings(r.Context(), req.Order); err != nil {
		h.writeListingError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, okResponse{OK: true})
}

// POST /api/admin/verify
func (h *Handler) HandleVerifyAdmin(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := decodeStrict(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !h.gate.Authorize(req.Password) {
		writeError(w, http.StatusUnauthorized, "Invalid password")
		return
	}
	writeJSON(w, http.StatusOK, okResponse{OK: true})
}

// GET /api/categories
func (h *Handler) HandleGetCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.settings.GetCategories(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

// GET /api/settings
func (h *Handler) HandleGetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settings.GetSettings(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

// PUT /api/admin/settings?password=
//
// The request body is decoded over the currently stored settings, so fields
// the admin panel omits keep their saved (or default) values.
func (h *Handler) HandleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	current, err := h.settings.GetSettings(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	merged := *current
	if err := json.NewDecoder(r.Body).Decode(&merged); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(merged.Categories) == 0 {
		merged.Categories = entity.DefaultSiteSettings().Categories
	}

	if err := h.settings.UpdateSettings(r.Context(), &merged); err != nil {
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, okResponse{OK: true})
}

// decodeStrict rejects bodies with unknown fields, so a client-supplied id
// (or any typo'd key) fails loudly instead of being silently dropped.
func decodeStrict(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return errors.New("invalid request body: " + err.Error())
	}
	return nil
}
