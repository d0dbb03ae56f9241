package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/unhinged-listings/listing-service/internal/auth"
	"github.com/unhinged-listings/listing-service/internal/entity"
	"github.com/unhinged-listings/listing-service/internal/port/repository"
	"github.com/unhinged-listings/listing-service/internal/usecase"
	"go.uber.org/zap"
)

const testAdminPassword = "open-sesame"

// memListingRepository is an in-memory stand-in for the Mongo adapter with the
// same id, sort order and timestamp behavior.
type memListingRepository struct {
	mu       sync.Mutex
	listings map[string]*entity.Listing
	nextID   int
}

func newMemListingRepository() *memListingRepository {
	return &memListingRepository{listings: make(map[string]*entity.Listing)}
}

func (r *memListingRepository) Create(ctx context.Context, listing *entity.Listing) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	id := fmt.Sprintf("mem-%d", r.nextID)

	maxSort := -1
	for _, l := range r.listings {
		if l.SortOrder > maxSort {
			maxSort = l.SortOrder
		}
	}

	now := time.Now().UTC()
	listing.CreatedAt = now
	listing.UpdatedAt = now
	if listing.PostedDate.IsZero() {
		listing.PostedDate = now
	}
	listing.SortOrder = maxSort + 1

	stored := *listing
	stored.ID = id
	r.listings[id] = &stored
	return id, nil
}

func (r *memListingRepository) GetByID(ctx context.Context, id string) (*entity.Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	listing, ok := r.listings[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *listing
	return &copied, nil
}

func (r *memListingRepository) List(ctx context.Context, filter repository.ListingFilter) ([]*entity.Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Listing
	for _, l := range r.listings {
		if filter.Category != "" && l.Category != filter.Category {
			continue
		}
		copied := *l
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SortOrder < out[j].SortOrder })
	return out, nil
}

func (r *memListingRepository) Update(ctx context.Context, id string, params repository.UpdateListingParams) (*entity.Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	listing, ok := r.listings[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if params.Title != nil {
		listing.Title = *params.Title
	}
	if params.Description != nil {
		listing.Description = *params.Description
	}
	if params.Excerpt != nil {
		listing.Excerpt = *params.Excerpt
	}
	if params.Price != nil {
		listing.Price = *params.Price
	}
	if params.Status != nil {
		listing.Status = *params.Status
	}
	if params.Category != nil {
		listing.Category = *params.Category
	}
	if params.Images != nil {
		listing.Images = *params.Images
	}
	if params.FacebookURL != nil {
		listing.FacebookURL = *params.FacebookURL
	}
	if params.Location != nil {
		listing.Location = *params.Location
	}
	copied := *listing
	return &copied, nil
}

func (r *memListingRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.listings[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.listings, id)
	return nil
}

func (r *memListingRepository) Count(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.listings)), nil
}

func (r *memListingRepository) Reorder(ctx context.Context, ids []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, id := range ids {
		if listing, ok := r.listings[id]; ok {
			listing.SortOrder = i
		}
	}
	return nil
}

type memSettingsRepository struct {
	mu     sync.Mutex
	stored *entity.SiteSettings
}

func (r *memSettingsRepository) Get(ctx context.Context) (*entity.SiteSettings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stored == nil {
		defaults := entity.DefaultSiteSettings()
		return &defaults, nil
	}
	copied := *r.stored
	return &copied, nil
}

func (r *memSettingsRepository) Upsert(ctx context.Context, settings *entity.SiteSettings) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *settings
	r.stored = &copied
	return nil
}

type testEnv struct {
	server      *httptest.Server
	listingRepo *memListingRepository
}

func newTestEnv(t *testing.T, seed bool) *testEnv {
	t.Helper()
	logger := zap.NewNop()

	listingRepo := newMemListingRepository()
	settingsRepo := &memSettingsRepository{}

	listingUC := usecase.NewListingUseCase(listingRepo, nil, nil, logger)
	settingsUC := usecase.NewSettingsUseCase(settingsRepo, logger)

	if seed {
		require.NoError(t, usecase.NewSeeder(listingRepo, logger).SeedIfEmpty(context.Background()))
	}

	staticDir := t.TempDir()
	require.NoError(t, os.WriteFile(
		filepath.Join(staticDir, "index.html"),
		[]byte("<!doctype html><title>unhinged listings</title>"),
		0o644,
	))

	gate := auth.NewGate(testAdminPassword)
	handler := NewHandler(listingUC, settingsUC, gate, nil, logger)
	router := NewRouter(handler, gate, nil, logger, "*", staticDir)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return &testEnv{server: srv, listingRepo: listingRepo}
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}) *http.Response {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, e.server.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := e.server.Client().Do(req)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, dst interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dst))
}

func adminPath(path string) string {
	return path + "?password=" + testAdminPassword
}

func validCreateBody() map[string]interface{} {
	return map[string]interface{}{
		"title":       "Cursed Toaster",
		"description": "Burns toast into the shape of your regrets.",
		"price":       12.50,
		"category":    "household",
	}
}

func TestAPI_AdminLifecycle(t *testing.T) {
	env := newTestEnv(t, true)

	var initial []map[string]interface{}
	decodeBody(t, env.do(t, http.MethodGet, "/api/listings", nil), &initial)
	require.Len(t, initial, 5)

	resp := env.do(t, http.MethodPost, adminPath("/api/admin/listings"), validCreateBody())
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created map[string]interface{}
	decodeBody(t, resp, &created)
	createdID, _ := created["id"].(string)
	require.NotEmpty(t, createdID)
	assert.Equal(t, "Cursed Toaster", created["title"])
	assert.Equal(t, "In Stock", created["status"])
	assert.Equal(t, "Colorado Springs, CO", created["location"])
	assert.Equal(t, float64(5), created["sortOrder"])

	var afterCreate []map[string]interface{}
	decodeBody(t, env.do(t, http.MethodGet, "/api/listings", nil), &afterCreate)
	assert.Len(t, afterCreate, 6)

	resp = env.do(t, http.MethodDelete, "/api/admin/listings/"+createdID+"?password=wrong", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	count, err := env.listingRepo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(6), count)

	resp = env.do(t, http.MethodDelete, adminPath("/api/admin/listings/"+createdID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var deleted map[string]interface{}
	decodeBody(t, resp, &deleted)
	assert.Equal(t, true, deleted["ok"])
	assert.Equal(t, createdID, deleted["deleted"])

	var afterDelete []map[string]interface{}
	decodeBody(t, env.do(t, http.MethodGet, "/api/listings", nil), &afterDelete)
	assert.Len(t, afterDelete, 5)

	resp = env.do(t, http.MethodGet, "/api/listings/"+createdID, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	resp = env.do(t, http.MethodDelete, adminPath("/api/admin/listings/"+createdID), nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestAPI_ListFilterByCategory(t *testing.T) {
	env := newTestEnv(t, true)

	var tools []map[string]interface{}
	decodeBody(t, env.do(t, http.MethodGet, "/api/listings?category=tools", nil), &tools)
	require.NotEmpty(t, tools)
	for _, l := range tools {
		assert.Equal(t, "tools", l["category"])
	}

	var all []map[string]interface{}
	decodeBody(t, env.do(t, http.MethodGet, "/api/listings?category=all", nil), &all)
	assert.Len(t, all, 5)

	var none []map[string]interface{}
	decodeBody(t, env.do(t, http.MethodGet, "/api/listings?category=spaceships", nil), &none)
	assert.Len(t, none, 0)
}

func TestAPI_CreateValidation(t *testing.T) {
	env := newTestEnv(t, false)

	t.Run("MissingPrice", func(t *testing.T) {
		body := validCreateBody()
		delete(body, "price")
		resp := env.do(t, http.MethodPost, adminPath("/api/admin/listings"), body)
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
		resp.Body.Close()
	})

	t.Run("MissingTitle", func(t *testing.T) {
		body := validCreateBody()
		delete(body, "title")
		resp := env.do(t, http.MethodPost, adminPath("/api/admin/listings"), body)
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
		resp.Body.Close()
	})

	t.Run("NegativePrice", func(t *testing.T) {
		body := validCreateBody()
		body["price"] = -3.50
		resp := env.do(t, http.MethodPost, adminPath("/api/admin/listings"), body)
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
		resp.Body.Close()
	})

	t.Run("ClientSuppliedIDRejected", func(t *testing.T) {
		body := validCreateBody()
		body["id"] = "custom-id"
		resp := env.do(t, http.MethodPost, adminPath("/api/admin/listings"), body)
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
		resp.Body.Close()
	})

	t.Run("ZeroPriceAccepted", func(t *testing.T) {
		body := validCreateBody()
		body["price"] = 0
		resp := env.do(t, http.MethodPost, adminPath("/api/admin/listings"), body)
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		resp.Body.Close()
	})
}

func TestAPI_UpdateListing(t *testing.T) {
	env := newTestEnv(t, false)

	resp := env.do(t, http.MethodPost, adminPath("/api/admin/listings"), validCreateBody())
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created map[string]interface{}
	decodeBody(t, resp, &created)
	id := created["id"].(string)

	t.Run("PartialUpdate", func(t *testing.T) {
		resp := env.do(t, http.MethodPut, adminPath("/api/admin/listings/"+id),
			map[string]interface{}{"status": "Sold"})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var updated map[string]interface{}
		decodeBody(t, resp, &updated)
		assert.Equal(t, "Sold", updated["status"])
		assert.Equal(t, "Cursed Toaster", updated["title"])
	})

	t.Run("EmptyBodyRejected", func(t *testing.T) {
		resp := env.do(t, http.MethodPut, adminPath("/api/admin/listings/"+id),
			map[string]interface{}{})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		resp.Body.Close()
	})

	t.Run("UnknownListing", func(t *testing.T) {
		resp := env.do(t, http.MethodPut, adminPath("/api/admin/listings/nope"),
			map[string]interface{}{"status": "Sold"})
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		resp.Body.Close()
	})
}

func TestAPI_Reorder(t *testing.T) {
	env := newTestEnv(t, false)

	var ids []string
	for _, title := range []string{"First", "Second", "Third"} {
		body := validCreateBody()
		body["title"] = title
		resp := env.do(t, http.MethodPost, adminPath("/api/admin/listings"), body)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		var created map[string]interface{}
		decodeBody(t, resp, &created)
		ids = append(ids, created["id"].(string))
	}
	assert.NotEqual(t, ids[0], ids[1])
	assert.NotEqual(t, ids[1], ids[2])

	reordered := []string{ids[2], ids[0], ids[1], "ghost-id"}
	resp := env.do(t, http.MethodPut, adminPath("/api/admin/reorder"),
		map[string]interface{}{"order": reordered})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	var listed []map[string]interface{}
	decodeBody(t, env.do(t, http.MethodGet, "/api/listings", nil), &listed)
	require.Len(t, listed, 3)
	assert.Equal(t, "Third", listed[0]["title"])
	assert.Equal(t, "First", listed[1]["title"])
	assert.Equal(t, "Second", listed[2]["title"])
}

func TestAPI_VerifyAdmin(t *testing.T) {
	env := newTestEnv(t, false)

	t.Run("CorrectPassword", func(t *testing.T) {
		resp := env.do(t, http.MethodPost, "/api/admin/verify",
			map[string]interface{}{"password": testAdminPassword})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var body map[string]interface{}
		decodeBody(t, resp, &body)
		assert.Equal(t, true, body["ok"])
	})

	t.Run("WrongPassword", func(t *testing.T) {
		resp := env.do(t, http.MethodPost, "/api/admin/verify",
			map[string]interface{}{"password": "guess"})
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		var body map[string]interface{}
		decodeBody(t, resp, &body)
		assert.Equal(t, "Invalid password", body["error"])
	})
}

func TestAPI_AdminRoutesRequirePassword(t *testing.T) {
	env := newTestEnv(t, false)

	routes := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/admin/listings"},
		{http.MethodPut, "/api/admin/listings/some-id"},
		{http.MethodDelete, "/api/admin/listings/some-id"},
		{http.MethodPut, "/api/admin/reorder"},
		{http.MethodPut, "/api/admin/settings"},
	}
	for _, route := range routes {
		resp := env.do(t, route.method, route.path, map[string]interface{}{})
		assert.Equalf(t, http.StatusUnauthorized, resp.StatusCode, "%s %s", route.method, route.path)
		resp.Body.Close()
	}
}

func TestAPI_Settings(t *testing.T) {
	env := newTestEnv(t, false)

	t.Run("DefaultsServedBeforeFirstSave", func(t *testing.T) {
		var settings map[string]interface{}
		decodeBody(t, env.do(t, http.MethodGet, "/api/settings", nil), &settings)
		assert.Equal(t, "unhinged listings", settings["siteTitle"])
	})

	t.Run("PartialUpdateKeepsOtherFields", func(t *testing.T) {
		resp := env.do(t, http.MethodPut, adminPath("/api/admin/settings"),
			map[string]interface{}{"siteTitle": "slightly hinged listings"})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		resp.Body.Close()

		var settings map[string]interface{}
		decodeBody(t, env.do(t, http.MethodGet, "/api/settings", nil), &settings)
		assert.Equal(t, "slightly hinged listings", settings["siteTitle"])
		assert.Equal(t, "where mundane commerce meets existential dread", settings["tagline"])
		assert.NotEmpty(t, settings["categories"])
	})

	t.Run("ExplicitEmptyValueClearsField", func(t *testing.T) {
		resp := env.do(t, http.MethodPut, adminPath("/api/admin/settings"),
			map[string]interface{}{"tagline": ""})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		resp.Body.Close()

		var settings map[string]interface{}
		decodeBody(t, env.do(t, http.MethodGet, "/api/settings", nil), &settings)
		assert.Equal(t, "", settings["tagline"])
	})

	t.Run("Categories", func(t *testing.T) {
		var categories []map[string]interface{}
		decodeBody(t, env.do(t, http.MethodGet, "/api/categories", nil), &categories)
		require.NotEmpty(t, categories)
		assert.Equal(t, "all", categories[0]["id"])
	})
}

// failingListingRepository simulates a store that errors on every call, the
// way an unreachable Mongo surfaces at request time.
type failingListingRepository struct{}

func (failingListingRepository) Create(ctx context.Context, listing *entity.Listing) (string, error) {
	return "", errors.New("store unavailable")
}
func (failingListingRepository) GetByID(ctx context.Context, id string) (*entity.Listing, error) {
	return nil, errors.New("store unavailable")
}
func (failingListingRepository) List(ctx context.Context, filter repository.ListingFilter) ([]*entity.Listing, error) {
	return nil, errors.New("store unavailable")
}
func (failingListingRepository) Update(ctx context.Context, id string, params repository.UpdateListingParams) (*entity.Listing, error) {
	return nil, errors.New("store unavailable")
}
func (failingListingRepository) Delete(ctx context.Context, id string) error {
	return errors.New("store unavailable")
}
func (failingListingRepository) Count(ctx context.Context) (int64, error) {
	return 0, errors.New("store unavailable")
}
func (failingListingRepository) Reorder(ctx context.Context, ids []string) error {
	return errors.New("store unavailable")
}

type failingSettingsRepository struct{}

func (failingSettingsRepository) Get(ctx context.Context) (*entity.SiteSettings, error) {
	return nil, errors.New("store unavailable")
}
func (failingSettingsRepository) Upsert(ctx context.Context, settings *entity.SiteSettings) error {
	return errors.New("store unavailable")
}

func newFailingEnv(t *testing.T) *httptest.Server {
	t.Helper()
	logger := zap.NewNop()

	listingUC := usecase.NewListingUseCase(failingListingRepository{}, nil, nil, logger)
	settingsUC := usecase.NewSettingsUseCase(failingSettingsRepository{}, logger)

	gate := auth.NewGate(testAdminPassword)
	handler := NewHandler(listingUC, settingsUC, gate, nil, logger)
	router := NewRouter(handler, gate, nil, logger, "*", t.TempDir())

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func TestAPI_StoreFailuresSurfaceAs500(t *testing.T) {
	srv := newFailingEnv(t)
	env := &testEnv{server: srv}

	requests := []struct {
		method string
		path   string
		body   interface{}
	}{
		{http.MethodGet, "/api/listings", nil},
		{http.MethodGet, "/api/listings/some-id", nil},
		{http.MethodGet, "/api/settings", nil},
		{http.MethodGet, "/api/categories", nil},
		{http.MethodPost, adminPath("/api/admin/listings"), validCreateBody()},
		{http.MethodDelete, adminPath("/api/admin/listings/some-id"), nil},
	}
	for _, request := range requests {
		resp := env.do(t, request.method, request.path, request.body)
		assert.Equalf(t, http.StatusInternalServerError, resp.StatusCode, "%s %s", request.method, request.path)
		assert.Contains(t, resp.Header.Get("Content-Type"), "application/json")

		var body map[string]interface{}
		decodeBody(t, resp, &body)
		assert.NotEmptyf(t, body["error"], "%s %s must carry an error body", request.method, request.path)
	}
}

func TestAPI_CORSOriginEcho(t *testing.T) {
	env := newTestEnv(t, false)

	req, err := http.NewRequest(http.MethodGet, env.server.URL+"/api/listings", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://unhinged.example")
	resp, err := env.server.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "https://unhinged.example", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Contains(t, resp.Header.Values("Vary"), "Origin")

	resp2 := env.do(t, http.MethodGet, "/api/listings", nil)
	defer resp2.Body.Close()
	assert.Equal(t, "*", resp2.Header.Get("Access-Control-Allow-Origin"))
}

func TestAPI_SPAFallback(t *testing.T) {
	env := newTestEnv(t, false)

	for _, path := range []string{"/", "/admin", "/some/deep/client/route"} {
		resp := env.do(t, http.MethodGet, path, nil)
		assert.Equalf(t, http.StatusOK, resp.StatusCode, "GET %s", path)
		assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
		resp.Body.Close()
	}
}
