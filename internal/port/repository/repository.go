package repository

import (
	"context"
	"errors"

	"github.com/unhinged-listings/listing-service/internal/entity"
)

var (
	ErrNotFound    = errors.New("entity not found")
	ErrQueryFailed = errors.New("database query failed")
)

// ListingFilter narrows List results. An empty Category returns everything.
type ListingFilter struct {
	Category string
}

// UpdateListingParams carries a partial update. Nil fields are left unchanged
// in the stored document.
type UpdateListingParams struct {
	Title       *string
	Description *string
	Excerpt     *string
	Price       *float64
	Status      *string
	Category    *string
	Images      *[]string
	FacebookURL *string
	Location    *string
}

type ListingRepository interface {
	// Create assigns a new id and timestamps, persists the listing and
	// returns the assigned id.
	Create(ctx context.Context, listing *entity.Listing) (string, error)
	GetByID(ctx context.Context, id string) (*entity.Listing, error)
	// List returns listings matching the filter, sorted by sortOrder ascending.
	List(ctx context.Context, filter ListingFilter) ([]*entity.Listing, error)
	// Update merges the non-nil params into the stored document and returns
	// the updated listing. ErrNotFound when the id is absent.
	Update(ctx context.Context, id string, params UpdateListingParams) (*entity.Listing, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
	// Reorder assigns sortOrder by position in ids. Unknown or malformed ids
	// are skipped.
	Reorder(ctx context.Context, ids []string) error
}

type SettingsRepository interface {
	// Get returns the stored site settings with defaults filled in for any
	// missing field. An absent settings document yields pure defaults.
	Get(ctx context.Context) (*entity.SiteSettings, error)
	// Upsert merges the given fields into the settings document, creating it
	// if necessary.
	Upsert(ctx context.Context, settings *entity.SiteSettings) error
}
