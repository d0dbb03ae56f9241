package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/unhinged-listings/listing-service/internal/entity"
	"github.com/unhinged-listings/listing-service/internal/port/cache"
	"github.com/unhinged-listings/listing-service/internal/port/repository"
	"go.uber.org/zap"
)

var (
	// ErrInvalidInput indicates a missing or malformed required field.
	ErrInvalidInput = errors.New("invalid listing data")
	// ErrEmptyUpdate indicates an update request with no fields to change.
	ErrEmptyUpdate = errors.New("no fields to update")
)

type ListingPublisher interface {
	PublishListingCreated(ctx context.Context, listing *entity.Listing) error
	PublishListingUpdated(ctx context.Context, listing *entity.Listing) error
	PublishListingDeleted(ctx context.Context, listingID string) error
}

type ListingUseCase struct {
	listingRepo repository.ListingRepository
	publisher   ListingPublisher
	cacheRepo   cache.CacheRepository
	logger      *zap.Logger
}

// NewListingUseCase wires the listing operations. publisher and cacheRepo may
// be nil; both are best-effort side channels.
func NewListingUseCase(
	lr repository.ListingRepository,
	pub ListingPublisher,
	cr cache.CacheRepository,
	log *zap.Logger,
) *ListingUseCase {
	return &ListingUseCase{
		listingRepo: lr,
		publisher:   pub,
		cacheRepo:   cr,
		logger:      log,
	}
}

func listingCacheKey(listingID string) string {
	return fmt.Sprintf("listing:%s", listingID)
}

const listingCacheTTL = 5 * time.Minute

type CreateListingInput struct {
	Title       string
	Description string
	Excerpt     string
	Price       float64
	Status      string
	Category    string
	Images      []string
	FacebookURL string
	Location    string
	PostedDate  time.Time
}

func (in CreateListingInput) validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if strings.TrimSpace(in.Description) == "" {
		return fmt.Errorf("%w: description is required", ErrInvalidInput)
	}
	if strings.TrimSpace(in.Category) == "" {
		return fmt.Errorf("%w: category is required", ErrInvalidInput)
	}
	if in.Price < 0 {
		return fmt.Errorf("%w: price must not be negative", ErrInvalidInput)
	}
	return nil
}

func (uc *ListingUseCase) CreateListing(ctx context.Context, input CreateListingInput) (*entity.Listing, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	listing := &entity.Listing{
		Title:       input.Title,
		Description: input.Description,
		Excerpt:     input.Excerpt,
		Price:       input.Price,
		Status:      input.Status,
		Category:    input.Category,
		Images:      input.Images,
		FacebookURL: input.FacebookURL,
		Location:    input.Location,
		PostedDate:  input.PostedDate,
	}
	if listing.Status == "" {
		listing.Status = entity.DefaultStatus
	}
	if listing.Location == "" {
		listing.Location = entity.DefaultLocation
	}
	if listing.Images == nil {
		listing.Images = []string{}
	}

	createdID, err := uc.listingRepo.Create(ctx, listing)
	if err != nil {
		uc.logger.Error("Failed to create listing in repository", zap.Error(err))
		return nil, fmt.Errorf("ListingUseCase.CreateListing: %w", err)
	}
	listing.ID = createdID

	uc.cacheListing(ctx, listing)

	if uc.publisher != nil {
		if errPub := uc.publisher.PublishListingCreated(ctx, listing); errPub != nil {
			uc.logger.Warn("Failed to publish listing created event",
				zap.Error(errPub),
				zap.String("listing_id", listing.ID),
			)
		}
	}

	return listing, nil
}

func (uc *ListingUseCase) GetListing(ctx context.Context, id string) (*entity.Listing, error) {
	if uc.cacheRepo != nil {
		key := listingCacheKey(id)
		cachedBytes, err := uc.cacheRepo.Get(ctx, key)
		if err == nil {
			var listing entity.Listing
			if unmarshalErr := json.Unmarshal(cachedBytes, &listing); unmarshalErr == nil {
				uc.logger.Debug("Listing fetched from cache", zap.String("key", key))
				return &listing, nil
			}
			uc.logger.Warn("Failed to unmarshal listing from cache, dropping entry", zap.String("key", key))
			if delErr := uc.cacheRepo.Delete(ctx, key); delErr != nil {
				uc.logger.Warn("Failed to delete corrupted cache entry", zap.String("key", key), zap.Error(delErr))
			}
		} else if !errors.Is(err, cache.ErrNotFound) {
			uc.logger.Warn("Cache lookup failed, falling back to store", zap.String("key", key), zap.Error(err))
		}
	}

	listing, err := uc.listingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		uc.logger.Error("Failed to get listing from repository", zap.String("listing_id", id), zap.Error(err))
		return nil, fmt.Errorf("ListingUseCase.GetListing: %w", err)
	}

	uc.cacheListing(ctx, listing)
	return listing, nil
}

// ListListings returns listings in manual sort order. The "all"
// pseudo-category means no filter, matching the frontend's category tabs.
func (uc *ListingUseCase) ListListings(ctx context.Context, category string) ([]*entity.Listing, error) {
	if category == "all" {
		category = ""
	}
	listings, err := uc.listingRepo.List(ctx, repository.ListingFilter{Category: category})
	if err != nil {
		uc.logger.Error("Failed to list listings", zap.String("category", category), zap.Error(err))
		return nil, fmt.Errorf("ListingUseCase.ListListings: %w", err)
	}
	if listings == nil {
		listings = []*entity.Listing{}
	}
	return listings, nil
}

type UpdateListingInput struct {
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

func (in UpdateListingInput) validate() error {
	empty := true
	for _, set := range []bool{
		in.Title != nil, in.Description != nil, in.Excerpt != nil,
		in.Price != nil, in.Status != nil, in.Category != nil,
		in.Images != nil, in.FacebookURL != nil, in.Location != nil,
	} {
		if set {
			empty = false
			break
		}
	}
	if empty {
		return ErrEmptyUpdate
	}
	if in.Title != nil && strings.TrimSpace(*in.Title) == "" {
		return fmt.Errorf("%w: title must not be empty", ErrInvalidInput)
	}
	if in.Description != nil && strings.TrimSpace(*in.Description) == "" {
		return fmt.Errorf("%w: description must not be empty", ErrInvalidInput)
	}
	if in.Category != nil && strings.TrimSpace(*in.Category) == "" {
		return fmt.Errorf("%w: category must not be empty", ErrInvalidInput)
	}
	if in.Price != nil && *in.Price < 0 {
		return fmt.Errorf("%w: price must not be negative", ErrInvalidInput)
	}
	return nil
}

func (uc *ListingUseCase) UpdateListing(ctx context.Context, id string, input UpdateListingInput) (*entity.Listing, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	params := repository.UpdateListingParams{
		Title:       input.Title,
		Description: input.Description,
		Excerpt:     input.Excerpt,
		Price:       input.Price,
		Status:      input.Status,
		Category:    input.Category,
		Images:      input.Images,
		FacebookURL: input.FacebookURL,
		Location:    input.Location,
	}

	listing, err := uc.listingRepo.Update(ctx, id, params)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		uc.logger.Error("Failed to update listing", zap.String("listing_id", id), zap.Error(err))
		return nil, fmt.Errorf("ListingUseCase.UpdateListing: %w", err)
	}

	uc.invalidateListing(ctx, id)

	if uc.publisher != nil {
		if errPub := uc.publisher.PublishListingUpdated(ctx, listing); errPub != nil {
			uc.logger.Warn("Failed to publish listing updated event",
				zap.Error(errPub),
				zap.String("listing_id", listing.ID),
			)
		}
	}

	return listing, nil
}

func (uc *ListingUseCase) DeleteListing(ctx context.Context, id string) error {
	if err := uc.listingRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return err
		}
		uc.logger.Error("Failed to delete listing", zap.String("listing_id", id), zap.Error(err))
		return fmt.Errorf("ListingUseCase.DeleteListing: %w", err)
	}

	uc.invalidateListing(ctx, id)

	if uc.publisher != nil {
		if errPub := uc.publisher.PublishListingDeleted(ctx, id); errPub != nil {
			uc.logger.Warn("Failed to publish listing deleted event",
				zap.Error(errPub),
				zap.String("listing_id", id),
			)
		}
	}

	return nil
}

func (uc *ListingUseCase) ReorderListings(ctx context.Context, ids []string) error {
	if err := uc.listingRepo.Reorder(ctx, ids); err != nil {
		uc.logger.Error("Failed to reorder listings", zap.Error(err))
		return fmt.Errorf("ListingUseCase.ReorderListings: %w", err)
	}
	for _, id := range ids {
		uc.invalidateListing(ctx, id)
	}
	return nil
}

func (uc *ListingUseCase) cacheListing(ctx context.Context, listing *entity.Listing) {
	if uc.cacheRepo == nil {
		return
	}
	listingBytes, err := json.Marshal(listing)
	if err != nil {
		uc.logger.Warn("Failed to marshal listing for caching",
			zap.Error(err),
			zap.String("listing_id", listing.ID),
		)
		return
	}
	key := listingCacheKey(listing.ID)
	if setErr := uc.cacheRepo.Set(ctx, key, listingBytes, listingCacheTTL); setErr != nil {
		uc.logger.Warn("Failed to set listing in cache", zap.String("key", key), zap.Error(setErr))
	}
}

func (uc *ListingUseCase) invalidateListing(ctx context.Context, id string) {
	if uc.cacheRepo == nil {
		return
	}
	key := listingCacheKey(id)
	if err := uc.cacheRepo.Delete(ctx, key); err != nil {
		uc.logger.Warn("Failed to invalidate listing cache entry", zap.String("key", key), zap.Error(err))
	}
}
