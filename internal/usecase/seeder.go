package usecase

import (
	"context"
	"fmt"

	"github.com/unhinged-listings/listing-service/internal/port/repository"
	"go.uber.org/zap"
)

// Seeder populates an empty store with the initial listing set at startup.
type Seeder struct {
	listingRepo repository.ListingRepository
	logger      *zap.Logger
}

func NewSeeder(lr repository.ListingRepository, log *zap.Logger) *Seeder {
	return &Seeder{
		listingRepo: lr,
		logger:      log,
	}
}

// SeedIfEmpty inserts the seed listings when the collection holds no
// documents. A non-empty store is left untouched regardless of its contents,
// so running this on every startup is safe.
func (s *Seeder) SeedIfEmpty(ctx context.Context) error {
	count, err := s.listingRepo.Count(ctx)
	if err != nil {
		return fmt.Errorf("Seeder.SeedIfEmpty: failed to count listings: %w", err)
	}
	if count > 0 {
		s.logger.Debug("Store already populated, skipping seed", zap.Int64("count", count))
		return nil
	}

	s.logger.Info("Database empty, seeding initial listings")
	for _, seed := range seedListings() {
		listing := seed
		if _, err := s.listingRepo.Create(ctx, &listing); err != nil {
			return fmt.Errorf("Seeder.SeedIfEmpty: failed to insert seed listing %q: %w", listing.Title, err)
		}
	}
	s.logger.Info("Seeded initial listings", zap.Int("count", len(seedListings())))
	return nil
}
