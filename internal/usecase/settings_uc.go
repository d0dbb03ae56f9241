package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/unhinged-listings/listing-service/internal/entity"
	"github.com/unhinged-listings/listing-service/internal/port/repository"
	"go.uber.org/zap"
)

type SettingsUseCase struct {
	settingsRepo repository.SettingsRepository
	logger       *zap.Logger
}

func NewSettingsUseCase(sr repository.SettingsRepository, log *zap.Logger) *SettingsUseCase {
	return &SettingsUseCase{
		settingsRepo: sr,
		logger:       log,
	}
}

func (uc *SettingsUseCase) GetSettings(ctx context.Context) (*entity.SiteSettings, error) {
	settings, err := uc.settingsRepo.Get(ctx)
	if err != nil {
		uc.logger.Error("Failed to get site settings", zap.Error(err))
		return nil, fmt.Errorf("SettingsUseCase.GetSettings: %w", err)
	}
	return settings, nil
}

// GetCategories returns the configured category list, falling back to the
// defaults when the operator never saved settings.
func (uc *SettingsUseCase) GetCategories(ctx context.Context) ([]entity.Category, error) {
	settings, err := uc.GetSettings(ctx)
	if err != nil {
		return nil, err
	}
	if len(settings.Categories) == 0 {
		return entity.DefaultSiteSettings().Categories, nil
	}
	return settings.Categories, nil
}

func (uc *SettingsUseCase) UpdateSettings(ctx context.Context, settings *entity.SiteSettings) error {
	settings.UpdatedAt = time.Now().UTC()
	if err := uc.settingsRepo.Upsert(ctx, settings); err != nil {
		uc.logger.Error("Failed to update site settings", zap.Error(err))
		return fmt.Errorf("SettingsUseCase.UpdateSettings: %w", err)
	}
	return nil
}
