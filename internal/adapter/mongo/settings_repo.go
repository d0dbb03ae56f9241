package mongo

import (
	"context"
	"errors"
	"fmt"

	"github.com/unhinged-listings/listing-service/internal/entity"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	settingsCollectionName = "site_settings"
	settingsDocumentID     = "site"
)

type SettingsMongoRepository struct {
	db *mongo.Database
}

func NewSettingsMongoRepository(client *mongo.Client, dbName string) *SettingsMongoRepository {
	return &SettingsMongoRepository{
		db: client.Database(dbName),
	}
}

// Get decodes the stored document over a defaults-initialized struct, so
// fields the operator never saved keep their default values.
func (r *SettingsMongoRepository) Get(ctx context.Context) (*entity.SiteSettings, error) {
	settings := entity.DefaultSiteSettings()

	err := r.db.Collection(settingsCollectionName).
		FindOne(ctx, bson.M{"_id": settingsDocumentID}).
		Decode(&settings)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return &settings, nil
		}
		return nil, fmt.Errorf("failed to get site settings from mongo: %w", err)
	}
	return &settings, nil
}

func (r *SettingsMongoRepository) Upsert(ctx context.Context, settings *entity.SiteSettings) error {
	opts := options.Update().SetUpsert(true)
	_, err := r.db.Collection(settingsCollectionName).UpdateOne(ctx,
		bson.M{"_id": settingsDocumentID},
		bson.M{"$set": settings},
		opts,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert site settings in mongo: %w", err)
	}
	return nil
}
