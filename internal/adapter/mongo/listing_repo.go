package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/unhinged-listings/listing-service/internal/entity"
	"github.com/unhinged-listings/listing-service/internal/port/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const listingCollectionName = "listings"

type ListingMongoRepository struct {
	db *mongo.Database
}

func NewListingMongoRepository(client *mongo.Client, dbName string) *ListingMongoRepository {
	return &ListingMongoRepository{
		db: client.Database(dbName),
	}
}

type listingDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Title       string             `bson:"title"`
	Description string             `bson:"description"`
	Excerpt     string             `bson:"excerpt,omitempty"`
	Price       float64            `bson:"price"`
	Status      string             `bson:"status"`
	Category    string             `bson:"category"`
	Images      []string           `bson:"images"`
	FacebookURL string             `bson:"facebook_url,omitempty"`
	Location    string             `bson:"location,omitempty"`
	SortOrder   int                `bson:"sort_order"`
	PostedDate  primitive.DateTime `bson:"posted_date"`
	CreatedAt   primitive.DateTime `bson:"created_at"`
	UpdatedAt   primitive.DateTime `bson:"updated_at"`
}

func toListingDocument(l *entity.Listing) (*listingDocument, error) {
	doc := &listingDocument{
		Title:       l.Title,
		Description: l.Description,
		Excerpt:     l.Excerpt,
		Price:       l.Price,
		Status:      l.Status,
		Category:    l.Category,
		Images:      l.Images,
		FacebookURL: l.FacebookURL,
		Location:    l.Location,
		SortOrder:   l.SortOrder,
		PostedDate:  primitive.NewDateTimeFromTime(l.PostedDate),
		CreatedAt:   primitive.NewDateTimeFromTime(l.CreatedAt),
		UpdatedAt:   primitive.NewDateTimeFromTime(l.UpdatedAt),
	}
	if l.ID != "" {
		objID, err := primitive.ObjectIDFromHex(l.ID)
		if err != nil {
			return nil, fmt.Errorf("invalid listing ID format: %w", err)
		}
		doc.ID = objID
	}
	return doc, nil
}

func toListingEntity(doc *listingDocument) *entity.Listing {
	images := doc.Images
	if images == nil {
		images = []string{}
	}
	return &entity.Listing{
		ID:          doc.ID.Hex(),
		Title:       doc.Title,
		Description: doc.Description,
		Excerpt:     doc.Excerpt,
		Price:       doc.Price,
		Status:      doc.Status,
		Category:    doc.Category,
		Images:      images,
		FacebookURL: doc.FacebookURL,
		Location:    doc.Location,
		SortOrder:   doc.SortOrder,
		PostedDate:  doc.PostedDate.Time(),
		CreatedAt:   doc.CreatedAt.Time(),
		UpdatedAt:   doc.UpdatedAt.Time(),
	}
}

// EnsureIndexes creates the query indexes the public API relies on. Safe to
// call on every startup.
func (r *ListingMongoRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.db.Collection(listingCollectionName).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "category", Value: 1}}},
		{Keys: bson.D{{Key: "sort_order", Value: 1}}},
		{Keys: bson.D{{Key: "posted_date", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create listing indexes: %w", err)
	}
	return nil
}

func (r *ListingMongoRepository) Create(ctx context.Context, listing *entity.Listing) (string, error) {
	now := time.Now().UTC()
	listing.CreatedAt = now
	listing.UpdatedAt = now
	if listing.PostedDate.IsZero() {
		listing.PostedDate = now
	}

	sortOrder, err := r.nextSortOrder(ctx)
	if err != nil {
		return "", err
	}
	listing.SortOrder = sortOrder

	doc, err := toListingDocument(listing)
	if err != nil {
		return "", err
	}

	res, err := r.db.Collection(listingCollectionName).InsertOne(ctx, doc)
	if err != nil {
		return "", fmt.Errorf("failed to create listing in mongo: %w", err)
	}

	insertedID, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("failed to convert inserted_id to ObjectID")
	}
	return insertedID.Hex(), nil
}

// nextSortOrder places new listings at the end of the manual ordering.
func (r *ListingMongoRepository) nextSortOrder(ctx context.Context) (int, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "sort_order", Value: -1}})
	var doc listingDocument
	err := r.db.Collection(listingCollectionName).FindOne(ctx, bson.M{}, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to find max sort_order: %w", err)
	}
	return doc.SortOrder + 1, nil
}

func (r *ListingMongoRepository) GetByID(ctx context.Context, id string) (*entity.Listing, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, repository.ErrNotFound
	}

	var doc listingDocument
	err = r.db.Collection(listingCollectionName).FindOne(ctx, bson.M{"_id": objID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get listing by id from mongo: %w", err)
	}
	return toListingEntity(&doc), nil
}

func (r *ListingMongoRepository) List(ctx context.Context, filter repository.ListingFilter) ([]*entity.Listing, error) {
	mongoFilter := bson.M{}
	if filter.Category != "" {
		mongoFilter["category"] = filter.Category
	}

	findOptions := options.Find().SetSort(bson.D{{Key: "sort_order", Value: 1}})

	cursor, err := r.db.Collection(listingCollectionName).Find(ctx, mongoFilter, findOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to list listings from mongo: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []listingDocument
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode listing list from mongo: %w", err)
	}

	listings := make([]*entity.Listing, len(docs))
	for i, doc := range docs {
		listings[i] = toListingEntity(&doc)
	}
	return listings, nil
}

func (r *ListingMongoRepository) Update(ctx context.Context, id string, params repository.UpdateListingParams) (*entity.Listing, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, repository.ErrNotFound
	}

	set := bson.M{"updated_at": primitive.NewDateTimeFromTime(time.Now().UTC())}
	if params.Title != nil {
		set["title"] = *params.Title
	}
	if params.Description != nil {
		set["description"] = *params.Description
	}
	if params.Excerpt != nil {
		set["excerpt"] = *params.Excerpt
	}
	if params.Price != nil {
		set["price"] = *params.Price
	}
	if params.Status != nil {
		set["status"] = *params.Status
	}
	if params.Category != nil {
		set["category"] = *params.Category
	}
	if params.Images != nil {
		set["images"] = *params.Images
	}
	if params.FacebookURL != nil {
		set["facebook_url"] = *params.FacebookURL
	}
	if params.Location != nil {
		set["location"] = *params.Location
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc listingDocument
	err = r.db.Collection(listingCollectionName).
		FindOneAndUpdate(ctx, bson.M{"_id": objID}, bson.M{"$set": set}, opts).
		Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update listing in mongo: %w", err)
	}
	return toListingEntity(&doc), nil
}

func (r *ListingMongoRepository) Delete(ctx context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return repository.ErrNotFound
	}

	res, err := r.db.Collection(listingCollectionName).DeleteOne(ctx, bson.M{"_id": objID})
	if err != nil {
		return fmt.Errorf("failed to delete listing from mongo: %w", err)
	}
	if res.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *ListingMongoRepository) Count(ctx context.Context) (int64, error) {
	count, err := r.db.Collection(listingCollectionName).CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count listings in mongo: %w", err)
	}
	return count, nil
}

func (r *ListingMongoRepository) Reorder(ctx context.Context, ids []string) error {
	for i, id := range ids {
		objID, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			continue
		}
		_, err = r.db.Collection(listingCollectionName).UpdateOne(ctx,
			bson.M{"_id": objID},
			bson.M{"$set": bson.M{"sort_order": i}},
		)
		if err != nil {
			return fmt.Errorf("failed to reorder listing %s: %w", id, err)
		}
	}
	return nil
}
