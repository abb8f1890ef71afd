package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"
	venueserrors "venuebook/internal/venues/errors"
	"venuebook/pkg/config"
	mongotx "venuebook/pkg/db/mongo"
	"venuebook/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "venues"
)

type VenueFilter struct {
	ActiveOnly bool
	NameKey    string
}

type VenueRepository interface {
	Create(ctx context.Context, venue *model.Venue) error
	FindByID(ctx context.Context, id string) (*model.Venue, error)
	FindAll(ctx context.Context, filter VenueFilter, limit int, offset int64) ([]*model.Venue, error)
	Count(ctx context.Context, filter VenueFilter) (int64, error)
	Update(ctx context.Context, id string, venue *model.Venue) error
	SetActive(ctx context.Context, id string, active bool) error
}

type mongoVenueRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoVenueRepository(cfg *config.Config) VenueRepository {
	db := cfg.Client.Mongo.Client.Database(cfg.MongoDatabaseName)
	return &mongoVenueRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

// withTimeout bounds ctx unless it is already part of a transaction, whose
// SessionContext must be passed through untouched.
func (r *mongoVenueRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if mongotx.InSession(ctx) {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoVenueRepository) Create(ctx context.Context, venue *model.Venue) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	venue.CreatedAt = now
	venue.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, venue)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %s", venueserrors.ErrDuplicateName, venue.Name)
		}
		return fmt.Errorf("failed to create venue: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		venue.ID = oid.Hex()
	}
	return nil
}

func (r *mongoVenueRepository) FindByID(ctx context.Context, id string) (*model.Venue, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", venueserrors.ErrInvalidID, id)
	}

	var venue model.Venue
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&venue)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", venueserrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to find venue: %w", err)
	}
	return &venue, nil
}

func (r *mongoVenueRepository) FindAll(ctx context.Context, filter VenueFilter, limit int, offset int64) ([]*model.Venue, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetLimit(int64(limit)).
		SetSkip(offset).
		SetSort(bson.D{{Key: "name_key", Value: 1}})

	cursor, err := r.collection.Find(ctx, toBSON(filter), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query venues: %w", err)
	}
	defer cursor.Close(ctx)

	venues := []*model.Venue{}
	if err := cursor.All(ctx, &venues); err != nil {
		return nil, fmt.Errorf("failed to decode venues: %w", err)
	}
	return venues, nil
}

func (r *mongoVenueRepository) Count(ctx context.Context, filter VenueFilter) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, toBSON(filter))
	if err != nil {
		return 0, fmt.Errorf("failed to count venues: %w", err)
	}
	return count, nil
}

func (r *mongoVenueRepository) Update(ctx context.Context, id string, venue *model.Venue) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", venueserrors.ErrInvalidID, id)
	}

	update := bson.M{
		"$set": bson.M{
			"name":        venue.Name,
			"name_key":    venue.NameKey,
			"description": venue.Description,
			"location":    venue.Location,
			"capacity":    venue.Capacity,
			"amenities":   venue.Amenities,
			"active":      venue.Active,
			"updated_at":  time.Now().UTC().Truncate(time.Millisecond),
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %s", venueserrors.ErrDuplicateName, venue.Name)
		}
		return fmt.Errorf("failed to update venue: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", venueserrors.ErrNotFound, id)
	}
	return nil
}

func (r *mongoVenueRepository) SetActive(ctx context.Context, id string, active bool) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", venueserrors.ErrInvalidID, id)
	}

	update := bson.M{"$set": bson.M{
		"active":     active,
		"updated_at": time.Now().UTC().Truncate(time.Millisecond),
	}}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return fmt.Errorf("failed to set venue active flag: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", venueserrors.ErrNotFound, id)
	}
	return nil
}

func toBSON(f VenueFilter) bson.M {
	filter := bson.M{}
	if f.ActiveOnly {
		filter["active"] = true
	}
	if f.NameKey != "" {
		filter["name_key"] = bson.M{"$regex": primitive.Regex{Pattern: regexp.QuoteMeta(f.NameKey)}}
	}
	return filter
}
