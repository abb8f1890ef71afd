package repository

import (
	"context"
	"fmt"
	"time"
	reservationserrors "venuebook/internal/reservations/errors"
	"venuebook/pkg/config"
	"venuebook/pkg/model"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const LockCollectionName = "reservation_locks"

// LockKey names the advisory lock serializing creates for one venue and date.
func LockKey(venueID, date string) string {
	return "reservation_lock:" + venueID + ":" + date
}

type LockRepository interface {
	// Acquire returns the owner token, or ErrLockHeld when a live lock exists.
	Acquire(ctx context.Context, key string, ttl time.Duration) (string, error)
	Release(ctx context.Context, key, owner string) error
}

type mongoLockRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	now        func() time.Time
}

func NewMongoLockRepository(cfg *config.Config) LockRepository {
	db := cfg.Client.Mongo.Client.Database(cfg.MongoDatabaseName)
	return &mongoLockRepository{
		cfg:        cfg,
		collection: db.Collection(LockCollectionName),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (r *mongoLockRepository) Acquire(ctx context.Context, key string, ttl time.Duration) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := r.now().Truncate(time.Millisecond)
	lock := &model.ReservationLock{
		ID:        key,
		Owner:     uuid.NewString(),
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}

	_, err := r.collection.InsertOne(ctx, lock)
	if err == nil {
		return lock.Owner, nil
	}
	if !mongo.IsDuplicateKeyError(err) {
		return "", fmt.Errorf("failed to acquire lock %s: %w", key, err)
	}

	// The TTL monitor runs about once a minute, so an expired lock can
	// still be present. Take it over only if it has actually expired.
	filter := bson.M{"_id": key, "expires_at": bson.M{"$lte": now}}
	update := bson.M{"$set": bson.M{
		"owner":      lock.Owner,
		"expires_at": lock.ExpiresAt,
		"created_at": lock.CreatedAt,
	}}
	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return "", fmt.Errorf("failed to take over lock %s: %w", key, err)
	}
	if result.MatchedCount == 0 {
		return "", fmt.Errorf("%w: %s", reservationserrors.ErrLockHeld, key)
	}
	return lock.Owner, nil
}

// Release deletes the lock only if owner still holds it.
func (r *mongoLockRepository) Release(ctx context.Context, key, owner string) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.cfg.WriteTimeout)
	defer cancel()

	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": key, "owner": owner})
	if err != nil {
		return fmt.Errorf("failed to release lock %s: %w", key, err)
	}
	return nil
}
