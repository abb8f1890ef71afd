package repository

import (
	"context"
	"errors"
	"fmt"
	"time"
	reservationserrors "venuebook/internal/reservations/errors"
	"venuebook/pkg/config"
	mongotx "venuebook/pkg/db/mongo"
	"venuebook/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "reservations"
)

// creationOrder is the stored order conflict detection relies on.
var creationOrder = bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}

type ReservationRepository interface {
	Create(ctx context.Context, reservation *model.Reservation) error
	FindByID(ctx context.Context, id string) (*model.Reservation, error)
	FindByVenueAndDate(ctx context.Context, venueID, date string) ([]*model.Reservation, error)
	FindByVenueAndDateRange(ctx context.Context, venueID, from, to string) ([]*model.Reservation, error)
	FindByRequester(ctx context.Context, requesterID, status string, limit int) ([]*model.Reservation, error)
	FindPending(ctx context.Context, limit int) ([]*model.Reservation, error)
	FindProvisionalCreatedBefore(ctx context.Context, cutoff time.Time, limit int) ([]*model.Reservation, error)
	CountByStatus(ctx context.Context) ([]model.StatusCount, error)
	Transition(ctx context.Context, id string, change StatusChange) error
	SetCode(ctx context.Context, id, code string, expiresAt time.Time) error
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

type mongoReservationRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

func NewMongoReservationRepository(cfg *config.Config) ReservationRepository {
	db := cfg.Client.Mongo.Client.Database(cfg.MongoDatabaseName)
	return &mongoReservationRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo.Client),
	}
}

func (r *mongoReservationRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if mongotx.InSession(ctx) {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoReservationRepository) Create(ctx context.Context, reservation *model.Reservation) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if reservation.CreatedAt.IsZero() {
		reservation.CreatedAt = time.Now().UTC()
	}
	reservation.CreatedAt = reservation.CreatedAt.Truncate(time.Millisecond)
	reservation.UpdatedAt = reservation.CreatedAt

	result, err := r.collection.InsertOne(ctx, reservation)
	if err != nil {
		return fmt.Errorf("failed to create reservation: %w", err)
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		reservation.ID = oid.Hex()
	}
	return nil
}

func (r *mongoReservationRepository) FindByID(ctx context.Context, id string) (*model.Reservation, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", reservationserrors.ErrInvalidID, id)
	}

	var reservation model.Reservation
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&reservation)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", reservationserrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to find reservation: %w", err)
	}
	return &reservation, nil
}

func (r *mongoReservationRepository) FindByVenueAndDate(ctx context.Context, venueID, date string) ([]*model.Reservation, error) {
	filter := bson.M{"venue_id": venueID, "date": date}
	return r.find(ctx, filter, options.Find().SetSort(creationOrder))
}

func (r *mongoReservationRepository) FindByVenueAndDateRange(ctx context.Context, venueID, from, to string) ([]*model.Reservation, error) {
	filter := bson.M{
		"venue_id": venueID,
		"date":     bson.M{"$gte": from, "$lte": to},
		"status":   bson.M{"$in": activeStatuses},
	}
	return r.find(ctx, filter, options.Find().SetSort(creationOrder))
}

// FindByRequester lists the requester's reservations newest first. An empty
// status matches every status.
func (r *mongoReservationRepository) FindByRequester(ctx context.Context, requesterID, status string, limit int) ([]*model.Reservation, error) {
	filter := bson.M{"requester_id": requesterID}
	if status != "" {
		filter["status"] = status
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "date", Value: -1}, {Key: "start_time", Value: -1}}).
		SetLimit(int64(limit))
	return r.find(ctx, filter, opts)
}

func (r *mongoReservationRepository) FindPending(ctx context.Context, limit int) ([]*model.Reservation, error) {
	opts := options.Find().SetSort(creationOrder).SetLimit(int64(limit))
	return r.find(ctx, bson.M{"status": model.StatusProvisional}, opts)
}

// FindProvisionalCreatedBefore returns provisional reservations created
// strictly before cutoff, oldest first.
func (r *mongoReservationRepository) FindProvisionalCreatedBefore(ctx context.Context, cutoff time.Time, limit int) ([]*model.Reservation, error) {
	filter := bson.M{
		"status":     model.StatusProvisional,
		"created_at": bson.M{"$lt": cutoff},
	}
	opts := options.Find().SetSort(creationOrder).SetLimit(int64(limit))
	return r.find(ctx, filter, opts)
}

func (r *mongoReservationRepository) CountByStatus(ctx context.Context) ([]model.StatusCount, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$status"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
	}
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate reservation statuses: %w", err)
	}
	defer cursor.Close(ctx)

	counts := []model.StatusCount{}
	if err := cursor.All(ctx, &counts); err != nil {
		return nil, fmt.Errorf("failed to decode status counts: %w", err)
	}
	return counts, nil
}

// Transition applies change only while the stored status still equals
// change.From. A miss is reported as ErrNotFound or ErrStatusChanged.
func (r *mongoReservationRepository) Transition(ctx context.Context, id string, change StatusChange) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", reservationserrors.ErrInvalidID, id)
	}

	result, err := r.collection.UpdateOne(ctx, change.filter(objectID), change.update())
	if err != nil {
		return fmt.Errorf("failed to transition reservation: %w", err)
	}
	if result.MatchedCount == 0 {
		return r.missReason(ctx, objectID, id)
	}
	return nil
}

func (r *mongoReservationRepository) SetCode(ctx context.Context, id, code string, expiresAt time.Time) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", reservationserrors.ErrInvalidID, id)
	}

	filter := bson.M{"_id": objectID, "status": model.StatusProvisional}
	update := bson.M{"$set": bson.M{
		"code":            code,
		"code_expires_at": expiresAt,
		"updated_at":      time.Now().UTC().Truncate(time.Millisecond),
	}}
	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to store verification code: %w", err)
	}
	if result.MatchedCount == 0 {
		return r.missReason(ctx, objectID, id)
	}
	return nil
}

func (r *mongoReservationRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}

func (r *mongoReservationRepository) missReason(ctx context.Context, objectID primitive.ObjectID, id string) error {
	count, err := r.collection.CountDocuments(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to re-read reservation: %w", err)
	}
	if count == 0 {
		return fmt.Errorf("%w: %s", reservationserrors.ErrNotFound, id)
	}
	return fmt.Errorf("%w: %s", reservationserrors.ErrStatusChanged, id)
}

func (r *mongoReservationRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*model.Reservation, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query reservations: %w", err)
	}
	defer cursor.Close(ctx)

	reservations := []*model.Reservation{}
	if err := cursor.All(ctx, &reservations); err != nil {
		return nil, fmt.Errorf("failed to decode reservations: %w", err)
	}
	return reservations, nil
}

var activeStatuses = []string{model.StatusProvisional, model.StatusConfirmed}
