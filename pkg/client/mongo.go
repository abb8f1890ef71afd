package client

import (
	"context"
	"time"
	"venuebook/pkg/logger"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
)

const (
	mongoAppName     = "venuebook"
	mongoPingRetries = 3
)

// MongoClient holds the shared driver handle. Reservation writes run inside
// transactions, so the deployment must be a replica set.
type MongoClient struct {
	Client *mongo.Client
}

func NewMongoClient(log *logger.Logger, mongoURI string, mongoConnTimeout time.Duration) *MongoClient {
	log = log.Component("mongo")

	opts := options.Client().
		ApplyURI(mongoURI).
		SetAppName(mongoAppName).
		SetConnectTimeout(mongoConnTimeout).
		SetWriteConcern(writeconcern.Majority())

	ctx, cancel := context.WithTimeout(context.Background(), mongoConnTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		log.Fatal("Failed to connect to MongoDB", "error", err)
	}

	var pingErr error
	for attempt := 1; attempt <= mongoPingRetries; attempt++ {
		if pingErr = client.Ping(ctx, readpref.Primary()); pingErr == nil {
			break
		}
		log.Warn("MongoDB ping failed", "attempt", attempt, "error", pingErr)
		select {
		case <-ctx.Done():
			attempt = mongoPingRetries
		case <-time.After(time.Duration(attempt) * 200 * time.Millisecond):
		}
	}
	if pingErr != nil {
		log.Fatal("Failed to reach MongoDB primary", "error", pingErr)
	}

	log.Info("Connected to MongoDB", "app_name", mongoAppName)
	return &MongoClient{Client: client}
}
