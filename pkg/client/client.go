package client

import (
	"context"
	"time"
	"venuebook/pkg/logger"
)

type Client struct {
	Mongo        *MongoClient
	Reservations *ReservationClient
	Venues       *VenueClient
}

func NewClient() *Client {
	return &Client{}
}

func (c *Client) SetMongo(log *logger.Logger, mongoURI string, mongoConnTimeout time.Duration) {
	c.Mongo = NewMongoClient(log, mongoURI, mongoConnTimeout)
}

func (c *Client) SetReservationClient(baseURL string, timeout time.Duration) {
	c.Reservations = NewReservationClient(baseURL, timeout)
}

func (c *Client) SetVenueClient(baseURL string, timeout time.Duration) {
	c.Venues = NewVenueClient(baseURL, timeout)
}

func (c *Client) GracefulShutdown(log *logger.Logger) {
	if c.Mongo == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := c.Mongo.Client.Disconnect(ctx); err != nil {
		log.Error("Failed to disconnect from MongoDB", "error", err)
		return
	}
	log.Info("Disconnected from MongoDB")
}
