// internal/infrastructure/database/mongo/connection.go
package mongo

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/your-org/cloudeats-backend/internal/config"
)

// Client wraps the MongoDB client and the application database
type Client struct {
	Mongo    *mongo.Client
	Database *mongo.Database
}

// NewConnection creates a new MongoDB connection
func NewConnection(cfg *config.Config) (*Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.Mongo.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	// Test the connection
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	log.Println("✅ MongoDB connection established successfully")

	return &Client{
		Mongo:    client,
		Database: client.Database(cfg.Mongo.Database),
	}, nil
}

// Close closes the MongoDB connection
func (c *Client) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return c.Mongo.Disconnect(ctx)
}

// GetDatabase returns the application database handle
func (c *Client) GetDatabase() *mongo.Database {
	return c.Database
}

// Health checks the MongoDB connection health
func (c *Client) Health() error {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	return c.Mongo.Ping(ctx, readpref.Primary())
}
