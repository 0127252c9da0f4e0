package config

import (
	"context"
	"os"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	defaultMongoURI       = "mongodb://localhost:27017/seva-db"
	defaultDatabaseName   = "seva-db"
	defaultConnectTimeout = 5 * time.Second
)

// MongoURI returns the configured connection string.
func MongoURI() string {
	if uri := os.Getenv("MONGODB_URI"); uri != "" {
		return uri
	}
	return defaultMongoURI
}

// DatabaseName returns the configured database name.
func DatabaseName() string {
	if name := os.Getenv("MONGODB_DB"); name != "" {
		return name
	}
	return defaultDatabaseName
}

// ConnectTimeout bounds the startup probe and server selection.
func ConnectTimeout() time.Duration {
	if raw := os.Getenv("STORAGE_CONNECT_TIMEOUT"); raw != "" {
		if secs, err := strconv.Atoi(raw); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return defaultConnectTimeout
}

// ConnectDB probes MongoDB under the configured timeout. A non-nil error
// means the caller should fall back to in-memory storage; this function
// never terminates the process.
func ConnectDB() (*mongo.Database, error) {
	timeout := ConnectTimeout()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	opts := options.Client().
		ApplyURI(MongoURI()).
		SetServerSelectionTimeout(timeout).
		SetConnectTimeout(timeout)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, err
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	return client.Database(DatabaseName()), nil
}
