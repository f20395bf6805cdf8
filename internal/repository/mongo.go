package repository

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	collProxyActions  = "proxy_actions"
	collMembers       = "members"
	collContributions = "contributions"
	collLoans         = "loans"
)

// Connect opens the Mongo client and pings it before returning the
// database handle.
func Connect(ctx context.Context, uri, database string) (*mongo.Database, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	slog.Info("Connected to MongoDB", "database", database)
	return client.Database(database), nil
}

// EnsureIndexes creates the indexes the repositories rely on. Safe to
// run on every startup.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(collProxyActions).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "expiresAt", Value: 1}}},
		{Keys: bson.D{{Key: "requestedBy", Value: 1}}},
		{Keys: bson.D{{Key: "isTemplate", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("proxy action indexes: %w", err)
	}
	unique := options.Index().SetUnique(true)
	_, err = db.Collection(collMembers).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: unique},
		{Keys: bson.D{{Key: "sessionId", Value: 1}}},
		{Keys: bson.D{{Key: "apiKey", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("member indexes: %w", err)
	}
	_, err = db.Collection(collContributions).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "memberId", Value: 1}, {Key: "month", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("contribution indexes: %w", err)
	}
	_, err = db.Collection(collLoans).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "memberId", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("loan indexes: %w", err)
	}
	return nil
}
