package database

import (
	"context"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CreateIndexes creates all necessary indexes for the collections
func CreateIndexes(ctx context.Context, db *MongoDB) error {
	slog.Info("Creating MongoDB indexes")

	for collection, indexes := range map[string][]mongo.IndexModel{
		CollectionWebhooks: {
			{
				Keys:    bson.D{{Key: "endpoint_key", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("idx_endpoint_key_unique"),
			},
			{
				Keys:    bson.D{{Key: "enabled", Value: 1}},
				Options: options.Index().SetName("idx_enabled"),
			},
		},
		CollectionAutomationRules: {
			{
				Keys: bson.D{
					{Key: "webhook_id", Value: 1},
					{Key: "sort_order", Value: 1},
				},
				Options: options.Index().SetName("idx_webhook_id_sort_order"),
			},
		},
		CollectionWebhookLogs: {
			{
				Keys: bson.D{
					{Key: "webhook_id", Value: 1},
					{Key: "created_at", Value: -1},
				},
				Options: options.Index().SetName("idx_webhook_id_created_at"),
			},
			{
				Keys:    bson.D{{Key: "created_at", Value: -1}},
				Options: options.Index().SetName("idx_created_at"),
			},
		},
		CollectionAPITokens: {
			{
				Keys:    bson.D{{Key: "token", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("idx_token_unique"),
			},
		},
		CollectionUserRoles: {
			{
				Keys: bson.D{
					{Key: "user_id", Value: 1},
					{Key: "role", Value: 1},
				},
				Options: options.Index().SetUnique(true).SetName("idx_user_id_role_unique"),
			},
		},
		CollectionSweepLocks: {
			{
				Keys:    bson.D{{Key: "resource", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("idx_resource_unique"),
			},
			{
				Keys:    bson.D{{Key: "expires_at", Value: 1}},
				Options: options.Index().SetExpireAfterSeconds(0).SetName("idx_expires_at_ttl"),
			},
		},
	} {
		ctxTimeout, cancel := context.WithTimeout(ctx, 30*time.Second)
		_, err := db.GetCollection(collection).Indexes().CreateMany(ctxTimeout, indexes)
		cancel()
		if err != nil {
			return err
		}
		slog.Info("Created indexes", "collection", collection)
	}

	return nil
}
