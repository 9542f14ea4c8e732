package database

import (
	"context"
	"fmt"
	"time"

	"github.com/kestrel-hq/kestrel/internal/model"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// LogRepository handles webhook audit log operations
type LogRepository struct {
	collection *mongo.Collection
}

// NewLogRepository creates a new log repository
func NewLogRepository(db *MongoDB) *LogRepository {
	return &LogRepository{
		collection: db.GetCollection(CollectionWebhookLogs),
	}
}

// Insert persists a new audit log entry
func (r *LogRepository) Insert(ctx context.Context, entry *model.WebhookLog) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if entry.ID.IsZero() {
		entry.ID = primitive.NewObjectID()
	}

	if _, err := r.collection.InsertOne(ctxTimeout, entry); err != nil {
		return fmt.Errorf("failed to insert webhook log: %w", err)
	}

	return nil
}

// List retrieves audit log entries with filtering and pagination,
// newest first
func (r *LogRepository) List(ctx context.Context, filter bson.M, page, limit int) ([]model.WebhookLog, int64, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	total, err := r.collection.CountDocuments(ctxTimeout, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count webhook logs: %w", err)
	}

	skip := (page - 1) * limit
	opts := options.Find().
		SetSkip(int64(skip)).
		SetLimit(int64(limit)).
		SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.collection.Find(ctxTimeout, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list webhook logs: %w", err)
	}
	defer cursor.Close(ctxTimeout)

	var entries []model.WebhookLog
	if err := cursor.All(ctxTimeout, &entries); err != nil {
		return nil, 0, fmt.Errorf("failed to decode webhook logs: %w", err)
	}

	return entries, total, nil
}

// DeleteOlderThan removes audit log entries created before the cutoff.
// Used by the retention sweeper.
func (r *LogRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	filter := bson.M{"created_at": bson.M{"$lt": cutoff}}

	result, err := r.collection.DeleteMany(ctxTimeout, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired webhook logs: %w", err)
	}

	return result.DeletedCount, nil
}
