package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/kestrel-hq/kestrel/internal/model"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// LockRepository handles distributed locks for background maintenance.
// Locks are keyed by a resource name and use FindOneAndUpdate with
// upsert for atomic acquisition.
type LockRepository struct {
	collection *mongo.Collection
}

// NewLockRepository creates a new lock repository
func NewLockRepository(db *MongoDB) *LockRepository {
	return &LockRepository{
		collection: db.GetCollection(CollectionSweepLocks),
	}
}

// Acquire attempts to take the lock for a resource. Returns true if the
// lock was acquired, false when another holder owns an unexpired lock.
func (r *LockRepository) Acquire(ctx context.Context, resource, holder string, ttl time.Duration) (bool, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	now := time.Now().UTC()

	// Match only when no lock exists or the existing one has expired
	filter := bson.M{
		"resource": resource,
		"$or": []bson.M{
			{"expires_at": bson.M{"$lt": now}},
			{"expires_at": bson.M{"$exists": false}},
		},
	}

	update := bson.M{
		"$set": bson.M{
			"resource":   resource,
			"locked_by":  holder,
			"locked_at":  now,
			"expires_at": now.Add(ttl),
		},
	}

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var lock model.SweepLock
	err := r.collection.FindOneAndUpdate(ctxTimeout, filter, update, opts).Decode(&lock)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return false, nil
		}
		// A duplicate key error means another holder upserted first
		if mongo.IsDuplicateKeyError(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to acquire lock: %w", err)
	}

	if lock.LockedBy != holder {
		return false, nil
	}

	slog.Debug("Acquired maintenance lock",
		"resource", resource,
		"holder", holder,
		"expires_at", lock.ExpiresAt,
	)

	return true, nil
}

// Release frees a lock, but only if it is owned by the given holder
func (r *LockRepository) Release(ctx context.Context, resource, holder string) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"resource":  resource,
		"locked_by": holder,
	}

	if _, err := r.collection.DeleteOne(ctxTimeout, filter); err != nil {
		return fmt.Errorf("failed to release lock: %w", err)
	}

	return nil
}

// ReleaseAll frees every lock owned by the holder; called on shutdown
func (r *LockRepository) ReleaseAll(ctx context.Context, holder string) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	result, err := r.collection.DeleteMany(ctxTimeout, bson.M{"locked_by": holder})
	if err != nil {
		return fmt.Errorf("failed to release all locks: %w", err)
	}

	if result.DeletedCount > 0 {
		slog.Info("Released maintenance locks during shutdown",
			"holder", holder,
			"count", result.DeletedCount,
		)
	}

	return nil
}
