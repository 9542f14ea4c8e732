package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kestrel-hq/kestrel/internal/model"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// WebhookRepository reads webhook definitions. Definitions are written
// by the admin surface elsewhere in the system; this service treats
// them as read-only.
type WebhookRepository struct {
	collection *mongo.Collection
}

// NewWebhookRepository creates a new webhook repository
func NewWebhookRepository(db *MongoDB) *WebhookRepository {
	return &WebhookRepository{
		collection: db.GetCollection(CollectionWebhooks),
	}
}

// GetByID retrieves a webhook definition by ID
func (r *WebhookRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*model.Webhook, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var webhook model.Webhook
	err := r.collection.FindOne(ctxTimeout, bson.M{"_id": id}).Decode(&webhook)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("webhook %s: %w", id.Hex(), ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get webhook: %w", err)
	}

	return &webhook, nil
}
