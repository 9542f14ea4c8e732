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

// RuleRepository reads automation rules
type RuleRepository struct {
	collection *mongo.Collection
}

// NewRuleRepository creates a new rule repository
func NewRuleRepository(db *MongoDB) *RuleRepository {
	return &RuleRepository{
		collection: db.GetCollection(CollectionAutomationRules),
	}
}

// ListByWebhook retrieves all rules for a webhook ordered by sort_order
// ascending. An empty result is valid.
func (r *RuleRepository) ListByWebhook(ctx context.Context, webhookID primitive.ObjectID) ([]model.AutomationRule, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "sort_order", Value: 1}})

	cursor, err := r.collection.Find(ctxTimeout, bson.M{"webhook_id": webhookID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list automation rules: %w", err)
	}
	defer cursor.Close(ctxTimeout)

	var rules []model.AutomationRule
	if err := cursor.All(ctxTimeout, &rules); err != nil {
		return nil, fmt.Errorf("failed to decode automation rules: %w", err)
	}

	return rules, nil
}
