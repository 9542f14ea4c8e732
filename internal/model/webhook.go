package model

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Metadata represents common metadata fields
type Metadata struct {
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
	CreatedBy string    `json:"created_by,omitempty" bson:"created_by,omitempty"`
}

// Webhook represents an inbound integration endpoint. Definitions are
// administered elsewhere; this service only reads them.
type Webhook struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name        string             `json:"name" bson:"name"`
	EndpointKey string             `json:"endpoint_key" bson:"endpoint_key"`
	Secret      string             `json:"-" bson:"secret"`
	Enabled     bool               `json:"enabled" bson:"enabled"`
	Metadata    Metadata           `json:"metadata" bson:"metadata"`
}

// Validate validates a webhook definition
func (w *Webhook) Validate() error {
	if w.Name == "" {
		return errors.New("webhook name is required")
	}
	if w.EndpointKey == "" {
		return errors.New("webhook endpoint key is required")
	}
	if w.Secret == "" {
		return errors.New("webhook secret is required")
	}
	return nil
}

// WebhookSummary is the webhook view embedded in test responses
type WebhookSummary struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Enabled bool   `json:"enabled"`
}

// ToSummary converts a Webhook to its response summary
func (w *Webhook) ToSummary() WebhookSummary {
	return WebhookSummary{
		ID:      w.ID.Hex(),
		Name:    w.Name,
		Enabled: w.Enabled,
	}
}
