package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TriggeredRule is the slim rule view persisted in audit logs
type TriggeredRule struct {
	Name       string `json:"name" bson:"name"`
	ActionType string `json:"action_type" bson:"action_type"`
}

// WebhookLog is one audit record per test orchestration. Entries are
// append-only; nothing in this service mutates or deletes them except
// the retention sweeper.
type WebhookLog struct {
	ID             primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	WebhookID      primitive.ObjectID `json:"webhook_id" bson:"webhook_id"`
	RequestBody    interface{}        `json:"request_body" bson:"request_body"`
	StatusCode     int                `json:"status_code" bson:"status_code"`
	TriggeredRules []TriggeredRule    `json:"triggered_rules" bson:"triggered_rules"`
	IsTest         bool               `json:"is_test" bson:"is_test"`
	ResponseTimeMs int64              `json:"response_time_ms" bson:"response_time_ms"`
	CreatedAt      time.Time          `json:"created_at" bson:"created_at"`
}

// WebhookLogSummary represents a summary for list responses
type WebhookLogSummary struct {
	ID             string `json:"id"`
	WebhookID      string `json:"webhook_id"`
	StatusCode     int    `json:"status_code"`
	IsTest         bool   `json:"is_test"`
	TriggeredCount int    `json:"triggered_count"`
	ResponseTimeMs int64  `json:"response_time_ms"`
	CreatedAt      string `json:"created_at"`
}

// ToSummary converts WebhookLog to WebhookLogSummary
func (l *WebhookLog) ToSummary() WebhookLogSummary {
	var createdAt string
	if !l.CreatedAt.IsZero() {
		createdAt = l.CreatedAt.Format(time.RFC3339)
	}

	return WebhookLogSummary{
		ID:             l.ID.Hex(),
		WebhookID:      l.WebhookID.Hex(),
		StatusCode:     l.StatusCode,
		IsTest:         l.IsTest,
		TriggeredCount: len(l.TriggeredRules),
		ResponseTimeMs: l.ResponseTimeMs,
		CreatedAt:      createdAt,
	}
}
