package service

import (
	"context"
	"errors"

	"github.com/kestrel-hq/kestrel/internal/auth"
	"github.com/kestrel-hq/kestrel/internal/model"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LogQueryStore reads audit log entries
type LogQueryStore interface {
	List(ctx context.Context, filter bson.M, page, limit int) ([]model.WebhookLog, int64, error)
}

// LogService handles audit log queries
type LogService struct {
	guard *auth.Guard
	logs  LogQueryStore
}

// NewLogService creates a new log service
func NewLogService(guard *auth.Guard, logs LogQueryStore) *LogService {
	return &LogService{
		guard: guard,
		logs:  logs,
	}
}

// List retrieves audit log summaries, optionally filtered by webhook
// ID, newest first. Requires the admin role.
func (s *LogService) List(ctx context.Context, token, webhookID string, page, limit int) ([]model.WebhookLogSummary, int64, error) {
	if _, err := s.guard.RequireAdmin(ctx, token); err != nil {
		switch {
		case errors.Is(err, auth.ErrUnauthenticated):
			return nil, 0, newError(ErrUnauthenticated, "authentication required", err)
		case errors.Is(err, auth.ErrForbidden):
			return nil, 0, newError(ErrForbidden, "admin role required", err)
		default:
			return nil, 0, newError(ErrInternal, "authorization failed", err)
		}
	}

	filter := bson.M{}
	if webhookID != "" {
		objID, err := primitive.ObjectIDFromHex(webhookID)
		if err != nil {
			return nil, 0, newError(ErrInvalidInput, "invalid webhook_id", err)
		}
		filter["webhook_id"] = objID
	}

	entries, total, err := s.logs.List(ctx, filter, page, limit)
	if err != nil {
		return nil, 0, newError(ErrStoreFailure, "failed to list webhook logs", err)
	}

	summaries := make([]model.WebhookLogSummary, len(entries))
	for i, entry := range entries {
		summaries[i] = entry.ToSummary()
	}

	return summaries, total, nil
}
