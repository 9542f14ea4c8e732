package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/kestrel-hq/kestrel/internal/auth"
	"github.com/kestrel-hq/kestrel/internal/database"
	"github.com/kestrel-hq/kestrel/internal/dispatch"
	"github.com/kestrel-hq/kestrel/internal/evaluator"
	"github.com/kestrel-hq/kestrel/internal/model"
	"github.com/kestrel-hq/kestrel/pkg/middleware"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WebhookStore reads webhook definitions
type WebhookStore interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*model.Webhook, error)
}

// RuleStore reads automation rules ordered by sort_order ascending
type RuleStore interface {
	ListByWebhook(ctx context.Context, webhookID primitive.ObjectID) ([]model.AutomationRule, error)
}

// LogStore appends audit log entries
type LogStore interface {
	Insert(ctx context.Context, entry *model.WebhookLog) error
}

// LiveDispatcher performs a best-effort live webhook invocation
type LiveDispatcher interface {
	Send(ctx context.Context, webhook *model.Webhook, payload interface{}) *dispatch.LiveResult
}

// TestRequest is the inbound test orchestration request
type TestRequest struct {
	WebhookID   string      `json:"webhook_id"`
	TestPayload interface{} `json:"test_payload"`
	DryRun      *bool       `json:"dry_run"`
}

// TestReport is the success envelope for one test orchestration
type TestReport struct {
	Success        bool                     `json:"success"`
	Webhook        model.WebhookSummary     `json:"webhook"`
	TestPayload    interface{}              `json:"testPayload"`
	RuleResults    []model.SimulationResult `json:"ruleResults"`
	Summary        model.TestSummary        `json:"summary"`
	ResponseTimeMs int64                    `json:"responseTimeMs"`
	DryRun         bool                     `json:"dryRun"`
	LiveResult     *dispatch.LiveResult     `json:"liveResult"`
}

// TestService orchestrates webhook test runs: it authorizes the
// caller, simulates every rule against the test payload, records an
// audit log entry, and optionally invokes the live receiver.
type TestService struct {
	guard      *auth.Guard
	webhooks   WebhookStore
	rules      RuleStore
	logs       LogStore
	simulator  *evaluator.Simulator
	dispatcher LiveDispatcher
}

// NewTestService creates a new test service
func NewTestService(
	guard *auth.Guard,
	webhooks WebhookStore,
	rules RuleStore,
	logs LogStore,
	dispatcher LiveDispatcher,
) *TestService {
	return &TestService{
		guard:      guard,
		webhooks:   webhooks,
		rules:      rules,
		logs:       logs,
		simulator:  evaluator.NewSimulator(),
		dispatcher: dispatcher,
	}
}

// RunTest executes one test orchestration. The flow is strictly
// ordered: authenticate, authorize, load webhook, load rules, simulate
// all rules, write the audit log, then optionally dispatch live.
// Nothing is mutated except the audit log, which is best-effort.
func (s *TestService) RunTest(ctx context.Context, token string, req TestRequest) (*TestReport, error) {
	start := time.Now()
	correlationID := middleware.GetCorrelationID(ctx)

	if req.WebhookID == "" {
		return nil, newError(ErrInvalidInput, "webhook_id is required", nil)
	}

	user, err := s.guard.RequireAdmin(ctx, token)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrUnauthenticated):
			return nil, newError(ErrUnauthenticated, "authentication required", err)
		case errors.Is(err, auth.ErrForbidden):
			return nil, newError(ErrForbidden, "admin role required", err)
		default:
			return nil, newError(ErrInternal, "authorization failed", err)
		}
	}

	webhookID, err := primitive.ObjectIDFromHex(req.WebhookID)
	if err != nil {
		return nil, newError(ErrNotFound, "webhook not found", err)
	}

	webhook, err := s.webhooks.GetByID(ctx, webhookID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, newError(ErrNotFound, "webhook not found", err)
		}
		return nil, newError(ErrInternal, "failed to load webhook", err)
	}

	rules, err := s.rules.ListByWebhook(ctx, webhookID)
	if err != nil {
		return nil, newError(ErrStoreFailure, "failed to load automation rules", err)
	}

	payload := req.TestPayload
	if payload == nil {
		payload = map[string]interface{}{}
	}

	dryRun := true
	if req.DryRun != nil {
		dryRun = *req.DryRun
	}

	slog.Info("Running webhook test",
		"correlation_id", correlationID,
		"webhook_id", webhook.ID.Hex(),
		"webhook_name", webhook.Name,
		"rule_count", len(rules),
		"dry_run", dryRun,
		"user", user.Email,
	)

	results := s.simulator.SimulateAll(rules, payload)

	triggered := make([]model.TriggeredRule, 0, len(results))
	for _, result := range results {
		if result.WouldExecute {
			triggered = append(triggered, model.TriggeredRule{
				Name:       result.RuleName,
				ActionType: result.ActionType,
			})
		}
	}

	summary := model.TestSummary{
		TotalRules:    len(results),
		EnabledRules:  len(triggered),
		DisabledRules: len(results) - len(triggered),
	}

	responseTimeMs := time.Since(start).Milliseconds()

	// Best-effort audit write: a failed insert is logged, never fatal
	entry := &model.WebhookLog{
		ID:             primitive.NewObjectID(),
		WebhookID:      webhook.ID,
		RequestBody:    payload,
		StatusCode:     200,
		TriggeredRules: triggered,
		IsTest:         true,
		ResponseTimeMs: responseTimeMs,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.logs.Insert(ctx, entry); err != nil {
		slog.Error("Failed to save webhook test log",
			"correlation_id", correlationID,
			"webhook_id", webhook.ID.Hex(),
			"error", err.Error(),
		)
	}

	var liveResult *dispatch.LiveResult
	if !dryRun {
		liveResult = s.dispatcher.Send(ctx, webhook, payload)
	}

	slog.Info("Webhook test completed",
		"correlation_id", correlationID,
		"webhook_id", webhook.ID.Hex(),
		"would_execute", summary.EnabledRules,
		"response_time_ms", responseTimeMs,
	)

	return &TestReport{
		Success:        true,
		Webhook:        webhook.ToSummary(),
		TestPayload:    payload,
		RuleResults:    results,
		Summary:        summary,
		ResponseTimeMs: responseTimeMs,
		DryRun:         dryRun,
		LiveResult:     liveResult,
	}, nil
}
