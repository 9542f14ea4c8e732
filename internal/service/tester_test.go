package service

import (
	"context"
	"errors"
	"testing"

	"github.com/kestrel-hq/kestrel/internal/auth"
	"github.com/kestrel-hq/kestrel/internal/database"
	"github.com/kestrel-hq/kestrel/internal/dispatch"
	"github.com/kestrel-hq/kestrel/internal/model"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// mockTokenResolver implements auth.TokenResolver for testing
type mockTokenResolver struct {
	users map[string]*model.User
}

func (m *mockTokenResolver) ResolveToken(ctx context.Context, token string) (*model.User, error) {
	if user, ok := m.users[token]; ok {
		return user, nil
	}
	return nil, database.ErrNotFound
}

// mockRoleChecker implements auth.RoleChecker for testing
type mockRoleChecker struct {
	admins map[primitive.ObjectID]bool
}

func (m *mockRoleChecker) HasRole(ctx context.Context, userID primitive.ObjectID, role string) (bool, error) {
	return role == model.RoleAdmin && m.admins[userID], nil
}

type mockWebhookStore struct {
	webhooks map[primitive.ObjectID]*model.Webhook
}

func (m *mockWebhookStore) GetByID(ctx context.Context, id primitive.ObjectID) (*model.Webhook, error) {
	if webhook, ok := m.webhooks[id]; ok {
		return webhook, nil
	}
	return nil, database.ErrNotFound
}

type mockRuleStore struct {
	rules []model.AutomationRule
	err   error
	calls int
}

func (m *mockRuleStore) ListByWebhook(ctx context.Context, webhookID primitive.ObjectID) ([]model.AutomationRule, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.rules, nil
}

type mockLogStore struct {
	entries []*model.WebhookLog
	err     error
}

func (m *mockLogStore) Insert(ctx context.Context, entry *model.WebhookLog) error {
	if m.err != nil {
		return m.err
	}
	m.entries = append(m.entries, entry)
	return nil
}

type mockDispatcher struct {
	calls  int
	result *dispatch.LiveResult
}

func (m *mockDispatcher) Send(ctx context.Context, webhook *model.Webhook, payload interface{}) *dispatch.LiveResult {
	m.calls++
	return m.result
}

type testFixture struct {
	service    *TestService
	webhookID  primitive.ObjectID
	adminID    primitive.ObjectID
	ruleStore  *mockRuleStore
	logStore   *mockLogStore
	dispatcher *mockDispatcher
}

func newFixture(rules []model.AutomationRule) *testFixture {
	adminID := primitive.NewObjectID()
	viewerID := primitive.NewObjectID()
	webhookID := primitive.NewObjectID()

	guard := auth.NewGuard(
		&mockTokenResolver{users: map[string]*model.User{
			"admin-token":  {ID: adminID, Email: "admin@example.com"},
			"viewer-token": {ID: viewerID, Email: "viewer@example.com"},
		}},
		&mockRoleChecker{admins: map[primitive.ObjectID]bool{adminID: true}},
	)

	webhooks := &mockWebhookStore{webhooks: map[primitive.ObjectID]*model.Webhook{
		webhookID: {
			ID:          webhookID,
			Name:        "order-intake",
			EndpointKey: "ord-key",
			Secret:      "s3cret",
			Enabled:     true,
		},
	}}

	ruleStore := &mockRuleStore{rules: rules}
	logStore := &mockLogStore{}
	dispatcher := &mockDispatcher{result: &dispatch.LiveResult{Status: 200, Body: "ok"}}

	return &testFixture{
		service:    NewTestService(guard, webhooks, ruleStore, logStore, dispatcher),
		webhookID:  webhookID,
		adminID:    adminID,
		ruleStore:  ruleStore,
		logStore:   logStore,
		dispatcher: dispatcher,
	}
}

func sampleRules() []model.AutomationRule {
	return []model.AutomationRule{
		{
			Name:       "always-fires",
			ActionType: "send_email",
			Enabled:    true,
			SortOrder:  1,
			FieldMappings: []model.FieldMapping{
				{Key: "status", Path: "customer.status"},
			},
		},
		{
			Name:       "gated-fires",
			ActionType: "create_task",
			Enabled:    true,
			SortOrder:  2,
			Condition: &model.RuleCondition{
				Field:    "customer.status",
				Operator: model.OperatorEquals,
				Value:    "active",
			},
		},
		{
			Name:       "switched-off",
			ActionType: "send_sms",
			Enabled:    false,
			SortOrder:  3,
		},
	}
}

func samplePayload() interface{} {
	return map[string]interface{}{
		"customer": map[string]interface{}{"status": "active"},
	}
}

func TestRunTestDryRun(t *testing.T) {
	f := newFixture(sampleRules())

	report, err := f.service.RunTest(context.Background(), "admin-token", TestRequest{
		WebhookID:   f.webhookID.Hex(),
		TestPayload: samplePayload(),
	})
	if err != nil {
		t.Fatalf("RunTest() error = %v", err)
	}

	if !report.Success {
		t.Error("success = false, want true")
	}
	if !report.DryRun {
		t.Error("dryRun = false, want true by default")
	}
	if report.LiveResult != nil {
		t.Errorf("liveResult = %v, want nil on dry run", report.LiveResult)
	}
	if f.dispatcher.calls != 0 {
		t.Errorf("dispatcher called %d times on dry run, want 0", f.dispatcher.calls)
	}

	if report.Summary.TotalRules != 3 || report.Summary.EnabledRules != 2 || report.Summary.DisabledRules != 1 {
		t.Errorf("summary = %+v, want {3 2 1}", report.Summary)
	}
	if len(report.RuleResults) != 3 {
		t.Fatalf("got %d rule results, want 3", len(report.RuleResults))
	}
	if report.RuleResults[0].RuleName != "always-fires" || report.RuleResults[2].RuleName != "switched-off" {
		t.Error("rule results are not in sort order")
	}
	if report.Webhook.Name != "order-intake" {
		t.Errorf("webhook summary name = %q, want order-intake", report.Webhook.Name)
	}
	if report.ResponseTimeMs < 0 {
		t.Errorf("responseTimeMs = %d, want >= 0", report.ResponseTimeMs)
	}
}

func TestRunTestWritesAuditLog(t *testing.T) {
	f := newFixture(sampleRules())

	_, err := f.service.RunTest(context.Background(), "admin-token", TestRequest{
		WebhookID:   f.webhookID.Hex(),
		TestPayload: samplePayload(),
	})
	if err != nil {
		t.Fatalf("RunTest() error = %v", err)
	}

	if len(f.logStore.entries) != 1 {
		t.Fatalf("got %d log entries, want 1", len(f.logStore.entries))
	}

	entry := f.logStore.entries[0]
	if entry.WebhookID != f.webhookID {
		t.Error("log entry has wrong webhook id")
	}
	if entry.StatusCode != 200 {
		t.Errorf("log status code = %d, want 200", entry.StatusCode)
	}
	if !entry.IsTest {
		t.Error("log isTest = false, want true")
	}
	if len(entry.TriggeredRules) != 2 {
		t.Fatalf("log records %d triggered rules, want 2", len(entry.TriggeredRules))
	}
	if entry.TriggeredRules[0].Name != "always-fires" || entry.TriggeredRules[1].Name != "gated-fires" {
		t.Errorf("triggered rules = %+v", entry.TriggeredRules)
	}
}

func TestRunTestLiveDispatch(t *testing.T) {
	f := newFixture(sampleRules())
	dryRun := false

	report, err := f.service.RunTest(context.Background(), "admin-token", TestRequest{
		WebhookID:   f.webhookID.Hex(),
		TestPayload: samplePayload(),
		DryRun:      &dryRun,
	})
	if err != nil {
		t.Fatalf("RunTest() error = %v", err)
	}

	if f.dispatcher.calls != 1 {
		t.Errorf("dispatcher called %d times, want 1", f.dispatcher.calls)
	}
	if report.LiveResult == nil || report.LiveResult.Status != 200 {
		t.Errorf("liveResult = %+v, want status 200", report.LiveResult)
	}
	if report.DryRun {
		t.Error("dryRun = true, want false")
	}
}

func TestRunTestDefaultsEmptyPayload(t *testing.T) {
	f := newFixture(nil)

	report, err := f.service.RunTest(context.Background(), "admin-token", TestRequest{
		WebhookID: f.webhookID.Hex(),
	})
	if err != nil {
		t.Fatalf("RunTest() error = %v", err)
	}

	payload, ok := report.TestPayload.(map[string]interface{})
	if !ok || len(payload) != 0 {
		t.Errorf("testPayload = %v, want empty object", report.TestPayload)
	}
	if report.Summary.TotalRules != 0 {
		t.Errorf("totalRules = %d, want 0 for empty rule set", report.Summary.TotalRules)
	}
}

func TestRunTestErrors(t *testing.T) {
	t.Run("missing webhook_id", func(t *testing.T) {
		f := newFixture(nil)
		_, err := f.service.RunTest(context.Background(), "admin-token", TestRequest{})
		if KindOf(err) != ErrInvalidInput {
			t.Errorf("kind = %v, want ErrInvalidInput", KindOf(err))
		}
	})

	t.Run("missing token", func(t *testing.T) {
		f := newFixture(nil)
		_, err := f.service.RunTest(context.Background(), "", TestRequest{WebhookID: f.webhookID.Hex()})
		if KindOf(err) != ErrUnauthenticated {
			t.Errorf("kind = %v, want ErrUnauthenticated", KindOf(err))
		}
	})

	t.Run("unknown token", func(t *testing.T) {
		f := newFixture(nil)
		_, err := f.service.RunTest(context.Background(), "bogus", TestRequest{WebhookID: f.webhookID.Hex()})
		if KindOf(err) != ErrUnauthenticated {
			t.Errorf("kind = %v, want ErrUnauthenticated", KindOf(err))
		}
	})

	t.Run("non-admin caller", func(t *testing.T) {
		f := newFixture(nil)
		_, err := f.service.RunTest(context.Background(), "viewer-token", TestRequest{WebhookID: f.webhookID.Hex()})
		if KindOf(err) != ErrForbidden {
			t.Errorf("kind = %v, want ErrForbidden", KindOf(err))
		}
		if len(f.logStore.entries) != 0 {
			t.Error("audit log written for forbidden caller")
		}
	})

	t.Run("unknown webhook", func(t *testing.T) {
		f := newFixture(nil)
		_, err := f.service.RunTest(context.Background(), "admin-token", TestRequest{
			WebhookID: primitive.NewObjectID().Hex(),
		})
		if KindOf(err) != ErrNotFound {
			t.Errorf("kind = %v, want ErrNotFound", KindOf(err))
		}
		if f.ruleStore.calls != 0 {
			t.Error("rules loaded for unknown webhook")
		}
	})

	t.Run("malformed webhook id", func(t *testing.T) {
		f := newFixture(nil)
		_, err := f.service.RunTest(context.Background(), "admin-token", TestRequest{WebhookID: "not-an-id"})
		if KindOf(err) != ErrNotFound {
			t.Errorf("kind = %v, want ErrNotFound", KindOf(err))
		}
	})

	t.Run("rule fetch failure", func(t *testing.T) {
		f := newFixture(nil)
		f.ruleStore.err = errors.New("connection reset")
		_, err := f.service.RunTest(context.Background(), "admin-token", TestRequest{WebhookID: f.webhookID.Hex()})
		if KindOf(err) != ErrStoreFailure {
			t.Errorf("kind = %v, want ErrStoreFailure", KindOf(err))
		}
	})
}

func TestRunTestAuditFailureIsNotFatal(t *testing.T) {
	f := newFixture(sampleRules())
	f.logStore.err = errors.New("write concern error")

	report, err := f.service.RunTest(context.Background(), "admin-token", TestRequest{
		WebhookID:   f.webhookID.Hex(),
		TestPayload: samplePayload(),
	})
	if err != nil {
		t.Fatalf("RunTest() error = %v, want nil despite audit failure", err)
	}
	if !report.Success {
		t.Error("success = false, want true despite audit failure")
	}
}
