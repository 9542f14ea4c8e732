package handler

import (
	"encoding/json"
	"net/http"

	"github.com/kestrel-hq/kestrel/internal/auth"
	"github.com/kestrel-hq/kestrel/internal/service"
)

// TestHandler handles webhook test orchestration requests
type TestHandler struct {
	tester *service.TestService
}

// NewTestHandler creates a new test handler
func NewTestHandler(tester *service.TestService) *TestHandler {
	return &TestHandler{
		tester: tester,
	}
}

// Test handles POST /api/v1/webhooks/test
func (h *TestHandler) Test(w http.ResponseWriter, r *http.Request) {
	var req service.TestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	report, err := h.tester.RunTest(r.Context(), auth.BearerToken(r), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, report)
}
