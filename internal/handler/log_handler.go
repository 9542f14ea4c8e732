package handler

import (
	"net/http"

	"github.com/kestrel-hq/kestrel/internal/auth"
	"github.com/kestrel-hq/kestrel/internal/model"
	"github.com/kestrel-hq/kestrel/internal/service"
)

// LogHandler handles audit log queries
type LogHandler struct {
	logs *service.LogService
}

// NewLogHandler creates a new log handler
func NewLogHandler(logs *service.LogService) *LogHandler {
	return &LogHandler{
		logs: logs,
	}
}

// LogListResponse represents a paginated log list response
type LogListResponse struct {
	Logs  []model.WebhookLogSummary `json:"logs"`
	Total int64                     `json:"total"`
	Page  int                       `json:"page"`
	Limit int                       `json:"limit"`
}

// List handles GET /api/v1/webhook-logs
func (h *LogHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	page := parseQueryInt(r, "page", 1)
	limit := parseQueryInt(r, "limit", 20)
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	webhookID := r.URL.Query().Get("webhook_id")

	summaries, total, err := h.logs.List(r.Context(), auth.BearerToken(r), webhookID, page, limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, LogListResponse{
		Logs:  summaries,
		Total: total,
		Page:  page,
		Limit: limit,
	})
}
