package handler

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/hashicorp/go-hclog"

	"codepractice/internal/model"
	"codepractice/internal/service"
	"codepractice/internal/transport/rest/middleware"
)

// TestHandler handles test session endpoints
type TestHandler struct {
	sessions    *service.SessionService
	submissions *service.SubmissionService
	analytics   *service.AnalyticsService
	log         hclog.Logger
}

// NewTestHandler creates a new test handler
func NewTestHandler(
	sessions *service.SessionService,
	submissions *service.SubmissionService,
	analytics *service.AnalyticsService,
	log hclog.Logger,
) *TestHandler {
	return &TestHandler{
		sessions:    sessions,
		submissions: submissions,
		analytics:   analytics,
		log:         log,
	}
}

// Start handles GET /test/start
func (h *TestHandler) Start(w http.ResponseWriter, r *http.Request) {
	id, err := h.sessions.Start(r.Context())
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	if claims := middleware.GetAccessClaims(r.Context()); claims != nil {
		h.log.Debug("test started with access pass", "test", id, "pass", claims.ID)
	}
	writeJSON(w, http.StatusOK, model.StartResponse{TestID: id})
}

// ValidateID handles GET /test/validate_id/{id}
func (h *TestHandler) ValidateID(w http.ResponseWriter, r *http.Request) {
	active, err := h.sessions.Status(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, model.SessionStatus{Active: active})
}

// Problem handles GET /test/{id}/problem. A finished catalog is reported
// as {"done":true} rather than an error.
func (h *TestHandler) Problem(w http.ResponseWriter, r *http.Request) {
	cur, err := h.sessions.CurrentProblem(r.Context(), mux.Vars(r)["id"])
	if errors.Is(err, service.ErrNoMoreProblems) {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"done":  true,
			"total": h.sessions.Catalog().Len(),
		})
		return
	}
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, cur)
}

// Submit handles POST /test/{id}/submission
func (h *TestHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req model.SubmitRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.submissions.Submit(r.Context(), mux.Vars(r)["id"], &req)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// End handles POST /test/{id}/end
func (h *TestHandler) End(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.End(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, model.SessionStatus{Active: false})
}

// Analytics handles GET /test/{id}/analytics
func (h *TestHandler) Analytics(w http.ResponseWriter, r *http.Request) {
	summary, err := h.analytics.ForTest(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
