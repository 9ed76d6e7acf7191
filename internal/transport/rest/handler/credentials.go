package handler

import (
	"errors"
	"net/http"

	"github.com/hashicorp/go-hclog"

	"codepractice/internal/model"
	"codepractice/internal/service"
)

// CredentialHandler handles credential validation
type CredentialHandler struct {
	credentials *service.CredentialService
	log         hclog.Logger
}

// NewCredentialHandler creates a new credential handler
func NewCredentialHandler(credentials *service.CredentialService, log hclog.Logger) *CredentialHandler {
	return &CredentialHandler{credentials: credentials, log: log}
}

// Validate handles POST /credentials/validate
func (h *CredentialHandler) Validate(w http.ResponseWriter, r *http.Request) {
	var req model.CredentialRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.credentials.Accept(r.Context(), req.CredentialToken)
	if errors.Is(err, service.ErrInvalidCredential) {
		writeJSON(w, http.StatusForbidden, model.CredentialResponse{Valid: false})
		return
	}
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
