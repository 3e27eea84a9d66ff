package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/netsentry-io/netsentry/common/httputil"
	"github.com/netsentry-io/netsentry/common/logging"
	"github.com/netsentry-io/netsentry/internal/keys"
	"github.com/netsentry-io/netsentry/pkg/tokens"
)

// AuthHandler exchanges a dashboard API key for a short-lived session
// token. The session token is what the rest of the dashboard API
// accepts as a bearer credential.
type AuthHandler struct {
	keys   *keys.Service
	tokens *tokens.TokenGenerator
	logger *logging.Logger
}

func NewAuthHandler(keySvc *keys.Service, tg *tokens.TokenGenerator, logger *logging.Logger) *AuthHandler {
	return &AuthHandler{keys: keySvc, tokens: tg, logger: logger}
}

type sessionRequest struct {
	APIKey string `json:"api_key"`
}

type sessionResponse struct {
	Token string `json:"token"`
}

func (h *AuthHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req sessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	cred, err := h.keys.Verify(r.Context(), req.APIKey)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	token, err := h.tokens.GenerateSessionToken(cred.TenantID)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, sessionResponse{Token: token})
}
