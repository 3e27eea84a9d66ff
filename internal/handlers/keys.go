package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/netsentry-io/netsentry/common/httputil"
	"github.com/netsentry-io/netsentry/common/logging"
	"github.com/netsentry-io/netsentry/internal/keys"
	"github.com/netsentry-io/netsentry/internal/middleware"
	"github.com/netsentry-io/netsentry/internal/models"
)

// KeysHandler serves the credential management API. Every route runs
// behind the session middleware, so the tenant is always in context.
type KeysHandler struct {
	service *keys.Service
	logger  *logging.Logger
}

func NewKeysHandler(service *keys.Service, logger *logging.Logger) *KeysHandler {
	return &KeysHandler{service: service, logger: logger}
}

// Create issues a new credential pair. The plaintext secrets appear in
// this response and nowhere else.
func (h *KeysHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateKeyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	cred, apiKey, ingestToken, err := h.service.Issue(r.Context(), middleware.TenantID(r.Context()), req.Name, req.Description)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, models.CreateKeyResponse{
		Credential:  cred.ToResponse(),
		APIKey:      apiKey,
		IngestToken: ingestToken,
	})
}

func (h *KeysHandler) List(w http.ResponseWriter, r *http.Request) {
	creds, err := h.service.List(r.Context(), middleware.TenantID(r.Context()))
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	out := make([]*models.CredentialResponse, 0, len(creds))
	for _, c := range creds {
		out = append(out, c.ToResponse())
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

func (h *KeysHandler) Get(w http.ResponseWriter, r *http.Request) {
	cred, err := h.service.Get(r.Context(), r.PathValue("id"), middleware.TenantID(r.Context()))
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, cred.ToResponse())
}

func (h *KeysHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateKeyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	cred, err := h.service.Rename(r.Context(), r.PathValue("id"), middleware.TenantID(r.Context()), req.Name, req.Description)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, cred.ToResponse())
}

func (h *KeysHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	var req models.SetKeyStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	cred, err := h.service.SetStatus(r.Context(), r.PathValue("id"), middleware.TenantID(r.Context()), models.CredentialStatus(req.Status))
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, cred.ToResponse())
}

// Reveal returns the plaintext API key, re-derived from the stored seed.
func (h *KeysHandler) Reveal(w http.ResponseWriter, r *http.Request) {
	secret, err := h.service.Reveal(r.Context(), r.PathValue("id"), middleware.TenantID(r.Context()))
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, models.RevealResponse{Secret: secret})
}

// RevealIngestToken returns the plaintext ingest token.
func (h *KeysHandler) RevealIngestToken(w http.ResponseWriter, r *http.Request) {
	secret, err := h.service.RevealIngestToken(r.Context(), r.PathValue("id"), middleware.TenantID(r.Context()))
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, models.RevealResponse{Secret: secret})
}

func (h *KeysHandler) SetCallback(w http.ResponseWriter, r *http.Request) {
	var req models.SetCallbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	cred, err := h.service.SetCallbackURL(r.Context(), r.PathValue("id"), middleware.TenantID(r.Context()), req.URL)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, cred.ToResponse())
}

func (h *KeysHandler) TestCallback(w http.ResponseWriter, r *http.Request) {
	if err := h.service.TestCallback(r.Context(), r.PathValue("id"), middleware.TenantID(r.Context())); err != nil {
		respondError(w, h.logger, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *KeysHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), r.PathValue("id"), middleware.TenantID(r.Context())); err != nil {
		respondError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
