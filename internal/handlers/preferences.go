package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/netsentry-io/netsentry/common/httputil"
	"github.com/netsentry-io/netsentry/common/logging"
	"github.com/netsentry-io/netsentry/internal/alert"
	"github.com/netsentry-io/netsentry/internal/middleware"
	"github.com/netsentry-io/netsentry/internal/models"
	"github.com/netsentry-io/netsentry/internal/repository"
)

// PreferencesHandler serves the per-tenant notification settings.
type PreferencesHandler struct {
	dispatcher *alert.Dispatcher
	repo       repository.Repository
	logger     *logging.Logger
}

func NewPreferencesHandler(dispatcher *alert.Dispatcher, repo repository.Repository, logger *logging.Logger) *PreferencesHandler {
	return &PreferencesHandler{dispatcher: dispatcher, repo: repo, logger: logger}
}

// Get returns the tenant's preference, lazily creating the default.
func (h *PreferencesHandler) Get(w http.ResponseWriter, r *http.Request) {
	pref, err := h.dispatcher.Preference(r.Context(), middleware.TenantID(r.Context()))
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, pref)
}

// Update applies partial changes to the tenant's preference.
func (h *PreferencesHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req models.UpdatePreferenceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	pref, err := h.dispatcher.Preference(r.Context(), middleware.TenantID(r.Context()))
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	if req.EmailAlerts != nil {
		pref.EmailAlerts = *req.EmailAlerts
	}
	if req.Email != "" {
		pref.Email = req.Email
	}
	pref.UpdatedAt = time.Now().UTC()

	if err := h.repo.UpsertPreference(r.Context(), pref); err != nil {
		respondError(w, h.logger, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, pref)
}
