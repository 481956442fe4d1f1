// Package httphandler implements the JSON REST API driving adapter.
package httphandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/ericfisherdev/wifishare/internal/application"
	"github.com/ericfisherdev/wifishare/internal/domain/model"
)

// Handler is the HTTP driving adapter that serves the REST API.
type Handler struct {
	manager *application.CredentialsManager
	logger  *slog.Logger
}

// NewHandler creates a Handler with all required dependencies.
func NewHandler(manager *application.CredentialsManager, logger *slog.Logger) *Handler {
	return &Handler{
		manager: manager,
		logger:  logger,
	}
}

// RegisterAPIRoutes registers every API route on mux.
func RegisterAPIRoutes(mux *http.ServeMux, h *Handler) {
	mux.HandleFunc("GET /api/v1/credentials", h.GetCredentials)
	mux.HandleFunc("PUT /api/v1/credentials", h.UpdateCredentials)
	mux.HandleFunc("DELETE /api/v1/credentials", h.ResetCredentials)
	mux.HandleFunc("POST /api/v1/credentials/form", h.ShowForm)
	mux.HandleFunc("POST /api/v1/credentials/reload", h.ReloadCredentials)
	mux.HandleFunc("GET /api/v1/qr", h.GetQR)
	mux.HandleFunc("GET /api/v1/health", h.Health)
}

// NewServeMux creates an http.Handler with the API routes registered and
// wrapped with the standard middleware.
func NewServeMux(h *Handler, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()
	RegisterAPIRoutes(mux, h)
	return ApplyMiddleware(mux, logger)
}

// GetCredentials returns the current credentials and derived view state.
func (h *Handler) GetCredentials(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, toCredentialsResponse(h.manager.Snapshot()))
}

// UpdateCredentials validates and saves new credentials, then switches to the
// share view. The response is sent once the write has reached the store.
func (h *Handler) UpdateCredentials(w http.ResponseWriter, r *http.Request) {
	var req UpdateCredentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	candidate := model.Credentials{Name: req.Name, Password: req.Password}
	if err := candidate.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error:  "invalid credentials",
			Fields: toFieldErrors(err),
		})
		return
	}

	h.manager.UpdateCredentials(req.Name, req.Password)
	if err := h.manager.HideForm().Wait(r.Context()); err != nil {
		h.logger.Error("failed to save credentials", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save credentials")
		return
	}

	writeJSON(w, http.StatusOK, toCredentialsResponse(h.manager.Snapshot()))
}

// ResetCredentials deletes the stored credentials and clears the in-memory record.
func (h *Handler) ResetCredentials(w http.ResponseWriter, r *http.Request) {
	if err := h.manager.ResetStatus().Wait(r.Context()); err != nil {
		h.logger.Error("failed to delete credentials", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete credentials")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ShowForm switches back to the editing form.
func (h *Handler) ShowForm(w http.ResponseWriter, _ *http.Request) {
	h.manager.ShowForm()
	writeJSON(w, http.StatusOK, toCredentialsResponse(h.manager.Snapshot()))
}

// ReloadCredentials re-reads the stored record.
func (h *Handler) ReloadCredentials(w http.ResponseWriter, r *http.Request) {
	if err := h.manager.LoadCredentials(r.Context()); err != nil {
		if errors.Is(err, model.ErrMalformedCredentials) {
			writeError(w, http.StatusUnprocessableEntity, "stored credentials are unreadable")
			return
		}
		h.logger.Error("failed to load credentials", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load credentials")
		return
	}

	writeJSON(w, http.StatusOK, toCredentialsResponse(h.manager.Snapshot()))
}

// GetQR returns the WiFi QR payload as plain text.
func (h *Handler) GetQR(w http.ResponseWriter, _ *http.Request) {
	state := h.manager.Snapshot()
	if state.NoCredentials {
		writeError(w, http.StatusNotFound, "no credentials saved")
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(state.QR))
}

// Health returns a simple health check response.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Time:   time.Now().UTC().Format(time.RFC3339),
	})
}
