// Package web implements the HTML GUI driving adapter using templ components.
package web

import (
	"log/slog"
	"net/http"

	"github.com/a-h/templ"

	"github.com/ericfisherdev/wifishare/internal/adapter/driving/web/templates"
	"github.com/ericfisherdev/wifishare/internal/adapter/driving/web/templates/pages"
	vm "github.com/ericfisherdev/wifishare/internal/adapter/driving/web/viewmodel"
	"github.com/ericfisherdev/wifishare/internal/application"
	"github.com/ericfisherdev/wifishare/internal/domain/model"
)

// Handler is the web GUI driving adapter that serves HTML via templ components.
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

// CredentialsPage renders the form or the share view depending on the
// current form visibility.
func (h *Handler) CredentialsPage(w http.ResponseWriter, r *http.Request) {
	token := csrfToken(w, r)
	h.render(w, r, http.StatusOK, toCredentialsPageViewModel(h.manager.Snapshot(), token))
}

// SaveCredentials validates the submitted form, and if it passes, saves it and
// switches to the share view. Invalid input re-renders the form with errors
// and leaves the manager untouched.
func (h *Handler) SaveCredentials(w http.ResponseWriter, r *http.Request) {
	if !validateCSRF(r) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	candidate := model.Credentials{
		Name:     r.PostFormValue("name"),
		Password: r.PostFormValue("password"),
	}
	if err := candidate.Validate(); err != nil {
		page := toCredentialsPageViewModel(h.manager.Snapshot(), csrfToken(w, r))
		h.render(w, r, http.StatusUnprocessableEntity, withRejectedInput(page, candidate, err))
		return
	}

	h.manager.UpdateCredentials(candidate.Name, candidate.Password)
	if err := h.manager.HideForm().Wait(r.Context()); err != nil {
		h.logger.Error("failed to save credentials", "error", err)
		http.Error(w, "failed to save credentials", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// EditCredentials switches back to the editing form.
func (h *Handler) EditCredentials(w http.ResponseWriter, r *http.Request) {
	if !validateCSRF(r) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	h.manager.ShowForm()
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// CancelEdit leaves the editing form for the share view without saving.
func (h *Handler) CancelEdit(w http.ResponseWriter, r *http.Request) {
	if !validateCSRF(r) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	if !h.manager.CancelEdit() {
		h.logger.Debug("cancel ignored, no saved credentials")
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// ResetCredentials forgets the saved network.
func (h *Handler) ResetCredentials(w http.ResponseWriter, r *http.Request) {
	if !validateCSRF(r) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	if err := h.manager.ResetStatus().Wait(r.Context()); err != nil {
		h.logger.Error("failed to delete credentials", "error", err)
		http.Error(w, "failed to delete credentials", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, page vm.CredentialsPageViewModel) {
	layout := templates.Layout(page.Heading, pages.Credentials(page))
	templ.Handler(layout,
		templ.WithStatus(status),
		templ.WithErrorHandler(func(_ *http.Request, err error) http.Handler {
			h.logger.Error("failed to render credentials page", "error", err)
			return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				http.Error(w, "internal server error", http.StatusInternalServerError)
			})
		}),
	).ServeHTTP(w, r)
}
