package httphandler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ericfisherdev/wifishare/internal/application"
	"github.com/ericfisherdev/wifishare/internal/domain/model"
)

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// errorResponse is the standard error response body.
type errorResponse struct {
	Error  string       `json:"error"`
	Fields []fieldError `json:"fields,omitempty"`
}

// fieldError names a form field that failed validation.
type fieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// CredentialsResponse is the JSON representation of the credentials manager state.
type CredentialsResponse struct {
	Name               string `json:"name"`
	Password           string `json:"password"`
	Saved              bool   `json:"saved"`
	FormVisible        string `json:"form_visible"`
	NoCredentials      bool   `json:"no_credentials"`
	InvalidCredentials bool   `json:"invalid_credentials"`
	Title              string `json:"title"`
	Instructions       string `json:"instructions"`
	QR                 string `json:"qr"`
}

// UpdateCredentialsRequest is the JSON body for the update credentials endpoint.
type UpdateCredentialsRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

// HealthResponse is the JSON representation of the health check endpoint.
type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

// toCredentialsResponse converts a manager snapshot to its JSON response representation.
func toCredentialsResponse(s application.State) CredentialsResponse {
	return CredentialsResponse{
		Name:               s.Credentials.Name,
		Password:           s.Credentials.Password,
		Saved:              s.Credentials.Saved,
		FormVisible:        s.FormVisible.String(),
		NoCredentials:      s.NoCredentials,
		InvalidCredentials: s.InvalidCredentials,
		Title:              s.Title,
		Instructions:       s.Instructions,
		QR:                 s.QR,
	}
}

// toFieldErrors maps validation sentinels to per-field messages.
func toFieldErrors(err error) []fieldError {
	var fields []fieldError
	if errors.Is(err, model.ErrInvalidSSID) {
		fields = append(fields, fieldError{Field: "name", Message: model.ErrInvalidSSID.Error()})
	}
	if errors.Is(err, model.ErrInvalidPassword) {
		fields = append(fields, fieldError{Field: "password", Message: model.ErrInvalidPassword.Error()})
	}
	return fields
}
