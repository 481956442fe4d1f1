package web

import (
	"io/fs"
	"net/http"
)

// RegisterRoutes registers all web GUI routes on the provided mux.
// Static assets are served from the embedded filesystem at /static/*.
func RegisterRoutes(mux *http.ServeMux, h *Handler) {
	staticFS, _ := fs.Sub(StaticFS, "static")
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(staticFS)))

	mux.HandleFunc("GET /{$}", h.CredentialsPage)
	mux.HandleFunc("POST /credentials", h.SaveCredentials)
	mux.HandleFunc("POST /credentials/edit", h.EditCredentials)
	mux.HandleFunc("POST /credentials/cancel", h.CancelEdit)
	mux.HandleFunc("POST /credentials/reset", h.ResetCredentials)
}
