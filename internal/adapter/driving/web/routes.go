package web

import (
	"io/fs"
	"net/http"
)

// RegisterRoutes registers all web GUI routes on the provided mux.
// Pages and fragments live at / and /app/*; static assets are served from
// the embedded filesystem at /static/*.
func RegisterRoutes(mux *http.ServeMux, h *Handler) {
	staticFS, _ := fs.Sub(StaticFS, "static")
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(staticFS)))

	mux.HandleFunc("GET /{$}", h.Home)

	mux.HandleFunc("GET /app/status", h.Status)
	mux.HandleFunc("GET /app/auth", h.Auth)
	mux.HandleFunc("GET /app/pr-details", h.PRDetails)
	mux.HandleFunc("GET /app/controls", h.Controls)
	mux.HandleFunc("POST /app/review", h.Review)
	mux.HandleFunc("GET /app/diagnostics", h.Diagnostics)
}
