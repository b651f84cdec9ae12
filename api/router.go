package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
)

// NewRouter registers every API endpoint behind the shared middleware stack
func NewRouter(h *Handler, corsOrigins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(RequestLogger)
	r.Use(middleware.Recoverer)
	r.Use(LimitBody)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/accounts", h.Register)
		r.Post("/sessions", h.Login)

		r.Group(func(r chi.Router) {
			r.Use(RequireAuth(h.tokens))

			r.Get("/balance", h.Balance)
			r.Get("/plays", h.ListPlays)
			r.Post("/plays", h.PlacePlay)
			r.Post("/plays/delete", h.DeletePlay)
			r.Post("/plays/edit", h.EditPlay)
			r.Post("/plays/refund", h.RefundPlay)
		})
	})

	return cors.New(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", requestIDHeader},
		ExposedHeaders:   []string{requestIDHeader},
		AllowCredentials: true,
	}).Handler(r)
}

// NewServer creates a configured *http.Server for the API
func NewServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
