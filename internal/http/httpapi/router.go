package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"captioner/internal/http/handlers"
	"captioner/internal/middleware"
)

type RouterOptions struct {
	Logger         zerolog.Logger
	AllowedOrigins []string
}

func NewRouter(app *handlers.App, opts RouterOptions) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		middleware.Logger(opts.Logger),
		chimw.Recoverer,
		middleware.CORS(opts.AllowedOrigins),
	)

	r.Get("/healthz", app.Health)

	r.Route("/auth", func(r chi.Router) {
		r.Get("/login", app.Login)
		r.Get("/callback", app.Callback)
		r.Post("/logout", app.Logout)
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/me", app.Me)
		r.Group(func(r chi.Router) {
			r.Use(app.Sessions.RequireSession)
			r.Post("/generate", app.GenerateCaptions)
		})
	})

	return r
}
