package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"posterforge/internal/http/handlers"
	"posterforge/internal/middleware"
)

// Options configures the router's cross-cutting concerns.
type Options struct {
	Logger         zerolog.Logger
	CountryLookup  middleware.CountryLookup
	DefaultLocale  string
	RateLimit      int
	AllowedOrigins []string
	StaticDir      string
}

// NewRouter assembles the full route table around the handler set.
func NewRouter(app *handlers.App, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(opts.Logger),
	)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins(opts.AllowedOrigins),
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID", "X-Locale"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(middleware.I18N(opts.DefaultLocale, opts.CountryLookup))
	if opts.RateLimit > 0 {
		r.Use(middleware.RateLimit(opts.RateLimit, time.Minute))
	}

	r.Get("/v1/healthz", app.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1/ai", func(r chi.Router) {
		r.Post("/process-image", app.ProcessImage)
		r.Post("/generate", app.GeneratePoster)
		r.Post("/regenerate-event", app.RegenerateEvent)
		r.Post("/prompt", app.GeneratePrompt)
		r.Post("/caption", app.GenerateCaption)
		r.Post("/composite-logo", app.CompositeLogo)
		r.Get("/credits", app.CreditsRemaining)
	})

	r.Post("/v1/events/export", app.ExportEvents)
	r.Get("/v1/posters", app.ListPosters)
	r.Get("/v1/posters/archive", app.ArchiveComposites)

	if opts.StaticDir != "" {
		fs := http.StripPrefix("/static/", http.FileServer(http.Dir(opts.StaticDir)))
		r.Get("/static/*", fs.ServeHTTP)
	}

	return r
}

func origins(configured []string) []string {
	if len(configured) == 0 {
		return []string{"*"}
	}
	return configured
}
