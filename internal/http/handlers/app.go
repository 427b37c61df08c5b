package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"posterforge/internal/credits"
	"posterforge/internal/domain"
	"posterforge/internal/pipeline"
	"posterforge/internal/providers/prompt"
	"posterforge/internal/providers/render"
	"posterforge/internal/storage"
)

// RendererFactory builds a renderer for one engine with the requested aspect
// ratio. An empty aspect ratio means the engine's configured default.
type RendererFactory func(aspectRatio string) (render.Renderer, error)

// App carries the collaborators every handler needs. Fields left nil disable
// the corresponding endpoint gracefully (503) rather than panicking.
type App struct {
	Logger         zerolog.Logger
	Validate       *validator.Validate
	Pipeline       *pipeline.Service
	Synthesizer    prompt.Synthesizer
	Captioner      prompt.Captioner
	Renderers      map[string]RendererFactory
	DefaultEngine  string
	Posters        domain.PosterRepository
	Credits        *credits.Client
	Store          *storage.FileStore
	StorageBaseURL string
	MaxUploadBytes int64
}

// Options mirrors App for construction; NewApp applies defaults.
type Options struct {
	Logger         *zerolog.Logger
	Pipeline       *pipeline.Service
	Synthesizer    prompt.Synthesizer
	Captioner      prompt.Captioner
	Renderers      map[string]RendererFactory
	DefaultEngine  string
	Posters        domain.PosterRepository
	Credits        *credits.Client
	Store          *storage.FileStore
	StorageBaseURL string
	MaxUploadBytes int64
}

// NewApp wires the handler set.
func NewApp(opts Options) *App {
	logger := zerolog.New(io.Discard)
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	maxUpload := opts.MaxUploadBytes
	if maxUpload <= 0 {
		maxUpload = 10 * 1024 * 1024
	}
	return &App{
		Logger:         logger,
		Validate:       validator.New(validator.WithRequiredStructEnabled()),
		Pipeline:       opts.Pipeline,
		Synthesizer:    opts.Synthesizer,
		Captioner:      opts.Captioner,
		Renderers:      opts.Renderers,
		DefaultEngine:  opts.DefaultEngine,
		Posters:        opts.Posters,
		Credits:        opts.Credits,
		Store:          opts.Store,
		StorageBaseURL: opts.StorageBaseURL,
		MaxUploadBytes: maxUpload,
	}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, tag, message string) {
	a.json(w, code, map[string]any{
		"success": false,
		"error":   tag,
		"message": message,
	})
}
