package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"posterforge/internal/adapter/repo"
	"posterforge/internal/credits"
	"posterforge/internal/http/handlers"
	"posterforge/internal/http/httpapi"
	"posterforge/internal/infra"
	"posterforge/internal/infra/geoip"
	"posterforge/internal/middleware"
	"posterforge/internal/pipeline"
	"posterforge/internal/providers/prompt"
	"posterforge/internal/providers/render"
	"posterforge/internal/providers/vision"
	"posterforge/internal/storage"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()
	dbpool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer dbpool.Close()

	extractor, err := vision.NewGeminiExtractor(vision.GeminiOptions{
		APIKey:  cfg.GeminiAPIKey,
		Model:   cfg.GeminiModel,
		BaseURL: cfg.GeminiBaseURL,
		Logger:  &logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build vision extractor")
	}

	synthesizer, err := buildSynthesizer(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build prompt synthesizer")
	}

	renderer, err := buildRenderer(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build renderer")
	}

	svc, err := pipeline.NewService(pipeline.Options{
		Extractor:   extractor,
		Synthesizer: synthesizer,
		Renderer:    renderer,
		Analytics:   repo.NewAnalyticsRepository(dbpool),
		Logger:      &logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build pipeline")
	}

	store, err := storage.NewFileStore(cfg.StoragePath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize storage")
	}

	var captioner prompt.Captioner = prompt.NewStaticCaptioner()
	if cfg.OpenAIAPIKey != "" {
		openai, err := prompt.NewOpenAIClient(prompt.OpenAIOptions{
			APIKey:  cfg.OpenAIAPIKey,
			Model:   cfg.OpenAIModel,
			BaseURL: cfg.OpenAIBaseURL,
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to build captioner")
		}
		captioner = openai
	}

	app := handlers.NewApp(handlers.Options{
		Logger:        &logger,
		Pipeline:      svc,
		Synthesizer:   synthesizer,
		Captioner:     captioner,
		Renderers:     buildRenderFactories(cfg),
		DefaultEngine: cfg.RenderProvider,
		Posters:       repo.NewPosterRepository(dbpool),
		Credits: credits.NewClient(credits.Options{
			APIKey:  cfg.LeonardoAPIKey,
			BaseURL: cfg.LeonardoBaseURL,
			Logger:  &logger,
		}),
		Store:          store,
		StorageBaseURL: cfg.StorageBaseURL,
		MaxUploadBytes: cfg.MaxUploadBytes,
	})

	var lookup middleware.CountryLookup
	resolver, err := geoip.NewResolver(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip disabled")
	} else if resolver != nil {
		lookup = resolver.CountryCode
	}

	router := httpapi.NewRouter(app, httpapi.Options{
		Logger:        logger,
		CountryLookup: lookup,
		DefaultLocale: "en",
		RateLimit:     cfg.RateLimitPerMin,
		StaticDir:     store.BasePath(),
	})

	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}

func buildSynthesizer(cfg *infra.Config) (prompt.Synthesizer, error) {
	if cfg.PromptProvider == "openai" && cfg.OpenAIAPIKey != "" {
		return prompt.NewOpenAIClient(prompt.OpenAIOptions{
			APIKey:  cfg.OpenAIAPIKey,
			Model:   cfg.OpenAIModel,
			BaseURL: cfg.OpenAIBaseURL,
		})
	}
	return prompt.NewGeminiSynthesizer(prompt.GeminiOptions{
		APIKey:  cfg.GeminiAPIKey,
		Model:   cfg.GeminiModel,
		BaseURL: cfg.GeminiBaseURL,
	})
}

func buildRenderer(cfg *infra.Config) (render.Renderer, error) {
	if cfg.RenderProvider == "dalle" && cfg.OpenAIAPIKey != "" {
		return render.NewDalleRenderer(render.DalleOptions{
			APIKey:      cfg.OpenAIAPIKey,
			BaseURL:     cfg.OpenAIBaseURL,
			AspectRatio: cfg.RenderAspectRatio,
		})
	}
	return render.NewLeonardoRenderer(render.LeonardoOptions{
		APIKey:       cfg.LeonardoAPIKey,
		BaseURL:      cfg.LeonardoBaseURL,
		AspectRatio:  cfg.RenderAspectRatio,
		PollInterval: cfg.RenderPollInterval,
		MaxAttempts:  cfg.RenderMaxAttempts,
	})
}

// buildRenderFactories exposes one factory per engine the deployment has
// credentials for. Direct generation picks aspect ratio per request, so
// renderers are built on demand instead of once at startup.
func buildRenderFactories(cfg *infra.Config) map[string]handlers.RendererFactory {
	factories := make(map[string]handlers.RendererFactory)
	if cfg.LeonardoAPIKey != "" {
		factories["leonardo"] = func(aspect string) (render.Renderer, error) {
			if aspect == "" {
				aspect = cfg.RenderAspectRatio
			}
			return render.NewLeonardoRenderer(render.LeonardoOptions{
				APIKey:       cfg.LeonardoAPIKey,
				BaseURL:      cfg.LeonardoBaseURL,
				AspectRatio:  aspect,
				PollInterval: cfg.RenderPollInterval,
				MaxAttempts:  cfg.RenderMaxAttempts,
			})
		}
	}
	if cfg.OpenAIAPIKey != "" {
		factories["dalle"] = func(aspect string) (render.Renderer, error) {
			if aspect == "" {
				aspect = cfg.RenderAspectRatio
			}
			return render.NewDalleRenderer(render.DalleOptions{
				APIKey:      cfg.OpenAIAPIKey,
				BaseURL:     cfg.OpenAIBaseURL,
				AspectRatio: aspect,
			})
		}
	}
	return factories
}
