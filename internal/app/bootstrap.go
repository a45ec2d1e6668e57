package app

import (
	"context"
	"fmt"

	"ai-trip-planner/internal/config"
	"ai-trip-planner/internal/database"
	"ai-trip-planner/internal/export"
	"ai-trip-planner/internal/ghost"
	"ai-trip-planner/internal/itinerary"
	"ai-trip-planner/internal/llm"
	"ai-trip-planner/internal/logger"
	"ai-trip-planner/internal/maps"
	"ai-trip-planner/internal/metrics"
)

const scheduleTemperature = 0.2

// NewTextGenerator builds the generation client selected by
// cfg.GenerationProvider. It returns nil for ProviderNone. The returned
// close function is never nil.
func NewTextGenerator(ctx context.Context, cfg *config.Config) (llm.TextGenerator, func() error, error) {
	var gen llm.TextGenerator
	switch cfg.GenerationProvider {
	case config.ProviderGemini:
		client, err := llm.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, scheduleTemperature)
		if err != nil {
			return nil, noopClose, fmt.Errorf("failed to create Gemini client: %w", err)
		}
		gen = client
	case config.ProviderGroq:
		gen = llm.NewGroqClient(cfg.GroqAPIKey, cfg.GroqModel, scheduleTemperature)
	case config.ProviderOpenAI:
		gen = llm.NewChatClient(cfg.OpenAIAPIKey, "", cfg.OpenAIModel, scheduleTemperature)
	case config.ProviderNone:
		return nil, noopClose, nil
	default:
		return nil, noopClose, fmt.Errorf("unknown generation provider %q", cfg.GenerationProvider)
	}
	return gen, closerFor(gen), nil
}

func noopClose() error { return nil }

// closerFor returns gen's Close when it holds resources.
func closerFor(gen llm.TextGenerator) func() error {
	if c, ok := gen.(llm.Closer); ok {
		return c.Close
	}
	return noopClose
}

// NewEnricher wires the Google Maps clients, cached through Redis when
// REDIS_URL is set. It returns nil when no Maps key is configured.
func NewEnricher(ctx context.Context, cfg *config.Config, log *logger.Logger) (*itinerary.Enricher, func() error) {
	noop := func() error { return nil }
	if !cfg.MapsEnabled() {
		log.Info("GOOGLE_MAPS_API_KEY not set, enrichment disabled")
		return nil, noop
	}

	var router maps.Router = maps.NewRoutesClient(cfg.GoogleMapsAPIKey)
	var imagery maps.Imagery = maps.NewStreetViewClient(cfg.GoogleMapsAPIKey)
	closeFn := noop

	if cfg.RedisURL != "" {
		store, err := maps.NewRedisStore(ctx, cfg.RedisURL)
		if err != nil {
			log.Warn("redis unavailable, maps responses will not be cached", "error", err)
		} else {
			router = maps.NewCachedRouter(router, store, log)
			imagery = maps.NewCachedImagery(imagery, store, log)
			closeFn = store.Close
		}
	}

	return itinerary.NewEnricher(router, imagery, cfg.Planner.ImageryRadiusM, cfg.Planner.ImagerySource, log), closeFn
}

// Bootstrap opens the database and builds every collaborator from cfg.
// The returned cleanup releases them in reverse order.
func Bootstrap(ctx context.Context, cfg *config.Config, log *logger.Logger) (*App, func(), error) {
	if log == nil {
		log = logger.Nop()
	}
	var closers []func() error
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				log.Warn("cleanup failed", "error", err)
			}
		}
	}

	db, err := database.NewDB(cfg.DatabasePath, log)
	if err != nil {
		return nil, func() {}, fmt.Errorf("failed to initialize database: %w", err)
	}
	closers = append(closers, db.Close)

	textGen, closeGen, err := NewTextGenerator(ctx, cfg)
	if err != nil {
		cleanup()
		return nil, func() {}, err
	}
	closers = append(closers, closeGen)

	var generator *itinerary.ScheduleGenerator
	if textGen != nil {
		generator = itinerary.NewScheduleGenerator(textGen)
	} else {
		log.Info("generation disabled, schedules will use the fallback heuristic")
	}

	enricher, closeMaps := NewEnricher(ctx, cfg, log)
	closers = append(closers, closeMaps)

	var ghostClient ghost.Client
	if cfg.GhostURL != "" && cfg.GhostAdminKey != "" {
		ghostClient = ghost.NewClient(cfg)
	}

	var exporter Exporter
	if cfg.S3BucketName != "" {
		s3Exporter, err := export.NewS3Exporter(ctx, cfg.S3BucketName, cfg.AWSRegion)
		if err != nil {
			log.Warn("S3 export disabled", "error", err)
		} else {
			exporter = s3Exporter
		}
	}

	planner := itinerary.NewPlanner(generator, enricher, cfg.Planner, log)
	application := NewApp(
		cfg,
		log,
		planner,
		itinerary.NewPlanRepository(db.SQL),
		metrics.NewStore(db.SQL),
		ghostClient,
		exporter,
	)
	return application, cleanup, nil
}
