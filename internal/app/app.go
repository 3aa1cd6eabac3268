package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"listforge/internal/config"
	"listforge/internal/drive"
	"listforge/internal/services"
	"listforge/internal/shopify"
	"listforge/internal/store"
	"listforge/internal/store/primary"
)

// App wires configuration, stores, collaborators, and services together.
type App struct {
	Config *config.Config

	ListingStore store.ListingStore
	RunStore     store.RunStore
	ReviewStore  store.ReviewStore
	JobStore     store.JobStore
	JobClient    store.JobClient

	Scanner  *drive.Scanner
	Shopify  *shopify.Client
	Pipeline *services.PipelineService

	primaryStore *primary.StoreImpl
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	app := &App{Config: cfg}

	if err := app.initPrimaryStore(ctx); err != nil {
		return nil, err
	}
	if err := app.initJobClient(); err != nil {
		app.Close()
		return nil, err
	}
	if err := app.initScanner(ctx); err != nil {
		app.Close()
		return nil, err
	}
	if err := app.initPipeline(ctx); err != nil {
		app.Close()
		return nil, err
	}

	log.Debug("Application initialization complete")
	return app, nil
}

func (a *App) initPrimaryStore(ctx context.Context) error {
	ps, err := primary.NewPrimaryStore(ctx, a.Config.Database.DSN)
	if err != nil {
		return fmt.Errorf("init primary store: %w", err)
	}
	a.primaryStore = ps
	a.ListingStore = ps
	a.RunStore = ps
	a.ReviewStore = ps
	a.JobStore = ps
	return nil
}

func (a *App) initJobClient() error {
	jc, err := store.NewAsynqJobClient(a.Config.Redis.Address, a.Config.Redis.Password, a.Config.Redis.DB, a.JobStore)
	if err != nil {
		return fmt.Errorf("init job client: %w", err)
	}
	a.JobClient = jc
	return nil
}

func (a *App) initScanner(ctx context.Context) error {
	scanner, err := drive.NewScanner(ctx,
		a.Config.Storage.Bucket, a.Config.Storage.Prefix, a.Config.Storage.MarkerPrefix)
	if err != nil {
		return fmt.Errorf("init storage scanner: %w", err)
	}
	a.Scanner = scanner
	return nil
}

func (a *App) initPipeline(ctx context.Context) error {
	cfg := a.Config

	vision, err := services.NewOpenAIVisionService(cfg.AI.OpenAIAPIKey, cfg.AI.VisionModel)
	if err != nil {
		return fmt.Errorf("init vision service: %w", err)
	}

	completer, err := a.newCompleter(ctx, cfg.AI.GenerationModel)
	if err != nil {
		return fmt.Errorf("init generation provider: %w", err)
	}
	generator, err := services.NewGenerationService(completer)
	if err != nil {
		return fmt.Errorf("init generation service: %w", err)
	}

	var trends services.TrendResearcher = services.NewNoopTrendService()
	if cfg.AI.TrendsEnabled {
		trendCompleter, err := a.newCompleter(ctx, cfg.AI.TrendModel)
		if err != nil {
			return fmt.Errorf("init trend provider: %w", err)
		}
		trends = services.NewTrendService(trendCompleter)
	}

	a.Shopify = shopify.NewClient(cfg.Shopify.Store, cfg.Shopify.AccessToken,
		cfg.Shopify.APIVersion, &http.Client{Timeout: 60 * time.Second})

	pipeline, err := services.NewPipelineService(services.PipelineDeps{
		Folders:      a.Scanner,
		Vision:       vision,
		Trends:       trends,
		Generator:    generator,
		Publisher:    a.Shopify,
		Listings:     a.ListingStore,
		Runs:         a.RunStore,
		Reviews:      a.ReviewStore,
		Catalog:      cfg.Catalog.Collections,
		Thresholds:   cfg.Scoring.Thresholds,
		RecentWindow: cfg.Scoring.RecentWindow,
	})
	if err != nil {
		return fmt.Errorf("init pipeline service: %w", err)
	}
	a.Pipeline = pipeline
	return nil
}

func (a *App) newCompleter(ctx context.Context, model string) (services.TextCompleter, error) {
	switch a.Config.AI.Provider {
	case "gemini":
		return services.NewGeminiCompleter(ctx, a.Config.AI.GoogleAPIKey, model)
	case "openai", "":
		return services.NewOpenAICompleter(a.Config.AI.OpenAIAPIKey, model)
	default:
		return nil, fmt.Errorf("unknown AI provider %q", a.Config.AI.Provider)
	}
}

// Close releases held resources. Safe to call on a partially built App.
func (a *App) Close() {
	if a.JobClient != nil {
		if err := a.JobClient.Close(); err != nil {
			log.Errorf("Error closing job client: %v", err)
		}
	}
	if a.Scanner != nil {
		if err := a.Scanner.Close(); err != nil {
			log.Errorf("Error closing storage scanner: %v", err)
		}
	}
	if a.primaryStore != nil {
		a.primaryStore.Close()
	}
}
