package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/antoniostano/fitbot/internal/affiliate"
	"github.com/antoniostano/fitbot/internal/brain"
	"github.com/antoniostano/fitbot/internal/chat"
	"github.com/antoniostano/fitbot/internal/config"
	"github.com/antoniostano/fitbot/internal/gate"
	"github.com/antoniostano/fitbot/internal/httpapi"
	"github.com/antoniostano/fitbot/internal/memory"
	"github.com/antoniostano/fitbot/internal/observability"
	"github.com/antoniostano/fitbot/internal/session"
)

const minJanitorInterval = 5 * time.Second

type BuildResult struct {
	Config   config.Config
	API      *httpapi.Server
	Sessions *session.Manager
	Chat     *chat.Service
	Metrics  *observability.Metrics
	Brain    string

	// Cleanup should be called on shutdown to release external resources (DB, redis, janitor).
	Cleanup func() error
}

// Build wires the service from cfg. Metrics register on the default registry.
func Build(ctx context.Context, cfg config.Config, log zerolog.Logger) (*BuildResult, error) {
	return BuildWithMetrics(ctx, cfg, log, observability.NewMetrics(cfg.MetricsNamespace))
}

func BuildWithMetrics(ctx context.Context, cfg config.Config, log zerolog.Logger, metrics *observability.Metrics) (*BuildResult, error) {
	runCtx, stop := context.WithCancel(context.Background())

	store, err := session.NewStore(ctx, session.StoreConfig{
		Mode:     cfg.SessionStore,
		RedisURL: cfg.RedisURL,
		TTL:      cfg.SessionTTL,
	})
	if err != nil {
		stop()
		return nil, fmt.Errorf("session store init failed: %w", err)
	}

	transcripts, err := memory.NewStore(ctx, cfg.DatabaseURL)
	if err != nil {
		stop()
		_ = store.Close()
		return nil, fmt.Errorf("transcript store init failed: %w", err)
	}

	adapter, err := brain.NewAdapter(brain.Config{
		Mode:          cfg.BrainMode,
		Timeout:       cfg.BrainTimeout,
		OpenAIKey:     cfg.OpenAIAPIKey,
		OpenAIBaseURL: cfg.OpenAIBaseURL,
		OpenAIModel:   cfg.OpenAIModel,
		RateLimit:     cfg.BrainRateLimit,
		RateBurst:     cfg.BrainRateBurst,
		HTTPURL:       cfg.BrainHTTPURL,
	})
	if err != nil {
		stop()
		_ = transcripts.Close()
		_ = store.Close()
		return nil, fmt.Errorf("brain adapter init failed: %w", err)
	}

	sessions := session.NewManager(store, cfg.SessionHistoryLimit)
	mem, inMemory := store.(*session.InMemoryStore)
	sessions.SetCreateHook(func(_ *session.Session) {
		metrics.ObserveSessionEvent("created")
		if inMemory {
			metrics.SetActiveSessions(mem.Len())
		}
	})
	sessions.SetEndHook(func(string) {
		metrics.ObserveSessionEvent("ended")
		if inMemory {
			metrics.SetActiveSessions(mem.Len())
		}
	})
	if inMemory {
		mem.SetEvictHook(func(string) {
			metrics.ObserveSessionEvent("expired")
			metrics.SetActiveSessions(mem.Len())
		})
		mem.StartJanitor(runCtx, max(cfg.SessionTTL/4, minJanitorInterval))
	}

	svc := chat.NewService(chat.Options{
		Sessions: sessions,
		Brain:    adapter,
		Gate:     gate.New(cfg.FitmentAskCooldown),
		Marketplaces: affiliate.NewResolver(affiliate.ResolverConfig{
			DefaultCountry: cfg.MarketplaceDefault,
			Tags:           cfg.AffiliateTags(),
		}),
		Transcripts: transcripts,
		Metrics:     metrics,
		Logger:      log,
		MaxLinks:    cfg.LinkMaxItems,
	})

	api := httpapi.New(cfg, svc, sessions, transcripts, metrics, log)

	log.Info().
		Str("brain", adapter.Name()).
		Str("session_store", cfg.SessionStore).
		Str("transcript_store", transcripts.Mode()).
		Msg("service wired")

	cleanup := func() error {
		stop()
		return errors.Join(transcripts.Close(), store.Close())
	}

	return &BuildResult{
		Config:   cfg,
		API:      api,
		Sessions: sessions,
		Chat:     svc,
		Metrics:  metrics,
		Brain:    adapter.Name(),
		Cleanup:  cleanup,
	}, nil
}
