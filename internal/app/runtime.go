package app

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/time/rate"

	"github.com/samvad-hq/samvad-connection/internal/config"
	"github.com/samvad-hq/samvad-connection/internal/logger"
	"github.com/samvad-hq/samvad-connection/internal/storage"
	"github.com/samvad-hq/samvad-connection/pkg/connection"
	"github.com/samvad-hq/samvad-connection/pkg/connectivity"
	"github.com/samvad-hq/samvad-connection/pkg/httpclient"
	"github.com/samvad-hq/samvad-connection/pkg/lifecycle"
	"github.com/samvad-hq/samvad-connection/pkg/publishers"
)

// Runtime owns the collaborators shared by every connection of a process:
// transport, connectivity probe, offline store, callback loop and the
// optional lifecycle publishers. It also handles their cleanup.
type Runtime struct {
	cfg       *config.Config
	log       logger.Logger
	transport connection.Transport
	probe     connection.ConnectivityProbe
	store     storage.Store
	loop      *connection.Loop
	observer  *publishers.Observer
}

// NewRuntime builds a runtime from config.
func NewRuntime(ctx context.Context, cfg *config.Config, log logger.Logger) (*Runtime, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = &logger.NopLogger{}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	store, err := storage.NewStore(cfg.StorageType, storePath(cfg))
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}
	log.InfoObj("storage initialized", "storage_config", map[string]any{
		"type": cfg.StorageType,
		"path": storePath(cfg),
	})

	rt := &Runtime{
		cfg:       cfg,
		log:       log,
		transport: newTransport(cfg),
		probe:     newProbe(cfg),
		store:     store,
		loop:      connection.NewLoop(),
	}
	log.InfoObj("transport initialized", "transport_config", map[string]any{
		"base_endpoint":      cfg.BaseEndpoint,
		"timeout_seconds":    int(cfg.HTTPTimeout.Seconds()),
		"rate_limit_per_sec": cfg.HTTPRateLimitPerSecond,
		"oauth2":             cfg.OAuth2Enabled(),
		"connectivity_url":   cfg.ConnectivityURL,
	})

	if cfg.PublishersFile != "" {
		obs, err := newObserver(ctx, cfg, log)
		if err != nil {
			_ = store.Close()
			return nil, err
		}
		rt.observer = obs
	}

	return rt, nil
}

func storePath(cfg *config.Config) string {
	switch cfg.StorageType {
	case storage.TypeSQLite:
		return cfg.SQLitePath
	case storage.TypeBBolt:
		return cfg.BBoltPath
	default:
		return ""
	}
}

func newTransport(cfg *config.Config) *httpclient.RestyTransport {
	opts := []httpclient.Option{httpclient.WithTimeout(cfg.HTTPTimeout)}
	if cfg.OAuth2Enabled() {
		opts = append(opts, httpclient.WithOAuth2(&clientcredentials.Config{
			ClientID:     cfg.OAuth2ClientID,
			ClientSecret: cfg.OAuth2ClientSecret,
			TokenURL:     cfg.OAuth2TokenURL,
			Scopes:       cfg.OAuth2Scopes,
		}))
	}
	if cfg.HTTPRateLimitPerSecond > 0 {
		burst := int(cfg.HTTPRateLimitPerSecond)
		if burst < 1 {
			burst = 1
		}
		opts = append(opts, httpclient.WithRateLimit(rate.NewLimiter(rate.Limit(cfg.HTTPRateLimitPerSecond), burst)))
	}
	return httpclient.NewRestyTransport(opts...)
}

func newProbe(cfg *config.Config) connection.ConnectivityProbe {
	if cfg.ConnectivityURL == "" {
		return connectivity.Static(true)
	}
	return connectivity.NewHTTPProbe(cfg.ConnectivityURL, cfg.ConnectivityTimeout, cfg.ConnectivityCache)
}

func newObserver(ctx context.Context, cfg *config.Config, log logger.Logger) (*publishers.Observer, error) {
	publisherReg, err := publishers.LoadRegistry(cfg.PublishersFile)
	if err != nil {
		return nil, fmt.Errorf("load publishers registry: %w", err)
	}

	enabledPublishers := publisherReg.Enabled()
	if len(enabledPublishers) == 0 {
		log.WarnObj("publishers file has no enabled publishers", "publishers_file", cfg.PublishersFile)
		return nil, nil
	}

	pubClients, err := publishers.BuildAll(ctx, publishers.DefaultRegistry(), enabledPublishers, log)
	if err != nil {
		return nil, fmt.Errorf("build publishers: %w", err)
	}
	publisherSummaries := make([]map[string]any, 0, len(enabledPublishers))
	for _, pubCfg := range enabledPublishers {
		publisherSummaries = append(publisherSummaries, map[string]any{
			"id":    pubCfg.ID,
			"type":  pubCfg.Type,
			"kinds": pubCfg.Kinds,
		})
	}
	log.InfoObj("publishers registry loaded", "publishers_meta", map[string]any{
		"count":      len(publisherSummaries),
		"publishers": publisherSummaries,
	})

	return publishers.NewObserver(cfg.AppName, publishers.NewFanout(pubClients), log, 0), nil
}

// Deps returns the collaborators for connection.New.
func (r *Runtime) Deps() connection.Deps {
	deps := connection.Deps{
		Config:     connection.Config{BaseEndpoint: r.cfg.BaseEndpoint},
		Transport:  r.transport,
		Store:      r.store,
		Probe:      r.probe,
		Dispatcher: r.loop,
		Logger:     r.log,
	}
	if r.observer != nil {
		deps.Observer = r.observer
	}
	return deps
}

// Store exposes the offline store for inspection.
func (r *Runtime) Store() storage.Store {
	return r.store
}

// Await runs the callback loop on the calling goroutine until done is closed
// and every callback posted before it has run, or ctx is cancelled. The loop
// stays usable for later executions.
func (r *Runtime) Await(ctx context.Context, done <-chan struct{}) error {
	if r == nil || r.loop == nil {
		return fmt.Errorf("runtime is not initialized")
	}
	return r.loop.RunUntil(ctx, done)
}

// Close stops the loop and releases the store and publishers.
func (r *Runtime) Close() error {
	if r == nil {
		return nil
	}
	r.loop.Close()

	var errs []error
	if r.observer != nil {
		if err := r.observer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close publishers: %w", err))
		}
	}
	if err := r.store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close storage: %w", err))
	}
	r.log.InfoObj("runtime closed", "runtime_state", map[string]any{
		"storage_type": r.cfg.StorageType,
		"publishers":   r.observer != nil,
	})
	return errors.Join(errs...)
}

var _ lifecycle.Observer = (*publishers.Observer)(nil)
