package commands

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/hay-kot/shop/internal/api"
	"github.com/hay-kot/shop/internal/core/config"
	"github.com/hay-kot/shop/internal/core/session"
	"github.com/hay-kot/shop/internal/router"
	"github.com/hay-kot/shop/internal/shop"
	"github.com/hay-kot/shop/internal/store/jsonfile"
	"github.com/hay-kot/shop/internal/store/redisstore"
)

// Setup wires the session store, service and router from f.Config.
func (f *Flags) Setup(ctx context.Context, logger zerolog.Logger) error {
	cfg := f.Config
	if cfg == nil {
		return fmt.Errorf("configuration not loaded")
	}

	store, err := OpenStore(cfg, f.Ephemeral)
	if err != nil {
		return err
	}

	client, err := api.New(api.Config{
		BaseURL:      cfg.API.BaseURL,
		Timeout:      cfg.API.Timeout,
		TrustedHosts: cfg.API.TrustedHosts,
		Logger:       logger.With().Str("component", "api").Logger(),
	}, store)
	if err != nil {
		return fmt.Errorf("create api client: %w", err)
	}

	svc := shop.New(client, logger.With().Str("component", "shop").Logger())
	if err := svc.SetMediaURL(cfg.API.MediaURL); err != nil {
		return err
	}

	sess, err := store.Get(ctx)
	if err != nil {
		// An unreadable store is treated as logged out; doctor reports it.
		logger.Warn().Err(err).Msg("read session")
	}

	r := router.New(sess.LoggedIn())
	svc.OnSessionCleared(func() {
		r.SetLoggedIn(false)
		logger.Warn().Msg("session expired, logged out")
	})

	f.Store = store
	f.Service = svc
	f.Router = r
	return nil
}

// OpenStore returns the session store selected by cfg. ephemeral forces an
// in-memory store.
func OpenStore(cfg *config.Config, ephemeral bool) (session.Store, error) {
	if ephemeral || cfg.Session.Backend == config.BackendMemory {
		return session.NewMemoryStore(session.Session{}), nil
	}

	origin, err := session.Origin(cfg.API.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("session origin: %w", err)
	}

	switch cfg.Session.Backend {
	case config.BackendFile:
		return jsonfile.New(cfg.SessionFile(), origin), nil
	case config.BackendRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Session.Redis.Addr,
			Password: cfg.Session.Redis.Password,
			DB:       cfg.Session.Redis.DB,
		})
		return redisstore.New(rdb, origin), nil
	default:
		return nil, fmt.Errorf("unknown session backend %q", cfg.Session.Backend)
	}
}
