package main

// @title           Sercha Bridge API
// @version         1.0
// @description     OAuth broker for third-party workspaces. Sercha Bridge runs the consent flow for HubSpot, Airtable and Notion, hands credentials off once and lists workspace resources as integration items.

// @contact.name   Sercha OSS
// @contact.url    https://github.com/custodia-labs/sercha-bridge/issues

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:8000
// @BasePath  /
// @schemes   http https

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/custodia-labs/sercha-bridge/internal/adapters/driven/crypto"
	"github.com/custodia-labs/sercha-bridge/internal/adapters/driven/platforms"
	"github.com/custodia-labs/sercha-bridge/internal/adapters/driven/platforms/airtable"
	"github.com/custodia-labs/sercha-bridge/internal/adapters/driven/platforms/hubspot"
	"github.com/custodia-labs/sercha-bridge/internal/adapters/driven/platforms/notion"
	"github.com/custodia-labs/sercha-bridge/internal/adapters/driven/postgres"
	redisstore "github.com/custodia-labs/sercha-bridge/internal/adapters/driven/redis"
	"github.com/custodia-labs/sercha-bridge/internal/adapters/driven/statecodec"
	"github.com/custodia-labs/sercha-bridge/internal/adapters/driving/http"
	"github.com/custodia-labs/sercha-bridge/internal/config"
	"github.com/custodia-labs/sercha-bridge/internal/core/domain"
	"github.com/custodia-labs/sercha-bridge/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-bridge/internal/core/services"
	"github.com/custodia-labs/sercha-bridge/internal/normalisers"
)

// cleanupInterval is how often expired rows are purged from the PostgreSQL store.
const cleanupInterval = time.Minute

func main() {
	if err := run(); err != nil {
		slog.Error("sercha-bridge exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)
	logger.Info("sercha-bridge starting", "version", cfg.Version)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ===== Ephemeral store (Redis if configured, otherwise PostgreSQL) =====
	store, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	if cfg.CredentialEncryptionKey != "" {
		key, err := crypto.ParseKey(cfg.CredentialEncryptionKey)
		if err != nil {
			return fmt.Errorf("parse encryption key: %w", err)
		}
		encryptor, err := crypto.NewEncryptor(key)
		if err != nil {
			return fmt.Errorf("create encryptor: %w", err)
		}
		store = crypto.NewEncryptedStore(store, encryptor)
		logger.Info("stored values are encrypted")
	}

	// ===== State codec =====
	var codec driven.StateCodec = statecodec.NewBase64JSON()
	if cfg.StateSigningSecret != "" {
		signed, err := statecodec.NewJWT(cfg.StateSigningSecret, cfg.StateTTL)
		if err != nil {
			return fmt.Errorf("create state codec: %w", err)
		}
		codec = signed
		logger.Info("state tokens are signed")
	} else {
		logger.Warn("STATE_SIGNING_SECRET not set, state tokens are unsigned")
	}

	// ===== Platforms =====
	registry := platforms.NewRegistry()
	for _, p := range cfg.EnabledPlatforms() {
		registry.Register(newAdapter(p, cfg.Platform(p)))
		logger.Info("platform enabled", "platform", p)
	}
	if len(registry.Platforms()) == 0 {
		logger.Warn("no platforms configured")
	}

	// ===== Services =====
	integrations := services.NewIntegrationService(services.IntegrationServiceConfig{
		Store:         store,
		Codec:         codec,
		Platforms:     registry,
		Normalisers:   normalisers.DefaultRegistry(),
		StateTTL:      cfg.StateTTL,
		CredentialTTL: cfg.CredentialTTL,
		Logger:        logger,
	})

	// ===== HTTP server =====
	var pinger http.Pinger
	if p, ok := store.(http.Pinger); ok {
		pinger = p
	}

	server := http.NewServer(http.Config{
		Host:           cfg.Host,
		Port:           cfg.Port,
		Version:        cfg.Version,
		AllowedOrigins: cfg.CORSAllowedOrigins,
	}, integrations, pinger, logger)

	return server.Start()
}

// openStore connects the configured backend and returns it with its closer.
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (driven.KVStore, func(), error) {
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, nil, fmt.Errorf("parse redis url: %w", err)
		}
		client := redis.NewClient(opts)
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("connect redis: %w", err)
		}
		logger.Info("using redis store")
		return redisstore.NewKVStore(client, ""), func() { _ = client.Close() }, nil
	}

	db, err := postgres.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("connect database: %w", err)
	}

	store := postgres.NewKVStore(db)
	go purgeExpired(ctx, store, logger)

	logger.Info("using postgres store")
	return store, func() { _ = db.Close() }, nil
}

// purgeExpired deletes expired rows until ctx is cancelled.
// Reads already ignore expired rows; this only bounds table growth.
func purgeExpired(ctx context.Context, store *postgres.KVStore, logger *slog.Logger) {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := store.Cleanup(ctx)
			if err != nil {
				logger.Warn("purge expired entries failed", "error", err)
				continue
			}
			if n > 0 {
				logger.Debug("purged expired entries", "count", n)
			}
		}
	}
}

func newAdapter(p domain.PlatformType, oauth domain.PlatformConfig) driven.PlatformAdapter {
	switch p {
	case domain.PlatformHubSpot:
		return hubspot.New(hubspot.Config{OAuth: oauth})
	case domain.PlatformAirtable:
		return airtable.New(airtable.Config{OAuth: oauth})
	default:
		return notion.New(notion.Config{OAuth: oauth})
	}
}
