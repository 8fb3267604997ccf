package router

import (
	"context"
	"database/sql"
	"fmt"

	"pet-care-tracker/internal/adapters/auth/supabase"
	"pet-care-tracker/internal/adapters/flavor/claude"
	"pet-care-tracker/internal/adapters/flavor/gemini"
	"pet-care-tracker/internal/adapters/flavor/openrouter"
	"pet-care-tracker/internal/adapters/flavor/static"
	mem "pet-care-tracker/internal/adapters/storage/memory"
	pg "pet-care-tracker/internal/adapters/storage/postgres"
	"pet-care-tracker/internal/adapters/storage/sqlite"
	"pet-care-tracker/internal/config"
	"pet-care-tracker/internal/platform/logger"
	"pet-care-tracker/internal/ports/auth"
	"pet-care-tracker/internal/ports/flavor"
)

// OpenStore abre y migra el backend configurado. close nunca es nil.
func OpenStore(ctx context.Context, cfg config.DBConfig) (Store, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Driver {
	case config.DriverMemory, "":
		return mem.NewStore(), noop, nil

	case config.DriverSQLite:
		db, err := sqlite.Open(cfg.DSN)
		if err != nil {
			return nil, noop, fmt.Errorf("open sqlite: %w", err)
		}
		return sqlite.NewStore(db), db.Close, nil

	case config.DriverPostgres:
		db, err := pg.Open(cfg.DSN)
		if err != nil {
			return nil, noop, fmt.Errorf("open postgres: %w", err)
		}
		if err := pg.Migrate(ctx, db); err != nil {
			_ = db.Close()
			return nil, noop, fmt.Errorf("migrate postgres: %w", err)
		}
		return pg.NewStore(db), db.Close, nil
	}

	return nil, noop, fmt.Errorf("unknown db driver %q", cfg.Driver)
}

// Migrate corre las migraciones sin levantar el server.
func Migrate(ctx context.Context, cfg config.DBConfig) error {
	var (
		db  *sql.DB
		err error
	)
	switch cfg.Driver {
	case config.DriverSQLite:
		// Open ya migra.
		db, err = sqlite.Open(cfg.DSN)
	case config.DriverPostgres:
		db, err = pg.Open(cfg.DSN)
		if err == nil {
			err = pg.Migrate(ctx, db)
		}
	default:
		return nil
	}
	if db != nil {
		defer db.Close()
	}
	return err
}

// NewVerifier devuelve nil (modo dev) si no hay base_url.
func NewVerifier(cfg config.AuthConfig) (auth.AuthVerifier, error) {
	if cfg.BaseURL == "" {
		return nil, nil
	}
	client, err := supabase.NewClient(supabase.Config{
		BaseURL: cfg.BaseURL,
		APIKey:  cfg.APIKey,
		Timeout: cfg.Timeout,
	})
	if err != nil {
		return nil, err
	}
	return supabase.NewVerifier(client), nil
}

func NewGenerator(ctx context.Context, cfg config.AIConfig, log logger.Logger) (flavor.Generator, error) {
	switch cfg.Provider {
	case config.ProviderClaude:
		return claude.New(cfg.Claude.APIKey, cfg.Claude.Model), nil
	case config.ProviderGemini:
		return gemini.New(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model)
	case config.ProviderOpenRouter:
		return openrouter.New(openrouter.Config{
			BaseURL: cfg.OpenRouter.BaseURL,
			APIKey:  cfg.OpenRouter.APIKey,
			Models:  cfg.OpenRouter.Models,
			Title:   "HappyCat App",
		}, log)
	default:
		// none / static: cada consumidor usa su texto de respaldo.
		return static.New(""), nil
	}
}
