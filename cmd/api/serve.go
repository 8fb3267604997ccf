package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"pet-care-tracker/internal/router"
)

func newServeCmd(load loaderFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Levanta la API HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			cfg, log, err := load()
			if err != nil {
				return err
			}

			store, closeStore, err := router.OpenStore(ctx, cfg.DB)
			if err != nil {
				return err
			}
			defer closeStore()

			verifier, err := router.NewVerifier(cfg.Auth)
			if err != nil {
				return fmt.Errorf("auth verifier: %w", err)
			}
			if verifier == nil {
				log.Warn("auth disabled, X-Debug-User-ID accepted", nil)
			}

			gen, err := router.NewGenerator(ctx, cfg.AI, log)
			if err != nil {
				return fmt.Errorf("text generator: %w", err)
			}

			loc, _ := cfg.Location()
			h := router.NewRouter(router.Options{
				AuthVerifier: verifier,
				Store:        store,
				Generator:    gen,
				Logger:       log,
				Location:     loc,
				Lookback:     cfg.Lookback(),
			})

			srv := &http.Server{
				Addr:         cfg.Addr(),
				Handler:      h,
				ReadTimeout:  cfg.Server.ReadTimeout,
				WriteTimeout: cfg.Server.WriteTimeout,
			}

			errCh := make(chan error, 1)
			go func() {
				log.Info("starting server", map[string]any{
					"addr":        srv.Addr,
					"db_driver":   cfg.DB.Driver,
					"ai_provider": cfg.AI.Provider,
					"timezone":    loc.String(),
				})
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				if err != nil {
					return fmt.Errorf("server error: %w", err)
				}
				return nil
			case <-ctx.Done():
			}

			log.Info("shutting down", nil)
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
}

func newMigrateCmd(load loaderFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Crea o actualiza el esquema (sqlite / postgres)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := load()
			if err != nil {
				return err
			}
			if err := router.Migrate(cmd.Context(), cfg.DB); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			log.Info("migrations applied", map[string]any{"db_driver": cfg.DB.Driver})
			return nil
		},
	}
}
