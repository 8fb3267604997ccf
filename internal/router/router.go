package router

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "pet-care-tracker/docs"
	"pet-care-tracker/internal/adapters/flavor/static"
	mem "pet-care-tracker/internal/adapters/storage/memory"
	"pet-care-tracker/internal/domain/assist"
	"pet-care-tracker/internal/domain/care"
	"pet-care-tracker/internal/domain/pets"
	"pet-care-tracker/internal/middleware"
	"pet-care-tracker/internal/platform/logger"
	"pet-care-tracker/internal/ports/auth"
	"pet-care-tracker/internal/ports/flavor"
)

// Store es lo que el router necesita de un backend de persistencia.
type Store interface {
	care.Store
	Pets() pets.Repository
	Ping(ctx context.Context) error
}

type Options struct {
	AuthVerifier auth.AuthVerifier // puede ser nil (modo dev)

	// Opcional: si no viene, in-memory.
	Store Store

	// Opcional: si no viene, las rutas de assist responden con texto fijo.
	Generator flavor.Generator

	Logger   logger.Logger
	Location *time.Location // frontera de día; default time.Local
	Lookback time.Duration
}

func NewRouter(opts Options) http.Handler {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	store := opts.Store
	if store == nil {
		store = mem.NewStore()
	}
	gen := opts.Generator
	if gen == nil {
		gen = static.New("")
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(log))
	r.Use(chimw.Recoverer)

	r.Use(middleware.AuthContext(opts.AuthVerifier, log))

	r.Get("/health", healthHandler(store))
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	// Services por módulo
	petsSvc := pets.NewService(store.Pets())
	careSvc := care.NewService(store, care.Options{
		Location: opts.Location,
		Lookback: opts.Lookback,
		Logger:   log,
	})
	assistSvc := assist.NewService(gen, log)

	// Rutas por módulo
	pets.RegisterRoutes(r, petsSvc, careSvc)
	care.RegisterRoutes(r, careSvc, petsSvc)
	assist.RegisterRoutes(r, assistSvc, petsSvc, careSvc)

	return r
}

// healthHandler godoc
// @Summary Health check
// @Tags system
// @Produce plain
// @Success 200 {string} string "ok"
// @Failure 503 {string} string "store unavailable"
// @Router /health [get]
func healthHandler(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := store.Ping(ctx); err != nil {
			http.Error(w, "store unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}
}
