// Command server runs the farm record-keeping API.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/sorjordet/sorjordet/internal/api"
	"github.com/sorjordet/sorjordet/internal/auth"
	"github.com/sorjordet/sorjordet/internal/farm"
	"github.com/sorjordet/sorjordet/internal/field"
	"github.com/sorjordet/sorjordet/internal/harvest"
	"github.com/sorjordet/sorjordet/internal/user"
	"github.com/sorjordet/sorjordet/pkg/config"
	"github.com/sorjordet/sorjordet/pkg/httpserver"
	"github.com/sorjordet/sorjordet/pkg/logger"
	"github.com/sorjordet/sorjordet/pkg/pg"
)

func main() {
	var logCfg logger.Config
	config.MustLoad(&logCfg)
	log := logger.NewFromConfig(logCfg, logger.WithAttr(logger.Component("sorjordet")))

	if err := run(context.Background(), log); err != nil {
		log.Error("server exited with error", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, log *slog.Logger) error {
	var (
		pgCfg   pg.Config
		httpCfg httpserver.Config
		authCfg auth.Config
		corsCfg api.CORSConfig
	)
	config.MustLoad(&pgCfg)
	config.MustLoad(&httpCfg)
	config.MustLoad(&authCfg)
	config.MustLoad(&corsCfg)

	secrets, err := auth.NewSecrets(authCfg)
	if err != nil {
		return err
	}

	pool, err := pg.Connect(ctx, pgCfg)
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	defer pool.Close()

	if err := pg.Migrate(ctx, pool, pgCfg, log); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	issuer, err := auth.NewTokenIssuer(secrets, authCfg)
	if err != nil {
		return err
	}
	guard, err := auth.NewGuard(secrets, log)
	if err != nil {
		return err
	}

	hasher := auth.NewHasher(secrets, authCfg)
	authSvc := auth.NewService(auth.NewPostgresStore(pool), hasher, issuer, authCfg, log)

	authHandler := auth.NewHandler(authSvc, log)
	farmHandler := farm.NewHandler(farm.NewPostgresStorage(pool), log)
	fieldHandler := field.NewHandler(field.NewPostgresStorage(pool), log)
	harvestHandler := harvest.NewHandler(harvest.NewPostgresStorage(pool), log)
	userHandler := user.NewHandler(user.NewPostgresStorage(pool), log)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	r.Use(api.CORS(corsCfg))

	r.Get("/health", healthHandler(pg.Healthcheck(pool)))

	r.Route("/api", func(r chi.Router) {
		r.Mount("/auth", authHandler.Routes(guard.Middleware))
		r.Mount("/farm", farmHandler.Routes(guard.Middleware))
		r.Mount("/farm_fields", fieldHandler.FieldRoutes(guard.Middleware))
		r.Mount("/farm_field_groups", fieldHandler.GroupRoutes(guard.Middleware))
		r.Mount("/field_event", fieldHandler.EventRoutes(guard.Middleware))
		r.Mount("/harvest_type", harvestHandler.TypeRoutes(guard.Middleware))
		r.Mount("/harvest_event", harvestHandler.EventRoutes(guard.Middleware))
		r.Mount("/users", userHandler.Routes(guard.Middleware))
	})

	srv := httpserver.NewFromConfig(httpCfg, httpserver.WithLogger(log))
	log.Info("starting http server", slog.String("addr", httpCfg.Addr))
	return srv.Run(ctx, r)
}

// healthHandler reports liveness, including a database ping.
func healthHandler(check func(context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := check(r.Context()); err != nil {
			api.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
		api.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
