package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/soldier14/quizdrill/internal/app"
	"github.com/soldier14/quizdrill/internal/config"
	"github.com/soldier14/quizdrill/internal/infra/memory"
	pgstore "github.com/soldier14/quizdrill/internal/infra/postgres"
	redisinfra "github.com/soldier14/quizdrill/internal/infra/redis"
	transport "github.com/soldier14/quizdrill/internal/transport/http"
)

// NewServeCmd builds the CLI subcommand to start the server.
func NewServeCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	secret := cfg.Auth.Secret
	if secret == "" {
		secret = os.Getenv("AUTH_SECRET")
	}
	if secret == "" {
		return errMissingSecret
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}
	catalogTTL := config.TTLDuration(cfg.Catalog.TTL, 10*time.Minute)

	// Without Postgres the in-memory catalog store doubles as the
	// backing loader, so authoring writes still show up in attempts.
	memStore := memory.NewCatalogStore()
	var catalogStore app.CatalogStore = memStore
	var loader memory.CatalogLoader = memStore
	var attemptStore app.AttemptStore = memory.NewAttemptStore()

	if cfg.Postgres.URL == "" {
		// Dev mode: seed the sample quiz so the server is usable out of
		// the box.
		if _, err := app.NewCatalogService(memStore, nil).CreateQuiz(ctx, SampleQuizInput()); err != nil {
			return err
		}
	} else {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
		db := pgstore.OpenBun(cfg.Postgres.URL)
		defer db.Close()

		catalogStore = pgstore.NewCatalogStore(db)
		loader = pgstore.NewCatalogLoader(pool)
		attemptStore = pgstore.NewAttemptStore(db)
	}

	var catalogRepo app.CatalogRepository
	var invalidator app.CatalogInvalidator
	if redisClient != nil {
		cache := redisinfra.NewCatalogCache(redisClient, loader, catalogTTL)
		catalogRepo = cache
		invalidator = cache
	} else {
		cache := memory.NewCatalogRepository(loader, catalogTTL)
		catalogRepo = cache
		invalidator = cache
	}

	attemptService := app.NewAttemptService(catalogRepo, attemptStore)
	catalogService := app.NewCatalogService(catalogStore, invalidator)

	auth := transport.NewAuthenticator(secret)
	router := transport.NewRouter(
		auth,
		transport.NewAttemptHandler(attemptService),
		transport.NewCatalogHandler(catalogService),
		transport.NewWSHandler(attemptService),
	)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting quizdrill on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
