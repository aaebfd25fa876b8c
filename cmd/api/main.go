package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/jeremyjsx/creativelab/internal/auth"
	"github.com/jeremyjsx/creativelab/internal/cache"
	"github.com/jeremyjsx/creativelab/internal/config"
	"github.com/jeremyjsx/creativelab/internal/contact"
	"github.com/jeremyjsx/creativelab/internal/db"
	"github.com/jeremyjsx/creativelab/internal/events"
	"github.com/jeremyjsx/creativelab/internal/handlers"
	"github.com/jeremyjsx/creativelab/internal/posts"
	"github.com/jeremyjsx/creativelab/internal/publish"
	"github.com/jeremyjsx/creativelab/internal/storage"
	"github.com/jeremyjsx/creativelab/internal/users"
	"github.com/redis/go-redis/v9"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("api exited", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	backend, profiles, sqlDB, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	if sqlDB != nil {
		defer sqlDB.Close()
	}

	health := &handlers.HealthDeps{DB: sqlDB}

	var pages cache.Store = cache.Noop{}
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()
		pageCache := cache.NewPageCache(rdb, cfg.CacheTTL)
		pages = pageCache
		health.Cache = pageCache
		logger.Info("page cache enabled", "addr", cfg.RedisAddr, "ttl", cfg.CacheTTL)
	}

	var publisher events.Publisher = events.NoopPublisher{}
	var invalidator cache.Invalidator = pages
	if cfg.RabbitMQURL != "" {
		rmq, err := events.NewRabbitMQPublisher(cfg.RabbitMQURL)
		if err != nil {
			return err
		}
		defer rmq.Close()
		publisher = rmq
		invalidator = events.Invalidator{Publisher: rmq}
		health.Broker = rmq
		logger.Info("event publisher enabled")
	}

	var assets storage.Storage
	if cfg.S3Bucket != "" {
		st, err := newS3Storage(ctx, cfg)
		if err != nil {
			return err
		}
		assets = st
		health.Storage = st
	} else {
		logger.Warn("S3_BUCKET not set, cover uploads disabled")
	}

	var provisioner users.Provisioner = users.UnconfiguredProvisioner{}
	var compensator users.Compensator
	if cfg.UsersConfigured() {
		sp := users.NewSupabaseProvisioner(cfg.SupabaseURL, cfg.SupabaseServiceKey)
		provisioner = sp
		if cfg.RollbackOrphans {
			compensator = users.DeleteOrphan(sp)
		}
	}

	if cfg.JWTSecret == "" {
		logger.Warn("AUTH_JWT_SECRET not set, admin routes will reject every token")
	}

	postsSvc := posts.NewService(backend, logger)
	gate := auth.NewGate(profiles, cfg.BootstrapAdminEmail, logger)
	router := handlers.NewRouter(handlers.RouterDeps{
		Posts:          postsSvc,
		Workflow:       publish.NewWorkflow(gate, postsSvc, logger),
		Gate:           gate,
		Users:          users.NewService(provisioner, profiles, compensator, logger),
		Contact:        contact.NewService(logger),
		Storage:        assets,
		Pages:          pages,
		Invalidator:    invalidator,
		Publisher:      publisher,
		Health:         health,
		JWTSecret:      []byte(cfg.JWTSecret),
		SiteURL:        cfg.SiteURL,
		AllowedOrigins: cfg.AllowedOrigins,
		Logger:         logger,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server started", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// openStore picks the post and profile backends. Without a database the site
// serves the sample posts read-only.
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (posts.Backend, auth.ProfileRepository, *sql.DB, error) {
	if cfg.StoreDriver == config.DriverMemory {
		logger.Info("using in-memory store")
		return posts.Configured{Repo: posts.NewMemoryRepository()}, auth.NewMemoryProfiles(), nil, nil
	}
	if cfg.DatabaseURL == "" {
		logger.Warn("DATABASE_URL not set, serving sample posts read-only")
		return posts.Unconfigured{}, auth.Unavailable{}, nil, nil
	}

	sqlDB, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := db.Migrate(ctx, sqlDB); err != nil {
		_ = sqlDB.Close()
		return nil, nil, nil, err
	}
	logger.Info("connected to postgres")
	return posts.Configured{Repo: posts.NewPostgresRepository(sqlDB)}, auth.NewPostgresProfiles(sqlDB), sqlDB, nil
}

func newS3Storage(ctx context.Context, cfg *config.Config) (*storage.S3Storage, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		return nil, err
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			o.UsePathStyle = true
		}
	})
	return storage.NewS3Storage(client, cfg.S3Bucket, cfg.AWSRegion, cfg.PublicAssetBaseURL), nil
}
