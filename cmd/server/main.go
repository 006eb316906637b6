package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ayush/devcamper/backend/internal/auth"
	"github.com/ayush/devcamper/backend/internal/bootcamps"
	"github.com/ayush/devcamper/backend/internal/config"
	"github.com/ayush/devcamper/backend/internal/courses"
	"github.com/ayush/devcamper/backend/internal/geocoder"
	"github.com/ayush/devcamper/backend/internal/mailer"
	"github.com/ayush/devcamper/backend/internal/reviews"
	"github.com/ayush/devcamper/backend/internal/store"
	"github.com/ayush/devcamper/backend/internal/users"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Warn("no .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(newLogger(cfg))
	ctx := context.Background()

	// ── PostgreSQL ────────────────────────────────────────────
	pgPool, err := pgxpool.New(ctx, cfg.PostgresDSN)
	if err != nil {
		fatal("postgres connect", err)
	}
	defer pgPool.Close()
	pgStore := store.NewPostgresStore(pgPool)
	if err := pgStore.Migrate(ctx); err != nil {
		fatal("postgres migrate", err)
	}

	// ── MongoDB ──────────────────────────────────────────────
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		fatal("mongo connect", err)
	}
	defer mongoClient.Disconnect(ctx)
	mongoStore := store.NewMongoStore(mongoClient, mongoClient.Database(cfg.MongoDB))
	if err := mongoStore.EnsureIndexes(ctx); err != nil {
		fatal("mongo indexes", err)
	}

	// ── Redis ────────────────────────────────────────────────
	rdb, err := store.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		fatal("redis connect", err)
	}
	defer rdb.Close()

	// ── MinIO ────────────────────────────────────────────────
	minioStore, err := store.NewMinioStore(
		ctx, cfg.MinioEndpoint, cfg.MinioAccessKey,
		cfg.MinioSecretKey, cfg.MinioBucket, cfg.FileUploadPath, cfg.MinioUseSSL,
	)
	if err != nil {
		fatal("minio connect", err)
	}

	// ── Geocoder ─────────────────────────────────────────────
	geo := geocoder.NewMapQuest(cfg.GeocoderURL, cfg.GeocoderAPIKey, geocoder.NewCache(rdb, cfg.GeocodeCacheTTL))

	// ── Mailer ───────────────────────────────────────────────
	mail := mailer.NewSMTP(mailer.Config{
		Host:      cfg.SMTPHost,
		Port:      cfg.SMTPPort,
		Username:  cfg.SMTPUsername,
		Password:  cfg.SMTPPassword,
		FromName:  cfg.FromName,
		FromEmail: cfg.FromEmail,
	})

	// ── Services ─────────────────────────────────────────────
	authSvc := auth.NewService(pgStore, auth.NewTokens(cfg.JWTSecret, cfg.JWTExpire), mail, store.NewDenylist(rdb))

	// ── Router ───────────────────────────────────────────────
	done := make(chan struct{})
	defer close(done)
	r := newRouter(routes{
		cfg:       cfg,
		authSvc:   authSvc,
		auth:      auth.NewHandler(authSvc, auth.CookieConfig{TTL: cfg.JWTCookieExpire, Secure: cfg.Production()}),
		bootcamps: bootcamps.NewHandler(bootcamps.NewService(mongoStore, geo, minioStore, cfg.MaxFileUpload)),
		courses:   courses.NewHandler(courses.NewService(mongoStore)),
		reviews:   reviews.NewHandler(reviews.NewService(mongoStore)),
		users:     users.NewHandler(users.NewService(pgStore)),
		done:      done,
	})

	// ── Server ───────────────────────────────────────────────
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: time.Minute,
	}

	go func() {
		slog.Info("server starting", "port", cfg.Port, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fatal("server error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down")
	shutCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutCtx); err != nil {
		slog.Error("shutdown", "error", err)
	}
}

// newLogger writes JSON in production and text otherwise.
func newLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(cfg.LogLevel))); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Production() {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

func fatal(msg string, err error) {
	slog.Error(msg, "error", err)
	os.Exit(1)
}
