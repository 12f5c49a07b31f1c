package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	appconfig "github.com/de-tools/revenuecast/pkg/config"
	"github.com/de-tools/revenuecast/pkg/metrics"
	"github.com/de-tools/revenuecast/pkg/server"
	"github.com/de-tools/revenuecast/pkg/server/middleware"
	"github.com/de-tools/revenuecast/pkg/services/auth"
	"github.com/de-tools/revenuecast/pkg/services/config"
	"github.com/de-tools/revenuecast/pkg/services/export"
	"github.com/de-tools/revenuecast/pkg/services/history"
	"github.com/de-tools/revenuecast/pkg/services/prediction"
	"github.com/de-tools/revenuecast/pkg/store/duckdb"
	duckdbpredictions "github.com/de-tools/revenuecast/pkg/store/duckdb/predictions"
	duckdbusers "github.com/de-tools/revenuecast/pkg/store/duckdb/users"
	"github.com/de-tools/revenuecast/pkg/store/postgres"
	pgpredictions "github.com/de-tools/revenuecast/pkg/store/postgres/predictions"
	pgusers "github.com/de-tools/revenuecast/pkg/store/postgres/users"
	"github.com/de-tools/revenuecast/pkg/store/predictions"
	"github.com/de-tools/revenuecast/pkg/store/redis/revocation"
	"github.com/de-tools/revenuecast/pkg/store/s3"
	"github.com/de-tools/revenuecast/pkg/store/users"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var cfgPath string

func main() {
	var rootCmd = &cobra.Command{
		Use:   "web",
		Short: "Start the web server for RevenueCast",
		RunE:  runServer,
	}

	rootCmd.Flags().StringVarP(&cfgPath, "config", "c", "",
		"Path to a config file (YAML, JSON or TOML); REVENUECAST_* variables override it")

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func newLogger(cfg appconfig.LogConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	logger := zerolog.New(os.Stdout)
	if cfg.Format == "console" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout})
	}
	return logger.Level(level).With().Timestamp().Logger()
}

type stores struct {
	users       users.Store
	predictions predictions.Store
	close       func()
	// inTx runs fn atomically when the driver supports context-bound
	// transactions.
	inTx func(ctx context.Context, fn func(ctx context.Context) error) error
}

func noTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func openStores(ctx context.Context, cfg appconfig.StorageConfig) (*stores, error) {
	if cfg.Driver == "postgres" {
		pool, err := postgres.NewPool(ctx, postgres.Settings{DSN: cfg.PostgresDSN, MaxConns: cfg.PostgresMaxConns})
		if err != nil {
			return nil, err
		}
		userStore, err := pgusers.NewStore(pool)
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("failed to create user store: %w", err)
		}
		predictionStore, err := pgpredictions.NewStore(pool)
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("failed to create prediction store: %w", err)
		}
		return &stores{users: userStore, predictions: predictionStore, close: pool.Close, inTx: noTx}, nil
	}

	db, err := duckdb.NewDB(duckdb.Settings{DbPath: cfg.DuckDBPath})
	if err != nil {
		return nil, fmt.Errorf("failed to create DuckDB instance: %w", err)
	}
	closeDB := func() { _ = db.Close() }

	userStore, err := duckdbusers.NewStore(db)
	if err != nil {
		closeDB()
		return nil, fmt.Errorf("failed to create user store: %w", err)
	}
	predictionStore, err := duckdbpredictions.NewStore(db)
	if err != nil {
		closeDB()
		return nil, fmt.Errorf("failed to create prediction store: %w", err)
	}
	return &stores{
		users:       userStore,
		predictions: predictionStore,
		close:       closeDB,
		inTx: func(ctx context.Context, fn func(ctx context.Context) error) error {
			return duckdb.RunInTx(ctx, db, fn)
		},
	}, nil
}

func newRevocationList(ctx context.Context, cfg appconfig.AuthConfig) (auth.RevocationList, error) {
	if cfg.RedisAddr == "" {
		zerolog.Ctx(ctx).Warn().Msg("auth.redis_addr not set, revoked tokens are kept in memory")
		return auth.NewMemoryRevocationList(), nil
	}

	client := revocation.NewClient(revocation.Settings{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	store, err := revocation.NewStore(client)
	if err != nil {
		return nil, err
	}
	if err := store.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to reach redis at %s: %w", cfg.RedisAddr, err)
	}
	return store, nil
}

func newExporter(ctx context.Context, cfg appconfig.ExportConfig, historySvc *history.Service) (*export.Exporter, error) {
	if cfg.Bucket == "" {
		return export.NewExporter(historySvc, nil, cfg.Prefix), nil
	}

	writer, err := s3.NewObjectWriter(ctx, s3.Settings{
		Profile: cfg.AWSProfile,
		Region:  cfg.AWSRegion,
		Bucket:  cfg.Bucket,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 writer: %w", err)
	}
	return export.NewExporter(historySvc, writer, cfg.Prefix), nil
}

func runServer(cmd *cobra.Command, _ []string) error {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Printf("Error loading .env file: %v\n", err)
	}

	cfg, err := appconfig.LoadConfig(cfgPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger := newLogger(cfg.Log)
	ctx := logger.WithContext(cmd.Context())

	st, err := openStores(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	defer st.close()

	registry, err := config.NewRegistry(cfg.Auth.CredentialsFile)
	if err != nil {
		return fmt.Errorf("failed to create credentials registry: %w", err)
	}
	var seeded int
	err = st.inTx(ctx, func(ctx context.Context) error {
		n, err := config.SeedUsers(ctx, registry, st.users)
		seeded = n
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to seed users: %w", err)
	}
	if cfg.Auth.CredentialsFile == "" {
		logger.Warn().Msg("auth.credentials_file not set, using the built-in demo accounts")
	}
	logger.Info().Int("users", seeded).Str("driver", cfg.Storage.Driver).Msg("user store ready")

	tokens, err := auth.NewTokens(cfg.Auth.Secret, cfg.Auth.TokenTTL)
	if err != nil {
		return err
	}
	revoked, err := newRevocationList(ctx, cfg.Auth)
	if err != nil {
		return err
	}
	authenticator := auth.NewAuthenticator(st.users, tokens, revoked)

	m := metrics.New(nil)
	predictor := prediction.NewService(
		prediction.NewEstimator(
			prediction.DefaultCoefficients(),
			prediction.NewUniformNoise(cfg.Model.NoiseAmplitude),
		),
		cfg.Model.MaxBatchSize,
	).WithObserver(m)

	historySvc := history.NewService(st.predictions)
	exporter, err := newExporter(ctx, cfg.Export, historySvc)
	if err != nil {
		return err
	}

	api, err := server.NewWebAPI(logger, server.Config{
		Addr:            cfg.Server.Addr(),
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		CORSOrigins:     cfg.Server.CORSOrigins,
		SecureCookies:   cfg.Auth.CookieSecure,
		Dependencies: server.Dependencies{
			Predictor:     predictor,
			History:       historySvc,
			Exporter:      exporter,
			Authenticator: authenticator,
			Metrics:       m,
			SignInLimiter: middleware.NewRateLimiter(cfg.Auth.SignInRate, cfg.Auth.SignInBurst),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to configure server: %w", err)
	}

	return api.Start()
}
