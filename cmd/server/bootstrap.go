package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/sirupsen/logrus"

	"hbnb/internal/auth"
	"hbnb/internal/config"
	"hbnb/internal/repository"
	"hbnb/internal/repository/memory"
	"hbnb/internal/repository/sqlstore"
	"hbnb/internal/service"
	"hbnb/internal/storage"
)

type app struct {
	facade *service.Facade
	tokens *auth.TokenManager
	db     *sqlstore.DB
}

func (a *app) Close() {
	if a.db != nil {
		_ = a.db.Close()
	}
}

func loadConfig() (config.Config, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func newLogger(cfg config.Config) (*logrus.Logger, error) {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)

	switch strings.ToLower(cfg.Log.Format) {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	case "", "text":
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Log.Format)
	}

	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}
	logger.SetLevel(level)
	return logger, nil
}

// openDatabase returns nil for the memory driver.
func openDatabase(cfg config.Config) (*sqlstore.DB, error) {
	if err := cfg.ValidateDatabase(); err != nil {
		return nil, err
	}
	switch cfg.Database.Driver {
	case "memory":
		return nil, nil
	case sqlstore.DriverSQLite:
		db, err := sqlstore.Open(sqlstore.DriverSQLite, cfg.Database.Path)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		return db, nil
	default:
		db, err := sqlstore.Open(sqlstore.DriverPostgres, cfg.Database.DSN)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		return db, nil
	}
}

func openRepositories(ctx context.Context, cfg config.Config, logger *logrus.Logger) (repository.Set, *sqlstore.DB, error) {
	db, err := openDatabase(cfg)
	if err != nil {
		return repository.Set{}, nil, err
	}
	if db == nil {
		logger.Warn("using in-memory storage; data is lost on exit")
		return memory.NewSet(), nil, nil
	}
	if err := db.Init(ctx); err != nil {
		_ = db.Close()
		return repository.Set{}, nil, fmt.Errorf("init schema: %w", err)
	}
	logger.Infof("using %s database", db.Driver())
	return sqlstore.NewSet(db), db, nil
}

// bootstrap wires repositories, photo storage and tokens into a facade.
func bootstrap(ctx context.Context, cfg config.Config, logger *logrus.Logger) (*app, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	tokens, err := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.TokenTTL())
	if err != nil {
		return nil, err
	}

	photos, err := buildStorage(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("setup storage: %w", err)
	}

	repos, db, err := openRepositories(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	facade := service.NewFacade(repos, service.Options{
		Tokens: tokens,
		Photos: photos,
		Logger: logger,
	})
	return &app{facade: facade, tokens: tokens, db: db}, nil
}

// buildStorage returns nil when no bucket is configured; photo endpoints then
// answer 503.
func buildStorage(ctx context.Context, cfg config.Config, logger *logrus.Logger) (*service.PhotoStore, error) {
	if cfg.Storage.Bucket == "" {
		logger.Info("storage bucket not configured; place photos disabled")
		return nil, nil
	}

	loadOpts := []func(*awscfg.LoadOptions) error{
		awscfg.WithRegion(cfg.Storage.Region),
	}
	if cfg.AWS.Profile != "" {
		loadOpts = append(loadOpts, awscfg.WithSharedConfigProfile(cfg.AWS.Profile))
	}

	awsCfg, err := awscfg.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Storage.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Storage.Endpoint)
			o.UsePathStyle = true
		}
	})
	logger.Infof("using s3 bucket %s (region %s)", cfg.Storage.Bucket, cfg.Storage.Region)
	return &service.PhotoStore{
		Storage:   storage.NewS3Service(client),
		Bucket:    cfg.Storage.Bucket,
		KeyPrefix: cfg.Storage.KeyPrefix,
		URLExpiry: cfg.PhotoURLExpiry(),
	}, nil
}
