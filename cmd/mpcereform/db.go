package main

import (
	"context"

	"go.uber.org/zap"

	"mpcereform/internal/config"
	"mpcereform/internal/logging"
	"mpcereform/internal/store"
	"mpcereform/internal/store/postgres"
	"mpcereform/internal/store/sqlite"
)

func loadConfig() (*config.ProjectConfig, error) {
	return config.LoadProjectConfig(configPath)
}

func newLogger() *zap.SugaredLogger {
	return logging.New(logging.Options{JSON: jsonLogs, Verbose: verbose})
}

func openDB(ctx context.Context, cfg *config.ProjectConfig) (store.Store, error) {
	dsn, err := cfg.Database.ConnString()
	if err != nil {
		return nil, err
	}
	if cfg.Database.Driver == config.DriverSQLite {
		client, err := sqlite.New(ctx, dsn, sqlite.Attach{
			Source: cfg.Database.SourcePath,
			Target: cfg.Database.TargetPath,
		})
		if err != nil {
			return nil, err
		}
		return client, nil
	}
	client, err := postgres.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return client, nil
}
