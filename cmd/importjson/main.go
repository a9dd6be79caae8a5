package main

import (
	"context"
	"database/sql"
	"os"

	"clubsite-be/internal/config"
	"clubsite-be/internal/db"
	"clubsite-be/internal/importer"
	"clubsite-be/internal/logger"

	"go.uber.org/zap"
)

func main() {
	cfg := config.LoadConfig()
	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	if err := run(context.Background(), cfg, db.Open); err != nil {
		logger.L().Error("import failed", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, open func(*config.Config) (*sql.DB, error)) error {
	log := logger.L()

	sqlDB, err := open(cfg)
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	if !db.ConnectToDatabase(ctx, sqlDB) {
		return errConnect
	}

	conn, err := sqlDB.Conn(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	results, err := importer.Run(ctx, conn, cfg.DataDir)
	if err != nil {
		return err
	}

	for _, r := range results {
		if r.Skipped {
			continue
		}
		log.Info("entity imported", zap.String("entity", r.Entity), zap.Int("rows", r.Rows))
	}
	log.Info("import complete", zap.String("database", cfg.MySQLDatabase))
	return nil
}
