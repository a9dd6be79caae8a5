package main

import (
	"context"
	"database/sql"
	"flag"
	"os"

	"clubsite-be/internal/config"
	"clubsite-be/internal/db"
	"clubsite-be/internal/logger"

	"go.uber.org/zap"
)

func main() {
	mode := flag.String("mode", "up", "migration mode: up or down")
	flag.Parse()

	cfg := config.LoadConfig()
	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	if err := run(context.Background(), cfg, *mode, db.Open); err != nil {
		logger.L().Error("migration failed", zap.String("mode", *mode), zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, mode string, open func(*config.Config) (*sql.DB, error)) error {
	sqlDB, err := open(cfg)
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	if err := sqlDB.PingContext(ctx); err != nil {
		return err
	}

	if err := db.Migrate(ctx, sqlDB, mode); err != nil {
		return err
	}
	logger.L().Info("migration finished",
		zap.String("mode", mode),
		zap.String("database", cfg.MySQLDatabase),
	)
	return nil
}
