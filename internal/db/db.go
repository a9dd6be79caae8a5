package db

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"time"

	"clubsite-be/internal/config"
	"clubsite-be/internal/logger"

	"github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
)

// Querier is the subset of *sql.DB, *sql.Conn and *sql.Tx the repositories need.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func buildDSN(cfg *config.Config) string {
	mc := mysql.NewConfig()
	mc.User = cfg.MySQLUser
	mc.Passwd = cfg.MySQLPassword
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(cfg.MySQLHost, cfg.MySQLPort)
	mc.DBName = cfg.MySQLDatabase
	mc.ParseTime = true
	mc.ClientFoundRows = true
	mc.Loc = time.UTC
	mc.Params = map[string]string{"charset": "utf8mb4"}
	return mc.FormatDSN()
}

// Open returns a pooled MySQL handle. Callers beyond the pool size wait
// inside database/sql.
func Open(cfg *config.Config) (*sql.DB, error) {
	return openWithDriver(cfg, "mysql")
}

func openWithDriver(cfg *config.Config, driver string) (*sql.DB, error) {
	db, err := sql.Open(driver, buildDSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to DB: %w", err)
	}

	poolSize := cfg.MySQLPoolSize
	if poolSize <= 0 {
		poolSize = 10
	}
	db.SetMaxOpenConns(poolSize)
	db.SetMaxIdleConns(poolSize)
	db.SetConnMaxLifetime(5 * time.Minute)

	return db, nil
}

// Query runs one parameterized statement and returns its rows.
func Query(ctx context.Context, q Querier, query string, args ...any) (*sql.Rows, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		logger.FromCtx(ctx).Error("database query failed",
			zap.String("query", query),
			zap.Error(err),
		)
		return nil, fmt.Errorf("database query failed: %w", err)
	}
	return rows, nil
}

// Exec runs one parameterized statement that returns no rows.
func Exec(ctx context.Context, q Querier, query string, args ...any) (sql.Result, error) {
	res, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		logger.FromCtx(ctx).Error("database exec failed",
			zap.String("query", query),
			zap.Error(err),
		)
		return nil, fmt.Errorf("database query failed: %w", err)
	}
	return res, nil
}

// InitializeDatabase brings the schema up to date. Safe to call repeatedly.
func InitializeDatabase(ctx context.Context, q Querier) error {
	return Migrate(ctx, q, "up")
}

// ConnectToDatabase checks connectivity and initializes the schema. It
// reports failure instead of returning it so callers can fall back.
func ConnectToDatabase(ctx context.Context, q Querier) bool {
	log := logger.FromCtx(ctx)

	var one int
	if err := q.QueryRowContext(ctx, "SELECT 1").Scan(&one); err != nil {
		log.Error("MySQL connection failed", zap.Error(err))
		return false
	}

	if err := InitializeDatabase(ctx, q); err != nil {
		log.Error("MySQL schema initialization failed", zap.Error(err))
		return false
	}

	log.Info("MySQL connection established")
	return true
}
