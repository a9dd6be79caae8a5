package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"clubsite-be/internal/album"
	"clubsite-be/internal/category"
	"clubsite-be/internal/config"
	"clubsite-be/internal/db"
	"clubsite-be/internal/handler"
	"clubsite-be/internal/logger"
	"clubsite-be/internal/metrics"
	"clubsite-be/internal/middleware"
	"clubsite-be/internal/order"
	"clubsite-be/internal/product"
	"clubsite-be/internal/ride"
	"clubsite-be/internal/siteconfig"
	"clubsite-be/internal/user"

	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.LoadConfig()
	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, db.Open); err != nil {
		logger.L().Error("server stopped", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, open func(*config.Config) (*sql.DB, error)) error {
	log := logger.L()

	if cfg.JWTSecret == "" {
		log.Warn("JWT_SECRET is not set, admin login is disabled")
	}

	h, closeDB, err := buildHandler(ctx, cfg, open)
	if err != nil {
		return err
	}
	defer closeDB()

	limiter := middleware.NewRateLimiter()
	go limiter.Cleanup(ctx)

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           handler.NewRouter(h, limiter),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening",
			zap.String("addr", srv.Addr),
			zap.String("backend", h.Backend),
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// buildHandler selects the storage backend and wires every repository and
// service. When MySQL is selected but unreachable the JSON files are used.
func buildHandler(ctx context.Context, cfg *config.Config, open func(*config.Config) (*sql.DB, error)) (*handler.Handler, func(), error) {
	log := logger.L()
	closeDB := func() {}

	var q db.Querier
	useMySQL := cfg.UseMySQL()
	if useMySQL {
		sqlDB, err := open(cfg)
		if err != nil {
			return nil, nil, err
		}
		if db.ConnectToDatabase(ctx, sqlDB) {
			q = sqlDB
			closeDB = func() { _ = sqlDB.Close() }
		} else {
			log.Warn("falling back to JSON file storage", zap.String("data_dir", cfg.DataDir))
			_ = sqlDB.Close()
			useMySQL = false
		}
	}

	orders := order.NewRepository(useMySQL, q, cfg.DataDir)
	if err := orders.InitDatabase(ctx); err != nil {
		closeDB()
		return nil, nil, err
	}

	products := product.NewRepository(useMySQL, q, cfg.DataDir)
	categories := category.NewRepository(useMySQL, q, cfg.DataDir, products.ClearCategory)

	backend := "json"
	if useMySQL {
		backend = "mysql"
	}

	h := &handler.Handler{
		Orders:        order.NewService(orders),
		OrderRepo:     orders,
		Products:      products,
		Categories:    categories,
		Rides:         ride.NewService(ride.NewRepository(useMySQL, q, cfg.DataDir)),
		Albums:        album.NewRepository(useMySQL, q, cfg.DataDir),
		SiteConfig:    siteconfig.NewRepository(useMySQL, q, cfg.DataDir),
		Users:         user.NewService(user.NewRepository(useMySQL, q, cfg.DataDir), cfg.JWTSecret),
		Metrics:       metrics.NewHTTP(),
		Backend:       backend,
		SecureCookies: cfg.AppEnv == "production",

		AllowedOrigins: cfg.CORSOrigins,
	}
	return h, closeDB, nil
}
