package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/safar/storefront/internal/admin"
	"github.com/safar/storefront/internal/api"
	"github.com/safar/storefront/internal/config"
	"github.com/safar/storefront/internal/database"
	"github.com/safar/storefront/internal/logger"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Load config: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		log.Fatalf("Create logger: %v", err)
	}
	defer func() { _ = zapLogger.Sync() }()

	if cfg.App.MigrateOnStart {
		if err := migrateUp(cfg, zapLogger); err != nil {
			zapLogger.Fatal("Apply migrations", zap.Error(err))
		}
	}

	db, err := database.NewConnection(&cfg.Database)
	if err != nil {
		zapLogger.Fatal("Connect to database", zap.Error(err))
	}
	defer db.Close()

	zapLogger.Info("Connected to database successfully")

	engine := api.NewEngine(zapLogger)
	api.NewHandler(db).RegisterRoutes(engine)
	admin.NewHandler(db).RegisterRoutes(engine.Group("/admin"))

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		zapLogger.Info("Server starting", zap.String("port", cfg.Server.Port), zap.String("env", cfg.App.Env))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("Server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
	}
	zapLogger.Info("Server exited")
}

// migrateUp runs on its own connection because closing the migrator closes
// the database handle it was given.
func migrateUp(cfg *config.Config, zapLogger *zap.Logger) error {
	db, err := database.NewConnection(&cfg.Database)
	if err != nil {
		return err
	}

	migrator, err := database.NewMigrator(db, zapLogger)
	if err != nil {
		_ = db.Close()
		return err
	}
	defer migrator.Close()

	return migrator.Up()
}
