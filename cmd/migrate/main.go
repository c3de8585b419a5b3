package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/safar/storefront/internal/config"
	"github.com/safar/storefront/internal/database"
	"github.com/safar/storefront/internal/logger"
	"go.uber.org/zap"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s up|down|version\n", os.Args[0])
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

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

	db, err := database.NewConnection(&cfg.Database)
	if err != nil {
		zapLogger.Fatal("Connect to database", zap.Error(err))
	}

	migrator, err := database.NewMigrator(db, zapLogger)
	if err != nil {
		_ = db.Close()
		zapLogger.Fatal("Create migrator", zap.Error(err))
	}
	defer migrator.Close()

	switch command := flag.Arg(0); command {
	case "up":
		err = migrator.Up()
	case "down":
		err = migrator.Down()
	case "version":
		var (
			version uint
			dirty   bool
		)
		version, dirty, err = migrator.Version()
		if err == nil {
			zapLogger.Info("Current migration version", zap.Uint("version", version), zap.Bool("dirty", dirty))
		}
	default:
		zapLogger.Error("Unknown command", zap.String("command", command))
		flag.Usage()
		return
	}

	if err != nil {
		zapLogger.Error("Migration failed", zap.Error(err))
		os.Exit(1)
	}
}
