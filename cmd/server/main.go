package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/finauth/internal/logging"
	"github.com/dmitrijs2005/finauth/internal/server"
	"github.com/dmitrijs2005/finauth/internal/server/config"
)

// Test seam.
var loadConfig = config.LoadConfig

func main() {
	if err := run(context.Background()); err != nil {
		log.Printf("%v", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	logger := logging.NewJSONLogger(os.Stdout, level)

	app, err := server.NewApp(ctx, cfg, logger)
	if err != nil {
		return err
	}

	app.Run(ctx)
	return nil
}
