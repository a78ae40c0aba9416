package main

import (
	"flag"
	"log/slog"
	"os"

	"crickalytics/internal/app"
	"crickalytics/internal/config"
	"crickalytics/internal/infrastructure"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file (defaults to config.yaml or configs/config.yaml)")
	dataDir := flag.String("data", "", "directory holding the cleaned CSV files (overrides data.dir)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if *dataDir != "" {
		cfg.Data.Dir = *dataDir
	}

	application, err := app.NewApplication(cfg)
	if err != nil {
		infrastructure.GetLogger().Error("Failed to initialize application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := application.Run(); err != nil {
		application.Logger.Error("Application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
