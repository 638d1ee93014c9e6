package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"wallet/internal/backend"
	"wallet/internal/cli"
	applog "wallet/internal/log"
)

func main() {
	// Load .env file for local development (ignore errors in production)
	cli.LoadEnvFile()

	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		cli.Fatal(cli.SetupLogger("info", "text", applog.ComponentApp), "Configuration validation failed", err)
	}
	logger := cli.SetupLogger(cfg.LogLevel, cfg.LogFormat, applog.ComponentApp)

	ctx := context.Background()

	backendConfig, err := backend.FromAppConfig(cfg)
	if err != nil {
		cli.Fatal(logger, "Invalid backend configuration", err)
	}

	result, err := backend.NewFactory(logger).CreateBackend(ctx, backendConfig)
	if err != nil {
		cli.Fatal(logger, "Failed to initialize storage backend", err)
	}

	app := cli.NewApp(result.Store, cfg.Categories, os.Stdout, logger)
	app.ChartFont = cfg.ChartFont
	runErr := app.Run(ctx, os.Args[1:])

	if err := result.Close(); err != nil {
		logger.Warn("Backend cleanup failed",
			applog.FieldOperation, applog.OpShutdown,
			applog.FieldError, err)
	}

	switch {
	case runErr == nil:
	case errors.Is(runErr, cli.ErrUsage):
		fmt.Fprintln(os.Stderr, runErr)
		os.Exit(2)
	default:
		fmt.Fprintln(os.Stderr, runErr)
		os.Exit(1)
	}
}
