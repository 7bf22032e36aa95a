package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"socialstats/internal/di"
	"socialstats/internal/structures"
	"syscall"

	"github.com/joho/godotenv"
)

func main() {
	flags := &structures.CliFlags{}
	flag.StringVar(&flags.ConfigPath, "config", "config.yml", "path to the YAML config file")
	flag.BoolVar(&flags.DebugMode, "debug", false, "human-readable debug logging")
	flag.BoolVar(&flags.DaemonMode, "daemon", false, "collect on schedule and serve /snapshot, /health and /metrics")
	flag.BoolVar(&flags.Strict, "strict", false, "exit non-zero when the snapshot could not be saved")
	flag.Parse()

	// .env is optional; real environment variables take precedence
	_ = godotenv.Load()

	app, cleanup, err := di.InitApp(flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "socialstats: %s\n", err)
		os.Exit(1)
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx); err != nil && flags.Strict {
		fmt.Fprintf(os.Stderr, "socialstats: %s\n", err)
		stop()
		cleanup()
		os.Exit(1)
	}
}
