// Command server runs the coordinator: the agent-facing HTTP API and
// the background report worker.
package main

import (
	"context"

	"github.com/ecoci/ecoci/internal/bootstrap"
	"github.com/ecoci/ecoci/internal/bootstrap/server"
	"github.com/ecoci/ecoci/pkg/mconfig"
	"github.com/ecoci/ecoci/pkg/mlog"
)

func main() {
	var cfg server.Config
	if err := mconfig.Load(&cfg); err != nil {
		panic(err)
	}

	level, err := mlog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = mlog.InfoLevel
	}

	logger, err := mlog.NewZapLogger(level)
	if err != nil {
		panic(err)
	}

	defer func() {
		_ = logger.Sync()
	}()

	ctx := context.Background()

	wiring, err := server.Build(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("failed to build coordinator: %v", err)
	}

	bootstrap.NewLauncher(
		bootstrap.WithLogger(logger),
		bootstrap.RunApp("agent-api", wiring.HTTP),
		bootstrap.RunApp("report-worker", wiring.Report),
	).Run()
}
