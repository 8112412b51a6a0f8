// Command agent runs a single worker process: poll the coordinator for
// an experiment, build its local task graph, run it to completion, and
// report results back over HTTP.
package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/ecoci/ecoci/internal/bootstrap/agent"
	"github.com/ecoci/ecoci/pkg/mconfig"
	"github.com/ecoci/ecoci/pkg/mlog"
)

func main() {
	var cfg agent.Config
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

	a, err := agent.New(cfg, logger)
	if err != nil {
		logger.Fatalf("failed to build agent: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := a.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Fatalf("agent exited with error: %v", err)
	}
}
