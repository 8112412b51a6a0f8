package agent

import (
	"context"
	"time"

	"github.com/ecoci/ecoci/internal/adapters/agentclient"
	"github.com/ecoci/ecoci/internal/adapters/docker"
	redisadapter "github.com/ecoci/ecoci/internal/adapters/redis"
	"github.com/ecoci/ecoci/internal/domain/experiment"
	"github.com/ecoci/ecoci/internal/domain/outcome"
	"github.com/ecoci/ecoci/internal/domain/resultrow"
	"github.com/ecoci/ecoci/internal/services/diskwatch"
	"github.com/ecoci/ecoci/internal/services/rungraph"
	"github.com/ecoci/ecoci/internal/services/sandbox"
	"github.com/ecoci/ecoci/internal/services/toolrun"
	"github.com/ecoci/ecoci/pkg/mlog"
	"github.com/ecoci/ecoci/pkg/mredis"
)

// Agent runs the poll -> build-graph -> execute -> report loop against
// one coordinator.
type Agent struct {
	cfg      Config
	client   *agentclient.Client
	runtime  sandbox.Runtime
	broken   *toolrun.StaticBrokenList
	watchdog *diskwatch.Watchdog
	logger   mlog.Logger
}

func New(cfg Config, logger mlog.Logger) (*Agent, error) {
	if logger == nil {
		logger = &mlog.NoneLogger{}
	}

	rt, err := docker.New(cfg.DockerImage, logger)
	if err != nil {
		return nil, err
	}

	broken, err := toolrun.LoadBrokenList(cfg.BrokenListPath)
	if err != nil {
		return nil, err
	}

	client := agentclient.New(cfg.CoordinatorURL, cfg.AgentToken, cfg.RequestTimeout)

	var broadcast diskwatch.Broadcaster
	if cfg.RedisDSN != "" {
		broadcast = redisadapter.NewCleanupBroadcaster(&mredis.Connection{ConnectionStringSource: cfg.RedisDSN, Logger: logger})
	}

	watchdog := diskwatch.New(cfg.DiskWatchPath, cfg.DiskWatchInterval, cfg.DiskWatchThreshold, logger, broadcast)

	return &Agent{cfg: cfg, client: client, runtime: rt, broken: broken, watchdog: watchdog, logger: logger}, nil
}

// Run implements bootstrap.App: register with the coordinator, then
// loop picking experiments until ctx is cancelled.
func (a *Agent) Run(ctx context.Context) error {
	if _, err := a.client.Config(ctx, a.cfg.Capabilities, a.cfg.GitRevision); err != nil {
		a.logger.Errorf("initial config() call failed: %v", err)
	}

	go a.heartbeatLoop(ctx)
	go a.watchdog.Run(ctx)

	ticker := time.NewTicker(a.cfg.PollInterval)
	defer ticker.Stop()

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		exp, ok, err := a.client.NextExperiment(ctx)
		if err != nil {
			a.logger.Errorf("next-experiment poll failed: %v", err)
		} else if ok {
			a.runExperiment(ctx, exp)
			continue
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (a *Agent) heartbeatLoop(ctx context.Context) {
	ticker := time.NewTicker(a.cfg.HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := a.client.Heartbeat(ctx); err != nil {
				a.logger.Warnf("heartbeat failed: %v", err)
			}
		}
	}
}

// runExperiment claims every package this agent is handed for exp by
// calling next-crate until the queue reports exhausted, builds the
// local task graph over that set, runs it with a worker pool, and
// marks the experiment complete once the graph finishes.
func (a *Agent) runExperiment(ctx context.Context, exp experiment.Experiment) {
	var packages []string

	for {
		pkg, ok, err := a.client.NextCrate(ctx, exp.Name)
		if err != nil {
			a.logger.Errorf("next-crate(%s) failed: %v", exp.Name, err)
			return
		}

		if !ok {
			break
		}

		packages = append(packages, pkg)
	}

	if len(packages) == 0 {
		return
	}

	graph := rungraph.Build(packages, [2]string{exp.Toolchains[0].Name(), exp.Toolchains[1].Name()}, nil)

	layout := toolrun.Layout{WorkspaceRoot: a.cfg.WorkspaceRoot, CargoHome: a.cfg.CargoHome, RustupHome: a.cfg.RustupHome}
	prep := toolrun.NewPreparer(layout, a.broken, a.recordSHA(exp.Name), nil)
	runner := toolrun.NewRunner(layout, a.runtime, a.cfg.MemoryLimitBytes, a.cfg.NetworkOff, func(string) experiment.LintCap { return exp.LintCap })
	cleaner := toolrun.NewCleaner(layout)

	record := func(ctx context.Context, expName, tc, pkg string, o outcome.Outcome, plain []byte) error {
		return a.client.RecordProgress(ctx, expName, pkg, tc, o, plain, resultrow.EncodingPlain)
	}

	done := make(chan struct{})

	for i := 0; i < a.cfg.Concurrency; i++ {
		go func(id int) {
			w := rungraph.NewWorker(
				workerName(exp.Name, id), exp.Name, graph, prep, runner, cleaner, record,
				exp.Mode, exp.Toolchains[1].Name(), a.watchdog.CleanupRequested, a.watchdog.ClearCleanupRequested, a.logger,
			)
			w.Run(ctx)
			done <- struct{}{}
		}(i)
	}

	for i := 0; i < a.cfg.Concurrency; i++ {
		<-done
	}

	if err := a.client.CompleteExperiment(ctx, exp.Name); err != nil {
		a.logger.Warnf("complete-experiment(%s) failed: %v", exp.Name, err)
	}
}

func (a *Agent) recordSHA(exp string) toolrun.ShaRecorder {
	return func(ctx context.Context, repo, commit string) error {
		return a.client.RecordSHA(ctx, exp, repo, commit)
	}
}

func workerName(exp string, id int) string {
	return exp + "-worker-" + time.Now().Format("150405") + "-" + string(rune('a'+id))
}
