// Package server wires the coordinator process: the agent-facing HTTP
// API and the background report worker, both built from one set of
// connection hubs and handed to a bootstrap.Launcher by cmd/server.
package server

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/ecoci/ecoci/internal/adapters/http"
	"github.com/ecoci/ecoci/internal/adapters/mongodb"
	"github.com/ecoci/ecoci/internal/adapters/postgres"
	"github.com/ecoci/ecoci/internal/adapters/rabbitmq"
	"github.com/ecoci/ecoci/internal/adapters/redis"
	"github.com/ecoci/ecoci/internal/adapters/reporttemplate"
	"github.com/ecoci/ecoci/internal/bootstrap"
	"github.com/ecoci/ecoci/internal/services/assignment"
	"github.com/ecoci/ecoci/internal/services/lifecycle"
	"github.com/ecoci/ecoci/internal/services/report"
	"github.com/ecoci/ecoci/internal/services/resultstore"
	"github.com/ecoci/ecoci/pkg/httpresponse"
	"github.com/ecoci/ecoci/pkg/mlog"
	"github.com/ecoci/ecoci/pkg/mmongo"
	"github.com/ecoci/ecoci/pkg/mpostgres"
	"github.com/ecoci/ecoci/pkg/mrabbitmq"
	"github.com/ecoci/ecoci/pkg/mredis"
)

// HTTPServer wraps the agent-facing fiber app as a bootstrap.App.
type HTTPServer struct {
	app     *fiber.App
	address string
}

func (h *HTTPServer) Run(_ *bootstrap.Launcher) error {
	return h.app.Listen(h.address)
}

// Wiring holds every app cmd/server hands to a bootstrap.Launcher.
type Wiring struct {
	HTTP   *HTTPServer
	Report *ReportWorker
	Logger mlog.Logger
}

// Build constructs the full coordinator dependency graph from cfg:
// connection hubs, repositories, services, the agent-facing fiber app,
// and the background report worker.
func Build(ctx context.Context, cfg Config, logger mlog.Logger) (*Wiring, error) {
	if logger == nil {
		logger = &mlog.NoneLogger{}
	}

	pg := &mpostgres.Connection{
		ConnectionStringPrimary: cfg.PostgresPrimaryDSN,
		ConnectionStringReplica: cfg.PostgresReplicaDSN,
		PrimaryDBName:           cfg.PostgresDBName,
		MigrationsPath:          cfg.MigrationsPath,
		Logger:                  logger,
	}

	redisConn := &mredis.Connection{ConnectionStringSource: cfg.RedisDSN, Logger: logger}
	rabbitConn := &mrabbitmq.Connection{ConnectionStringSource: cfg.RabbitMQDSN, Logger: logger}
	mongoConn := &mmongo.Connection{ConnectionStringSource: cfg.MongoDSN, Database: cfg.MongoDB, Logger: logger}

	experiments := postgres.NewExperimentRepository(pg)
	crates := postgres.NewCrateRepository(pg)
	queue := postgres.NewQueueRepository(pg)
	results := postgres.NewResultRepository(pg)
	agents := postgres.NewAgentRepository(pg)

	roster, err := LoadRoster(cfg.RosterPath)
	if err != nil {
		return nil, err
	}

	if err := agents.SyncRoster(ctx, roster); err != nil {
		return nil, err
	}

	// The liveness cache backs an operator-facing "is this agent
	// actually alive right now" query outside this spec's HTTP
	// surface; constructed here so that surface only needs the
	// connection hub wired once, at startup.
	_ = redis.NewLivenessCache(redisConn, cfg.LivenessTTL)

	assignmentSvc := assignment.New(experiments, queue, crates, agents, logger)
	lifecycleSvc := lifecycle.New(experiments, crates)
	resultSvc := resultstore.New(results, crates)

	waker := rabbitmq.NewReportWaker(rabbitConn)
	runLog := mongodb.NewReportRunLog(mongoConn)

	renderer := reporttemplate.New()
	outDir := func(name string) string { return cfg.ReportsDir + "/" + name }
	generator := report.New(renderer, outDir, logger)

	worker := NewReportWorker(experiments, resultSvc, lifecycleSvc, generator, waker, runLog, cfg.ReportPollInterval, logger)

	api := http.NewAgentAPI(assignmentSvc, lifecycleSvc, resultSvc, agents, sharedAgentConfig(cfg), logger)
	admin := http.NewAdminAPI(experiments, logger)

	lookup := httpresponse.AgentTokenFunc(func(token string) (string, bool) {
		a, err := assignmentSvc.Authenticate(ctx, token)
		if err != nil {
			return "", false
		}

		return a.Name, true
	})

	fiberApp := http.NewApp(api, admin, lookup, logger)

	return &Wiring{
		HTTP:   &HTTPServer{app: fiberApp, address: cfg.ServerAddress},
		Report: worker,
		Logger: logger,
	}, nil
}

// sharedAgentConfig is the flat key/value map every agent receives back
// from config(). Empty today; a place for coordinator-wide settings
// agents must mirror, should the roster ever need one.
func sharedAgentConfig(cfg Config) map[string]string {
	return map[string]string{}
}
