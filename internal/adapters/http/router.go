package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ecoci/ecoci/pkg/httpresponse"
	"github.com/ecoci/ecoci/pkg/mlog"
)

// NewApp assembles the coordinator's fiber app: CORS, correlation id,
// tracing, and request logging run on every route. CraterToken bearer
// auth gates everything under /agent-api; /admin-api carries the
// experiment-creation surface for the out-of-scope CLI to call into.
func NewApp(api *AgentAPI, admin *AdminAPI, lookup httpresponse.AgentTokenFunc, logger mlog.Logger) *fiber.App {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})

	app.Use(WithCORS())
	app.Use(WithCorrelationID())
	app.Use(WithTracing("adapters.http"))
	app.Use(WithRequestLogging(logger))

	agentAPI := app.Group("/agent-api", httpresponse.WithAgentAuth(lookup))

	agentAPI.Post("/config", api.Config)
	agentAPI.Post("/heartbeat", api.Heartbeat)
	agentAPI.Post("/next-experiment", api.NextExperiment)
	agentAPI.Post("/experiments/:experiment/next-crate", api.NextCrate)
	agentAPI.Post("/experiments/:experiment/record-progress", api.RecordProgress)
	agentAPI.Post("/experiments/:experiment/record-sha", api.RecordSHA)
	agentAPI.Post("/experiments/:experiment/complete", api.CompleteExperiment)
	agentAPI.Post("/error", api.ReportError)

	adminAPI := app.Group("/admin-api")
	adminAPI.Post("/experiments", admin.CreateExperiment)

	return app
}
