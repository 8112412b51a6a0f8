// Package http wires the agent-facing assignment API as a fiber app:
// config, next-experiment, next-crate, record-progress, heartbeat, and
// error reporting, all behind the CraterToken bearer-auth middleware.
package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"

	"github.com/ecoci/ecoci/pkg/mlog"
)

const headerCorrelationID = "X-Correlation-Id"

// WithCorrelationID stamps every request and its response with a fresh
// correlation id, the value downstream log lines and span attributes
// key off.
func WithCorrelationID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		cid := uuid.NewString()

		c.Request().Header.Set(headerCorrelationID, cid)
		c.Set(headerCorrelationID, cid)

		return c.Next()
	}
}

// WithTracing opens one otel span per request named "METHOD path",
// mirroring the "<adapter>.<operation>" span convention the postgres
// repositories already use.
func WithTracing(serviceName string) fiber.Handler {
	tracer := otel.Tracer(serviceName)

	return func(c *fiber.Ctx) error {
		ctx, span := tracer.Start(c.UserContext(), c.Method()+" "+c.Route().Path)
		defer span.End()

		c.SetUserContext(ctx)

		return c.Next()
	}
}

// WithRequestLogging logs one line per request in a Common Log Format
// style line, adapted from the teacher's access-log middleware: CLF
// fields plus duration, no per-request body capture since agent-api
// bodies can carry multi-megabyte logs.
func WithRequestLogging(logger mlog.Logger) fiber.Handler {
	if logger == nil {
		logger = &mlog.NoneLogger{}
	}

	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		logger.Infof("%s - %q %s %d %dB %s",
			c.IP(), c.Method()+" "+c.OriginalURL(), c.Protocol(),
			c.Response().StatusCode(), len(c.Response().Body()), time.Since(start))

		return err
	}
}

// WithCORS mirrors the teacher's permissive dashboard CORS policy,
// scoped to the agent-api's read-mostly surface.
func WithCORS() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderAccessControlAllowOrigin, "*")
		c.Set(fiber.HeaderAccessControlAllowMethods, "GET,POST")

		if c.Method() == fiber.MethodOptions {
			return c.SendStatus(fiber.StatusNoContent)
		}

		return c.Next()
	}
}
