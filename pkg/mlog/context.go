package mlog

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

type customContextKey string

var orchestratorContextKey = customContextKey("orchestrator_context")

// contextValues bundles everything request/task scoped code needs to
// reach without an explicit parameter: the active logger and tracer.
// Keeping both under one context key means a single WithValue lookup
// per request instead of one per concern.
type contextValues struct {
	Logger Logger
	Tracer trace.Tracer
}

// FromContext extracts the Logger attached by ContextWithLogger, or a
// NoneLogger if none was ever attached.
//
//nolint:ireturn
func FromContext(ctx context.Context) Logger {
	if values, ok := ctx.Value(orchestratorContextKey).(*contextValues); ok && values.Logger != nil {
		return values.Logger
	}

	return &NoneLogger{}
}

// ContextWithLogger returns a context carrying logger, preserving any
// tracer already attached.
func ContextWithLogger(ctx context.Context, logger Logger) context.Context {
	values, _ := ctx.Value(orchestratorContextKey).(*contextValues)
	if values == nil {
		values = &contextValues{}
	}

	values.Logger = logger

	return context.WithValue(ctx, orchestratorContextKey, values)
}

// TracerFromContext returns the tracer attached by ContextWithTracer,
// or the default global tracer if none was ever attached.
//
//nolint:ireturn
func TracerFromContext(ctx context.Context) trace.Tracer {
	if values, ok := ctx.Value(orchestratorContextKey).(*contextValues); ok && values.Tracer != nil {
		return values.Tracer
	}

	return otel.Tracer("default")
}

// ContextWithTracer returns a context carrying tracer, preserving any
// logger already attached.
func ContextWithTracer(ctx context.Context, tracer trace.Tracer) context.Context {
	values, _ := ctx.Value(orchestratorContextKey).(*contextValues)
	if values == nil {
		values = &contextValues{}
	}

	values.Tracer = tracer

	return context.WithValue(ctx, orchestratorContextKey, values)
}
