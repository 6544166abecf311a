// Package logging configures the process-wide slog logger and carries
// request-scoped attributes through context.
package logging

import (
	"context"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/trace"
)

type Environment string

const (
	EnvDev  Environment = "dev"
	EnvProd Environment = "prod"
)

// Module names the component a log line originates from.
type Module string

type ServiceInfo struct {
	Name     string
	Version  string
	Revision string
}

type HandlerOptions struct {
	Level         slog.Leveler
	Environment   Environment
	Service       ServiceInfo
	DefaultModule Module
	GCPProjectID  string
}

type contextKey int

const (
	requestIDKey contextKey = iota
	moduleKey
)

func WithModule(ctx context.Context, module Module) context.Context {
	return context.WithValue(ctx, moduleKey, module)
}

func ModuleFromContext(ctx context.Context) (Module, bool) {
	m, ok := ctx.Value(moduleKey).(Module)
	return m, ok
}

// NewLogger returns a logger that decorates every record with service
// metadata, the request ID and the active trace. Output is text in EnvDev and
// JSON everywhere else.
func NewLogger(w io.Writer, opts HandlerOptions) *slog.Logger {
	level := opts.Level
	if level == nil {
		level = slog.LevelInfo
	}

	var base slog.Handler
	if opts.Environment == EnvDev {
		base = slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	} else {
		base = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	}
	h := &contextHandler{
		Handler:       base,
		defaultModule: opts.DefaultModule,
		gcpProjectID:  opts.GCPProjectID,
	}

	return slog.New(h).With(
		slog.Group("service",
			slog.String("name", opts.Service.Name),
			slog.String("version", opts.Service.Version),
			slog.String("revision", opts.Service.Revision),
		),
		slog.String("env", string(opts.Environment)),
	)
}

type contextHandler struct {
	slog.Handler
	defaultModule Module
	gcpProjectID  string
}

func (h *contextHandler) Handle(ctx context.Context, r slog.Record) error {
	if ctx != nil {
		if id := RequestIDFromContext(ctx); id != "" {
			r.AddAttrs(slog.String("request_id", id))
		}

		module := h.defaultModule
		if m, ok := ModuleFromContext(ctx); ok {
			module = m
		}
		if module != "" {
			r.AddAttrs(slog.String("module", string(module)))
		}

		if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
			r.AddAttrs(
				slog.String("trace_id", sc.TraceID().String()),
				slog.String("span_id", sc.SpanID().String()),
			)
			r.AddAttrs(gcpTraceAttrs(ctx, h.gcpProjectID)...)
		}
	}

	return h.Handler.Handle(ctx, r)
}

func (h *contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &contextHandler{
		Handler:       h.Handler.WithAttrs(attrs),
		defaultModule: h.defaultModule,
		gcpProjectID:  h.gcpProjectID,
	}
}

func (h *contextHandler) WithGroup(name string) slog.Handler {
	return &contextHandler{
		Handler:       h.Handler.WithGroup(name),
		defaultModule: h.defaultModule,
		gcpProjectID:  h.gcpProjectID,
	}
}
