package tracing

import (
	"context"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const doseTracerName = "github.com/KasumiMercury/nightscout-daily-dose/internal/service/dailydose"

func DoseTracer() trace.Tracer {
	return otel.Tracer(doseTracerName)
}

func StartComputeDaySpan(ctx context.Context, date string) (context.Context, trace.Span) {
	return DoseTracer().Start(ctx, "dose.compute_day",
		trace.WithAttributes(
			attribute.String("dose.date", date),
		),
	)
}

func StartComputeRangeSpan(ctx context.Context, from, to string, days int) (context.Context, trace.Span) {
	return DoseTracer().Start(ctx, "dose.compute_range",
		trace.WithAttributes(
			attribute.String("dose.from", from),
			attribute.String("dose.to", to),
			attribute.Int("dose.days", days),
		),
	)
}

func StartGlucoseSyncSpan(ctx context.Context, since, until time.Time) (context.Context, trace.Span) {
	return DoseTracer().Start(ctx, "dose.glucose_sync",
		trace.WithAttributes(
			attribute.String("sync.since", since.Format(time.RFC3339)),
			attribute.String("sync.until", until.Format(time.RFC3339)),
		),
	)
}

func StartExternalAPISpan(ctx context.Context, operation, url string) (context.Context, trace.Span) {
	return DoseTracer().Start(ctx, "dose.external_api."+operation,
		trace.WithAttributes(
			attribute.String("url", url),
		),
		trace.WithSpanKind(trace.SpanKindClient),
	)
}

func RecordComputeDayResult(span trace.Span, cached, noData bool, totalBasal, totalDose float64, err error) {
	span.SetAttributes(
		attribute.Bool("dose.cached", cached),
		attribute.Bool("dose.no_data", noData),
		attribute.Float64("dose.total_basal", totalBasal),
		attribute.Float64("dose.total", totalDose),
	)
	RecordError(span, err)
}

func RecordError(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
}

// InjectToHTTPRequest writes the trace context of ctx into the request headers.
func InjectToHTTPRequest(ctx context.Context, req *http.Request) {
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))
}

// ExtractFromHTTPRequest returns ctx carrying the remote trace context found in req.
func ExtractFromHTTPRequest(ctx context.Context, req *http.Request) context.Context {
	return otel.GetTextMapPropagator().Extract(ctx, propagation.HeaderCarrier(req.Header))
}
