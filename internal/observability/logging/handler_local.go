//go:build !gcloud

package logging

import (
	"context"
	"log/slog"
)

// gcpTraceAttrs is a no-op outside Cloud Run; trace_id and span_id are
// already attached by contextHandler.
func gcpTraceAttrs(context.Context, string) []slog.Attr {
	return nil
}
