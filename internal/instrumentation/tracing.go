package instrumentation

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName names the tracer all meetsync spans come from.
const TracerName = "github.com/teemow/meetsync"

// Span attribute keys.
const (
	SpanAttrTool       = "mcp.tool"
	SpanAttrService    = "remote.service"
	SpanAttrOperation  = "remote.operation"
	SpanAttrResourceID = "remote.resource_id" // page, database or event ID
	SpanAttrFlow       = "sync.flow"
	SpanAttrRunID      = "sync.run_id"
)

func startSpan(ctx context.Context, name string, kind trace.SpanKind, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.GetTracerProvider().Tracer(TracerName).Start(ctx, name,
		trace.WithSpanKind(kind),
		trace.WithAttributes(attrs...),
	)
}

// StartRunSpan starts the span "sync.<flow>" covering one reconcile or
// ingest run. Remote calls made with the returned context become children.
func StartRunSpan(ctx context.Context, flow, runID string) (context.Context, trace.Span) {
	return startSpan(ctx, "sync."+flow, trace.SpanKindInternal,
		attribute.String(SpanAttrFlow, flow),
		attribute.String(SpanAttrRunID, runID),
	)
}

// StartToolSpan starts the span "tool.<name>" for an MCP tool call.
func StartToolSpan(ctx context.Context, toolName string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return startSpan(ctx, "tool."+toolName, trace.SpanKindServer,
		append([]attribute.KeyValue{attribute.String(SpanAttrTool, toolName)}, attrs...)...)
}

// StartRemoteSpan starts the client span "<service>.<operation>". An empty
// resourceID is left off the span.
func StartRemoteSpan(ctx context.Context, service, operation, resourceID string) (context.Context, trace.Span) {
	attrs := []attribute.KeyValue{
		attribute.String(SpanAttrService, service),
		attribute.String(SpanAttrOperation, operation),
	}
	if resourceID != "" {
		attrs = append(attrs, attribute.String(SpanAttrResourceID, resourceID))
	}
	return startSpan(ctx, service+"."+operation, trace.SpanKindClient, attrs...)
}

// SetSpanError marks span as failed. A nil err is ignored.
func SetSpanError(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// SetSpanSuccess marks span as OK.
func SetSpanSuccess(span trace.Span) {
	span.SetStatus(codes.Ok, "")
}

// GetTraceID returns the trace ID of the span in ctx, or "" without one.
func GetTraceID(ctx context.Context) string {
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		return sc.TraceID().String()
	}
	return ""
}
