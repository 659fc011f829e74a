package instrumentation

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric attribute keys
const (
	attrStatus    = "status"
	attrOperation = "operation"
	attrService   = "service"
	attrFlow      = "flow"
	attrAction    = "action"
	attrTool      = "tool"
)

// Metrics provides methods for recording observability metrics.
// A zero Metrics is a valid no-op recorder.
type Metrics struct {
	// Remote store and calendar metrics
	remoteOperationsTotal   metric.Int64Counter
	remoteOperationDuration metric.Float64Histogram

	// Sync run metrics
	runsTotal       metric.Int64Counter
	runDuration     metric.Float64Histogram
	itemsTotal      metric.Int64Counter
	itemErrorsTotal metric.Int64Counter

	// MCP Tool metrics
	toolInvocationsTotal metric.Int64Counter
	toolDuration         metric.Float64Histogram
}

// NewMetrics creates a new Metrics instance with all metrics initialized.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}

	var err error

	m.remoteOperationsTotal, err = meter.Int64Counter(
		"remote_operations_total",
		metric.WithDescription("Total number of remote store and calendar operations"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create remote_operations_total counter: %w", err)
	}

	m.remoteOperationDuration, err = meter.Float64Histogram(
		"remote_operation_duration_seconds",
		metric.WithDescription("Remote store and calendar operation duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create remote_operation_duration_seconds histogram: %w", err)
	}

	m.runsTotal, err = meter.Int64Counter(
		"sync_runs_total",
		metric.WithDescription("Total number of sync runs by flow and status"),
		metric.WithUnit("{run}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create sync_runs_total counter: %w", err)
	}

	m.runDuration, err = meter.Float64Histogram(
		"sync_run_duration_seconds",
		metric.WithDescription("Sync run duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.1, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0, 60.0, 120.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create sync_run_duration_seconds histogram: %w", err)
	}

	m.itemsTotal, err = meter.Int64Counter(
		"sync_items_total",
		metric.WithDescription("Total number of meetings processed by flow and action"),
		metric.WithUnit("{item}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create sync_items_total counter: %w", err)
	}

	m.itemErrorsTotal, err = meter.Int64Counter(
		"sync_item_errors_total",
		metric.WithDescription("Total number of per-item errors recorded during sync runs"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create sync_item_errors_total counter: %w", err)
	}

	m.toolInvocationsTotal, err = meter.Int64Counter(
		"mcp_tool_invocations_total",
		metric.WithDescription("Total number of MCP tool invocations"),
		metric.WithUnit("{invocation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mcp_tool_invocations_total counter: %w", err)
	}

	m.toolDuration, err = meter.Float64Histogram(
		"mcp_tool_duration_seconds",
		metric.WithDescription("MCP tool execution duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mcp_tool_duration_seconds histogram: %w", err)
	}

	return m, nil
}

// RecordRemoteOperation records a call to the document store or a calendar source.
//
// Parameters:
//   - service: remote service name (notion, calendar, ical)
//   - operation: operation type (query, create_page, update, ...)
//   - status: result status ("success" or "error")
//   - duration: time taken for the operation
func (m *Metrics) RecordRemoteOperation(ctx context.Context, service, operation, status string, duration time.Duration) {
	if m == nil || m.remoteOperationsTotal == nil || m.remoteOperationDuration == nil {
		return // Instrumentation not initialized
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrService, service),
		attribute.String(attrOperation, operation),
		attribute.String(attrStatus, status),
	}

	m.remoteOperationsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.remoteOperationDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordRun records a completed or failed sync run.
// A run that finished with per-item errors is still a success.
func (m *Metrics) RecordRun(ctx context.Context, flow, status string, duration time.Duration) {
	if m == nil || m.runsTotal == nil || m.runDuration == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrFlow, flow),
		attribute.String(attrStatus, status),
	}

	m.runsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.runDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordItem records one processed meeting and the action taken for it.
func (m *Metrics) RecordItem(ctx context.Context, flow, action string) {
	if m == nil || m.itemsTotal == nil {
		return
	}

	m.itemsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String(attrFlow, flow),
		attribute.String(attrAction, action),
	))
}

// RecordItemError records one per-item error.
func (m *Metrics) RecordItemError(ctx context.Context, flow string) {
	if m == nil || m.itemErrorsTotal == nil {
		return
	}

	m.itemErrorsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String(attrFlow, flow)))
}

// RecordToolInvocation records an MCP tool invocation with tool name, status, and duration.
func (m *Metrics) RecordToolInvocation(ctx context.Context, toolName, status string, duration time.Duration) {
	if m == nil || m.toolInvocationsTotal == nil || m.toolDuration == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrTool, toolName),
		attribute.String(attrStatus, status),
	}

	m.toolInvocationsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.toolDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}
