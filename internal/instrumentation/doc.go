// Package instrumentation provides OpenTelemetry metrics and tracing for meetsync.
//
// # Metrics
//
// Remote calls:
//   - remote_operations_total: Counter of store/calendar operations by service, operation, status
//   - remote_operation_duration_seconds: Histogram of their durations
//
// Sync runs:
//   - sync_runs_total / sync_run_duration_seconds: by flow (reconcile, ingest) and status
//   - sync_items_total: meetings processed, by flow and action (create_note, mark_cancelled, skip, created, updated)
//   - sync_item_errors_total: per-item errors by flow
//
// MCP tools:
//   - mcp_tool_invocations_total / mcp_tool_duration_seconds
//
// # Tracing
//
// Spans are created for each sync run (sync.<flow>), each remote call
// (<service>.<operation>) and each MCP tool invocation (tool.<name>).
//
// # Configuration
//
// Configuration is read from the environment by DefaultConfig:
//
//	MEETSYNC_TELEMETRY=true|false
//	MEETSYNC_METRICS_EXPORTER=prometheus|otlp|stdout
//	MEETSYNC_TRACING_EXPORTER=otlp|stdout|none
//	OTEL_EXPORTER_OTLP_ENDPOINT=localhost:4318
//	OTEL_TRACES_SAMPLER_ARG=0.1
//
// A disabled Provider hands out a zero Metrics, whose Record methods are no-ops.
package instrumentation
