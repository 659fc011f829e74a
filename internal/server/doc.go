// Package server holds the shared state of long-running commands.
//
// ServerContext creates the document store client and the calendar source
// on first use and hands out reconcilers and ingestors built from them. It
// backs both the MCP server and the watch scheduler.
//
// MetricsServer exposes Prometheus metrics on /metrics next to the
// HealthChecker endpoints (/healthz, /readyz, /healthz/detailed), the last
// of which reports the outcome of the most recent scheduled run.
package server
