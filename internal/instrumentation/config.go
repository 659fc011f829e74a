package instrumentation

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
)

// Environment variables read by DefaultConfig.
const (
	EnvTelemetry       = "MEETSYNC_TELEMETRY"
	EnvMetricsExporter = "MEETSYNC_METRICS_EXPORTER"
	EnvTracingExporter = "MEETSYNC_TRACING_EXPORTER"
	EnvServiceName     = "OTEL_SERVICE_NAME"
	EnvInstanceID      = "OTEL_SERVICE_INSTANCE_ID"
	EnvOTLPEndpoint    = "OTEL_EXPORTER_OTLP_ENDPOINT"
	EnvOTLPInsecure    = "OTEL_EXPORTER_OTLP_INSECURE"
	EnvSamplerArg      = "OTEL_TRACES_SAMPLER_ARG"
)

// Exporter names.
const (
	ExporterPrometheus = "prometheus"
	ExporterOTLP       = "otlp"
	ExporterStdout     = "stdout"
	ExporterNone       = "none"
)

var (
	metricsExporters = []string{ExporterPrometheus, ExporterOTLP, ExporterStdout}
	tracingExporters = []string{ExporterOTLP, ExporterStdout, ExporterNone}
)

// Config selects where meetsync sends its metrics and spans.
type Config struct {
	ServiceName    string
	ServiceVersion string
	// ServiceInstanceID defaults to the hostname.
	ServiceInstanceID string

	// Enabled is false when MEETSYNC_TELEMETRY=false. A disabled provider
	// records nothing.
	Enabled bool

	// MetricsExporter is one of prometheus (default), otlp or stdout.
	MetricsExporter string
	// TracingExporter is one of none (default), otlp or stdout.
	TracingExporter string

	// OTLPEndpoint is a host:port without scheme, e.g. localhost:4318.
	OTLPEndpoint string
	// OTLPInsecure disables TLS towards the collector.
	OTLPInsecure bool

	// TraceSamplingRate is the ratio of sync runs traced, 0.0 to 1.0.
	TraceSamplingRate float64
}

// DefaultConfig reads the instrumentation settings from the process
// environment.
func DefaultConfig() Config {
	return ConfigFromLookup(os.LookupEnv)
}

// ConfigFromLookup builds a Config from lookup, falling back to defaults for
// missing or unparsable values.
func ConfigFromLookup(lookup func(string) (string, bool)) Config {
	env := envReader(lookup)
	return Config{
		ServiceName:       env.str(EnvServiceName, "meetsync"),
		ServiceVersion:    "unknown",
		ServiceInstanceID: env.str(EnvInstanceID, ""),
		Enabled:           env.boolean(EnvTelemetry, true),
		MetricsExporter:   strings.ToLower(env.str(EnvMetricsExporter, ExporterPrometheus)),
		TracingExporter:   strings.ToLower(env.str(EnvTracingExporter, ExporterNone)),
		OTLPEndpoint:      env.str(EnvOTLPEndpoint, ""),
		OTLPInsecure:      env.boolean(EnvOTLPInsecure, false),
		TraceSamplingRate: env.float(EnvSamplerArg, 0.1),
	}
}

// Validate rejects unknown exporters, an out-of-range sampling rate and OTLP
// export without an endpoint.
func (c *Config) Validate() error {
	if c.TraceSamplingRate < 0 || c.TraceSamplingRate > 1 {
		return fmt.Errorf("trace sampling rate must be between 0.0 and 1.0, got %g", c.TraceSamplingRate)
	}
	if c.MetricsExporter != "" && !slices.Contains(metricsExporters, c.MetricsExporter) {
		return fmt.Errorf("invalid metrics exporter %q, must be one of: %s", c.MetricsExporter, strings.Join(metricsExporters, ", "))
	}
	if c.TracingExporter != "" && !slices.Contains(tracingExporters, c.TracingExporter) {
		return fmt.Errorf("invalid tracing exporter %q, must be one of: %s", c.TracingExporter, strings.Join(tracingExporters, ", "))
	}
	if c.OTLPEndpoint == "" && (c.MetricsExporter == ExporterOTLP || c.TracingExporter == ExporterOTLP) {
		return fmt.Errorf("OTLP export needs %s", EnvOTLPEndpoint)
	}
	return nil
}

type envReader func(string) (string, bool)

func (e envReader) str(key, def string) string {
	if v, ok := e(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return def
}

func (e envReader) boolean(key string, def bool) bool {
	b, err := strconv.ParseBool(e.str(key, strconv.FormatBool(def)))
	if err != nil {
		return def
	}
	return b
}

func (e envReader) float(key string, def float64) float64 {
	f, err := strconv.ParseFloat(e.str(key, ""), 64)
	if err != nil {
		return def
	}
	return f
}

// Label values shared by the metrics and spans.
const (
	StatusSuccess = "success"
	StatusError   = "error"

	ServiceNotion   = "notion"
	ServiceCalendar = "calendar"
	ServiceICal     = "ical"

	FlowReconcile = "reconcile"
	FlowIngest    = "ingest"
)

// Store and calendar operation names.
const (
	OperationCreatePage   = "create_page"
	OperationAppend       = "append"
	OperationQuery        = "query"
	OperationUpdate       = "update"
	OperationGetPage      = "get_page"
	OperationListChildren = "list_children"
	OperationSearch       = "search"
	OperationListEvents   = "list_events"
	OperationFetchFeed    = "fetch_feed"
)
