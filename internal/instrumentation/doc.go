// Package instrumentation wires OpenTelemetry metrics and tracing into the
// workspace-tasks MCP server.
//
// # Metrics
//
//   - http_requests_total, http_request_duration_seconds: HTTP transport traffic
//   - google_api_operations_total, google_api_operation_duration_seconds: Tasks API calls
//   - oauth_token_refresh_total: OAuth token refreshes by result
//   - mcp_tool_invocations_total, mcp_tool_duration_seconds: MCP tool calls
//
// Metrics are exported to Prometheus (served by the metrics server on
// /metrics), to an OTLP collector, or to stdout.
//
// # Tracing
//
// Tool calls open "tool.<name>" server spans and every Tasks API request
// opens a "google.tasks.<operation>" client span beneath it. Tracing is off
// unless TRACING_EXPORTER is "otlp" or "stdout".
//
// # Configuration
//
//	INSTRUMENTATION_ENABLED          true
//	METRICS_EXPORTER                 prometheus | otlp | stdout
//	TRACING_EXPORTER                 none | otlp | stdout
//	OTEL_EXPORTER_OTLP_ENDPOINT      host:port of the collector
//	OTEL_EXPORTER_OTLP_INSECURE      false
//	OTEL_TRACES_SAMPLER_ARG          0.1
//	AUDIT_LOGGING_ENABLED            true
//	AUDIT_LOGGING_INCLUDE_ARGUMENTS  false
//
// # Audit logging
//
// AuditLogger writes a "tool_executed" or "tool_failed" line per tool call.
// Tool arguments carry task titles and notes and are left out unless
// AUDIT_LOGGING_INCLUDE_ARGUMENTS is set.
package instrumentation
