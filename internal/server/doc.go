// Package server holds the runtime pieces of the workspace-tasks MCP server:
// the ServerContext shared by tool handlers, the streamable HTTP transport,
// health probes and the Prometheus metrics server.
//
// In HTTP mode the following endpoints are served:
//
//	/mcp               MCP streamable HTTP transport
//	/healthz           liveness
//	/readyz            readiness, 503 while shutting down
//	/healthz/detailed  uptime, version, account and OAuth token presence
//
// Metrics are served separately on the metrics address (default :9090).
package server
