// Package cmd implements the command-line interface for workspace-tasks.
//
// This package provides the following commands:
//   - serve: Start the MCP server exposing the Google Tasks tools
//   - auth login: Authorize an account and store its OAuth token
//   - auth status: Show the stored token of an account
//   - auth logout: Delete the stored token of an account
//   - generate-docs: Generate markdown documentation for all MCP tools
//   - version: Display version information
//
// Flags fall back to environment variables (GOOGLE_CLIENT_ID,
// GOOGLE_CLIENT_SECRET, GOOGLE_CREDENTIALS_FILE, GOOGLE_ACCOUNT,
// GOOGLE_TOKEN_DIR, TASKS_API_ENDPOINT, METRICS_ENABLED, METRICS_ADDR,
// LOG_FORMAT) when they are not set on the command line.
package cmd
