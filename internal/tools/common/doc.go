// Package common holds helpers shared by the MCP tool packages: argument
// parsing and the instrumentation wrapper applied to every tool handler.
package common
