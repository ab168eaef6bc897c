// Package resources provides read-only MCP resources next to the Tasks tools.
//
//	tasks://account    account served by this instance and its token state
//	tasks://tasklists  the account's task lists as JSON
package resources
