// Package google handles OAuth2 for the Google Tasks API.
//
// Client credentials come from a credentials.json file or from a client ID
// and secret. Tokens are stored as JSON, one file per account, in the user
// cache directory:
//
//	<cache>/workspace-tasks/google-<account>.token
//
// AuthManager turns the stored token into an authorized tasks.API and writes
// refreshed tokens back to disk.
package google
