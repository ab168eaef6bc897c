// Package google_tools provides MCP tools for authorizing the server's Google
// account from within an AI assistant.
//
// The OAuth flow:
//  1. Call google_get_auth_url to get the authorization URL
//  2. The user visits the URL and grants access to Google Tasks
//  3. The browser is redirected to a loopback address that does not load;
//     the user copies that URL (or just its code parameter)
//  4. Call google_save_auth_code with it to store the token
//
// The flow uses PKCE. Only the most recent authorization URL can be completed.
package google_tools
