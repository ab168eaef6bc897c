package google_tools

import (
	"context"
	"fmt"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"golang.org/x/oauth2"

	"github.com/teemow/workspace-tasks/internal/google"
	"github.com/teemow/workspace-tasks/internal/server"
	"github.com/teemow/workspace-tasks/internal/tools/common"
)

const (
	ToolGetAuthURL   = "google_get_auth_url"
	ToolSaveAuthCode = "google_save_auth_code"

	// RedirectURL is a loopback target; Google accepts any loopback address
	// for desktop clients and the code is copied from the address bar.
	RedirectURL = "http://127.0.0.1/callback"
)

// Authorizer runs the OAuth code flow for one account.
type Authorizer interface {
	Account() string
	AuthURL(redirectURL, state, verifier string) string
	Exchange(ctx context.Context, redirectURL, code, verifier string) error
}

type pendingLogin struct {
	state    string
	verifier string
}

type authTools struct {
	auth Authorizer

	mu      sync.Mutex
	pending *pendingLogin
}

// RegisterGoogleTools registers the OAuth tools with the MCP server.
func RegisterGoogleTools(s *mcpserver.MCPServer, sc *server.ServerContext, auth Authorizer) error {
	if auth == nil {
		return fmt.Errorf("authorizer is required")
	}
	t := &authTools{auth: auth}

	getAuthURLTool := mcp.NewTool(ToolGetAuthURL,
		mcp.WithDescription("Get the OAuth URL to authorize Google Tasks access for the server's account"),
	)
	s.AddTool(getAuthURLTool, common.InstrumentedToolHandler(ToolGetAuthURL, sc, t.handleGetAuthURL))

	saveAuthCodeTool := mcp.NewTool(ToolSaveAuthCode,
		mcp.WithDescription("Complete Google Tasks authorization with the code, or the full redirect URL, obtained from google_get_auth_url"),
		mcp.WithString("authCode",
			mcp.Required(),
			mcp.Description("The authorization code or the URL the browser was redirected to"),
		),
	)
	s.AddTool(saveAuthCodeTool, common.InstrumentedToolHandler(ToolSaveAuthCode, sc, t.handleSaveAuthCode))

	return nil
}

func (t *authTools) handleGetAuthURL(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	state, err := google.NewState()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	login := &pendingLogin{state: state, verifier: oauth2.GenerateVerifier()}

	t.mu.Lock()
	t.pending = login
	t.mu.Unlock()

	authURL := t.auth.AuthURL(RedirectURL, login.state, login.verifier)

	result := fmt.Sprintf(`To authorize Google Tasks access for account "%s":

1. Visit this URL in your browser:
   %s

2. Sign in with your Google account
3. Grant access to Google Tasks
4. The browser ends on a page at %s that does not load. Copy its full URL

5. Call the %s tool with that URL to complete authentication`, t.auth.Account(), authURL, RedirectURL, ToolSaveAuthCode)

	return mcp.NewToolResultText(result), nil
}

func (t *authTools) handleSaveAuthCode(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := common.RequiredString(request.GetArguments(), "authCode")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	t.mu.Lock()
	login := t.pending
	t.mu.Unlock()
	if login == nil {
		return mcp.NewToolResultError(fmt.Sprintf("No authorization in progress, call %s first", ToolGetAuthURL)), nil
	}

	code, err := google.ParseAuthorizationInput(input, login.state)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := t.auth.Exchange(ctx, RedirectURL, code, login.verifier); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to save authorization code for account %s: %v", t.auth.Account(), err)), nil
	}

	t.mu.Lock()
	if t.pending == login {
		t.pending = nil
	}
	t.mu.Unlock()

	return mcp.NewToolResultText(fmt.Sprintf("Authorization successful for account '%s'. The Google Tasks tools can be used now.", t.auth.Account())), nil
}
