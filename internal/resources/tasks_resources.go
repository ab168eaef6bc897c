package resources

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/workspace-tasks/internal/server"
	"github.com/teemow/workspace-tasks/internal/tasks"
	"github.com/teemow/workspace-tasks/internal/tools/common"
)

const (
	AccountURI   = "tasks://account"
	TaskListsURI = "tasks://tasklists"

	mimeJSON = "application/json"
)

// RegisterTasksResources registers the account and task list resources.
// hasToken reports whether the account has a stored token; it may be nil.
func RegisterTasksResources(s *mcpserver.MCPServer, sc *server.ServerContext, hasToken func() bool) error {
	if sc == nil || sc.Service() == nil {
		return fmt.Errorf("tasks service is not configured")
	}

	accountResource := mcp.NewResource(
		AccountURI,
		"Google Account",
		mcp.WithResourceDescription("The Google account whose tasks this server manages"),
		mcp.WithMIMEType(mimeJSON),
	)
	s.AddResource(accountResource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return handleAccount(request, sc, hasToken)
	})

	taskListsResource := mcp.NewResource(
		TaskListsURI,
		"Task Lists",
		mcp.WithResourceDescription("All task lists of the account"),
		mcp.WithMIMEType(mimeJSON),
	)
	s.AddResource(taskListsResource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return handleTaskLists(ctx, request, sc.Service())
	})

	return nil
}

func handleAccount(request mcp.ReadResourceRequest, sc *server.ServerContext, hasToken func() bool) ([]mcp.ResourceContents, error) {
	data := map[string]any{
		"account": sc.Account(),
	}
	if hasToken != nil {
		data["authorized"] = hasToken()
	}

	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal account data: %w", err)
	}
	return textContents(request.Params.URI, string(jsonData)), nil
}

func handleTaskLists(ctx context.Context, request mcp.ReadResourceRequest, svc *tasks.Service) ([]mcp.ResourceContents, error) {
	result, err := svc.ListTaskLists(ctx, tasks.ListTaskListsOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to list task lists: %w", err)
	}
	return textContents(request.Params.URI, common.ResultText(result)), nil
}

func textContents(uri, text string) []mcp.ResourceContents {
	return []mcp.ResourceContents{
		&mcp.TextResourceContents{
			URI:      uri,
			MIMEType: mimeJSON,
			Text:     text,
		},
	}
}
