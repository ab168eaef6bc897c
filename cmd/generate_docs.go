package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/workspace-tasks/internal/google"
	"github.com/teemow/workspace-tasks/internal/server"
	"github.com/teemow/workspace-tasks/internal/tasks"
)

func newGenerateDocsCmd() *cobra.Command {
	var outputFile string

	cmd := &cobra.Command{
		Use:   "generate-docs",
		Short: "Generate MCP tool documentation",
		Long: `Generate markdown documentation for all available MCP tools.
The tools are registered on a throwaway server and introspected, so the
documentation always matches the tool definitions.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerateDocs(outputFile)
		},
	}

	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")

	return cmd
}

// docsAuth never authorizes; documentation generation makes no API calls.
type docsAuth struct{}

func (docsAuth) TasksClient(context.Context) (tasks.API, error) {
	return nil, google.ErrNoToken
}

func (docsAuth) Account() string { return google.DefaultAccount }

func (docsAuth) AuthURL(redirectURL, state, verifier string) string { return "" }

func (docsAuth) Exchange(context.Context, string, string, string) error {
	return google.ErrNoToken
}

func runGenerateDocs(outputFile string) error {
	all, err := registeredTools(false)
	if err != nil {
		return err
	}
	readOnly, err := registeredTools(true)
	if err != nil {
		return err
	}

	writeOnly := make(map[string]bool)
	for name := range all {
		if _, ok := readOnly[name]; !ok {
			writeOnly[name] = true
		}
	}

	tools := make([]mcp.Tool, 0, len(all))
	for _, t := range all {
		tools = append(tools, t)
	}

	markdown := generateToolsMarkdown(tools, writeOnly)

	if outputFile != "" {
		if err := os.WriteFile(outputFile, []byte(markdown), 0644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Documentation written to: %s\n", outputFile)
		return nil
	}

	_, err = io.WriteString(os.Stdout, markdown)
	return err
}

func registeredTools(readOnly bool) (map[string]mcp.Tool, error) {
	serverContext := server.NewServerContext(context.Background(), tasks.NewService(docsAuth{}), google.DefaultAccount)
	defer func() {
		_ = serverContext.Shutdown()
	}()

	mcpSrv := mcpserver.NewMCPServer("workspace-tasks", version,
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithResourceCapabilities(false, false),
	)
	if err := registerAllTools(mcpSrv, serverContext, toolSet{readOnly: readOnly, authorizer: docsAuth{}}); err != nil {
		return nil, err
	}

	tools := make(map[string]mcp.Tool)
	for name, st := range mcpSrv.ListTools() {
		tools[name] = st.Tool
	}
	return tools, nil
}

func generateToolsMarkdown(tools []mcp.Tool, writeOnly map[string]bool) string {
	var sb strings.Builder

	sb.WriteString("# MCP Tools Reference\n\n")
	sb.WriteString("This document lists the tools available when running workspace-tasks as an MCP server.\n\n")
	sb.WriteString("**Note:** This documentation is automatically generated from the tool definitions.\n\n")
	sb.WriteString("Tools marked *write* are only registered when the server runs with `--yolo`.\n\n")

	sort.Slice(tools, func(i, j int) bool {
		return tools[i].Name < tools[j].Name
	})

	categories := map[string][]mcp.Tool{}
	for _, tool := range tools {
		category := getCategoryFromToolName(tool.Name)
		categories[category] = append(categories[category], tool)
	}

	names := make([]string, 0, len(categories))
	for name := range categories {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, category := range names {
		fmt.Fprintf(&sb, "## %s\n\n", category)
		for _, tool := range categories[category] {
			sb.WriteString(generateToolMarkdown(tool, writeOnly[tool.Name]))
			sb.WriteString("\n")
		}
	}

	return sb.String()
}

func getCategoryFromToolName(name string) string {
	prefix, _, _ := strings.Cut(name, "_")
	switch prefix {
	case "tasks":
		return "Google Tasks Tools"
	case "google":
		return "Google OAuth Tools (stdio only)"
	default:
		return "Other"
	}
}

func generateToolMarkdown(tool mcp.Tool, write bool) string {
	var sb strings.Builder

	if write {
		fmt.Fprintf(&sb, "### %s (*write*)\n\n", tool.Name)
	} else {
		fmt.Fprintf(&sb, "### %s\n\n", tool.Name)
	}

	if tool.Description != "" {
		fmt.Fprintf(&sb, "%s\n\n", tool.Description)
	}

	if len(tool.InputSchema.Properties) > 0 {
		sb.WriteString("**Arguments:**\n")

		propNames := make([]string, 0, len(tool.InputSchema.Properties))
		for name := range tool.InputSchema.Properties {
			propNames = append(propNames, name)
		}
		sort.Strings(propNames)

		for _, name := range propNames {
			propMap, ok := tool.InputSchema.Properties[name].(map[string]any)
			if !ok {
				continue
			}

			requiredStr := "optional"
			if slices.Contains(tool.InputSchema.Required, name) {
				requiredStr = "required"
			}

			fmt.Fprintf(&sb, "- `%s` (%s, %s): ", name, getPropertyType(propMap), requiredStr)
			if desc, ok := propMap["description"].(string); ok {
				sb.WriteString(desc)
			}
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

func getPropertyType(prop map[string]any) string {
	if t, ok := prop["type"].(string); ok {
		return t
	}
	return "any"
}
