package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command for the workspace-tasks application
var rootCmd = &cobra.Command{
	Use:   "workspace-tasks",
	Short: "MCP server for Google Tasks",
	Long: `workspace-tasks exposes Google Tasks to AI assistants as Model Context
Protocol (MCP) tools: list task lists and tasks, create, update, complete
and delete tasks.

Run 'workspace-tasks auth login' once, then 'workspace-tasks serve'.`,
	SilenceUsage: true,
}

// version will be set by main
var version = "dev"

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "workspace-tasks version %s\n" .Version}}`)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newAuthCmd())
	rootCmd.AddCommand(newGenerateDocsCmd())
	rootCmd.AddCommand(newVersionCmd())
}
