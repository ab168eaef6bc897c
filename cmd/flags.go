package cmd

import (
	"log/slog"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/teemow/workspace-tasks/internal/google"
	"github.com/teemow/workspace-tasks/internal/instrumentation"
)

// googleFlags are the Google OAuth settings shared by serve and auth.
type googleFlags struct {
	account         string
	credentialsFile string
	clientID        string
	clientSecret    string
	tokenDir        string
	tasksEndpoint   string
}

func (g *googleFlags) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&g.account, "account", "", "Google account name for the stored token (default \"default\"). Can also use GOOGLE_ACCOUNT env var.")
	cmd.Flags().StringVar(&g.credentialsFile, "credentials-file", "", "OAuth client credentials JSON file. Can also use GOOGLE_CREDENTIALS_FILE env var.")
	cmd.Flags().StringVar(&g.clientID, "google-client-id", "", "Google OAuth client ID. Can also use GOOGLE_CLIENT_ID env var.")
	cmd.Flags().StringVar(&g.clientSecret, "google-client-secret", "", "Google OAuth client secret. Can also use GOOGLE_CLIENT_SECRET env var.")
	cmd.Flags().StringVar(&g.tokenDir, "token-dir", "", "Directory holding stored tokens (default: user cache dir). Can also use GOOGLE_TOKEN_DIR env var.")
	cmd.Flags().StringVar(&g.tasksEndpoint, "tasks-endpoint", "", "Override the Google Tasks API base URL. Can also use TASKS_API_ENDPOINT env var.")
}

// applyEnv fills every unset field from its environment variable.
func (g *googleFlags) applyEnv() {
	g.account = envOrDefault(g.account, "GOOGLE_ACCOUNT")
	g.credentialsFile = envOrDefault(g.credentialsFile, "GOOGLE_CREDENTIALS_FILE")
	g.clientID = envOrDefault(g.clientID, "GOOGLE_CLIENT_ID")
	g.clientSecret = envOrDefault(g.clientSecret, "GOOGLE_CLIENT_SECRET")
	g.tokenDir = envOrDefault(g.tokenDir, "GOOGLE_TOKEN_DIR")
	g.tasksEndpoint = envOrDefault(g.tasksEndpoint, "TASKS_API_ENDPOINT")
}

func (g *googleFlags) authConfig(metrics *instrumentation.Metrics, logger *slog.Logger) google.Config {
	return google.Config{
		CredentialsFile: g.credentialsFile,
		ClientID:        g.clientID,
		ClientSecret:    g.clientSecret,
		Account:         g.account,
		TokenDir:        g.tokenDir,
		Endpoint:        g.tasksEndpoint,
		Metrics:         metrics,
		Logger:          logger,
	}
}

func (g *googleFlags) newAuthManager(metrics *instrumentation.Metrics, logger *slog.Logger) (*google.AuthManager, error) {
	g.applyEnv()
	return google.NewAuthManager(g.authConfig(metrics, logger))
}

// envOrDefault returns value, or the environment variable key when value is empty.
func envOrDefault(value, key string) string {
	if value != "" {
		return value
	}
	return os.Getenv(key)
}

// envBool parses key as a boolean. Unset or unparsable values yield fallback.
func envBool(key string, fallback bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
