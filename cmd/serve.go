package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/workspace-tasks/internal/google"
	"github.com/teemow/workspace-tasks/internal/instrumentation"
	"github.com/teemow/workspace-tasks/internal/logging"
	"github.com/teemow/workspace-tasks/internal/resources"
	"github.com/teemow/workspace-tasks/internal/server"
	"github.com/teemow/workspace-tasks/internal/tasks"
	"github.com/teemow/workspace-tasks/internal/tools/google_tools"
	"github.com/teemow/workspace-tasks/internal/tools/tasks_tools"
)

const (
	transportStdio          = "stdio"
	transportStreamableHTTP = "streamable-http"
)

// serveOptions holds the flags of the serve command.
type serveOptions struct {
	debug     bool
	transport string
	httpAddr  string
	yolo      bool
	logFormat string

	google googleFlags

	metricsEnabled bool
	metricsAddr    string
}

func newServeCmd() *cobra.Command {
	var opts serveOptions

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server",
		Long: `Start the Model Context Protocol (MCP) server exposing Google Tasks
tools to AI assistants.

Supports multiple transport types:
  - stdio: Standard input/output (default)
  - streamable-http: Streamable HTTP transport on /mcp

Safety Mode:
  By default, the server operates in read-only mode: tasks can be listed and
  created, but not changed or deleted. Use --yolo to enable update, complete
  and delete.

Authentication:
  Run 'workspace-tasks auth login' once to store a token for the account.
  OAuth client credentials come from --credentials-file or from
  --google-client-id and --google-client-secret (GOOGLE_CLIENT_ID and
  GOOGLE_CLIENT_SECRET env vars).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.applyEnv(cmd)
			return runServe(opts)
		},
	}

	opts.addFlags(cmd)

	return cmd
}

func (o *serveOptions) addFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&o.debug, "debug", false, "Enable debug logging")
	cmd.Flags().StringVar(&o.transport, "transport", transportStdio, "Transport type: stdio or streamable-http")
	cmd.Flags().StringVar(&o.httpAddr, "http-addr", ":8080", "HTTP server address (for streamable-http transport)")
	cmd.Flags().BoolVar(&o.yolo, "yolo", false, "Enable write operations (update, complete, delete). Default is read-only mode.")
	cmd.Flags().StringVar(&o.logFormat, "log-format", logging.FormatText, "Log format: text or json. Can also use LOG_FORMAT env var.")
	o.google.addFlags(cmd)

	cmd.Flags().BoolVar(&o.metricsEnabled, "metrics-enabled", true, "Enable the metrics server on a dedicated port. Can also use METRICS_ENABLED env var.")
	cmd.Flags().StringVar(&o.metricsAddr, "metrics-addr", server.DefaultMetricsAddr, "Metrics server address. Can also use METRICS_ADDR env var.")
}

// applyEnv loads environment fallbacks for flags not set on the command line.
func (o *serveOptions) applyEnv(cmd *cobra.Command) {
	o.google.applyEnv()

	if !cmd.Flags().Changed("log-format") {
		if v := os.Getenv("LOG_FORMAT"); v != "" {
			o.logFormat = v
		}
	}
	if !cmd.Flags().Changed("metrics-enabled") {
		o.metricsEnabled = envBool("METRICS_ENABLED", o.metricsEnabled)
	}
	if !cmd.Flags().Changed("metrics-addr") {
		if v := os.Getenv("METRICS_ADDR"); v != "" {
			o.metricsAddr = v
		}
	}
}

func runServe(opts serveOptions) error {
	switch opts.transport {
	case transportStdio, transportStreamableHTTP:
	default:
		return fmt.Errorf("unsupported transport type: %s (supported: stdio, streamable-http)", opts.transport)
	}

	shutdownCtx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// stdout belongs to the stdio transport
	logger, err := logging.NewLogger(os.Stderr, opts.debug, opts.logFormat)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version

	provider, err := instrumentation.NewProvider(shutdownCtx, instrConfig)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
		defer cancel()
		if err := provider.Shutdown(ctx); err != nil {
			logger.Warn("instrumentation shutdown failed", logging.Err(err))
		}
	}()

	var metrics *instrumentation.Metrics
	if provider.Enabled() {
		metrics = provider.Metrics()
	}

	auth, err := opts.google.newAuthManager(metrics, logger)
	if err != nil {
		return err
	}
	if !auth.HasToken() {
		logger.Warn("no stored OAuth token, tool calls will fail until you log in",
			logging.Account(auth.Account()),
			slog.String("hint", fmt.Sprintf("workspace-tasks auth login --account %s", auth.Account())))
	}

	serverContext := server.NewServerContext(shutdownCtx, tasks.NewService(auth), auth.Account())
	if provider.Enabled() {
		serverContext.SetMetrics(metrics)
		serverContext.SetAuditLogger(instrumentation.NewAuditLogger(logger, instrConfig.AuditLogging))
	}
	defer func() {
		if err := serverContext.Shutdown(); err != nil {
			logger.Warn("server context shutdown failed", logging.Err(err))
		}
	}()

	// Note: mcp.Implementation has Title field but WithTitle() ServerOption not available in v0.43
	mcpSrv := mcpserver.NewMCPServer("workspace-tasks", version,
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithResourceCapabilities(false, false), // Subscribe and listChanged
	)

	readOnly := !opts.yolo
	if readOnly {
		logger.Info("starting server in READ-ONLY mode (use --yolo to enable write operations)")
	} else {
		logger.Info("starting server with WRITE operations enabled (--yolo flag is set)")
	}

	set := toolSet{readOnly: readOnly, hasToken: auth.HasToken}
	// HTTP clients must not be able to replace the server's token.
	if opts.transport == transportStdio {
		set.authorizer = auth
	}
	if err := registerAllTools(mcpSrv, serverContext, set); err != nil {
		return err
	}

	switch opts.transport {
	case transportStreamableHTTP:
		return runStreamableHTTPServer(mcpSrv, serverContext, auth, provider, opts, logger)
	default:
		return runStdioServer(mcpSrv)
	}
}

func runStdioServer(mcpSrv *mcpserver.MCPServer) error {
	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := mcpserver.ServeStdio(mcpSrv); err != nil {
			serverDone <- err
		}
	}()

	err := <-serverDone
	if err != nil {
		return fmt.Errorf("server stopped with error: %w", err)
	}
	return nil
}

// toolSet selects what registerAllTools adds to the server.
type toolSet struct {
	readOnly bool
	hasToken func() bool
	// authorizer enables the google_* OAuth tools when set.
	authorizer google_tools.Authorizer
}

// registerAllTools registers the tools and resources with the MCP server.
func registerAllTools(mcpSrv *mcpserver.MCPServer, sc *server.ServerContext, set toolSet) error {
	type toolRegistration struct {
		name     string
		register func() error
	}

	registrations := []toolRegistration{
		{
			name: "Tasks",
			register: func() error {
				return tasks_tools.RegisterTasksTools(mcpSrv, sc, set.readOnly)
			},
		},
		{
			name: "Tasks resources",
			register: func() error {
				return resources.RegisterTasksResources(mcpSrv, sc, set.hasToken)
			},
		},
	}
	if set.authorizer != nil {
		registrations = append(registrations, toolRegistration{
			name: "Google OAuth",
			register: func() error {
				return google_tools.RegisterGoogleTools(mcpSrv, sc, set.authorizer)
			},
		})
	}

	for _, reg := range registrations {
		if err := reg.register(); err != nil {
			return fmt.Errorf("failed to register %s: %w", reg.name, err)
		}
	}
	return nil
}

func runStreamableHTTPServer(mcpSrv *mcpserver.MCPServer, sc *server.ServerContext, auth *google.AuthManager, provider *instrumentation.Provider, opts serveOptions, logger *slog.Logger) error {
	var metricsServer *server.MetricsServer
	if opts.metricsEnabled && provider.Enabled() && provider.MetricsExporter() == instrumentation.ExporterPrometheus {
		var err error
		metricsServer, err = server.NewMetricsServer(server.MetricsServerConfig{
			Addr:                    opts.metricsAddr,
			InstrumentationProvider: provider,
		})
		if err != nil {
			return fmt.Errorf("failed to create metrics server: %w", err)
		}
		if err := metricsServer.Listen(); err != nil {
			return fmt.Errorf("metrics server failed to start: %w", err)
		}
		go func() {
			if err := metricsServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server stopped", logging.Err(err))
			}
		}()
	}

	healthChecker := server.NewHealthChecker(sc, version)
	healthChecker.SetTokenCheck(auth.HasToken)

	var httpMetrics *instrumentation.Metrics
	if provider.Enabled() {
		httpMetrics = provider.Metrics()
	}

	httpServer := server.NewHTTPServer(mcpSrv, server.HTTPServerConfig{
		Addr:    opts.httpAddr,
		Health:  healthChecker,
		Metrics: httpMetrics,
	})
	if err := httpServer.Listen(); err != nil {
		if metricsServer != nil {
			_ = metricsServer.Shutdown(context.Background())
		}
		return err
	}

	fmt.Printf("Streamable HTTP server starting on %s\n", httpServer.Addr())
	fmt.Printf("  HTTP endpoint: %s\n", server.MCPEndpointPath)
	fmt.Printf("  Health endpoints: /healthz, /readyz, /healthz/detailed\n")
	if metricsServer != nil {
		fmt.Printf("  Metrics endpoint: %s/metrics\n", metricsServer.Addr())
	}
	fmt.Printf("  Account: %s\n", auth.Account())

	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := httpServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverDone <- err
		}
	}()

	var serveErr error
	select {
	case <-sc.Context().Done():
		fmt.Println("Shutdown signal received, stopping HTTP server...")
	case serveErr = <-serverDone:
		if serveErr != nil {
			serveErr = fmt.Errorf("server stopped with error: %w", serveErr)
		}
	}

	healthChecker.SetReady(false)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
	defer cancel()

	errs := []error{serveErr}
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("error during HTTP server shutdown: %w", err))
	}
	if metricsServer != nil {
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("error during metrics server shutdown: %w", err))
		}
	}
	return errors.Join(errs...)
}
