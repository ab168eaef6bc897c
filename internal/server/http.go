package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/teemow/workspace-tasks/internal/instrumentation"
)

// MCPEndpointPath is where the streamable HTTP transport is mounted.
const MCPEndpointPath = "/mcp"

// HTTPServerConfig configures the streamable HTTP transport.
type HTTPServerConfig struct {
	Addr    string
	Health  *HealthChecker
	Metrics *instrumentation.Metrics
}

// HTTPServer exposes an MCP server over streamable HTTP next to the health endpoints.
type HTTPServer struct {
	addr    string
	handler http.Handler

	mu         sync.Mutex
	httpServer *http.Server
	listener   net.Listener
}

// NewHTTPServer mounts mcpServer at /mcp. Requests are counted in config.Metrics
// when it is set.
func NewHTTPServer(mcpServer *mcpserver.MCPServer, config HTTPServerConfig) *HTTPServer {
	mux := http.NewServeMux()

	streamable := mcpserver.NewStreamableHTTPServer(mcpServer,
		mcpserver.WithEndpointPath(MCPEndpointPath),
	)
	// Server spans continue a trace started by the MCP client.
	mux.Handle(MCPEndpointPath, otelhttp.NewHandler(streamable, "mcp"))

	if config.Health != nil {
		config.Health.RegisterHealthEndpoints(mux)
	}

	return &HTTPServer{
		addr:    config.Addr,
		handler: MetricsMiddleware(config.Metrics, mux),
	}
}

// Handler returns the root handler, including the metrics middleware.
func (s *HTTPServer) Handler() http.Handler {
	return s.handler
}

// Listen binds the address. Start calls it when it has not been called.
func (s *HTTPServer) Listen() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener != nil {
		return nil
	}
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}
	s.listener = ln
	return nil
}

// Start serves until Shutdown and returns http.ErrServerClosed afterwards.
func (s *HTTPServer) Start() error {
	if err := s.Listen(); err != nil {
		return err
	}

	s.mu.Lock()
	// No WriteTimeout: streamable HTTP keeps SSE responses open.
	s.httpServer = &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: DefaultReadHeaderTimeout,
		IdleTimeout:       DefaultIdleTimeout,
	}
	srv, ln := s.httpServer, s.listener
	s.mu.Unlock()

	slog.Info("starting MCP HTTP server", "addr", ln.Addr().String(), "endpoint", MCPEndpointPath)
	return srv.Serve(ln)
}

// Shutdown gracefully stops the server. It is safe to call before Start.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv, ln := s.httpServer, s.listener
	s.mu.Unlock()

	if srv != nil {
		return srv.Shutdown(ctx)
	}
	if ln != nil {
		return ln.Close()
	}
	return nil
}

// Addr returns the bound address once listening, else the configured one.
func (s *HTTPServer) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}

// knownPaths bounds the path label of http_requests_total.
var knownPaths = map[string]bool{
	MCPEndpointPath:     true,
	"/healthz":          true,
	"/readyz":           true,
	"/healthz/detailed": true,
}

func normalizePath(path string) string {
	if knownPaths[path] {
		return path
	}
	return "other"
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Flush keeps SSE streaming working through the recorder.
func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// MetricsMiddleware records method, normalized path, status and duration of
// each request. A nil metrics returns next unchanged.
func MetricsMiddleware(metrics *instrumentation.Metrics, next http.Handler) http.Handler {
	if metrics == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		metrics.RecordHTTPRequest(r.Context(), r.Method, normalizePath(r.URL.Path), rec.status, time.Since(start))
	})
}
