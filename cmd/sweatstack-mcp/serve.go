package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"k8s.io/component-base/logs"
	"k8s.io/klog/v2"
	"sigs.k8s.io/controller-runtime/pkg/healthz"

	"github.com/sweatstack/sweatstack-mcp/internal/metrics"
	"github.com/sweatstack/sweatstack-mcp/internal/server/filters"
	"github.com/sweatstack/sweatstack-mcp/internal/tracing"
	"github.com/sweatstack/sweatstack-mcp/internal/version"
)

// ServeOptions contains configuration for the HTTP server.
type ServeOptions struct {
	*CommonOptions

	// BindAddress is the host:port the server listens on.
	BindAddress string

	// Path is the prefix the MCP endpoint is mounted under.
	Path string

	// Stateless serves every request without a session.
	Stateless bool

	ShutdownTimeout time.Duration

	Tracing tracing.Options
}

// NewServeOptions creates options with default values.
func NewServeOptions() *ServeOptions {
	return &ServeOptions{
		CommonOptions:   NewCommonOptions(),
		BindAddress:     ":8000",
		Path:            "/mcp",
		ShutdownTimeout: 10 * time.Second,
		Tracing: tracing.Options{
			Insecure:    true,
			SampleRatio: 1,
			ServiceName: "sweatstack-mcp",
		},
	}
}

// AddFlags adds serve flags to the flag set.
func (o *ServeOptions) AddFlags(fs *pflag.FlagSet) {
	o.CommonOptions.AddFlags(fs)

	fs.StringVar(&o.BindAddress, "bind-address", o.BindAddress, "Address to listen on")
	fs.StringVar(&o.Path, "path", o.Path, "Path prefix of the MCP endpoint")
	fs.BoolVar(&o.Stateless, "stateless", o.Stateless,
		"Serve without MCP sessions. Every request is handled on its own.")
	fs.DurationVar(&o.ShutdownTimeout, "shutdown-timeout", o.ShutdownTimeout,
		"Time allowed for in-flight requests to finish on shutdown")
	fs.StringVar(&o.Tracing.Endpoint, "tracing-endpoint", o.Tracing.Endpoint,
		"OTLP gRPC collector address (host:port). Tracing is disabled when empty.")
	fs.BoolVar(&o.Tracing.Insecure, "tracing-insecure", o.Tracing.Insecure,
		"Connect to the tracing collector without TLS")
	fs.Float64Var(&o.Tracing.SampleRatio, "tracing-sample-ratio", o.Tracing.SampleRatio,
		"Fraction of requests traced, between 0 and 1")
}

// Validate checks the options.
func (o *ServeOptions) Validate() error {
	if !strings.HasPrefix(o.Path, "/") {
		return fmt.Errorf("--path must start with '/', got %q", o.Path)
	}
	if o.Path == "/" || o.Path == "/metrics" || o.Path == "/healthz" || o.Path == "/readyz" {
		return fmt.Errorf("--path %q collides with a built-in endpoint", o.Path)
	}
	if o.ShutdownTimeout <= 0 {
		return fmt.Errorf("--shutdown-timeout must be positive")
	}
	if o.Tracing.SampleRatio < 0 || o.Tracing.SampleRatio > 1 {
		return fmt.Errorf("--tracing-sample-ratio must be between 0 and 1, got %v", o.Tracing.SampleRatio)
	}
	return nil
}

// NewServeCommand creates the serve subcommand that starts the HTTP server.
func NewServeCommand() *cobra.Command {
	options := NewServeOptions()

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the MCP tools over streamable HTTP",
		Long: `Serve the SweatStack tools over the MCP streamable HTTP transport.

The MCP endpoint is mounted under --path (default /mcp). The same listener
serves Prometheus metrics on /metrics and health probes on /healthz and
/readyz.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := options.Complete(); err != nil {
				return err
			}
			if err := options.Validate(); err != nil {
				return err
			}
			return RunServe(cmd.Context(), options)
		},
	}

	options.AddFlags(cmd.Flags())

	return cmd
}

// RunServe serves HTTP until ctx is cancelled or the process is signalled.
func RunServe(ctx context.Context, options *ServeOptions) error {
	defer logs.FlushLogs()

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	options.Tracing.ServiceVersion = version.Version
	shutdownTracing, err := tracing.Setup(ctx, options.Tracing)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), options.ShutdownTimeout)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			klog.ErrorS(err, "Failed to flush traces")
		}
	}()

	provider, err := options.NewToolProvider()
	if err != nil {
		return err
	}
	mcpServer := provider.NewMCPServer(NewMCPServerConfig())

	server := &http.Server{
		Addr:              options.BindAddress,
		Handler:           newServeMux(mcpServer, options),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		klog.InfoS("Starting MCP HTTP server", "addr", options.BindAddress, "path", options.Path, "stateless", options.Stateless)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("HTTP server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	klog.InfoS("Shutting down MCP HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), options.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down HTTP server: %w", err)
	}
	return nil
}

// newServeMux routes the MCP endpoint, metrics and health probes.
func newServeMux(mcpServer *mcp.Server, options *ServeOptions) *http.ServeMux {
	mcpHandler := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return mcpServer
	}, &mcp.StreamableHTTPOptions{
		Stateless: options.Stateless,
	})
	traced := filters.WithRequestID(filters.WithAccessLog(otelhttp.NewHandler(mcpHandler, "mcp")))

	mux := http.NewServeMux()
	prefix := strings.TrimRight(options.Path, "/")
	mux.Handle(prefix, traced)
	mux.Handle(prefix+"/", traced)

	// Liveness probe
	mux.Handle("/healthz", http.StripPrefix("/healthz", &healthz.Handler{
		Checks: map[string]healthz.Checker{
			"ping": healthz.Ping,
		},
	}))

	// Readiness probe - the configuration was resolved and the tools registered
	mux.Handle("/readyz", http.StripPrefix("/readyz", &healthz.Handler{
		Checks: map[string]healthz.Checker{
			"ping": healthz.Ping,
			"mcp":  mcpServerChecker(mcpServer),
		},
	}))

	// Metrics endpoint for Prometheus scraping
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	return mux
}

func mcpServerChecker(server *mcp.Server) healthz.Checker {
	return func(_ *http.Request) error {
		if server == nil {
			return errors.New("MCP server not initialized")
		}
		return nil
	}
}
