package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"
	"k8s.io/component-base/logs"
	"k8s.io/klog/v2"
)

// NewStdioCommand creates the stdio subcommand that serves MCP over stdin/stdout.
func NewStdioCommand() *cobra.Command {
	options := NewCommonOptions()

	cmd := &cobra.Command{
		Use:   "stdio",
		Short: "Serve the MCP tools over stdio",
		Long: `Start an MCP (Model Context Protocol) server that communicates over
stdin and stdout. Logs go to stderr.

Available tools:

  Activity Tools:
    - get_activity_details: Metadata of one activity
    - get_latest_activity_details: Metadata of the latest activity, optionally per sport
    - list_activities: Activities newest first, with an optional CEL filter

  Data Tools:
    - get_activity_data: Downsampled time series as CSV
    - get_latest_activity_data: Time series of the latest activity as CSV
    - get_activity_mean_max_values: Mean-max curve of power or speed
    - get_activity_metric_summary: Mean and max of one metric

  Plot Tools:
    - get_activity_plot: JPEG plot of one metric over time
    - get_latest_activity_plot: JPEG plot for the latest activity

Example configuration for Claude Desktop (claude_desktop_config.json):
  {
    "mcpServers": {
      "sweatstack": {
        "command": "sweatstack-mcp",
        "args": ["stdio"],
        "env": {"SWEATSTACK_API_KEY": "..."}
      }
    }
  }`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := options.Complete(); err != nil {
				return err
			}
			return RunStdio(cmd.Context(), options)
		},
	}

	options.AddFlags(cmd.Flags())

	return cmd
}

// RunStdio serves MCP over stdio until the client disconnects or the process
// is signalled.
func RunStdio(ctx context.Context, options *CommonOptions) error {
	defer logs.FlushLogs()

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	provider, err := options.NewToolProvider()
	if err != nil {
		return err
	}
	mcpServer := provider.NewMCPServer(NewMCPServerConfig())

	klog.InfoS("Starting MCP server on stdio")
	return mcpServer.Run(ctx, &mcp.StdioTransport{})
}
