package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"k8s.io/component-base/cli"
	logsapi "k8s.io/component-base/logs/api/v1"

	"github.com/sweatstack/sweatstack-mcp/internal/config"
	"github.com/sweatstack/sweatstack-mcp/internal/version"
	"github.com/sweatstack/sweatstack-mcp/pkg/mcp/tools"

	// Register JSON logging format
	_ "k8s.io/component-base/logs/json/register"
)

func main() {
	cmd := NewRootCommand()
	code := cli.Run(cmd)
	os.Exit(code)
}

// NewRootCommand creates the root command with its subcommands.
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweatstack-mcp",
		Short: "SweatStack MCP server - workout data tools for AI assistants",
		Long: `SweatStack MCP exposes read-only tools over the SweatStack API so that
language-model agents can query a user's workouts: activity details,
time-series data, mean-max curves and plots.

The API key is read from SWEATSTACK_API_KEY, either from the environment or
from a .env file in the working directory.`,
		SilenceUsage: true,
	}

	cmd.AddCommand(NewServeCommand())
	cmd.AddCommand(NewStdioCommand())
	cmd.AddCommand(NewCallCommand())
	cmd.AddCommand(NewVersionCommand())

	return cmd
}

// NewVersionCommand creates the version subcommand to display build information.
func NewVersionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Show the version, git commit, and build details.`,
		Run: func(cmd *cobra.Command, args []string) {
			info := version.Get()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "SweatStack MCP Server\n")
			fmt.Fprintf(out, "  Version:       %s\n", info.Version)
			fmt.Fprintf(out, "  Git Commit:    %s\n", info.GitCommit)
			fmt.Fprintf(out, "  Git Tree:      %s\n", info.GitTreeState)
			fmt.Fprintf(out, "  Build Date:    %s\n", info.BuildDate)
			fmt.Fprintf(out, "  Go Version:    %s\n", info.GoVersion)
			fmt.Fprintf(out, "  Go Compiler:   %s\n", info.Compiler)
			fmt.Fprintf(out, "  Platform:      %s\n", info.Platform)
		},
	}

	return cmd
}

// CommonOptions holds the settings every command that talks to the API needs.
type CommonOptions struct {
	// EnvFile is read for configuration when it exists.
	EnvFile string

	Logs *logsapi.LoggingConfiguration

	config *config.Config
}

// NewCommonOptions creates options with default values.
func NewCommonOptions() *CommonOptions {
	return &CommonOptions{
		EnvFile: ".env",
		Logs:    logsapi.NewLoggingConfiguration(),
	}
}

// AddFlags adds the shared flags to the flag set.
func (o *CommonOptions) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.EnvFile, "env-file", o.EnvFile,
		"Path to a .env file with SWEATSTACK_* variables. Ignored when it does not exist.")

	// Add logging flags - this includes the -v flag for verbosity
	logsapi.AddFlags(o.Logs, fs)
}

// Complete applies the logging configuration and resolves the process
// configuration. It fails when SWEATSTACK_API_KEY is not set.
func (o *CommonOptions) Complete() error {
	if err := logsapi.ValidateAndApply(o.Logs, nil); err != nil {
		return fmt.Errorf("invalid logging configuration: %w", err)
	}

	cfg, err := config.Load(o.EnvFile)
	if err != nil {
		return fmt.Errorf("%w\n\n%s", err, config.Usage())
	}
	o.config = cfg
	return nil
}

// NewToolProvider creates the tool provider for the completed configuration.
func (o *CommonOptions) NewToolProvider() (*tools.ToolProvider, error) {
	provider, err := tools.NewToolProvider(o.config)
	if err != nil {
		return nil, fmt.Errorf("failed to create tool provider: %w", err)
	}
	return provider, nil
}

// NewMCPServerConfig returns the server identity reported to clients.
func NewMCPServerConfig() tools.ServerConfig {
	return tools.ServerConfig{
		Name:    tools.DefaultServerName,
		Version: version.Version,
	}
}
