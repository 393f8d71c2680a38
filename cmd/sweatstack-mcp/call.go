package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/term"
	"k8s.io/component-base/logs"

	"github.com/sweatstack/sweatstack-mcp/pkg/mcp/tools"
)

// CallOptions contains configuration for invoking a single tool.
type CallOptions struct {
	*CommonOptions

	// Args are key=value tool arguments.
	Args []string

	// Output is the file binary results are written to. "-" is stdout.
	Output string

	// List prints the registered tools instead of calling one.
	List bool

	Out    io.Writer
	ErrOut io.Writer
}

// NewCallOptions creates options with default values.
func NewCallOptions() *CallOptions {
	return &CallOptions{
		CommonOptions: NewCommonOptions(),
		Out:           os.Stdout,
		ErrOut:        os.Stderr,
	}
}

// AddFlags adds call flags to the flag set.
func (o *CallOptions) AddFlags(fs *pflag.FlagSet) {
	o.CommonOptions.AddFlags(fs)

	fs.StringArrayVarP(&o.Args, "arg", "a", o.Args,
		"Tool argument as key=value. Values that parse as JSON numbers or booleans are sent as such. Repeatable.")
	fs.StringVarP(&o.Output, "output", "o", o.Output,
		"Write image results to this file. Use '-' to force writing to stdout.")
	fs.BoolVar(&o.List, "list", o.List, "List the available tools and exit")
}

// NewCallCommand creates the call subcommand that runs one tool and prints its result.
func NewCallCommand() *cobra.Command {
	options := NewCallOptions()

	cmd := &cobra.Command{
		Use:   "call [tool]",
		Short: "Invoke a single tool and print its result",
		Long: `Invoke one tool in-process and print the result, without an MCP client.

Text results are printed to stdout. Image results are written to --output;
they are not printed to a terminal.`,
		Example: `  # Details of the latest run
  sweatstack-mcp call get_latest_activity_details --arg sport=running

  # Rides longer than an hour in the last month
  sweatstack-mcp call list_activities -a start_time=now-30d -a 'filter=activity.duration > 3600'

  # Power plot of an activity
  sweatstack-mcp call get_activity_plot -a activity_id=abc123 -a metric=power -o power.jpg`,
		Args: func(cmd *cobra.Command, args []string) error {
			if options.List {
				return cobra.NoArgs(cmd, args)
			}
			return cobra.ExactArgs(1)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := options.Complete(); err != nil {
				return err
			}
			options.Out = cmd.OutOrStdout()
			options.ErrOut = cmd.ErrOrStderr()

			provider, err := options.NewToolProvider()
			if err != nil {
				return err
			}
			if options.List {
				return RunList(cmd.Context(), provider, options)
			}
			return RunCall(cmd.Context(), provider, args[0], options)
		},
	}

	options.AddFlags(cmd.Flags())

	return cmd
}

// connect opens an in-memory client session to a server with all tools.
func connect(ctx context.Context, provider *tools.ToolProvider) (*mcp.ClientSession, func(), error) {
	clientTransport, serverTransport := mcp.NewInMemoryTransports()

	server := provider.NewMCPServer(NewMCPServerConfig())
	serverSession, err := server.Connect(ctx, serverTransport, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to start MCP server: %w", err)
	}

	client := mcp.NewClient(&mcp.Implementation{Name: "sweatstack-mcp-call", Version: NewMCPServerConfig().Version}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	if err != nil {
		_ = serverSession.Close()
		return nil, nil, fmt.Errorf("failed to connect to MCP server: %w", err)
	}

	return session, func() {
		_ = session.Close()
		_ = serverSession.Close()
	}, nil
}

// RunList prints the name and description of every tool.
func RunList(ctx context.Context, provider *tools.ToolProvider, options *CallOptions) error {
	defer logs.FlushLogs()
	if ctx == nil {
		ctx = context.Background()
	}

	session, closeSession, err := connect(ctx, provider)
	if err != nil {
		return err
	}
	defer closeSession()

	result, err := session.ListTools(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to list tools: %w", err)
	}

	sort.Slice(result.Tools, func(i, j int) bool { return result.Tools[i].Name < result.Tools[j].Name })
	for _, tool := range result.Tools {
		fmt.Fprintf(options.Out, "%s\n    %s\n", tool.Name, tool.Description)
	}
	return nil
}

// RunCall invokes one tool and writes its content.
func RunCall(ctx context.Context, provider *tools.ToolProvider, name string, options *CallOptions) error {
	defer logs.FlushLogs()
	if ctx == nil {
		ctx = context.Background()
	}

	arguments, err := parseToolArgs(options.Args)
	if err != nil {
		return err
	}

	session, closeSession, err := connect(ctx, provider)
	if err != nil {
		return err
	}
	defer closeSession()

	result, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name:      name,
		Arguments: arguments,
	})
	if err != nil {
		return fmt.Errorf("tool %s failed: %w", name, err)
	}

	for _, content := range result.Content {
		if err := writeContent(content, options); err != nil {
			return err
		}
	}

	if result.IsError {
		return fmt.Errorf("tool %s returned an error", name)
	}
	return nil
}

func writeContent(content mcp.Content, options *CallOptions) error {
	switch c := content.(type) {
	case *mcp.TextContent:
		text := c.Text
		if !strings.HasSuffix(text, "\n") {
			text += "\n"
		}
		_, err := io.WriteString(options.Out, text)
		return err

	case *mcp.ImageContent:
		return writeBinary(c.Data, c.MIMEType, options)

	default:
		return fmt.Errorf("unsupported content type %T", content)
	}
}

// writeBinary writes image bytes to --output. Without --output they go to
// stdout unless stdout is a terminal.
func writeBinary(data []byte, mimeType string, options *CallOptions) error {
	switch options.Output {
	case "":
		if isTerminal(options.Out) {
			return fmt.Errorf("refusing to write %s to a terminal; use --output <file>", mimeType)
		}
		_, err := options.Out.Write(data)
		return err
	case "-":
		_, err := options.Out.Write(data)
		return err
	default:
		if err := os.WriteFile(options.Output, data, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", options.Output, err)
		}
		fmt.Fprintf(options.ErrOut, "Wrote %s (%d bytes) to %s\n", mimeType, len(data), options.Output)
		return nil
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// parseToolArgs converts key=value pairs into tool arguments.
func parseToolArgs(pairs []string) (map[string]any, error) {
	arguments := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid argument %q: expected key=value", pair)
		}
		if _, dup := arguments[key]; dup {
			return nil, fmt.Errorf("argument %q given more than once", key)
		}
		arguments[key] = parseArgValue(value)
	}
	return arguments, nil
}

// parseArgValue keeps numbers and booleans typed so that integer arguments
// such as limit validate against the tool schema.
func parseArgValue(value string) any {
	var decoded any
	if err := json.Unmarshal([]byte(value), &decoded); err == nil {
		switch decoded.(type) {
		case float64, bool:
			return decoded
		}
	}
	return value
}
