package tools

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ServerConfig contains configuration for creating an MCP server.
type ServerConfig struct {
	// Name is the server name reported to clients.
	Name string

	// Version is the server version reported to clients.
	Version string

	// Instructions are sent to clients during initialization.
	Instructions string
}

// DefaultServerName is reported when ServerConfig.Name is empty.
const DefaultServerName = "SweatStack MCP Server"

const defaultInstructions = "Read-only access to SweatStack workout data. " +
	"Use list_activities or the latest_* tools to find an activity, then fetch its details, data, mean-max curve or a plot."

// NewMCPServer creates an MCP server with all SweatStack tools registered.
func (p *ToolProvider) NewMCPServer(cfg ServerConfig) *mcp.Server {
	if cfg.Name == "" {
		cfg.Name = DefaultServerName
	}
	if cfg.Version == "" {
		cfg.Version = "1.0.0"
	}
	if cfg.Instructions == "" {
		cfg.Instructions = defaultInstructions
	}

	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    cfg.Name,
			Version: cfg.Version,
		},
		&mcp.ServerOptions{
			Instructions: cfg.Instructions,
		},
	)

	p.RegisterTools(server)

	return server
}
