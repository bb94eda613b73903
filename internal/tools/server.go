// Package tools exposes the mock server registry as MCP tools.
package tools

import (
	"context"
	"errors"
	"io"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/MrSnakeDoc/mockingbird/internal/domain"
	"github.com/MrSnakeDoc/mockingbird/internal/logger"
	"github.com/MrSnakeDoc/mockingbird/internal/mockserver"
)

// ServerName is announced to MCP clients during initialization.
const ServerName = "api-mockingbird"

// Registry is the part of mockserver.Registry the tools drive.
type Registry interface {
	Start(ctx context.Context, port int) (mockserver.ServerStatus, error)
	Stop(ctx context.Context, port int) bool
	AddEndpoint(ctx context.Context, port int, ep domain.Endpoint) (bool, error)
	RemoveEndpoint(ctx context.Context, port int, method, path string) (bool, error)
	SetEndpointError(ctx context.Context, port int, method, path string, status int, message string) (bool, error)
	ToggleEndpointError(ctx context.Context, port int, method, path string, enabled bool) (bool, error)
	Status(port int) (mockserver.ServerStatus, bool)
	List() []mockserver.ServerStatus
	Location(port int) string
}

var _ Registry = (*mockserver.Registry)(nil)

// Server is the MCP front of a Registry.
type Server struct {
	registry  Registry
	logger    logger.Logger
	mcpServer *server.MCPServer
}

// NewServer registers the seven mock server tools.
func NewServer(reg Registry, log logger.Logger, version string) *Server {
	s := &Server{
		registry: reg,
		logger:   log,
		mcpServer: server.NewMCPServer(
			ServerName,
			version,
			server.WithToolCapabilities(false),
		),
	}
	s.registerTools()
	return s
}

// MCPServer returns the underlying server, mainly for in-process clients.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// Serve speaks MCP over in/out until ctx is cancelled or in reaches EOF.
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	stdio := server.NewStdioServer(s.mcpServer)
	stdio.SetErrorLogger(logger.NewStdLog(s.logger))

	s.logger.Info("MCP server listening on stdio", logger.String("name", ServerName))
	err := stdio.Listen(ctx, in, out)
	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, io.EOF) {
		return err
	}
	s.logger.Info("MCP stdio stream closed")
	return nil
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("start_mock_server",
		mcp.WithDescription("Start a new HTTP mock server on the specified port"),
		portOption("Port number of the target server"),
	), s.handleStartMockServer)

	s.mcpServer.AddTool(mcp.NewTool("stop_mock_server",
		mcp.WithDescription("Stop a running mock server on the specified port"),
		portOption("Port number of the server to stop"),
	), s.handleStopMockServer)

	s.mcpServer.AddTool(mcp.NewTool("add_endpoint",
		mcp.WithDescription("Add a new mock endpoint to an existing server"),
		portOption("Port number of the target server"),
		methodOption("HTTP method for the endpoint"),
		pathOption("URL path for the endpoint (e.g., /api/users)"),
		mcp.WithObject("response",
			mcp.Required(),
			mcp.Description("Response configuration for the endpoint"),
			mcp.Properties(map[string]any{
				"status": map[string]any{
					"type":        "number",
					"description": "HTTP status code to return",
					"minimum":     domain.MinStatus,
					"maximum":     domain.MaxStatus,
					"default":     domain.DefaultStatus,
				},
				"body": map[string]any{
					"description": "Response body (can be any JSON-serializable data)",
				},
				"headers": map[string]any{
					"type":                 "object",
					"description":          "Custom response headers",
					"additionalProperties": map[string]any{"type": "string"},
				},
			}),
		),
		mcp.WithNumber("delay",
			mcp.Description("Response delay in milliseconds (0-10000ms)"),
			mcp.Min(domain.MinDelay),
			mcp.Max(domain.MaxDelay),
		),
	), s.handleAddEndpoint)

	s.mcpServer.AddTool(mcp.NewTool("remove_endpoint",
		mcp.WithDescription("Remove a mock endpoint from an existing server"),
		portOption("Port number of the target server"),
		methodOption("HTTP method of the endpoint to remove"),
		pathOption("URL path of the endpoint to remove (e.g., /api/users)"),
	), s.handleRemoveEndpoint)

	s.mcpServer.AddTool(mcp.NewTool("list_endpoints",
		mcp.WithDescription("List all endpoints across mock servers (all servers or specific port)"),
		mcp.WithNumber("port",
			mcp.Description("Optional: specific port to check. If omitted, shows all servers"),
			mcp.Min(domain.MinPort),
			mcp.Max(domain.MaxPort),
		),
	), s.handleListEndpoints)

	s.mcpServer.AddTool(mcp.NewTool("set_endpoint_error",
		mcp.WithDescription("Set an error response for an endpoint"),
		portOption("Port number of the target server"),
		methodOption("HTTP method of the endpoint"),
		pathOption("URL path of the endpoint"),
		mcp.WithNumber("status",
			mcp.Required(),
			mcp.Description("HTTP status code for the error response"),
			mcp.Min(domain.MinErrorStatus),
			mcp.Max(domain.MaxErrorStatus),
		),
		mcp.WithString("message",
			mcp.Required(),
			mcp.Description("Error message to return"),
		),
	), s.handleSetEndpointError)

	s.mcpServer.AddTool(mcp.NewTool("toggle_endpoint_error",
		mcp.WithDescription("Enable or disable error response for an endpoint"),
		portOption("Port number of the target server"),
		methodOption("HTTP method of the endpoint"),
		pathOption("URL path of the endpoint"),
		mcp.WithBoolean("enabled",
			mcp.Required(),
			mcp.Description("Enable (true) or disable (false) error response"),
		),
	), s.handleToggleEndpointError)
}

func portOption(desc string) mcp.ToolOption {
	return mcp.WithNumber("port",
		mcp.Required(),
		mcp.Description(desc),
		mcp.Min(domain.MinPort),
		mcp.Max(domain.MaxPort),
	)
}

func methodOption(desc string) mcp.ToolOption {
	methods := make([]string, 0, len(domain.SupportedMethods))
	for _, m := range domain.SupportedMethods {
		methods = append(methods, string(m))
	}
	return mcp.WithString("method",
		mcp.Required(),
		mcp.Description(desc),
		mcp.Enum(methods...),
	)
}

func pathOption(desc string) mcp.ToolOption {
	return mcp.WithString("path",
		mcp.Required(),
		mcp.Description(desc),
		mcp.Pattern("^/"),
	)
}
