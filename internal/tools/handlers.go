package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/MrSnakeDoc/mockingbird/internal/domain"
	"github.com/MrSnakeDoc/mockingbird/internal/formatting"
	"github.com/MrSnakeDoc/mockingbird/internal/logger"
	"github.com/MrSnakeDoc/mockingbird/internal/mockserver"
)

func (s *Server) failure(op string, err error) *mcp.CallToolResult {
	s.logger.Warn("tool call failed", logger.String("operation", op), logger.Error(err))
	return mcp.NewToolResultError(fmt.Sprintf("Failed to %s: %v", op, err))
}

func (s *Server) handleStartMockServer(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	port, err := requireInt(args, "port")
	if err == nil {
		err = domain.ValidatePort(port)
	}
	if err != nil {
		return s.failure("start mock server", err), nil
	}

	st, err := s.registry.Start(ctx, port)
	if err != nil {
		return s.failure("start mock server", err), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf(
		"Mock server started successfully on port %d\nCORS: enabled\nServer URL: %s\nEndpoints restored: %d",
		port, st.URL, len(st.Endpoints),
	)), nil
}

func (s *Server) handleStopMockServer(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	port, err := requireInt(args, "port")
	if err == nil {
		err = domain.ValidatePort(port)
	}
	if err != nil {
		return s.failure("stop mock server", err), nil
	}

	if !s.registry.Stop(ctx, port) {
		return mcp.NewToolResultText(fmt.Sprintf("No running server found on port %d", port)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Mock server on port %d stopped successfully", port)), nil
}

func (s *Server) handleAddEndpoint(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	port, ep, err := endpointArgs(request.GetArguments())
	if err != nil {
		return s.failure("add endpoint", err), nil
	}

	ok, err := s.registry.AddEndpoint(ctx, port, ep)
	if err != nil {
		return s.failure("add endpoint", err), nil
	}
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to add endpoint: No running server found on port %d", port)), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Endpoint added successfully:\n%s %s → %d", ep.Method, ep.Path, ep.Response.Status)
	if ep.Delay > 0 {
		fmt.Fprintf(&b, "\nDelay: %dms", ep.Delay)
	}
	fmt.Fprintf(&b, "\nServer: %s%s\n", mockserver.LocalURL(port), ep.Path)
	if loc := s.registry.Location(port); loc != "" {
		fmt.Fprintf(&b, "\nConfiguration auto-saved to %s", loc)
		b.WriteString("\nYou can manually edit this file to modify endpoints or use set_endpoint_error tool for error responses")
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (s *Server) handleRemoveEndpoint(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	port, method, path, err := routeArgs(request.GetArguments())
	if err != nil {
		return s.failure("remove endpoint", err), nil
	}

	ok, err := s.registry.RemoveEndpoint(ctx, port, string(method), path)
	if err != nil {
		return s.failure("remove endpoint", err), nil
	}
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf(
			"Failed to remove endpoint: Server not found on port %d or endpoint doesn't exist", port)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf(
		"Endpoint removed successfully:\n%s %s\nServer: %s", method, path, mockserver.LocalURL(port))), nil
}

func (s *Server) handleListEndpoints(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	port, given, err := intArg(request.GetArguments(), "port")
	if err == nil && given {
		err = domain.ValidatePort(port)
	}
	if err != nil {
		return s.failure("list endpoints", err), nil
	}

	if given {
		st, ok := s.registry.Status(port)
		if !ok {
			return mcp.NewToolResultText(fmt.Sprintf("No server found on port %d", port)), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf(
			"Server Status - Port %d\nStatus: %s\nURL: %s\nEndpoints (%d):\n%s",
			st.Port, stateLabel(st), st.URL, len(st.Endpoints), formatting.EndpointTable(st.Endpoints),
		)), nil
	}

	all := s.registry.List()
	if len(all) == 0 {
		return mcp.NewToolResultText("No mock servers running"), nil
	}

	rows := make([]formatting.ServerRow, 0, len(all))
	for _, st := range all {
		rows = append(rows, formatting.ServerRow{
			Port:      st.Port,
			State:     stateLabel(st),
			URL:       st.URL,
			Endpoints: len(st.Endpoints),
		})
	}

	var b strings.Builder
	b.WriteString("Mock Servers:\n")
	b.WriteString(formatting.ServerTable(rows))
	for _, st := range all {
		fmt.Fprintf(&b, "\n\nPort %d: %s\n  URL: %s\n  Endpoints (%d):\n%s",
			st.Port, stateLabel(st), st.URL, len(st.Endpoints), formatting.EndpointTable(st.Endpoints))
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (s *Server) handleSetEndpointError(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	port, method, path, err := routeArgs(args)
	if err != nil {
		return s.failure("set error", err), nil
	}
	status, err := requireInt(args, "status")
	if err == nil {
		err = domain.ValidateErrorStatus(status)
	}
	if err != nil {
		return s.failure("set error", err), nil
	}
	message, err := requireString(args, "message")
	if err != nil {
		return s.failure("set error", err), nil
	}

	ok, err := s.registry.SetEndpointError(ctx, port, string(method), path, status, message)
	if err != nil {
		return s.failure("set error", err), nil
	}
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf(
			"Failed to set error: Server not found on port %d or endpoint doesn't exist", port)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf(
		"Error response set for %s %s:\nStatus: %d\nMessage: %s\n\nError is now ENABLED. Use toggle_endpoint_error to disable.",
		method, path, status, message)), nil
}

func (s *Server) handleToggleEndpointError(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	port, method, path, err := routeArgs(args)
	if err != nil {
		return s.failure("toggle error", err), nil
	}
	enabled, err := requireBool(args, "enabled")
	if err != nil {
		return s.failure("toggle error", err), nil
	}

	ok, err := s.registry.ToggleEndpointError(ctx, port, string(method), path, enabled)
	if err != nil {
		return s.failure("toggle error", err), nil
	}
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf(
			"Failed to toggle error: Server not found on port %d, endpoint doesn't exist, or no error response configured", port)), nil
	}

	state := "DISABLED"
	if enabled {
		state = "ENABLED"
	}
	return mcp.NewToolResultText(fmt.Sprintf("Error response %s for %s %s", state, method, path)), nil
}

func stateLabel(st mockserver.ServerStatus) string {
	if st.Running {
		return "Running"
	}
	return "Stopped"
}
