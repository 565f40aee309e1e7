// Package mcpserver exposes the template service to AI agents over the Model
// Context Protocol. The server speaks stdio: stdout carries protocol frames,
// so all logging must go to stderr while it runs.
package mcpserver

import (
	"context"
	"os"

	"github.com/mark3labs/mcp-go/server"

	"github.com/NewAITees/ai-process-blueprint/internal/service"
)

const serverName = "ai-process-blueprint"

// NewServer builds the MCP server with every template tool registered.
func NewServer(svc *service.Service, version string) *server.MCPServer {
	s := server.NewMCPServer(
		serverName,
		version,
		server.WithToolCapabilities(true),
	)

	h := &toolHandlers{svc: svc}
	tools := createTools()
	handlers := map[string]server.ToolHandlerFunc{
		"get_template":      h.handleGetTemplate,
		"register_template": h.handleRegisterTemplate,
		"update_template":   h.handleUpdateTemplate,
		"delete_template":   h.handleDeleteTemplate,
		"list_templates":    h.handleListTemplates,
	}
	for _, tool := range tools {
		s.AddTool(tool, handlers[tool.Name])
	}
	return s
}

// Run serves the MCP protocol on stdin/stdout until ctx is cancelled or the
// peer disconnects.
func Run(ctx context.Context, svc *service.Service, version string) error {
	s := NewServer(svc, version)
	stdioServer := server.NewStdioServer(s)

	errChan := make(chan error, 1)
	go func() {
		errChan <- stdioServer.Listen(ctx, os.Stdin, os.Stdout)
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
