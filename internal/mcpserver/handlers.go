package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	apperrors "github.com/NewAITees/ai-process-blueprint/internal/errors"
	"github.com/NewAITees/ai-process-blueprint/internal/models"
	"github.com/NewAITees/ai-process-blueprint/internal/service"
)

// toolHandlers binds the MCP tool callbacks to the template service.
type toolHandlers struct {
	svc *service.Service
}

// toolError converts a service failure into an MCP error result. Tool failures
// are results, not protocol errors, so the second return value is always nil.
func toolError(err error) *mcp.CallToolResult {
	return mcp.NewToolResultError(apperrors.GetAppError(err).Message)
}

// toolJSON marshals v as an indented JSON text result.
func toolJSON(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (h *toolHandlers) handleGetTemplate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := request.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("title parameter required: %v", err)), nil
	}

	template, err := h.svc.GetTemplate(ctx, title)
	if err != nil {
		return toolError(err), nil
	}
	return toolJSON(template)
}

func (h *toolHandlers) handleRegisterTemplate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := request.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("title parameter required: %v", err)), nil
	}
	content, err := request.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("content parameter required: %v", err)), nil
	}

	created, err := h.svc.CreateTemplate(ctx, models.TemplateCreate{
		Title:       title,
		Content:     content,
		Description: request.GetString("description", ""),
		Username:    request.GetString("username", models.AgentUsername),
	})
	if err != nil {
		return toolError(err), nil
	}
	return toolJSON(created)
}

func (h *toolHandlers) handleUpdateTemplate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := request.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("title parameter required: %v", err)), nil
	}

	// Presence matters: an omitted field keeps the stored value, an empty
	// string overwrites it.
	args := request.GetArguments()
	var update models.TemplateUpdate
	if _, ok := args["content"]; ok {
		v := request.GetString("content", "")
		update.Content = &v
	}
	if _, ok := args["description"]; ok {
		v := request.GetString("description", "")
		update.Description = &v
	}
	if _, ok := args["username"]; ok {
		v := request.GetString("username", "")
		update.Username = &v
	}

	updated, err := h.svc.UpdateTemplate(ctx, title, update)
	if err != nil {
		return toolError(err), nil
	}
	return toolJSON(updated)
}

func (h *toolHandlers) handleDeleteTemplate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := request.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("title parameter required: %v", err)), nil
	}

	if err := h.svc.DeleteTemplate(ctx, title); err != nil {
		return toolError(err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Template '%s' deleted", title)), nil
}

func (h *toolHandlers) handleListTemplates(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	opts := models.ListOptions{
		Limit:    request.GetInt("limit", models.DefaultListLimit),
		Offset:   request.GetInt("offset", 0),
		Username: request.GetString("username", ""),
	}
	if opts.Limit < 0 || opts.Offset < 0 {
		return mcp.NewToolResultError("limit and offset must be non-negative"), nil
	}

	result, err := h.svc.ListTemplates(ctx, opts)
	if err != nil {
		return toolError(err), nil
	}
	return toolJSON(result)
}
