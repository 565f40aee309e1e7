package mcpserver

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// createTools returns every MCP tool definition exposed by the server.
//
// Tools:
//   - get_template: fetch a template by title
//   - register_template: create a new template
//   - update_template: partially update an existing template
//   - delete_template: delete a template
//   - list_templates: list templates with pagination and a username filter
func createTools() []mcp.Tool {
	return []mcp.Tool{
		mcp.NewTool("get_template",
			mcp.WithDescription("Get a workflow template by its title"),
			mcp.WithString("title",
				mcp.Required(),
				mcp.Description("Title of the template to fetch"),
			),
		),
		mcp.NewTool("register_template",
			mcp.WithDescription("Register a new workflow template"),
			mcp.WithString("title",
				mcp.Required(),
				mcp.Description("Title of the template (also determines the file name)"),
			),
			mcp.WithString("content",
				mcp.Required(),
				mcp.Description("Markdown content of the template"),
			),
			mcp.WithString("description",
				mcp.Description("Short description of what the template is for"),
			),
			mcp.WithString("username",
				mcp.Description("Author name recorded on the template (default: ai_assistant)"),
				mcp.DefaultString("ai_assistant"),
			),
		),
		mcp.NewTool("update_template",
			mcp.WithDescription("Update fields of an existing template; omitted fields are kept"),
			mcp.WithString("title",
				mcp.Required(),
				mcp.Description("Title of the template to update"),
			),
			mcp.WithString("content",
				mcp.Description("New markdown content"),
			),
			mcp.WithString("description",
				mcp.Description("New description"),
			),
			mcp.WithString("username",
				mcp.Description("New author name"),
			),
		),
		mcp.NewTool("delete_template",
			mcp.WithDescription("Delete a template by its title"),
			mcp.WithString("title",
				mcp.Required(),
				mcp.Description("Title of the template to delete"),
			),
		),
		mcp.NewTool("list_templates",
			mcp.WithDescription("List stored templates, most recently updated first"),
			mcp.WithNumber("limit",
				mcp.Description("Maximum number of templates to return (default: 20, max: 100)"),
				mcp.DefaultNumber(20),
			),
			mcp.WithNumber("offset",
				mcp.Description("Number of templates to skip (default: 0)"),
				mcp.DefaultNumber(0),
			),
			mcp.WithString("username",
				mcp.Description("Only return templates registered by this username"),
			),
		),
	}
}
