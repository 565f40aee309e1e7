// Package cli provides headless command-line access to the template service
// for scripting and quick inspection without starting a server.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/NewAITees/ai-process-blueprint/internal/clipboard"
	apperrors "github.com/NewAITees/ai-process-blueprint/internal/errors"
	"github.com/NewAITees/ai-process-blueprint/internal/models"
	"github.com/NewAITees/ai-process-blueprint/internal/service"
)

var headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))

// CLI provides headless command-line interface functionality
type CLI struct {
	service      *service.Service
	errorHandler *apperrors.CLIErrorHandler
	stdout       io.Writer
	stdin        io.Reader
}

// NewCLI creates a new CLI instance
func NewCLI(svc *service.Service, verbose bool) *CLI {
	return &CLI{
		service:      svc,
		errorHandler: apperrors.NewCLIErrorHandler(verbose),
		stdout:       os.Stdout,
		stdin:        os.Stdin,
	}
}

// ExecuteCommand processes a CLI command and returns the result
func (c *CLI) ExecuteCommand(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return c.printUsage()
	}

	command := args[0]
	commandArgs := args[1:]

	var err error
	switch command {
	case "list", "ls":
		err = c.listTemplates(ctx, commandArgs)
	case "search":
		err = c.searchTemplates(ctx, commandArgs)
	case "get", "show":
		err = c.showTemplate(ctx, commandArgs)
	case "create", "new":
		err = c.createTemplate(ctx, commandArgs)
	case "edit":
		err = c.editTemplate(ctx, commandArgs)
	case "delete", "rm":
		err = c.deleteTemplate(ctx, commandArgs)
	case "copy":
		err = c.copyTemplate(ctx, commandArgs)
	case "help":
		return c.printUsage()
	default:
		return fmt.Errorf("unknown command: %s. Use 'help' for usage information", command)
	}

	if err != nil {
		return c.errorHandler.HandleError(err)
	}
	return nil
}

// listTemplates lists stored templates
func (c *CLI) listTemplates(ctx context.Context, args []string) error {
	var format, username string
	limit := models.DefaultListLimit
	offset := 0

	// Parse flags
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--format", "-f":
			if i+1 < len(args) {
				format = args[i+1]
				i++
			}
		case "--username", "-u":
			if i+1 < len(args) {
				username = args[i+1]
				i++
			}
		case "--limit", "-n":
			if i+1 < len(args) {
				n, err := strconv.Atoi(args[i+1])
				if err != nil {
					return fmt.Errorf("invalid limit: %s", args[i+1])
				}
				limit = n
				i++
			}
		case "--offset":
			if i+1 < len(args) {
				n, err := strconv.Atoi(args[i+1])
				if err != nil {
					return fmt.Errorf("invalid offset: %s", args[i+1])
				}
				offset = n
				i++
			}
		}
	}

	result, err := c.service.ListTemplates(ctx, models.ListOptions{
		Limit:    limit,
		Offset:   offset,
		Username: username,
	})
	if err != nil {
		return err
	}

	if err := c.formatOutput(result.Templates, format); err != nil {
		return err
	}
	if format == "" || format == "table" {
		fmt.Fprintf(c.stdout, "\nShowing %d of %d template(s)\n", len(result.Templates), result.Total)
	}
	return nil
}

// searchTemplates fuzzy-searches templates
func (c *CLI) searchTemplates(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("search requires a query")
	}

	var format string
	var queryParts []string
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--format", "-f":
			if i+1 < len(args) {
				format = args[i+1]
				i++
			}
		default:
			queryParts = append(queryParts, args[i])
		}
	}

	templates, err := c.service.SearchTemplates(ctx, strings.Join(queryParts, " "))
	if err != nil {
		return err
	}
	return c.formatOutput(templates, format)
}

// showTemplate displays a specific template
func (c *CLI) showTemplate(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("show requires a template title")
	}

	title := args[0]
	var format string
	var render bool

	for i := 1; i < len(args); i++ {
		switch args[i] {
		case "--format", "-f":
			if i+1 < len(args) {
				format = args[i+1]
				i++
			}
		case "--render", "-r":
			render = true
		}
	}

	template, err := c.service.GetTemplate(ctx, title)
	if err != nil {
		return err
	}

	if render {
		return c.renderMarkdown(template)
	}
	return c.formatSingleTemplate(template, format)
}

// createTemplate registers a new template. Content comes from --content,
// --file, or stdin, in that order of precedence.
func (c *CLI) createTemplate(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("create requires a template title")
	}

	in := models.TemplateCreate{Title: args[0]}
	var contentSet bool

	for i := 1; i < len(args); i++ {
		switch args[i] {
		case "--content":
			if i+1 < len(args) {
				in.Content = args[i+1]
				contentSet = true
				i++
			}
		case "--file":
			if i+1 < len(args) {
				data, err := os.ReadFile(args[i+1])
				if err != nil {
					return fmt.Errorf("failed to read content file: %w", err)
				}
				in.Content = string(data)
				contentSet = true
				i++
			}
		case "--description", "-d":
			if i+1 < len(args) {
				in.Description = args[i+1]
				i++
			}
		case "--username", "-u":
			if i+1 < len(args) {
				in.Username = args[i+1]
				i++
			}
		}
	}

	if !contentSet {
		data, err := io.ReadAll(c.stdin)
		if err != nil {
			return fmt.Errorf("failed to read content from stdin: %w", err)
		}
		in.Content = string(data)
	}

	created, err := c.service.CreateTemplate(ctx, in)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.stdout, "Created template '%s'\n", created.Title)
	return nil
}

// editTemplate updates fields of an existing template
func (c *CLI) editTemplate(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("edit requires a template title")
	}

	title := args[0]
	var update models.TemplateUpdate

	for i := 1; i < len(args); i++ {
		switch args[i] {
		case "--content":
			if i+1 < len(args) {
				update.Content = &args[i+1]
				i++
			}
		case "--file":
			if i+1 < len(args) {
				data, err := os.ReadFile(args[i+1])
				if err != nil {
					return fmt.Errorf("failed to read content file: %w", err)
				}
				content := string(data)
				update.Content = &content
				i++
			}
		case "--description", "-d":
			if i+1 < len(args) {
				update.Description = &args[i+1]
				i++
			}
		case "--username", "-u":
			if i+1 < len(args) {
				update.Username = &args[i+1]
				i++
			}
		}
	}

	updated, err := c.service.UpdateTemplate(ctx, title, update)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.stdout, "Updated template '%s'\n", updated.Title)
	return nil
}

// deleteTemplate removes a template
func (c *CLI) deleteTemplate(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("delete requires a template title")
	}

	title := args[0]
	if err := c.service.DeleteTemplate(ctx, title); err != nil {
		return err
	}
	fmt.Fprintf(c.stdout, "Deleted template '%s'\n", title)
	return nil
}

// copyTemplate puts a template's content on the system clipboard
func (c *CLI) copyTemplate(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("copy requires a template title")
	}

	title := args[0]
	template, err := c.service.GetTemplate(ctx, title)
	if err != nil {
		return err
	}
	if err := clipboard.Copy(template.Content); err != nil {
		return fmt.Errorf("failed to copy to clipboard: %w", err)
	}
	fmt.Fprintf(c.stdout, "Copied '%s' to clipboard\n", template.Title)
	return nil
}

// formatOutput writes a template list in the requested format
func (c *CLI) formatOutput(templates []*models.Template, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(c.stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(templates)
	case "titles":
		for _, t := range templates {
			fmt.Fprintln(c.stdout, t.Title)
		}
	default:
		fmt.Fprintln(c.stdout, headerStyle.Render(fmt.Sprintf("%-30s %-15s %s", "Title", "Username", "Updated")))
		fmt.Fprintln(c.stdout, strings.Repeat("-", 60))
		for _, t := range templates {
			title := t.Title
			if len(title) > 30 {
				title = title[:27] + "..."
			}
			fmt.Fprintf(c.stdout, "%-30s %-15s %s\n",
				title, t.Username, t.UpdatedAt.Format("2006-01-02 15:04"))
		}
	}
	return nil
}

// formatSingleTemplate writes one template in the requested format
func (c *CLI) formatSingleTemplate(template *models.Template, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(c.stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(template)
	case "content":
		fmt.Fprint(c.stdout, template.Content)
	default:
		fmt.Fprintf(c.stdout, "Title: %s\n", template.Title)
		if template.Description != "" {
			fmt.Fprintf(c.stdout, "Description: %s\n", template.Description)
		}
		fmt.Fprintf(c.stdout, "Username: %s\n", template.Username)
		fmt.Fprintf(c.stdout, "Created: %s\n", template.CreatedAt.Format("2006-01-02 15:04"))
		fmt.Fprintf(c.stdout, "Updated: %s\n", template.UpdatedAt.Format("2006-01-02 15:04"))
		fmt.Fprintf(c.stdout, "\n%s\n", template.Content)
	}
	return nil
}

// renderMarkdown pretty-prints the template body for the terminal
func (c *CLI) renderMarkdown(template *models.Template) error {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return fmt.Errorf("failed to create renderer: %w", err)
	}
	out, err := r.Render(template.Content)
	if err != nil {
		return fmt.Errorf("failed to render markdown: %w", err)
	}
	fmt.Fprintln(c.stdout, headerStyle.Render(template.Title))
	fmt.Fprint(c.stdout, out)
	return nil
}

func (c *CLI) printUsage() error {
	fmt.Fprint(c.stdout, `Usage: ai-process-blueprint <command> [arguments]

Commands:
  serve                      Start the HTTP API server
  mcp                        Start the MCP server on stdin/stdout
  list [flags]               List templates
  search <query>             Fuzzy-search templates
  show <title> [flags]       Display a template
  create <title> [flags]     Register a new template (content from stdin unless --content/--file)
  edit <title> [flags]       Update fields of a template
  delete <title>             Delete a template
  copy <title>               Copy a template's content to the clipboard
  browse                     Open the interactive template browser
  version                    Print the version
  help                       Show this message

Flags:
  --format, -f <fmt>         Output format: table (default), json, titles, content
  --username, -u <name>      Filter by or set the author name
  --limit, -n <n>            Page size for list (default 20, max 100)
  --offset <n>               Page offset for list
  --description, -d <text>   Template description for create/edit
  --content <text>           Inline template content for create/edit
  --file <path>              Read template content from a file
  --render, -r               Render markdown when showing a template
`)
	return nil
}
