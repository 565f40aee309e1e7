package models

import "time"

// Default usernames recorded on templates when the caller does not supply one.
// The agent default is applied by the MCP tool adapter; everything else falls
// back to anonymous.
const (
	DefaultUsername = "anonymous"
	AgentUsername   = "ai_assistant"
)

// Pagination bounds for list operations.
const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// Template represents a named Markdown document stored as a file with YAML
// frontmatter. The file on disk is the single source of truth; the title in
// the frontmatter is authoritative, the file name is only an access key.
type Template struct {
	// Frontmatter fields
	Title       string    `yaml:"title" json:"title"`
	Description string    `yaml:"description" json:"description"`
	Username    string    `yaml:"username" json:"username"`
	CreatedAt   time.Time `yaml:"created_at" json:"created_at"`
	UpdatedAt   time.Time `yaml:"updated_at" json:"updated_at"`

	// Content fields
	Content  string `yaml:"-" json:"content"` // The markdown content after frontmatter
	FileName string `yaml:"-" json:"-"`       // Name of the backing file in the storage directory
}

// TemplateCreate carries the caller-supplied fields for a create operation.
type TemplateCreate struct {
	Title       string `json:"title"`
	Content     string `json:"content"`
	Description string `json:"description"`
	Username    string `json:"username"`
}

// TemplateUpdate carries the optional fields for a partial update. A nil
// field keeps the stored value.
type TemplateUpdate struct {
	Content     *string `json:"content"`
	Description *string `json:"description"`
	Username    *string `json:"username"`
}

// IsEmpty reports whether the update carries no fields at all.
func (u TemplateUpdate) IsEmpty() bool {
	return u.Content == nil && u.Description == nil && u.Username == nil
}

// ListOptions control pagination and filtering of list operations.
type ListOptions struct {
	Limit    int
	Offset   int
	Username string
}

// ListResult is one page of templates plus the filtered, unpaginated total.
type ListResult struct {
	Templates []*Template `json:"templates"`
	Total     int         `json:"total"`
	Limit     int         `json:"limit"`
	Offset    int         `json:"offset"`
}
