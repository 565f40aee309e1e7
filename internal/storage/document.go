package storage

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/NewAITees/ai-process-blueprint/internal/models"
	"gopkg.in/yaml.v3"
)

// ErrMalformedMetadata reports a structurally broken metadata block: the file
// opens with a frontmatter delimiter but the enclosed YAML cannot be parsed,
// or a timestamp field is present but unparseable. Callers distinguish this
// from plain I/O failures to surface a corruption condition.
var ErrMalformedMetadata = errors.New("malformed metadata block")

const frontmatterDelimiter = "---"

// templateMeta mirrors the frontmatter block with timestamps kept as strings
// so a missing field (use the default) can be told apart from an unparseable
// one (structural error).
type templateMeta struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Username    string `yaml:"username"`
	CreatedAt   string `yaml:"created_at"`
	UpdatedAt   string `yaml:"updated_at"`
}

// EncodeTemplate serializes a template into its on-disk form: a YAML
// frontmatter block with every value double-quoted, a blank line, then the
// body content verbatim.
func EncodeTemplate(t *models.Template) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(frontmatterDelimiter + "\n")

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(metadataNode(t)); err != nil {
		return nil, fmt.Errorf("failed to encode frontmatter: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode frontmatter: %w", err)
	}

	buf.WriteString(frontmatterDelimiter + "\n\n")
	buf.WriteString(t.Content)
	return buf.Bytes(), nil
}

// metadataNode builds the frontmatter mapping explicitly so every value is
// double-quoted. Quoting keeps embedded delimiters and newlines from breaking
// the line-oriented block structure.
func metadataNode(t *models.Template) *yaml.Node {
	node := &yaml.Node{Kind: yaml.MappingNode}
	add := func(key, value string) {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: key},
			&yaml.Node{Kind: yaml.ScalarNode, Value: value, Style: yaml.DoubleQuotedStyle},
		)
	}
	add("title", t.Title)
	add("description", t.Description)
	add("username", t.Username)
	add("created_at", t.CreatedAt.Format(time.RFC3339Nano))
	add("updated_at", t.UpdatedAt.Format(time.RFC3339Nano))
	return node
}

// DecodeTemplate parses the on-disk form back into a template.
//
// A file that does not open with the frontmatter delimiter is valid: the
// whole file becomes body content with empty metadata. A file that opens the
// block but whose YAML or timestamps cannot be parsed fails with
// ErrMalformedMetadata. Missing metadata fields fall back to defaults: empty
// description, the anonymous username, and zero timestamps (the repository
// substitutes the file's mtime for those).
func DecodeTemplate(data []byte) (*models.Template, error) {
	frontmatter, body, ok := splitFrontmatter(data)
	if !ok {
		return &models.Template{
			Username: models.DefaultUsername,
			Content:  string(data),
		}, nil
	}

	var meta templateMeta
	if err := yaml.Unmarshal(frontmatter, &meta); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedMetadata, err)
	}

	createdAt, err := parseTimestamp(meta.CreatedAt, "created_at")
	if err != nil {
		return nil, err
	}
	updatedAt, err := parseTimestamp(meta.UpdatedAt, "updated_at")
	if err != nil {
		return nil, err
	}

	username := meta.Username
	if username == "" {
		username = models.DefaultUsername
	}

	return &models.Template{
		Title:       meta.Title,
		Description: meta.Description,
		Username:    username,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
		Content:     string(body),
	}, nil
}

// splitFrontmatter locates the delimiter-enclosed metadata block. It returns
// ok=false when the file has no opening delimiter or no closing delimiter
// line, in which case the caller treats the whole file as body content.
func splitFrontmatter(data []byte) (frontmatter, body []byte, ok bool) {
	open := []byte(frontmatterDelimiter + "\n")
	if !bytes.HasPrefix(data, open) {
		return nil, nil, false
	}
	rest := data[len(open):]

	// Walk line by line so the body after the closing delimiter is preserved
	// byte for byte, including further delimiter-like text.
	offset := 0
	for offset <= len(rest) {
		lineEnd := bytes.IndexByte(rest[offset:], '\n')
		var line []byte
		var next int
		if lineEnd < 0 {
			line = rest[offset:]
			next = len(rest)
		} else {
			line = rest[offset : offset+lineEnd]
			next = offset + lineEnd + 1
		}
		if string(line) == frontmatterDelimiter {
			body := rest[next:]
			// Drop the single blank line that follows the closing delimiter.
			if len(body) > 0 && body[0] == '\n' {
				body = body[1:]
			}
			return rest[:offset], body, true
		}
		if lineEnd < 0 {
			break
		}
		offset = next
	}
	return nil, nil, false
}

func parseTimestamp(value, field string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	ts, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid %s timestamp %q", ErrMalformedMetadata, field, value)
	}
	return ts, nil
}
