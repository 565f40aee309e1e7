package storage

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/NewAITees/ai-process-blueprint/internal/models"
)

func testTemplate() *models.Template {
	return &models.Template{
		Title:       "Sprint Retro",
		Description: "Retrospective meeting guide",
		Username:    "alice",
		CreatedAt:   time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
		UpdatedAt:   time.Date(2026, 3, 15, 17, 45, 12, 345000000, time.UTC),
		Content:     "# Sprint Retro\n\n1. What went well\n2. What to improve\n",
	}
}

func TestEncodeTemplateFormat(t *testing.T) {
	data, err := EncodeTemplate(testTemplate())
	if err != nil {
		t.Fatalf("EncodeTemplate failed: %v", err)
	}
	text := string(data)

	if !strings.HasPrefix(text, "---\n") {
		t.Errorf("encoded file does not open with delimiter:\n%s", text)
	}
	for _, want := range []string{
		`title: "Sprint Retro"`,
		`description: "Retrospective meeting guide"`,
		`username: "alice"`,
		`created_at: "2026-03-14T09:30:00Z"`,
		`updated_at: "2026-03-15T17:45:12.345Z"`,
	} {
		if !strings.Contains(text, want+"\n") {
			t.Errorf("encoded file missing line %q:\n%s", want, text)
		}
	}
	if !strings.Contains(text, "---\n\n# Sprint Retro\n") {
		t.Errorf("body not separated from closing delimiter by a blank line:\n%s", text)
	}
	if !strings.HasSuffix(text, "2. What to improve\n") {
		t.Errorf("body not preserved verbatim at end of file:\n%s", text)
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	original := testTemplate()
	data, err := EncodeTemplate(original)
	if err != nil {
		t.Fatalf("EncodeTemplate failed: %v", err)
	}

	decoded, err := DecodeTemplate(data)
	if err != nil {
		t.Fatalf("DecodeTemplate failed: %v", err)
	}

	if decoded.Title != original.Title {
		t.Errorf("title = %q, want %q", decoded.Title, original.Title)
	}
	if decoded.Description != original.Description {
		t.Errorf("description = %q, want %q", decoded.Description, original.Description)
	}
	if decoded.Username != original.Username {
		t.Errorf("username = %q, want %q", decoded.Username, original.Username)
	}
	if !decoded.CreatedAt.Equal(original.CreatedAt) {
		t.Errorf("created_at = %v, want %v", decoded.CreatedAt, original.CreatedAt)
	}
	if !decoded.UpdatedAt.Equal(original.UpdatedAt) {
		t.Errorf("updated_at = %v, want %v", decoded.UpdatedAt, original.UpdatedAt)
	}
	if decoded.Content != original.Content {
		t.Errorf("content = %q, want %q", decoded.Content, original.Content)
	}
}

func TestRoundTripBodyWithDelimiterLines(t *testing.T) {
	original := testTemplate()
	original.Content = "Intro\n\n---\n\nA thematic break above, not a frontmatter close.\n---\n"

	data, err := EncodeTemplate(original)
	if err != nil {
		t.Fatalf("EncodeTemplate failed: %v", err)
	}
	decoded, err := DecodeTemplate(data)
	if err != nil {
		t.Fatalf("DecodeTemplate failed: %v", err)
	}
	if decoded.Content != original.Content {
		t.Errorf("content with delimiter lines mangled:\ngot  %q\nwant %q", decoded.Content, original.Content)
	}
}

func TestRoundTripSpecialCharactersInMetadata(t *testing.T) {
	original := testTemplate()
	original.Title = `Deploy: "production" --- now`
	original.Description = "Line one\nline two"

	data, err := EncodeTemplate(original)
	if err != nil {
		t.Fatalf("EncodeTemplate failed: %v", err)
	}
	decoded, err := DecodeTemplate(data)
	if err != nil {
		t.Fatalf("DecodeTemplate failed: %v", err)
	}
	if decoded.Title != original.Title {
		t.Errorf("title = %q, want %q", decoded.Title, original.Title)
	}
	if decoded.Description != original.Description {
		t.Errorf("description = %q, want %q", decoded.Description, original.Description)
	}
}

func TestDecodeTemplateNoFrontmatter(t *testing.T) {
	decoded, err := DecodeTemplate([]byte("# Just Markdown\n\nNo metadata here.\n"))
	if err != nil {
		t.Fatalf("DecodeTemplate failed: %v", err)
	}
	if decoded.Content != "# Just Markdown\n\nNo metadata here.\n" {
		t.Errorf("content = %q", decoded.Content)
	}
	if decoded.Title != "" {
		t.Errorf("title = %q, want empty", decoded.Title)
	}
	if decoded.Username != models.DefaultUsername {
		t.Errorf("username = %q, want %q", decoded.Username, models.DefaultUsername)
	}
	if !decoded.CreatedAt.IsZero() || !decoded.UpdatedAt.IsZero() {
		t.Errorf("timestamps should be zero, got %v and %v", decoded.CreatedAt, decoded.UpdatedAt)
	}
}

func TestDecodeTemplateUnclosedFrontmatter(t *testing.T) {
	raw := "---\ntitle: \"Dangling\"\nno closing delimiter\n"
	decoded, err := DecodeTemplate([]byte(raw))
	if err != nil {
		t.Fatalf("DecodeTemplate failed: %v", err)
	}
	// Without a closing delimiter the whole file is body content.
	if decoded.Content != raw {
		t.Errorf("content = %q, want whole file", decoded.Content)
	}
	if decoded.Title != "" {
		t.Errorf("title = %q, want empty", decoded.Title)
	}
}

func TestDecodeTemplateMissingFields(t *testing.T) {
	raw := "---\ntitle: \"Sparse\"\n---\n\nBody only.\n"
	decoded, err := DecodeTemplate([]byte(raw))
	if err != nil {
		t.Fatalf("DecodeTemplate failed: %v", err)
	}
	if decoded.Title != "Sparse" {
		t.Errorf("title = %q, want %q", decoded.Title, "Sparse")
	}
	if decoded.Description != "" {
		t.Errorf("description = %q, want empty", decoded.Description)
	}
	if decoded.Username != models.DefaultUsername {
		t.Errorf("username = %q, want %q", decoded.Username, models.DefaultUsername)
	}
	if !decoded.CreatedAt.IsZero() {
		t.Errorf("created_at = %v, want zero", decoded.CreatedAt)
	}
	if decoded.Content != "Body only.\n" {
		t.Errorf("content = %q", decoded.Content)
	}
}

func TestDecodeTemplateMalformedYAML(t *testing.T) {
	raw := "---\ntitle: \"Broken\nusername: [unterminated\n---\n\nBody\n"
	_, err := DecodeTemplate([]byte(raw))
	if err == nil {
		t.Fatal("expected error for malformed YAML")
	}
	if !errors.Is(err, ErrMalformedMetadata) {
		t.Errorf("error = %v, want ErrMalformedMetadata", err)
	}
}

func TestDecodeTemplateInvalidTimestamp(t *testing.T) {
	raw := "---\ntitle: \"Bad Time\"\ncreated_at: \"yesterday\"\n---\n\nBody\n"
	_, err := DecodeTemplate([]byte(raw))
	if err == nil {
		t.Fatal("expected error for invalid timestamp")
	}
	if !errors.Is(err, ErrMalformedMetadata) {
		t.Errorf("error = %v, want ErrMalformedMetadata", err)
	}
}

func TestDecodeTemplateEmptyBody(t *testing.T) {
	original := testTemplate()
	original.Content = ""
	data, err := EncodeTemplate(original)
	if err != nil {
		t.Fatalf("EncodeTemplate failed: %v", err)
	}
	decoded, err := DecodeTemplate(data)
	if err != nil {
		t.Fatalf("DecodeTemplate failed: %v", err)
	}
	if decoded.Content != "" {
		t.Errorf("content = %q, want empty", decoded.Content)
	}
}
