// Package service wraps the repository with business rules: input
// validation, default injection, and the typed error taxonomy consumed by
// the HTTP and MCP adapters.
package service

import (
	"context"
	"fmt"
	"unicode/utf8"

	apperrors "github.com/NewAITees/ai-process-blueprint/internal/errors"
	"github.com/NewAITees/ai-process-blueprint/internal/models"
	"github.com/NewAITees/ai-process-blueprint/internal/storage"
	"github.com/sahilm/fuzzy"
)

// Field limits enforced before any filesystem access.
const (
	MaxTitleLength       = 100
	MaxContentBytes      = 100 * 1024
	MaxDescriptionLength = 500
	MaxUsernameLength    = 50
)

// Service provides business logic for template management
type Service struct {
	repo *storage.Repository
}

// New creates a new service instance backed by repo.
func New(repo *storage.Repository) *Service {
	return &Service{repo: repo}
}

// CreateTemplate validates the candidate, applies defaults, and stores it.
// The username defaults to anonymous when empty; adapters that act on behalf
// of an agent pass their own default explicitly.
func (s *Service) CreateTemplate(ctx context.Context, in models.TemplateCreate) (*models.Template, error) {
	if err := validateTitle(in.Title); err != nil {
		return nil, err
	}
	if err := validateContent(in.Content); err != nil {
		return nil, err
	}
	if err := validateDescription(in.Description); err != nil {
		return nil, err
	}
	if err := validateUsername(in.Username); err != nil {
		return nil, err
	}

	username := in.Username
	if username == "" {
		username = models.DefaultUsername
	}

	return s.repo.Create(ctx, &models.Template{
		Title:       in.Title,
		Content:     in.Content,
		Description: in.Description,
		Username:    username,
	})
}

// GetTemplate returns a template by its title.
func (s *Service) GetTemplate(ctx context.Context, title string) (*models.Template, error) {
	if err := validateTitle(title); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, title)
}

// UpdateTemplate applies a partial update to an existing template. Omitted
// fields retain their stored values; at least one field must be provided.
func (s *Service) UpdateTemplate(ctx context.Context, title string, update models.TemplateUpdate) (*models.Template, error) {
	if err := validateTitle(title); err != nil {
		return nil, err
	}
	if update.IsEmpty() {
		return nil, apperrors.ValidationError("No fields provided to update")
	}
	if update.Content != nil {
		if err := validateContent(*update.Content); err != nil {
			return nil, err
		}
	}
	if update.Description != nil {
		if err := validateDescription(*update.Description); err != nil {
			return nil, err
		}
	}
	if update.Username != nil {
		if err := validateUsername(*update.Username); err != nil {
			return nil, err
		}
	}
	return s.repo.Update(ctx, title, update)
}

// DeleteTemplate removes a template by its title.
func (s *Service) DeleteTemplate(ctx context.Context, title string) error {
	if err := validateTitle(title); err != nil {
		return err
	}
	return s.repo.Delete(ctx, title)
}

// ListTemplates returns one page of templates plus the filtered total.
func (s *Service) ListTemplates(ctx context.Context, opts models.ListOptions) (*models.ListResult, error) {
	return s.repo.List(ctx, opts)
}

// SearchTemplates fuzzy-matches query against title, description, and
// username. It scans the directory like any list call; there is no index.
func (s *Service) SearchTemplates(ctx context.Context, query string) ([]*models.Template, error) {
	result, err := s.repo.List(ctx, models.ListOptions{Limit: models.MaxListLimit})
	if err != nil {
		return nil, err
	}
	if query == "" {
		return result.Templates, nil
	}

	searchStrings := make([]string, len(result.Templates))
	for i, t := range result.Templates {
		searchStrings[i] = fmt.Sprintf("%s %s %s", t.Title, t.Description, t.Username)
	}

	matches := fuzzy.Find(query, searchStrings)
	found := make([]*models.Template, 0, len(matches))
	for _, match := range matches {
		found = append(found, result.Templates[match.Index])
	}
	return found, nil
}

func validateTitle(title string) error {
	if title == "" {
		return apperrors.ValidationError("Title must not be empty")
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return apperrors.ValidationError(fmt.Sprintf("Title must be at most %d characters", MaxTitleLength))
	}
	return nil
}

func validateContent(content string) error {
	if len(content) > MaxContentBytes {
		return apperrors.ValidationError(fmt.Sprintf("Content must be at most %d bytes", MaxContentBytes))
	}
	return nil
}

func validateDescription(description string) error {
	if utf8.RuneCountInString(description) > MaxDescriptionLength {
		return apperrors.ValidationError(fmt.Sprintf("Description must be at most %d characters", MaxDescriptionLength))
	}
	return nil
}

func validateUsername(username string) error {
	if utf8.RuneCountInString(username) > MaxUsernameLength {
		return apperrors.ValidationError(fmt.Sprintf("Username must be at most %d characters", MaxUsernameLength))
	}
	return nil
}
