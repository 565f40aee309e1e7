package service

import (
	"context"
	"strings"
	"testing"

	apperrors "github.com/NewAITees/ai-process-blueprint/internal/errors"
	"github.com/NewAITees/ai-process-blueprint/internal/models"
	"github.com/NewAITees/ai-process-blueprint/internal/storage"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	repo, err := storage.NewRepository(t.TempDir())
	if err != nil {
		t.Fatalf("NewRepository failed: %v", err)
	}
	return New(repo)
}

func TestCreateTemplateDefaults(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateTemplate(ctx, models.TemplateCreate{
		Title:   "Daily Standup",
		Content: "# Standup\n",
	})
	if err != nil {
		t.Fatalf("CreateTemplate failed: %v", err)
	}
	if created.Username != models.DefaultUsername {
		t.Errorf("username = %q, want %q", created.Username, models.DefaultUsername)
	}
	if created.Description != "" {
		t.Errorf("description = %q, want empty", created.Description)
	}
}

func TestCreateTemplateValidation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name string
		in   models.TemplateCreate
	}{
		{"empty title", models.TemplateCreate{Title: "", Content: "x"}},
		{"title too long", models.TemplateCreate{Title: strings.Repeat("a", 101), Content: "x"}},
		{"content too large", models.TemplateCreate{Title: "Big", Content: strings.Repeat("x", MaxContentBytes+1)}},
		{"description too long", models.TemplateCreate{Title: "D", Content: "x", Description: strings.Repeat("d", 501)}},
		{"username too long", models.TemplateCreate{Title: "U", Content: "x", Username: strings.Repeat("u", 51)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateTemplate(ctx, tt.in)
			if !apperrors.HasCode(err, apperrors.ErrCodeValidation) {
				t.Fatalf("error = %v, want VALIDATION_ERROR", err)
			}
		})
	}

	// Nothing was written by the rejected creates.
	result, err := svc.ListTemplates(ctx, models.ListOptions{})
	if err != nil {
		t.Fatalf("ListTemplates failed: %v", err)
	}
	if result.Total != 0 {
		t.Errorf("total = %d, want 0 after failed validations", result.Total)
	}
}

func TestCreateTemplateBoundaryLengths(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateTemplate(ctx, models.TemplateCreate{
		Title:       strings.Repeat("t", MaxTitleLength),
		Content:     strings.Repeat("c", MaxContentBytes),
		Description: strings.Repeat("d", MaxDescriptionLength),
		Username:    strings.Repeat("u", MaxUsernameLength),
	})
	if err != nil {
		t.Fatalf("boundary-length create failed: %v", err)
	}
}

func TestUpdateTemplateNoFields(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.CreateTemplate(ctx, models.TemplateCreate{Title: "Doc", Content: "x"}); err != nil {
		t.Fatalf("CreateTemplate failed: %v", err)
	}
	_, err := svc.UpdateTemplate(ctx, "Doc", models.TemplateUpdate{})
	if !apperrors.HasCode(err, apperrors.ErrCodeValidation) {
		t.Fatalf("empty update = %v, want VALIDATION_ERROR", err)
	}
}

func TestUpdateTemplateValidatesBeforeStorage(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	// Validation runs before existence is checked: an oversized payload for a
	// missing template is a validation error, not a not-found.
	big := strings.Repeat("x", MaxContentBytes+1)
	_, err := svc.UpdateTemplate(ctx, "Missing", models.TemplateUpdate{Content: &big})
	if !apperrors.HasCode(err, apperrors.ErrCodeValidation) {
		t.Fatalf("error = %v, want VALIDATION_ERROR", err)
	}
}

func TestTemplateLifecycle(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateTemplate(ctx, models.TemplateCreate{
		Title:       "Sprint Retro",
		Content:     "# Retro\n\n1. Wins\n2. Pains\n",
		Description: "Retrospective guide",
		Username:    "alice",
	})
	if err != nil {
		t.Fatalf("CreateTemplate failed: %v", err)
	}

	got, err := svc.GetTemplate(ctx, "Sprint Retro")
	if err != nil {
		t.Fatalf("GetTemplate failed: %v", err)
	}
	if got.Content != created.Content {
		t.Errorf("content = %q", got.Content)
	}

	newDesc := "Updated guide"
	updated, err := svc.UpdateTemplate(ctx, "Sprint Retro", models.TemplateUpdate{Description: &newDesc})
	if err != nil {
		t.Fatalf("UpdateTemplate failed: %v", err)
	}
	if updated.Description != "Updated guide" || updated.Content != created.Content {
		t.Errorf("update touched wrong fields: %+v", updated)
	}

	if err := svc.DeleteTemplate(ctx, "Sprint Retro"); err != nil {
		t.Fatalf("DeleteTemplate failed: %v", err)
	}
	if _, err := svc.GetTemplate(ctx, "Sprint Retro"); !apperrors.HasCode(err, apperrors.ErrCodeNotFound) {
		t.Fatalf("GetTemplate after delete = %v, want NOT_FOUND", err)
	}
}

func TestSearchTemplates(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	seed := []models.TemplateCreate{
		{Title: "Deploy Checklist", Content: "x", Description: "Production deployment steps", Username: "alice"},
		{Title: "Sprint Retro", Content: "x", Description: "Retrospective guide", Username: "bob"},
		{Title: "Incident Response", Content: "x", Description: "On-call runbook", Username: "alice"},
	}
	for _, in := range seed {
		if _, err := svc.CreateTemplate(ctx, in); err != nil {
			t.Fatalf("CreateTemplate(%q) failed: %v", in.Title, err)
		}
	}

	found, err := svc.SearchTemplates(ctx, "deploy")
	if err != nil {
		t.Fatalf("SearchTemplates failed: %v", err)
	}
	if len(found) == 0 {
		t.Fatal("search returned no results")
	}
	if found[0].Title != "Deploy Checklist" {
		t.Errorf("best match = %q, want %q", found[0].Title, "Deploy Checklist")
	}

	// Empty query returns everything.
	all, err := svc.SearchTemplates(ctx, "")
	if err != nil {
		t.Fatalf("SearchTemplates failed: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("empty query returned %d, want 3", len(all))
	}

	none, err := svc.SearchTemplates(ctx, "zzzzqqqq")
	if err != nil {
		t.Fatalf("SearchTemplates failed: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("nonsense query returned %d results", len(none))
	}
}

func TestGetTemplateEmptyTitle(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.GetTemplate(context.Background(), "")
	if !apperrors.HasCode(err, apperrors.ErrCodeValidation) {
		t.Fatalf("error = %v, want VALIDATION_ERROR", err)
	}
}
