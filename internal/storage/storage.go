// Package storage owns the template storage directory: it maps titles to
// file names, serializes templates to frontmatter files, and implements
// CRUD plus listing with atomic writes. No other package writes to the
// directory.
package storage

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	apperrors "github.com/NewAITees/ai-process-blueprint/internal/errors"
	"github.com/NewAITees/ai-process-blueprint/internal/models"
)

// Repository stores templates as individual frontmatter files in a single
// directory. It keeps no in-memory index: the directory is re-read on every
// list call so external edits are always observed.
type Repository struct {
	dir string
}

// NewRepository creates a repository rooted at dir, creating the directory
// if needed.
func NewRepository(dir string) (*Repository, error) {
	if dir == "" {
		dir = "./templates"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, apperrors.StorageError("initialize template directory", err)
	}
	return &Repository{dir: dir}, nil
}

// Dir returns the storage directory path.
func (r *Repository) Dir() string {
	return r.dir
}

// Create stores a new template, setting both timestamps to the current time.
// Two concurrent creates for the same title race on the final link step;
// exactly one wins and the loser gets an already-exists error.
func (r *Repository) Create(ctx context.Context, candidate *models.Template) (*models.Template, error) {
	fileName := TitleToFileName(candidate.Title)

	now := time.Now().UTC()
	record := *candidate
	record.CreatedAt = now
	record.UpdatedAt = now
	record.FileName = fileName

	data, err := EncodeTemplate(&record)
	if err != nil {
		return nil, apperrors.StorageError("encode template", err)
	}

	tmpPath, err := r.writeTemp(fileName, data)
	if err != nil {
		return nil, err
	}
	defer os.Remove(tmpPath)

	// link(2) fails with EEXIST when the target path is already taken, which
	// closes the check-then-write race without an existence pre-check. The
	// temp file is fully written and synced first, so the target never
	// appears partially written.
	if err := os.Link(tmpPath, filepath.Join(r.dir, fileName)); err != nil {
		if errors.Is(err, fs.ErrExist) {
			slog.WarnContext(ctx, "Template already exists", "title", candidate.Title, "file", fileName)
			return nil, apperrors.AlreadyExistsError(candidate.Title)
		}
		return nil, apperrors.StorageError("create template file", err)
	}

	slog.InfoContext(ctx, "Created template", "title", record.Title, "file", fileName)
	return &record, nil
}

// Get loads a template by title. A missing file is a not-found condition; a
// file with a malformed metadata block is surfaced as corrupt, not as
// not-found.
func (r *Repository) Get(ctx context.Context, title string) (*models.Template, error) {
	fileName := TitleToFileName(title)
	template, err := r.load(fileName)
	if err != nil {
		if apperrors.HasCode(err, apperrors.ErrCodeNotFound) {
			return nil, apperrors.NotFoundError(title)
		}
		if apperrors.HasCode(err, apperrors.ErrCodeFileCorrupted) {
			slog.WarnContext(ctx, "Template file is corrupt", "title", title, "file", fileName)
			return nil, apperrors.CorruptError(title, apperrors.GetAppError(err).Cause)
		}
		return nil, err
	}
	return template, nil
}

// Update applies the non-nil fields of update to the stored template and
// refreshes updated_at. Title and created_at are immutable. Concurrent
// updates are last-writer-wins: both succeed, the later rename prevails.
func (r *Repository) Update(ctx context.Context, title string, update models.TemplateUpdate) (*models.Template, error) {
	existing, err := r.Get(ctx, title)
	if err != nil {
		return nil, err
	}

	if update.Content != nil {
		existing.Content = *update.Content
	}
	if update.Description != nil {
		existing.Description = *update.Description
	}
	if update.Username != nil {
		existing.Username = *update.Username
	}

	now := time.Now().UTC()
	if !now.After(existing.UpdatedAt) {
		// The clock may not have advanced past the stored timestamp.
		now = existing.UpdatedAt.Add(time.Millisecond)
	}
	existing.UpdatedAt = now

	data, err := EncodeTemplate(existing)
	if err != nil {
		return nil, apperrors.StorageError("encode template", err)
	}
	if err := r.writeAtomic(existing.FileName, data); err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "Updated template", "title", title, "file", existing.FileName)
	return existing, nil
}

// Delete removes the backing file. A missing file is not-found; any other
// removal failure is a storage error.
func (r *Repository) Delete(ctx context.Context, title string) error {
	fileName := TitleToFileName(title)
	if err := os.Remove(filepath.Join(r.dir, fileName)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return apperrors.NotFoundError(title)
		}
		return apperrors.StorageError("delete template file", err)
	}
	slog.InfoContext(ctx, "Deleted template", "title", title, "file", fileName)
	return nil
}

// List enumerates every template file in the storage directory, skipping and
// logging entries that cannot be decoded, then filters, sorts by updated_at
// descending, and paginates. Total is the filtered count before pagination.
func (r *Repository) List(ctx context.Context, opts models.ListOptions) (*models.ListResult, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, apperrors.StorageError("list template directory", err)
	}

	var templates []*models.Template
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), TemplateExt) {
			continue
		}
		template, err := r.load(entry.Name())
		if err != nil {
			// Per-file corruption never fails the whole listing.
			slog.WarnContext(ctx, "Skipping unreadable template file", "file", entry.Name(), "error", err)
			continue
		}
		templates = append(templates, template)
	}

	if opts.Username != "" {
		filtered := templates[:0]
		for _, t := range templates {
			if t.Username == opts.Username {
				filtered = append(filtered, t)
			}
		}
		templates = filtered
	}

	slices.SortFunc(templates, func(a, b *models.Template) int {
		if c := b.UpdatedAt.Compare(a.UpdatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.Title, b.Title)
	})

	limit := opts.Limit
	if limit <= 0 {
		limit = models.DefaultListLimit
	}
	if limit > models.MaxListLimit {
		limit = models.MaxListLimit
	}
	offset := opts.Offset
	if offset < 0 {
		offset = 0
	}

	total := len(templates)
	page := []*models.Template{}
	if offset < total {
		end := offset + limit
		if end > total {
			end = total
		}
		page = templates[offset:end]
	}

	return &models.ListResult{
		Templates: page,
		Total:     total,
		Limit:     limit,
		Offset:    offset,
	}, nil
}

// load reads and decodes one file, filling the fallback title and mtime
// timestamps for files whose metadata omits them.
func (r *Repository) load(fileName string) (*models.Template, error) {
	path := filepath.Join(r.dir, fileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, apperrors.NotFoundError(FileNameToTitle(fileName))
		}
		return nil, apperrors.StorageError("read template file", err)
	}

	template, err := DecodeTemplate(data)
	if err != nil {
		if errors.Is(err, ErrMalformedMetadata) {
			return nil, apperrors.CorruptError(FileNameToTitle(fileName), err)
		}
		return nil, apperrors.StorageError("decode template file", err)
	}

	template.FileName = fileName
	if template.Title == "" {
		template.Title = FileNameToTitle(fileName)
	}
	if template.CreatedAt.IsZero() || template.UpdatedAt.IsZero() {
		// Files written by other tools may omit timestamps; fall back to the
		// file's modification time.
		if info, statErr := os.Stat(path); statErr == nil {
			mtime := info.ModTime().UTC()
			if template.CreatedAt.IsZero() {
				template.CreatedAt = mtime
			}
			if template.UpdatedAt.IsZero() {
				template.UpdatedAt = mtime
			}
		}
	}
	return template, nil
}

// writeTemp writes data to a temp file in the storage directory and syncs it
// to disk, returning the temp path.
func (r *Repository) writeTemp(fileName string, data []byte) (string, error) {
	tmp, err := os.CreateTemp(r.dir, fileName+".tmp*")
	if err != nil {
		return "", apperrors.StorageError("create temporary file", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", apperrors.StorageError("write temporary file", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", apperrors.StorageError("sync temporary file", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", apperrors.StorageError("close temporary file", err)
	}
	return tmp.Name(), nil
}

// writeAtomic replaces the target file with data via write-temp-then-rename.
// A concurrent reader never observes a partial file; a crash mid-write
// leaves the previous file intact.
func (r *Repository) writeAtomic(fileName string, data []byte) error {
	tmpPath, err := r.writeTemp(fileName, data)
	if err != nil {
		return err
	}
	if err := os.Rename(tmpPath, filepath.Join(r.dir, fileName)); err != nil {
		os.Remove(tmpPath)
		return apperrors.StorageError("replace template file", err)
	}
	return nil
}
