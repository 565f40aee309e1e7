package storage

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// TemplateExt is the extension recognized for template files in the storage
// directory.
const TemplateExt = ".md"

const (
	fallbackFileName = "default_template"
	maxFileNameStem  = 100
)

var titleCaser = cases.Title(language.Und)

// TitleToFileName converts a template title into a filesystem-safe file name.
// It is deterministic and pure: the same title always maps to the same name.
// Distinct titles may collide after sanitization; the repository surfaces
// that as an already-exists conflict at create time.
func TitleToFileName(title string) string {
	// NFKC folds compatibility characters (full-width forms etc.) first so
	// visually equivalent titles map to the same file.
	normalized := norm.NFKC.String(title)

	var b strings.Builder
	b.Grow(len(normalized))
	for _, r := range normalized {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' {
			b.WriteRune(r)
		} else {
			// Path separators, whitespace, dots and all other punctuation
			// collapse into the separator. Keeping '.' out of the stem means
			// no name can start with a dot or smuggle a ".." component.
			b.WriteRune('_')
		}
	}

	sanitized := collapseUnderscores(b.String())
	sanitized = strings.Trim(sanitized, "_.")
	sanitized = strings.ToLower(sanitized)

	if runes := []rune(sanitized); len(runes) > maxFileNameStem {
		sanitized = strings.Trim(string(runes[:maxFileNameStem]), "_")
	}
	if sanitized == "" {
		sanitized = fallbackFileName
	}
	return sanitized + TemplateExt
}

// FileNameToTitle derives a display title from a file name. It is a
// best-effort inverse used only when a file carries no title in its metadata
// block; the stored metadata title is always authoritative.
func FileNameToTitle(fileName string) string {
	stem := strings.TrimSuffix(fileName, TemplateExt)
	return titleCaser.String(strings.ReplaceAll(stem, "_", " "))
}

func collapseUnderscores(s string) string {
	for strings.Contains(s, "__") {
		s = strings.ReplaceAll(s, "__", "_")
	}
	return s
}
