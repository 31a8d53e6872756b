package project

import (
	"path/filepath"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DeriveKey produces the filesystem-safe project key for a source document
// path. The key names the project's checkpoint directory, so it must stay
// stable for the same input across invocations.
func DeriveKey(sourcePath string) string {
	base := filepath.Base(strings.TrimSpace(sourcePath))
	base = strings.TrimSuffix(base, filepath.Ext(base))
	var b strings.Builder
	prevSep := false
	for _, r := range strings.ToLower(base) {
		switch {
		case unicode.IsLetter(r) || unicode.IsNumber(r):
			b.WriteRune(r)
			prevSep = false
		case unicode.IsSpace(r) || r == '-' || r == '_' || r == '.':
			if !prevSep && b.Len() > 0 {
				b.WriteByte('-')
				prevSep = true
			}
		}
	}
	key := strings.Trim(b.String(), "-")
	if key == "" {
		return "untitled"
	}
	return key
}

// DeriveTitle produces a human-readable presentation title from a source
// document path.
func DeriveTitle(sourcePath string) string {
	if strings.TrimSpace(sourcePath) == "" {
		return "Untitled Presentation"
	}
	base := filepath.Base(sourcePath)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	cleaned := strings.Builder{}
	prevSpace := false
	for _, r := range base {
		switch {
		case unicode.IsLetter(r) || unicode.IsNumber(r):
			cleaned.WriteRune(r)
			prevSpace = false
		case unicode.IsSpace(r) || r == '-' || r == '_' || r == '.':
			if !prevSpace {
				cleaned.WriteRune(' ')
				prevSpace = true
			}
		}
	}
	title := strings.TrimSpace(cleaned.String())
	if title == "" {
		return "Untitled Presentation"
	}
	return cases.Title(language.Und).String(title)
}
