// Package htmlsanitize cleans user-supplied free text before storage.
// It uses bluemonday to strip HTML so names, remarks, and notes are stored
// as plain text regardless of what the client sends.
package htmlsanitize

import (
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	// strict strips all HTML elements and attributes.
	strict     *bluemonday.Policy
	strictOnce sync.Once
)

func strictPolicy() *bluemonday.Policy {
	strictOnce.Do(func() {
		strict = bluemonday.StrictPolicy()
	})
	return strict
}

// Text strips any HTML from s and returns the remaining plain text with
// entities decoded and surrounding whitespace trimmed.
func Text(s string) string {
	if s == "" {
		return ""
	}
	cleaned := strictPolicy().Sanitize(s)
	return strings.TrimSpace(html.UnescapeString(cleaned))
}

// TextPtr applies Text through a pointer, preserving nil and mapping a
// value that sanitizes to empty back to nil.
func TextPtr(s *string) *string {
	if s == nil {
		return nil
	}
	cleaned := Text(*s)
	if cleaned == "" {
		return nil
	}
	return &cleaned
}

// IsPlainText checks if content appears to be plain text (no HTML tags).
func IsPlainText(content string) bool {
	if content == "" {
		return true
	}
	// Valid HTML tags require both characters, so if either is missing,
	// treat as plain text.
	return !strings.Contains(content, "<") || !strings.Contains(content, ">")
}
