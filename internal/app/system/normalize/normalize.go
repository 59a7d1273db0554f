// Package normalize provides helper functions for consistent string normalization
// across the application. Use these helpers instead of scattered strings.ToUpper
// and strings.TrimSpace calls to ensure consistent behavior.
package normalize

import "strings"

// Email normalizes an email address by trimming whitespace and converting to lowercase.
// This is the canonical way to normalize emails before storage or comparison.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Username normalizes a username by trimming whitespace only. Usernames are
// matched case-sensitively; use text.Fold() for the duplicate-detection key.
func Username(s string) string {
	return strings.TrimSpace(s)
}

// Name normalizes a display name by trimming whitespace.
func Name(s string) string {
	return strings.TrimSpace(s)
}

// Status normalizes a status value by trimming whitespace and converting to
// the stored uppercase form (ACTIVE, INACTIVE).
func Status(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// Role normalizes a role value by trimming whitespace and converting to the
// stored uppercase form (ADMIN, USER).
func Role(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// Gender normalizes a gender value to the stored uppercase form (MALE, FEMALE).
func Gender(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// EventType normalizes a tooth event type to the stored uppercase form.
func EventType(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// ToothCode normalizes an FDI tooth code by trimming whitespace.
func ToothCode(s string) string {
	return strings.TrimSpace(s)
}

// QueryParam normalizes a query parameter by trimming whitespace.
func QueryParam(s string) string {
	return strings.TrimSpace(s)
}
