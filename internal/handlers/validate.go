package handlers

import (
	"strings"
	"unicode/utf8"
)

// Validation limits for item fields, matching the column sizes.
const (
	maxItemTitleLen       = 45
	maxItemDescriptionLen = 250
)

// validateItemTitle checks a title and returns the first error found.
func validateItemTitle(title string) string {
	if strings.TrimSpace(title) == "" {
		return "Title is required."
	}
	if utf8.RuneCountInString(title) > maxItemTitleLen {
		return "Title is too long (max 45 characters)."
	}
	return ""
}

// validateItemDescription checks a description and returns the first error found.
func validateItemDescription(description string) string {
	if strings.TrimSpace(description) == "" {
		return "Description is required."
	}
	if utf8.RuneCountInString(description) > maxItemDescriptionLen {
		return "Description is too long (max 250 characters)."
	}
	return ""
}
