// Package validation holds field-level validators shared by the services.
package validation

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	minTitleLen   = 10
	maxTitleLen   = 200
	minContentLen = 50
)

// ValidateTitle enforces the post title length bounds, counted in
// characters, not bytes. Leading and trailing whitespace does not count
// toward the minimum.
func ValidateTitle(title string) error {
	length := utf8.RuneCountInString(strings.TrimSpace(title))
	if length < minTitleLen {
		return fmt.Errorf("title must be at least %d characters long", minTitleLen)
	}
	if length > maxTitleLen {
		return fmt.Errorf("title must be at most %d characters long", maxTitleLen)
	}
	return nil
}

// ValidateContent enforces the post content minimum length in characters.
func ValidateContent(content string) error {
	if utf8.RuneCountInString(strings.TrimSpace(content)) < minContentLen {
		return fmt.Errorf("content must be at least %d characters long", minContentLen)
	}
	return nil
}

// ValidateCommentContent rejects empty comment bodies.
func ValidateCommentContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return fmt.Errorf("comment content cannot be empty")
	}
	return nil
}
