package validation

import (
	"fmt"
	"regexp"
	"strings"
)

const minPasswordLen = 6

var usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_.-]{3,30}$`)

// ValidatePassword enforces the minimum password length.
func ValidatePassword(password string) error {
	if len(password) < minPasswordLen {
		return fmt.Errorf("password must be at least %d characters long", minPasswordLen)
	}
	return nil
}

// ValidateUsername validates username format and length.
func ValidateUsername(username string) error {
	if !usernameRegex.MatchString(username) {
		return fmt.Errorf("username must be 3-30 characters and contain only letters, numbers, dots, hyphens, and underscores")
	}
	return nil
}

// ValidateEmail performs a minimal structural check.
func ValidateEmail(email string) error {
	at := strings.Index(email, "@")
	if at < 1 || at == len(email)-1 || !strings.Contains(email[at:], ".") {
		return fmt.Errorf("invalid email address")
	}
	return nil
}
