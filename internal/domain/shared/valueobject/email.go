package valueobject

import (
	"fmt"
	"regexp"
	"strings"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// NormalizeEmail trims and lowercases an email and checks its format
func NormalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", fmt.Errorf("email cannot be empty")
	}
	if len(email) > 200 {
		return "", fmt.Errorf("email cannot exceed 200 characters")
	}
	if !emailPattern.MatchString(email) {
		return "", fmt.Errorf("invalid email format")
	}
	return email, nil
}
