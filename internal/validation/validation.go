package validation

import (
	"errors"
	"regexp"
	"strings"
)

const (
	// MinPasswordLength is the minimum accepted password length
	MinPasswordLength = 8
	// MaxLabelLength is the maximum accepted length for account labels
	MaxLabelLength = 100
	// MaxCodeSize is the maximum accepted submission size (1MB)
	MaxCodeSize = 1 << 20
)

var emailRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// Languages accepted for code submissions
var allowedLanguages = map[string]bool{
	"python":     true,
	"javascript": true,
	"cpp":        true,
	"java":       true,
	"sql":        true,
}

// ValidateEmail validates an email address format
func ValidateEmail(email string) error {
	if email == "" {
		return errors.New("email is required")
	}
	if len(email) > 254 {
		return errors.New("email is too long")
	}
	if !emailRegex.MatchString(email) {
		return errors.New("email format is invalid")
	}
	return nil
}

// ValidatePassword validates password strength requirements
func ValidatePassword(password string) error {
	if password == "" {
		return errors.New("password is required")
	}
	if len(password) < MinPasswordLength {
		return errors.New("password must be at least 8 characters")
	}
	return nil
}

// ValidatePasswordPair validates a password plus confirmation
func ValidatePasswordPair(password, confirm string) error {
	if err := ValidatePassword(password); err != nil {
		return err
	}
	if password != confirm {
		return errors.New("passwords do not match")
	}
	return nil
}

// ValidateLabel validates a linked-account label
func ValidateLabel(label string) error {
	if len(label) > MaxLabelLength {
		return errors.New("label must be 100 characters or less")
	}
	return nil
}

// ValidateLanguage validates a submission language choice
func ValidateLanguage(language string) error {
	if language == "" {
		return errors.New("language is required")
	}
	if !allowedLanguages[strings.ToLower(language)] {
		return errors.New("unsupported language")
	}
	return nil
}

// ValidateCode validates submission code content
func ValidateCode(code string) error {
	if strings.TrimSpace(code) == "" {
		return errors.New("code cannot be empty")
	}
	if len(code) > MaxCodeSize {
		return errors.New("code too large (maximum 1MB)")
	}
	return nil
}

// ValidateRepositoryRef validates an owner/name repository reference
func ValidateRepositoryRef(owner, name string) error {
	if owner == "" || name == "" {
		return errors.New("repository owner and name are required")
	}
	if strings.ContainsAny(owner, "/ ") || strings.ContainsAny(name, "/ ") {
		return errors.New("repository owner and name cannot contain slashes or spaces")
	}
	return nil
}
