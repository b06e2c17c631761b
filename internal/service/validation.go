package service

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/Baragji/Blueprint-creator/internal/domain"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// forbiddenPasswordPatterns are rejected as substrings, case-insensitively.
var forbiddenPasswordPatterns = []string{"password", "123456", "qwerty"}

const passwordMinLength = 8

func invalidInput(code domain.ErrorCode, message string) error {
	return &domain.AuthError{Code: code, Status: http.StatusBadRequest, Message: message}
}

// ValidateEmail rejects anything that does not look like an address.
func ValidateEmail(email string) error {
	if email == "" || !emailPattern.MatchString(email) {
		return invalidInput(domain.CodeInvalidEmail, "Invalid email format")
	}
	return nil
}

// ValidatePassword enforces the platform password policy: minimum length,
// mixed case, a digit, a special character, and no forbidden substrings.
func ValidatePassword(passwd string) error {
	if len(passwd) < passwordMinLength {
		return invalidInput(domain.CodeWeakPassword, "Password must be at least 8 characters")
	}
	var hasUpper, hasLower, hasDigit, hasSpecial bool
	for _, r := range passwd {
		switch {
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		case r >= 'a' && r <= 'z':
			hasLower = true
		case r >= '0' && r <= '9':
			hasDigit = true
		default:
			hasSpecial = true
		}
	}
	switch {
	case !hasUpper:
		return invalidInput(domain.CodeWeakPassword, "Password must include at least one uppercase letter")
	case !hasLower:
		return invalidInput(domain.CodeWeakPassword, "Password must include at least one lowercase letter")
	case !hasDigit:
		return invalidInput(domain.CodeWeakPassword, "Password must include at least one number")
	case !hasSpecial:
		return invalidInput(domain.CodeWeakPassword, "Password must include at least one special character")
	}
	lowered := strings.ToLower(passwd)
	for _, pattern := range forbiddenPasswordPatterns {
		if strings.Contains(lowered, pattern) {
			return invalidInput(domain.CodeWeakPassword, "Password contains forbidden patterns")
		}
	}
	return nil
}

// RegisterRequest is the sanitized registration input.
type RegisterRequest struct {
	Email            string
	Password         string
	FirstName        string
	LastName         string
	OrganizationName string
}

// Validate checks the request and normalizes the email in place. It runs
// before any directory or store call.
func (r *RegisterRequest) Validate() error {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	r.OrganizationName = strings.TrimSpace(r.OrganizationName)

	if err := ValidateEmail(r.Email); err != nil {
		return err
	}
	if err := ValidatePassword(r.Password); err != nil {
		return err
	}
	if r.FirstName == "" {
		return invalidInput(domain.CodeWeakPassword, "First name is required")
	}
	if r.LastName == "" {
		return invalidInput(domain.CodeWeakPassword, "Last name is required")
	}
	return nil
}

// LoginRequest is the sanitized login input.
type LoginRequest struct {
	Email    string
	Password string
}

// Validate checks the request and normalizes the email in place.
func (r *LoginRequest) Validate() error {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	if err := ValidateEmail(r.Email); err != nil {
		return err
	}
	if r.Password == "" {
		return invalidInput(domain.CodeInvalidCredentials, "Password is required")
	}
	return nil
}
