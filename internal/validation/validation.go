// Package validation provides input validation utilities
package validation

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	UsernameMinLength = 4
	UsernameMaxLength = 15
	NameMinLength     = 3
	NameMaxLength     = 30
	PasswordMinLength = 8
	PasswordMaxLength = 32
	EmailMaxLength    = 254
	ProjectNameMax    = 100
)

var (
	upperRegex       = regexp.MustCompile(`[A-Z]`)
	lowerRegex       = regexp.MustCompile(`[a-z]`)
	digitRegex       = regexp.MustCompile(`[0-9]`)
	specialRegex     = regexp.MustCompile(`[^A-Za-z0-9]`)
	usernameRegex    = regexp.MustCompile(`^[a-zA-Z0-9_.-]+$`)
	emailRegex       = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	projectNameRegex = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)
)

// Violations collects every failed rule for one input.
type Violations []string

func (v *Violations) add(format string, args ...any) {
	*v = append(*v, fmt.Sprintf(format, args...))
}

// Err returns nil when no rule failed.
func (v Violations) Err() error {
	if len(v) == 0 {
		return nil
	}
	return ViolationError(v)
}

// ViolationError is returned when one or more rules fail.
type ViolationError []string

func (e ViolationError) Error() string {
	return strings.Join(e, "; ")
}

// PasswordViolations lists every password rule that pw breaks.
func PasswordViolations(pw string) Violations {
	var v Violations
	n := utf8.RuneCountInString(pw)
	if n < PasswordMinLength {
		v.add("Password must be at least %d characters long", PasswordMinLength)
	}
	if n > PasswordMaxLength {
		v.add("Password must be at most %d characters long", PasswordMaxLength)
	}
	if !upperRegex.MatchString(pw) {
		v.add("Password must contain at least one uppercase letter")
	}
	if !lowerRegex.MatchString(pw) {
		v.add("Password must contain at least one lowercase letter")
	}
	if !digitRegex.MatchString(pw) {
		v.add("Password must contain at least one number")
	}
	if !specialRegex.MatchString(pw) {
		v.add("Password must contain at least one special character")
	}
	return v
}

// UsernameViolations lists every username rule that username breaks.
func UsernameViolations(username string) Violations {
	var v Violations
	n := utf8.RuneCountInString(username)
	if n < UsernameMinLength {
		v.add("Username must be at least %d characters long", UsernameMinLength)
	}
	if n > UsernameMaxLength {
		v.add("Username must be at most %d characters long", UsernameMaxLength)
	}
	if username != "" && !usernameRegex.MatchString(username) {
		v.add("Username can only contain letters, numbers, dots, underscores, and hyphens")
	}
	return v
}

// EmailViolations lists every email rule that email breaks.
func EmailViolations(email string) Violations {
	var v Violations
	if len(email) > EmailMaxLength {
		v.add("Email must not exceed %d characters", EmailMaxLength)
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || !emailRegex.MatchString(email) {
		v.add("Invalid email")
	}
	return v
}

// NameViolations checks an optional display name. Empty is allowed.
func NameViolations(name string) Violations {
	var v Violations
	if name == "" {
		return v
	}
	n := utf8.RuneCountInString(name)
	if n < NameMinLength {
		v.add("Name must be at least %d characters long", NameMinLength)
	}
	if n > NameMaxLength {
		v.add("Name must be at most %d characters long", NameMaxLength)
	}
	return v
}

// ProjectNameViolations checks the project segment of an identifier.
func ProjectNameViolations(name string) Violations {
	var v Violations
	switch {
	case name == "":
		v.add("Project name is required")
	case utf8.RuneCountInString(name) > ProjectNameMax:
		v.add("Project name must be at most %d characters long", ProjectNameMax)
	case !projectNameRegex.MatchString(name) || name == "." || name == "..":
		v.add("Project name can only contain letters, numbers, dots, underscores, and hyphens")
	}
	return v
}

// ValidatePassword checks if a password meets security requirements
func ValidatePassword(password string) error {
	return PasswordViolations(password).Err()
}

// ValidateUsername checks if a username meets requirements
func ValidateUsername(username string) error {
	return UsernameViolations(username).Err()
}

// ValidateEmail checks basic email format
func ValidateEmail(email string) error {
	return EmailViolations(email).Err()
}

// ValidateProjectName checks the project name segment.
func ValidateProjectName(name string) error {
	return ProjectNameViolations(name).Err()
}
