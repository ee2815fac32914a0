package domain

import (
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"unicode/utf8"
)

const (
	maxEmailLength    = 255
	maxFullNameLength = 255
	minPasswordLength = 8
	maxPasswordLength = 40
	redactedSecret    = "**********"
)

// Secret is a string that never shows up in logs or serialized messages.
type Secret string

// Reveal returns the wrapped value.
func (s Secret) Reveal() string {
	return string(s)
}

// String implements fmt.Stringer with a redacted value.
func (s Secret) String() string {
	return redactedSecret
}

// LogValue implements slog.LogValuer with a redacted value.
func (s Secret) LogValue() slog.Value {
	return slog.StringValue(redactedSecret)
}

// MarshalJSON always emits the redacted value.
func (s Secret) MarshalJSON() ([]byte, error) {
	return []byte(`"` + redactedSecret + `"`), nil
}

// CreateAuthor represents the intent to add an author.
type CreateAuthor struct {
	Name string `json:"name"`
}

// CommandType returns the type identifier for this command.
func (c CreateAuthor) CommandType() CommandType {
	return CreateAuthorCommandType
}

// MessageName returns the type identifier as a string.
func (c CreateAuthor) MessageName() string {
	return string(CreateAuthorCommandType)
}

// CreateBook represents the intent to add a book to the edition with the same name.
type CreateBook struct {
	Name string `json:"name"`
}

// CommandType returns the type identifier for this command.
func (c CreateBook) CommandType() CommandType {
	return CreateBookCommandType
}

// MessageName returns the type identifier as a string.
func (c CreateBook) MessageName() string {
	return string(CreateBookCommandType)
}

// CreateUser represents the intent to register a new user account.
type CreateUser struct {
	Email    string `json:"email"`
	FullName string `json:"full_name,omitempty"`
	Password Secret `json:"password"`
}

// CommandType returns the type identifier for this command.
func (c CreateUser) CommandType() CommandType {
	return CreateUserCommandType
}

// MessageName returns the type identifier as a string.
func (c CreateUser) MessageName() string {
	return string(CreateUserCommandType)
}

// Validate checks the email, full name and password constraints.
// All violations are reported together, each one joined with ErrInvalidCommand.
func (c CreateUser) Validate() error {
	var violations []error

	if utf8.RuneCountInString(c.Email) > maxEmailLength {
		violations = append(violations, fmt.Errorf("email must be at most %d characters", maxEmailLength))
	} else if !isBareAddress(c.Email) {
		violations = append(violations, fmt.Errorf("email %q is not a valid address", c.Email))
	}

	if utf8.RuneCountInString(c.FullName) > maxFullNameLength {
		violations = append(violations, fmt.Errorf("full name must be at most %d characters", maxFullNameLength))
	}

	passwordLength := utf8.RuneCountInString(c.Password.Reveal())
	if passwordLength < minPasswordLength || passwordLength > maxPasswordLength {
		violations = append(
			violations,
			fmt.Errorf("password must be between %d and %d characters", minPasswordLength, maxPasswordLength),
		)
	}

	if len(violations) == 0 {
		return nil
	}

	return errors.Join(append([]error{ErrInvalidCommand}, violations...)...)
}

// isBareAddress accepts only a plain local@domain address whose domain has a dot.
func isBareAddress(email string) bool {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Name != "" || addr.Address != email {
		return false
	}

	at := strings.LastIndexByte(email, '@')
	domainPart := email[at+1:]

	return strings.Contains(domainPart, ".") && !strings.HasPrefix(domainPart, ".") && !strings.HasSuffix(domainPart, ".")
}
