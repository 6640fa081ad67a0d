package probe_io

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
	"golang.org/x/term"
)

// MaxPasswordLength defines the maximum allowed password length
const MaxPasswordLength = 256

// ansiEscapeRegex matches ANSI escape sequences
var ansiEscapeRegex = regexp.MustCompile(`\x1b\[[0-9;]*[A-Za-z]|\x9b[0-9;]*[A-Za-z]`)

// InputValidationError represents input validation errors
type InputValidationError struct {
	Field  string
	Reason string
}

func (e *InputValidationError) Error() string {
	return fmt.Sprintf("invalid input for %s: %s", e.Field, e.Reason)
}

// IsInteractive reports whether stdin is attached to a terminal.
func IsInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// PromptSecurePassword prompts for a password without echoing to screen.
func PromptSecurePassword(rc *RuntimeContext, prompt string) (string, error) {
	logger := otelzap.Ctx(rc.Ctx)

	// ASSESS - Check if we can read from terminal
	logger.Debug("Assessing secure password input capability")

	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return "", fmt.Errorf("stdin is not a terminal")
	}

	// INTERVENE - Read password securely
	fmt.Fprint(os.Stderr, prompt)
	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)

	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}

	passwordStr := string(password)

	// EVALUATE - Validate password input
	if err := validatePasswordInput(passwordStr, "password"); err != nil {
		logger.Warn("Invalid password input", zap.Error(err))
		return "", err
	}

	sanitized := sanitizePasswordInput(passwordStr)

	logger.Debug("Successfully read secure password input")
	return sanitized, nil
}

// validatePasswordInput validates password input for security
func validatePasswordInput(password, fieldName string) error {
	if len(password) == 0 {
		return &InputValidationError{Field: fieldName, Reason: "cannot be empty"}
	}

	if len(password) > MaxPasswordLength {
		return &InputValidationError{
			Field:  fieldName,
			Reason: fmt.Sprintf("too long (%d chars, max %d)", len(password), MaxPasswordLength),
		}
	}

	if !utf8.ValidString(password) {
		return &InputValidationError{Field: fieldName, Reason: "contains invalid UTF-8 sequences"}
	}

	for _, r := range password {
		if r < 32 && r != '\t' {
			return &InputValidationError{Field: fieldName, Reason: "contains dangerous control characters"}
		}
		if r >= 127 && r <= 159 {
			return &InputValidationError{Field: fieldName, Reason: "contains C1 control characters"}
		}
	}

	return nil
}

// sanitizePasswordInput sanitizes password input while preserving valid characters.
// For passwords we reject rather than rewrite; only escape machinery is stripped.
func sanitizePasswordInput(password string) string {
	sanitized := strings.ReplaceAll(password, "\x00", "")
	sanitized = ansiEscapeRegex.ReplaceAllString(sanitized, "")
	sanitized = strings.ReplaceAll(sanitized, "\x9b", "")
	return sanitized
}
