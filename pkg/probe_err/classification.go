// pkg/probe_err/classification.go
//
// Error classification with proper exit codes, layered on top of the
// UserError expected-error marker.

package probe_err

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCategory classifies errors for appropriate handling
type ErrorCategory int

const (
	// CategorySystem - OS/filesystem issues (exit 1)
	CategorySystem ErrorCategory = iota
	// CategoryValidation - Input validation failures (exit 2)
	CategoryValidation
	// CategoryNetwork - Network/connectivity issues (exit 1)
	CategoryNetwork
	// CategoryAuth - Login/authentication failures (exit 1)
	CategoryAuth
	// CategoryUser - User cancelled/interrupted (exit 130)
	CategoryUser
	// CategoryInternal - Bugs in sqlprobe itself (exit 3)
	CategoryInternal
)

// ClassifiedError wraps an error with category and remediation info
type ClassifiedError struct {
	Category    ErrorCategory
	Message     string
	Cause       error
	Remediation []string
}

// Error implements the error interface
func (e *ClassifiedError) Error() string {
	var sb strings.Builder

	sb.WriteString(e.Message)

	if e.Cause != nil && e.Cause.Error() != e.Message {
		sb.WriteString(fmt.Sprintf("\n\nCause: %v", e.Cause))
	}

	if len(e.Remediation) > 0 {
		sb.WriteString("\n\nHow to fix:")
		for i, step := range e.Remediation {
			sb.WriteString(fmt.Sprintf("\n  %d. %s", i+1, step))
		}
	}

	return sb.String()
}

// Unwrap returns the underlying error
func (e *ClassifiedError) Unwrap() error {
	return e.Cause
}

// ExitCode returns the appropriate exit code for this error category
func (e *ClassifiedError) ExitCode() int {
	switch e.Category {
	case CategoryUser:
		return 130 // Standard for SIGINT (Ctrl-C)
	case CategoryValidation:
		return 2
	case CategoryInternal:
		return 3
	default:
		return 1
	}
}

// GetExitCode extracts exit code from any error.
// Returns 0 for nil, appropriate code for classified errors, 1 for others.
func GetExitCode(err error) int {
	if err == nil {
		return 0
	}

	var classified *ClassifiedError
	if errors.As(err, &classified) {
		return classified.ExitCode()
	}

	if IsExpectedUserError(err) {
		return 0 // User errors don't fail the program
	}

	return 1
}

// NewValidationError creates an error for input validation failures
func NewValidationError(message string, remediation ...string) error {
	return &ClassifiedError{
		Category:    CategoryValidation,
		Message:     message,
		Remediation: remediation,
	}
}

// NewNetworkError creates an error for network issues
func NewNetworkError(message string, cause error, remediation ...string) error {
	return &ClassifiedError{
		Category:    CategoryNetwork,
		Message:     message,
		Cause:       cause,
		Remediation: remediation,
	}
}

// NewAuthError creates an error for authentication failures
func NewAuthError(message string, cause error, remediation ...string) error {
	return &ClassifiedError{
		Category:    CategoryAuth,
		Message:     message,
		Cause:       cause,
		Remediation: remediation,
	}
}

// NewInternalError creates an error for sqlprobe bugs.
// These should be reported to developers.
func NewInternalError(message string, cause error) error {
	return &ClassifiedError{
		Category: CategoryInternal,
		Message:  message,
		Cause:    cause,
		Remediation: []string{
			"This is likely a bug in sqlprobe",
			"Include this error message and steps to reproduce when reporting",
		},
	}
}

// ClassifyError attempts to classify an existing error.
// Useful for wrapping driver errors surfaced through database/sql.
func ClassifyError(err error, context string) error {
	if err == nil {
		return nil
	}

	var classified *ClassifiedError
	if errors.As(err, &classified) {
		return err
	}

	errStr := strings.ToLower(err.Error())

	switch {
	case strings.Contains(errStr, "login failed"),
		strings.Contains(errStr, "login error"),
		strings.Contains(errStr, "authentication failed"):
		return NewAuthError(
			fmt.Sprintf("%s: authentication failed", context),
			err,
			"Check the username and password",
			"Verify the login is enabled on the server",
		)

	case strings.Contains(errStr, "timeout"),
		strings.Contains(errStr, "connection refused"),
		strings.Contains(errStr, "no such host"),
		strings.Contains(errStr, "network unreachable"),
		strings.Contains(errStr, "unable to open tcp connection"):
		return NewNetworkError(
			fmt.Sprintf("%s: network error", context),
			err,
			"Check that the host name and port are correct",
			"Verify the server is accepting remote connections",
		)

	case strings.Contains(errStr, "invalid"),
		strings.Contains(errStr, "malformed"):
		return NewValidationError(
			fmt.Sprintf("%s: validation failed", context),
			"Check the input format",
		)

	default:
		return &ClassifiedError{
			Category: CategorySystem,
			Message:  fmt.Sprintf("%s failed", context),
			Cause:    err,
		}
	}
}
