package errors

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/julianstephens/habitlens/internal/logger"
)

var (
	// ErrNotFound is returned when a requested record does not exist
	ErrNotFound = stderrors.New("not found")
	// ErrConflict is returned when a write violates a uniqueness constraint
	ErrConflict = stderrors.New("already exists")
	// ErrInvalidInput is returned when user supplied data fails validation
	ErrInvalidInput = stderrors.New("invalid input")
)

// IsNotFound reports whether err wraps ErrNotFound
func IsNotFound(err error) bool { return stderrors.Is(err, ErrNotFound) }

// IsConflict reports whether err wraps ErrConflict
func IsConflict(err error) bool { return stderrors.Is(err, ErrConflict) }

// IsInvalidInput reports whether err wraps ErrInvalidInput
func IsInvalidInput(err error) bool { return stderrors.Is(err, ErrInvalidInput) }

// Format formats an error message with a consistent "Error: " prefix
func Format(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Error: %v", err)
}

// Formatf formats an error message with a consistent "Error: " prefix using a format string
func Formatf(format string, args ...interface{}) string {
	return fmt.Sprintf("Error: "+format, args...)
}

// Fatal logs an error and exits the program with exit code 1
func Fatal(err error) {
	if err != nil {
		logger.Error("Command execution failed", "error", err)
		fmt.Fprintf(os.Stderr, "%s\n", Format(err))
		os.Exit(1)
	}
}

// Fatalf logs and formats an error message, then exits the program with exit code 1
func Fatalf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	logger.Error("Command execution failed", "error", msg)
	fmt.Fprintf(os.Stderr, "%s\n", Formatf(format, args...))
	os.Exit(1)
}
