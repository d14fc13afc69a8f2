package errors

import (
	"errors"
	"fmt"
	"os"

	"github.com/julianstephens/keepup/internal/logger"
)

var (
	// ErrNotFound is returned when a referenced set, item, instance, message or profile is absent.
	ErrNotFound = errors.New("not found")
	// ErrActivityWindowClosed is returned when completing an instance at or after its window end.
	ErrActivityWindowClosed = errors.New("activity window closed")
	// ErrInvalidAssignment is returned when an assignment write would reference a missing set.
	ErrInvalidAssignment = errors.New("invalid assignment")
	// ErrInvalidTransition is returned when an instance is already in a terminal state.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrProfileExists is returned when a second profile is created.
	ErrProfileExists = errors.New("profile already exists")
)

// NotFoundf wraps ErrNotFound with a description of what was missing.
func NotFoundf(format string, args ...interface{}) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrNotFound)
}

// Is reports whether any error in err's tree matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

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
