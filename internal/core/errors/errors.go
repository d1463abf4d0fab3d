// Package errors provides centralized error definitions for the application.
// Errors are organized by domain to avoid duplication and provide consistent naming.
//
// Naming conventions:
//   - Exported errors (Err*): Use for errors that callers need to check with errors.Is
//   - All sentinel errors should be defined as variables, not inline errors.New calls
//   - Use fmt.Errorf with %w to wrap sentinel errors with context
package errors

import "errors"

// Dataset errors.
var (
	// ErrDatasetMissing indicates the trigger dataset file is absent or unreadable.
	// Fatal at startup: the bot must not come up silently answering no triggers.
	ErrDatasetMissing = errors.New("trigger dataset missing or unreadable")

	// ErrDuplicateTrigger indicates a trigger text already exists in the dataset.
	ErrDuplicateTrigger = errors.New("trigger already exists")

	// ErrEmptyTrigger indicates a trigger text normalized to the empty string.
	ErrEmptyTrigger = errors.New("trigger text is empty")
)

// Authorization errors.
var (
	// ErrPermissionDenied indicates a non-admin invoked an admin-only operation.
	ErrPermissionDenied = errors.New("permission denied")
)

// Offline pipeline errors.
var (
	// ErrNoDefaultColumn indicates the master list has no default-language column.
	ErrNoDefaultColumn = errors.New("master list has no default column")

	// ErrNoResourceDir indicates the locale resource root does not exist.
	ErrNoResourceDir = errors.New("resource directory not found")
)
