// Package errors defines the stable error codes reported by cffcheck.
package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents stable error codes for all failure modes
type ErrorCode string

const (
	// FormatViolation indicates a dependency exceeds the supported class file format
	FormatViolation ErrorCode = "FORMAT_VIOLATION"
	// ResolutionFailed indicates one or more dependencies could not be resolved to a file
	ResolutionFailed ErrorCode = "RESOLUTION_FAILED"
	// GraphBuildFailed indicates the dependency graph could not be built
	GraphBuildFailed ErrorCode = "GRAPH_BUILD_FAILED"
	// ArchiveReadFailed indicates an archive could not be read
	ArchiveReadFailed ErrorCode = "ARCHIVE_READ_FAILED"
	// ConfigInvalid indicates invalid configuration
	ConfigInvalid ErrorCode = "CONFIG_INVALID"
	// InternalError indicates unexpected error
	InternalError ErrorCode = "INTERNAL_ERROR"
)

// FixActionType represents the type of fix action
type FixActionType string

const (
	// RunCommand suggests running a command
	RunCommand FixActionType = "run-command"
	// ChangeDependency suggests changing a dependency declaration
	ChangeDependency FixActionType = "change-dependency"
	// EditConfig suggests editing configuration
	EditConfig FixActionType = "edit-config"
)

// FixAction represents a suggested fix for an error
type FixAction struct {
	Type        FixActionType `json:"type"`
	Command     string        `json:"command,omitempty"`
	Safe        bool          `json:"safe,omitempty"`
	Description string        `json:"description,omitempty"`
}

// CffError represents an error with code, message, and suggestions
type CffError struct {
	Code           ErrorCode   `json:"code"`
	Message        string      `json:"message"`
	Details        interface{} `json:"details,omitempty"`
	SuggestedFixes []FixAction `json:"suggestedFixes,omitempty"`
	cause          error
}

// New creates a CffError carrying the default fixes for code.
func New(code ErrorCode, message string, cause error) *CffError {
	return &CffError{
		Code:           code,
		Message:        message,
		cause:          cause,
		SuggestedFixes: GetSuggestedFixes(code),
	}
}

// Error implements the error interface
func (e *CffError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *CffError) Unwrap() error {
	return e.cause
}

// WithDetails adds details to the error
func (e *CffError) WithDetails(details interface{}) *CffError {
	e.Details = details
	return e
}

// CodeOf returns the code of the first CffError in err's chain, or
// InternalError when there is none.
func CodeOf(err error) ErrorCode {
	var ce *CffError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return InternalError
}

// ErrorActions maps error codes to suggested fix actions
var ErrorActions = map[ErrorCode][]FixAction{
	FormatViolation: {
		{
			Type:        ChangeDependency,
			Description: "Use a dependency version compiled for the supported JVM, or raise supportedClassFileFormat",
		},
	},
	ResolutionFailed: {
		{
			Type:        RunCommand,
			Command:     "mvn dependency:go-offline",
			Description: "Download missing artifacts into the local repository",
		},
		{
			Type:        EditConfig,
			Description: "Add the repository holding the artifacts to repositories",
		},
	},
	GraphBuildFailed: {
		{
			Type:        RunCommand,
			Command:     "mvn dependency:tree -DoutputFile=deps.txt",
			Safe:        true,
			Description: "Regenerate the dependency tree",
		},
	},
	ConfigInvalid: {
		{
			Type:        RunCommand,
			Command:     "cffcheck config show",
			Safe:        true,
			Description: "Inspect the effective configuration",
		},
	},
}

// GetSuggestedFixes returns suggested fixes for an error code
func GetSuggestedFixes(code ErrorCode) []FixAction {
	if fixes, ok := ErrorActions[code]; ok {
		return fixes
	}
	return nil
}
