package main

import (
	"errors"

	cerrors "cffcheck/internal/errors"
)

// ExitCode represents a CLI exit code.
type ExitCode int

const (
	// ExitSuccess indicates every dependency passed.
	ExitSuccess ExitCode = 0

	// ExitError indicates a general error, including invalid configuration.
	ExitError ExitCode = 1

	// ExitViolation indicates at least one dependency exceeds the format.
	ExitViolation ExitCode = 2

	// ExitResolution indicates dependencies could not be resolved.
	ExitResolution ExitCode = 3

	// ExitInput indicates the graph or an archive could not be read.
	ExitInput ExitCode = 4
)

// String returns a description of the exit code.
func (e ExitCode) String() string {
	switch e {
	case ExitSuccess:
		return "success"
	case ExitError:
		return "error"
	case ExitViolation:
		return "format violation"
	case ExitResolution:
		return "resolution failure"
	case ExitInput:
		return "input failure"
	default:
		return "unknown"
	}
}

// exitCodeFor maps a command error to the process exit code.
func exitCodeFor(err error) ExitCode {
	if err == nil {
		return ExitSuccess
	}
	switch cerrors.CodeOf(err) {
	case cerrors.FormatViolation:
		return ExitViolation
	case cerrors.ResolutionFailed:
		return ExitResolution
	case cerrors.GraphBuildFailed, cerrors.ArchiveReadFailed:
		return ExitInput
	default:
		return ExitError
	}
}

// reportedError marks an error whose output the command already wrote.
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }

func reported(err error) error {
	if err == nil {
		return nil
	}
	return &reportedError{err: err}
}

func isReported(err error) bool {
	var r *reportedError
	return errors.As(err, &r)
}
