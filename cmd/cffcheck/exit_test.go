package main

import (
	"errors"
	"fmt"
	"testing"

	cerrors "cffcheck/internal/errors"
)

func TestExitCodeFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ExitCode
	}{
		{"nil", nil, ExitSuccess},
		{"plain error", errors.New("boom"), ExitError},
		{"config", cerrors.New(cerrors.ConfigInvalid, "bad", nil), ExitError},
		{"violation", cerrors.New(cerrors.FormatViolation, "report", nil), ExitViolation},
		{"resolution", cerrors.New(cerrors.ResolutionFailed, "missing", nil), ExitResolution},
		{"graph", cerrors.New(cerrors.GraphBuildFailed, "graph", nil), ExitInput},
		{"archive", cerrors.New(cerrors.ArchiveReadFailed, "archive", nil), ExitInput},
		{"reported and wrapped", reported(fmt.Errorf("check: %w", cerrors.New(cerrors.FormatViolation, "x", nil))), ExitViolation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitCodeFor(tt.err); got != tt.want {
				t.Errorf("exitCodeFor() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExitCode_String(t *testing.T) {
	if got := ExitViolation.String(); got != "format violation" {
		t.Errorf("String() = %q", got)
	}
	if got := ExitCode(42).String(); got != "unknown" {
		t.Errorf("String() = %q, want unknown", got)
	}
}

func TestReported(t *testing.T) {
	if reported(nil) != nil {
		t.Error("reported(nil) should be nil")
	}
	err := reported(errors.New("x"))
	if !isReported(err) {
		t.Error("isReported() = false")
	}
	if isReported(errors.New("x")) {
		t.Error("plain errors are not reported")
	}
}
