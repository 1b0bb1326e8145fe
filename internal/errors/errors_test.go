package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	cause := errors.New("underlying error")
	err := New(ResolutionFailed, "Unable to resolve the projects dependencies", cause)

	if err.Code != ResolutionFailed {
		t.Errorf("Code = %v, want %v", err.Code, ResolutionFailed)
	}
	if len(err.SuggestedFixes) != 2 {
		t.Errorf("len(SuggestedFixes) = %d, want 2", len(err.SuggestedFixes))
	}
}

func TestCffError_Error(t *testing.T) {
	tests := []struct {
		name      string
		code      ErrorCode
		message   string
		cause     error
		wantParts []string
	}{
		{
			name:      "with cause",
			code:      GraphBuildFailed,
			message:   "Unable to build dependency graph on project app",
			cause:     errors.New("unexpected EOF"),
			wantParts: []string{"GRAPH_BUILD_FAILED", "project app", "unexpected EOF"},
		},
		{
			name:      "without cause",
			code:      FormatViolation,
			message:   "1 dependency exceeds the supported format",
			wantParts: []string{"FORMAT_VIOLATION", "1 dependency"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := New(tt.code, tt.message, tt.cause).Error()
			for _, part := range tt.wantParts {
				if !strings.Contains(got, part) {
					t.Errorf("Error() = %q, want to contain %q", got, part)
				}
			}
		})
	}
}

func TestCffError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := New(ArchiveReadFailed, "cannot read", cause)
	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the cause")
	}
	if New(InternalError, "x", nil).Unwrap() != nil {
		t.Error("Unwrap() without cause should be nil")
	}
}

func TestCodeOf(t *testing.T) {
	wrapped := fmt.Errorf("check: %w", New(ConfigInvalid, "bad", nil))
	if got := CodeOf(wrapped); got != ConfigInvalid {
		t.Errorf("CodeOf(wrapped) = %v, want %v", got, ConfigInvalid)
	}
	if got := CodeOf(errors.New("plain")); got != InternalError {
		t.Errorf("CodeOf(plain) = %v, want %v", got, InternalError)
	}
}

func TestWithDetails(t *testing.T) {
	err := New(ResolutionFailed, "x", nil).WithDetails([]string{"g:a:jar:1"})
	if d, ok := err.Details.([]string); !ok || len(d) != 1 {
		t.Errorf("Details = %v", err.Details)
	}
}

func TestGetSuggestedFixes(t *testing.T) {
	if fixes := GetSuggestedFixes(InternalError); fixes != nil {
		t.Errorf("GetSuggestedFixes(InternalError) = %v, want nil", fixes)
	}
	if fixes := GetSuggestedFixes(GraphBuildFailed); len(fixes) == 0 || !fixes[0].Safe {
		t.Errorf("GetSuggestedFixes(GraphBuildFailed) = %v", fixes)
	}
}
