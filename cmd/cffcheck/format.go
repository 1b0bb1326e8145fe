package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"cffcheck/internal/classfile"
	cerrors "cffcheck/internal/errors"
	"cffcheck/internal/resolve"
	"cffcheck/internal/rule"
	"cffcheck/internal/version"
)

// OutputFormat represents the output format type
type OutputFormat string

const (
	FormatJSON  OutputFormat = "json"
	FormatHuman OutputFormat = "human"
)

// CheckResponse is the machine readable outcome of a check.
type CheckResponse struct {
	Version    string            `json:"cffcheckVersion"`
	Passed     bool              `json:"passed"`
	RunID      string            `json:"runId,omitempty"`
	Project    string            `json:"project,omitempty"`
	MaxFormat  int               `json:"maxFormat"`
	MaxRelease string            `json:"maxRelease"`
	Scanned    int               `json:"scanned"`
	Excluded   int               `json:"excluded"`
	Violations []rule.Violation  `json:"violations"`
	Error      *cerrors.CffError `json:"error,omitempty"`
}

// ScanResponse is the outcome of scanning archives directly.
type ScanResponse struct {
	Version    string          `json:"cffcheckVersion"`
	MaxFormat  int             `json:"maxFormat"`
	MaxRelease string          `json:"maxRelease"`
	Archives   []ArchiveResult `json:"archives"`
}

// ArchiveResult is one scanned archive.
type ArchiveResult struct {
	Path    string `json:"path"`
	Exceeds bool   `json:"exceeds"`
	Error   string `json:"error,omitempty"`
}

func newCheckResponse(maxFormat int, res *rule.Result, err error) *CheckResponse {
	resp := &CheckResponse{
		Version:    version.Version,
		Passed:     err == nil,
		MaxFormat:  maxFormat,
		MaxRelease: classfile.ReleaseName(maxFormat),
		Violations: []rule.Violation{},
	}
	if res != nil {
		resp.RunID = res.RunID
		resp.Project = res.Project
		resp.Scanned = res.Scanned
		resp.Excluded = res.Excluded
		if res.Report != nil {
			resp.Violations = res.Report.Violations
		}
	}
	if err != nil {
		var ce *cerrors.CffError
		if !errors.As(err, &ce) {
			ce = cerrors.New(cerrors.InternalError, err.Error(), nil)
		}
		shown := *ce
		if shown.Code == cerrors.FormatViolation {
			// The violations are already listed at the top level.
			shown.Details = nil
		}
		resp.Error = &shown
	}
	return resp
}

// FormatResponse formats a response according to the specified format
func FormatResponse(resp interface{}, format OutputFormat) (string, error) {
	switch format {
	case FormatJSON:
		return formatJSON(resp)
	case FormatHuman:
		return formatHuman(resp)
	default:
		return "", fmt.Errorf("unsupported format: %s", format)
	}
}

// formatJSON formats the response as JSON
func formatJSON(resp interface{}) (string, error) {
	data, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return string(data), nil
}

// formatHuman formats the response in human-readable format
func formatHuman(resp interface{}) (string, error) {
	switch v := resp.(type) {
	case *ScanResponse:
		return formatScanHuman(v), nil
	default:
		return formatJSON(resp)
	}
}

func formatScanHuman(resp *ScanResponse) string {
	var b strings.Builder
	for _, a := range resp.Archives {
		switch {
		case a.Error != "":
			b.WriteString(fmt.Sprintf("ERROR %s: %s\n", a.Path, a.Error))
		case a.Exceeds:
			b.WriteString(fmt.Sprintf("FAIL  %s (exceeds %s)\n", a.Path, resp.MaxRelease))
		default:
			b.WriteString(fmt.Sprintf("ok    %s\n", a.Path))
		}
	}
	return b.String()
}

// formatErrorHuman renders a failure with its details and suggested fixes.
func formatErrorHuman(err error) string {
	var ce *cerrors.CffError
	if !errors.As(err, &ce) {
		return fmt.Sprintf("Error: %v\n", err)
	}

	var b strings.Builder
	switch ce.Code {
	case cerrors.FormatViolation:
		b.WriteString(ce.Message + "\n")
	case cerrors.ResolutionFailed:
		b.WriteString(ce.Message + ":\n")
		if failures, ok := ce.Details.([]resolve.Failure); ok {
			for _, f := range failures {
				b.WriteString(fmt.Sprintf("  - %s\n", f))
			}
		}
	default:
		b.WriteString("Error: " + ce.Message)
		if cause := ce.Unwrap(); cause != nil {
			b.WriteString(": " + cause.Error())
		}
		b.WriteString("\n")
	}

	if len(ce.SuggestedFixes) > 0 {
		b.WriteString("\nSuggested fixes:\n")
		for _, fix := range ce.SuggestedFixes {
			b.WriteString(fmt.Sprintf("  - %s\n", fix.Description))
			if fix.Command != "" {
				b.WriteString(fmt.Sprintf("    $ %s\n", fix.Command))
			}
		}
	}
	return b.String()
}
