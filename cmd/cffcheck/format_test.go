package main

import (
	"errors"
	"strings"
	"testing"

	cerrors "cffcheck/internal/errors"
	"cffcheck/internal/resolve"
	"cffcheck/internal/rule"
)

func TestFormatResponse_JSON(t *testing.T) {
	resp := map[string]interface{}{"key": "value", "num": 42}

	result, err := FormatResponse(resp, FormatJSON)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(result, `"key": "value"`) || !strings.Contains(result, `"num": 42`) {
		t.Errorf("JSON output = %s", result)
	}
}

func TestFormatResponse_UnsupportedFormat(t *testing.T) {
	_, err := FormatResponse(map[string]string{}, "xml")
	if err == nil || !strings.Contains(err.Error(), "unsupported format") {
		t.Errorf("error = %v, want unsupported format", err)
	}
}

func TestNewCheckResponse(t *testing.T) {
	passed := newCheckResponse(51, &rule.Result{RunID: "r", Project: "app", Scanned: 3, Report: rule.NewReport(51)}, nil)
	if !passed.Passed || passed.Error != nil || passed.Scanned != 3 || passed.Violations == nil {
		t.Errorf("passed response = %+v", passed)
	}
	if passed.MaxRelease != "Java 7" {
		t.Errorf("MaxRelease = %q", passed.MaxRelease)
	}

	report := rule.NewReport(51)
	violation := cerrors.New(cerrors.FormatViolation, "report", nil).WithDetails(report)
	failed := newCheckResponse(51, &rule.Result{Report: report}, violation)
	if failed.Passed || failed.Error.Details != nil {
		t.Errorf("failed response = %+v, want violation details omitted", failed)
	}
	if violation.Details == nil {
		t.Error("the original error must keep its details")
	}

	internal := newCheckResponse(51, nil, errors.New("boom"))
	if internal.Error.Code != cerrors.InternalError {
		t.Errorf("Code = %v, want %v", internal.Error.Code, cerrors.InternalError)
	}
}

func TestFormatErrorHuman(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want []string
	}{
		{
			name: "plain",
			err:  errors.New("boom"),
			want: []string{"Error: boom"},
		},
		{
			name: "graph failure with cause",
			err:  cerrors.New(cerrors.GraphBuildFailed, "Unable to build dependency graph on project deps.yaml", errors.New("line 3: bad indent")),
			want: []string{"Error: Unable to build dependency graph on project deps.yaml: line 3: bad indent", "$ mvn dependency:tree"},
		},
		{
			name: "resolution failures listed",
			err: cerrors.New(cerrors.ResolutionFailed, "Unable to resolve the projects dependencies", nil).
				WithDetails([]resolve.Failure{{ID: "g:a:jar:1", Scope: "compile", Reason: "artifact not found"}}),
			want: []string{"Unable to resolve the projects dependencies:\n  - g:a:jar:1 (compile): artifact not found"},
		},
		{
			name: "violation printed as is",
			err:  cerrors.New(cerrors.FormatViolation, rule.ReportHeader+"\ng:a:1", nil),
			want: []string{rule.ReportHeader + "\ng:a:1\n"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := formatErrorHuman(tt.err)
			for _, w := range tt.want {
				if !strings.Contains(got, w) {
					t.Errorf("formatErrorHuman() =\n%s\nwant to contain %q", got, w)
				}
			}
		})
	}
}

func TestFormatScanHuman(t *testing.T) {
	got := formatScanHuman(&ScanResponse{
		MaxRelease: "Java 8",
		Archives: []ArchiveResult{
			{Path: "a.jar"},
			{Path: "b.jar", Exceeds: true},
			{Path: "c.jar", Error: "zip: not a valid zip file"},
		},
	})
	want := "ok    a.jar\nFAIL  b.jar (exceeds Java 8)\nERROR c.jar: zip: not a valid zip file\n"
	if got != want {
		t.Errorf("formatScanHuman() =\n%s\nwant\n%s", got, want)
	}
}
