package version

import (
	"strings"
	"testing"

	goversion "github.com/hashicorp/go-version"
)

func TestInfo(t *testing.T) {
	origVersion, origCommit := Version, Commit
	defer func() {
		Version, Commit = origVersion, origCommit
	}()

	tests := []struct {
		name        string
		commit      string
		wantContain string
		wantExact   string
	}{
		{name: "unknown commit", commit: "unknown", wantExact: "1.0.0"},
		{name: "short commit", commit: "abc", wantExact: "1.0.0"},
		{name: "exactly 7 chars", commit: "1234567", wantExact: "1.0.0"},
		{name: "full hash", commit: "abc1234567890", wantContain: "(abc1234)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			Version = "1.0.0"
			Commit = tt.commit

			got := Info()
			if tt.wantExact != "" && got != tt.wantExact {
				t.Errorf("Info() = %q, want %q", got, tt.wantExact)
			}
			if tt.wantContain != "" && !strings.Contains(got, tt.wantContain) {
				t.Errorf("Info() = %q, want to contain %q", got, tt.wantContain)
			}
		})
	}
}

func TestFull(t *testing.T) {
	origVersion, origCommit, origBuildDate := Version, Commit, BuildDate
	defer func() {
		Version, Commit, BuildDate = origVersion, origCommit, origBuildDate
	}()

	Version = "1.2.3"
	Commit = "abcdef123456"
	BuildDate = "2026-01-15"

	got := Full()
	for _, part := range []string{"cffcheck version 1.2.3", "Commit: abcdef123456", "Built: 2026-01-15"} {
		if !strings.Contains(got, part) {
			t.Errorf("Full() = %q, want to contain %q", got, part)
		}
	}
}

func TestDefaultVersionIsSemver(t *testing.T) {
	if _, err := goversion.NewSemver(Version); err != nil {
		t.Errorf("Version %q is not semver: %v", Version, err)
	}
}
