package paths

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestProjectPaths(t *testing.T) {
	root := filepath.Join("work", "app")
	if got, want := ConfigPath(root), filepath.Join("work", "app", ".cffcheck", "config.json"); got != want {
		t.Errorf("ConfigPath() = %q, want %q", got, want)
	}
	if got := DefaultCachePath(); !strings.HasSuffix(got, CacheFileName) {
		t.Errorf("DefaultCachePath() = %q", got)
	}
}

func TestDefaultMavenRepository(t *testing.T) {
	t.Setenv(MavenRepoEnvVar, "")
	if got := DefaultMavenRepository(); !strings.HasPrefix(got, "~") {
		t.Errorf("DefaultMavenRepository() = %q, want a ~ path", got)
	}

	t.Setenv(MavenRepoEnvVar, "/srv/maven")
	if got := DefaultMavenRepository(); got != "/srv/maven" {
		t.Errorf("DefaultMavenRepository() = %q, want %q", got, "/srv/maven")
	}
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	tests := []struct {
		in   string
		want string
	}{
		{"~", home},
		{"~/.m2/repository", filepath.Join(home, ".m2", "repository")},
		{"/abs/path", "/abs/path"},
		{"relative/path", "relative/path"},
		{"~other/path", "~other/path"},
	}
	for _, tt := range tests {
		got, err := ExpandHome(tt.in)
		if err != nil {
			t.Errorf("ExpandHome(%q) error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ExpandHome(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestResolve(t *testing.T) {
	root := t.TempDir()
	got, err := Resolve(root, filepath.Join(".cffcheck", "scan-cache.db"))
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(root, ".cffcheck", "scan-cache.db"); got != want {
		t.Errorf("Resolve(relative) = %q, want %q", got, want)
	}

	abs := filepath.Join(root, "x.db")
	if got, _ := Resolve("/elsewhere", abs); got != abs {
		t.Errorf("Resolve(absolute) = %q, want %q", got, abs)
	}
}

func TestNormalizePath(t *testing.T) {
	if got := NormalizePath(filepath.Join("a", "b")); got != "a/b" {
		t.Errorf("NormalizePath() = %q, want %q", got, "a/b")
	}
}
