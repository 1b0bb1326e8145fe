// Package paths locates cffcheck's project directory and the local Maven
// repository.
package paths

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	// ProjectDirName is the per-project directory holding config and cache.
	ProjectDirName = ".cffcheck"

	// ConfigFileName is the config file inside ProjectDirName.
	ConfigFileName = "config.json"

	// CacheFileName is the scan cache database inside ProjectDirName.
	CacheFileName = "scan-cache.db"

	// MavenRepoEnvVar overrides the local Maven repository location.
	MavenRepoEnvVar = "CFFCHECK_MAVEN_REPO"
)

// ProjectDir returns <root>/.cffcheck.
func ProjectDir(root string) string {
	return filepath.Join(root, ProjectDirName)
}

// ConfigPath returns <root>/.cffcheck/config.json.
func ConfigPath(root string) string {
	return filepath.Join(ProjectDir(root), ConfigFileName)
}

// DefaultCachePath is the cache location relative to the project root.
func DefaultCachePath() string {
	return filepath.Join(ProjectDirName, CacheFileName)
}

// DefaultMavenRepository returns the local repository, honoring
// CFFCHECK_MAVEN_REPO and falling back to ~/.m2/repository.
func DefaultMavenRepository() string {
	if repo := os.Getenv(MavenRepoEnvVar); repo != "" {
		return repo
	}
	return filepath.Join("~", ".m2", "repository")
}

// ExpandHome replaces a leading ~ with the user's home directory. Paths
// that do not start with ~ are returned unchanged.
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") && !strings.HasPrefix(path, "~"+string(filepath.Separator)) {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, path[1:]), nil
}

// Resolve expands ~ and makes a relative path relative to root.
func Resolve(root, path string) (string, error) {
	expanded, err := ExpandHome(path)
	if err != nil {
		return "", err
	}
	if filepath.IsAbs(expanded) {
		return expanded, nil
	}
	return filepath.Join(root, expanded), nil
}

// NormalizePath converts backslashes to forward slashes for display.
func NormalizePath(path string) string {
	return filepath.ToSlash(path)
}
