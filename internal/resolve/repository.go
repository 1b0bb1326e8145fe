// Package resolve maps dependency graph nodes to archives on disk and
// collects them into a de-duplicated reference set.
package resolve

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hashicorp/go-version"

	"cffcheck/internal/deps"
)

// ErrNotFound is returned when no repository holds the requested artifact.
var ErrNotFound = errors.New("artifact not found")

// Artifact is the outcome of resolving a coordinate.
type Artifact struct {
	Coordinate deps.Coordinate

	// Resolved is set once the resolver located the artifact's file.
	Resolved bool

	// File is the absolute path of the artifact, when resolved.
	File string

	// AvailableVersions lists versions the resolver knows, oldest first.
	AvailableVersions []string
}

// Resolver locates the archive for a coordinate.
type Resolver interface {
	Resolve(c deps.Coordinate) (*Artifact, error)
}

// LocalRepository resolves artifacts from one or more directories using the
// Maven repository layout:
//
//	<root>/<group as path>/<artifactId>/<version>/<artifactId>-<version>[-<classifier>].<ext>
//
// Repositories are searched in order and the first hit wins.
type LocalRepository struct {
	Roots  []string
	logger *slog.Logger
}

// NewLocalRepository creates a resolver over roots.
func NewLocalRepository(roots []string, logger *slog.Logger) *LocalRepository {
	return &LocalRepository{Roots: roots, logger: logger}
}

// Resolve returns ErrNotFound, wrapped, when no root has the file.
func (r *LocalRepository) Resolve(c deps.Coordinate) (*Artifact, error) {
	if c.GroupID == "" || c.ArtifactID == "" || c.Version == "" {
		return nil, fmt.Errorf("incomplete coordinate %q", c.ID())
	}

	name := fileName(c)
	for _, root := range r.Roots {
		artifactDir := filepath.Join(root, groupPath(c.GroupID), c.ArtifactID)
		candidate := filepath.Join(artifactDir, c.Version, name)

		info, err := os.Stat(candidate)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to stat %s: %w", candidate, err)
			}
			continue
		}
		if !info.Mode().IsRegular() {
			continue
		}

		abs, err := filepath.Abs(candidate)
		if err != nil {
			return nil, err
		}
		if r.logger != nil {
			r.logger.Debug("Resolved artifact", "id", c.ID(), "file", abs)
		}
		return &Artifact{
			Coordinate:        c,
			Resolved:          true,
			File:              abs,
			AvailableVersions: availableVersions(artifactDir),
		}, nil
	}

	return nil, fmt.Errorf("%w: %s in %s", ErrNotFound, c.ID(), strings.Join(r.Roots, ", "))
}

func groupPath(groupID string) string {
	return strings.ReplaceAll(groupID, ".", string(filepath.Separator))
}

// fileName maps a coordinate to its file name. Types that are packaged as
// jars (test-jar, bundles, plugins) use the .jar extension, and test-jar
// implies the "tests" classifier.
func fileName(c deps.Coordinate) string {
	ext := c.Packaging()
	classifier := c.Classifier
	switch ext {
	case "test-jar":
		ext = "jar"
		if classifier == "" {
			classifier = "tests"
		}
	case "bundle", "maven-plugin", "ejb", "ejb-client", "java-source", "javadoc":
		ext = "jar"
	}

	name := c.ArtifactID + "-" + c.Version
	if classifier != "" {
		name += "-" + classifier
	}
	return name + "." + ext
}

// availableVersions lists the version directories next to the resolved one.
// Versions that parse are ordered semantically, the rest lexically after them.
func availableVersions(artifactDir string) []string {
	entries, err := os.ReadDir(artifactDir)
	if err != nil {
		return nil
	}

	var parsed []*version.Version
	raw := map[*version.Version]string{}
	var unparsed []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		v, err := version.NewVersion(e.Name())
		if err != nil {
			unparsed = append(unparsed, e.Name())
			continue
		}
		parsed = append(parsed, v)
		raw[v] = e.Name()
	}

	sort.Sort(version.Collection(parsed))
	sort.Strings(unparsed)

	out := make([]string, 0, len(parsed)+len(unparsed))
	for _, v := range parsed {
		out = append(out, raw[v])
	}
	return append(out, unparsed...)
}
