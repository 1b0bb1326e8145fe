// Package deps defines the dependency coordinates and resolved references
// that flow between graph building, resolution and archive scanning.
package deps

import (
	"fmt"
	"sort"
	"strings"
)

// Scope is the declared usage classification of a dependency.
type Scope string

const (
	ScopeCompile  Scope = "compile"
	ScopeRuntime  Scope = "runtime"
	ScopeProvided Scope = "provided"
	ScopeTest     Scope = "test"
	ScopeSystem   Scope = "system"
	ScopeImport   Scope = "import"
)

// ParseScope normalizes a declared scope. An empty scope means compile.
func ParseScope(s string) (Scope, error) {
	switch sc := Scope(strings.ToLower(strings.TrimSpace(s))); sc {
	case "":
		return ScopeCompile, nil
	case ScopeCompile, ScopeRuntime, ScopeProvided, ScopeTest, ScopeSystem, ScopeImport:
		return sc, nil
	default:
		return "", fmt.Errorf("unknown dependency scope %q", s)
	}
}

// Coordinate identifies an artifact in a repository.
type Coordinate struct {
	GroupID    string `json:"groupId" yaml:"groupId" toml:"groupId"`
	ArtifactID string `json:"artifactId" yaml:"artifactId" toml:"artifactId"`
	Version    string `json:"version" yaml:"version" toml:"version"`
	Type       string `json:"type,omitempty" yaml:"type,omitempty" toml:"type,omitempty"`
	Classifier string `json:"classifier,omitempty" yaml:"classifier,omitempty" toml:"classifier,omitempty"`
}

// Packaging returns the artifact type, defaulting to jar.
func (c Coordinate) Packaging() string {
	if c.Type == "" {
		return "jar"
	}
	return c.Type
}

// ID renders groupId:artifactId:type[:classifier]:version, the form used in
// dependency trails.
func (c Coordinate) ID() string {
	parts := []string{c.GroupID, c.ArtifactID, c.Packaging()}
	if c.Classifier != "" {
		parts = append(parts, c.Classifier)
	}
	parts = append(parts, c.Version)
	return strings.Join(parts, ":")
}

// GAV renders groupId:artifactId:version.
func (c Coordinate) GAV() string {
	return c.GroupID + ":" + c.ArtifactID + ":" + c.Version
}

func (c Coordinate) String() string {
	return c.ID()
}

// Reference is a dependency resolved to an archive on disk. References are
// built once during collection and never modified afterwards.
type Reference struct {
	GroupID    string `json:"groupId"`
	ArtifactID string `json:"artifactId"`
	Version    string `json:"version"`

	// Path is the absolute path of the resolved archive.
	Path string `json:"path"`

	// AvailableVersions lists versions known to the resolver, oldest first.
	AvailableVersions []string `json:"availableVersions,omitempty"`

	// Trail lists the dependency ids from the build root down to, but not
	// including, this dependency.
	Trail []string `json:"trail,omitempty"`
}

// GAV renders groupId:artifactId:version.
func (r Reference) GAV() string {
	return r.GroupID + ":" + r.ArtifactID + ":" + r.Version
}

func (r Reference) String() string {
	return fmt.Sprintf("%s:%s:%s - %s", r.GroupID, r.ArtifactID, r.Version, r.Path)
}

// key is the identity of a reference: coordinates and path, not trail.
type key struct {
	groupID, artifactID, version, path string
}

func (r Reference) key() key {
	return key{r.GroupID, r.ArtifactID, r.Version, r.Path}
}

// ReferenceSet holds references unique by (groupId, artifactId, version,
// path). The zero value is ready to use.
type ReferenceSet struct {
	items map[key]Reference
}

// NewReferenceSet creates an empty set.
func NewReferenceSet() *ReferenceSet {
	return &ReferenceSet{items: make(map[key]Reference)}
}

// Add inserts ref unless an equal reference is present, in which case the
// existing one, trail included, is kept. It reports whether ref was added.
func (s *ReferenceSet) Add(ref Reference) bool {
	if s.items == nil {
		s.items = make(map[key]Reference)
	}
	k := ref.key()
	if _, ok := s.items[k]; ok {
		return false
	}
	s.items[k] = ref
	return true
}

// Contains reports whether a reference equal to ref is present.
func (s *ReferenceSet) Contains(ref Reference) bool {
	_, ok := s.items[ref.key()]
	return ok
}

// Len returns the number of references.
func (s *ReferenceSet) Len() int {
	return len(s.items)
}

// Items returns the references ordered by coordinates then path, so callers
// iterate deterministically.
func (s *ReferenceSet) Items() []Reference {
	out := make([]Reference, 0, len(s.items))
	for _, r := range s.items {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].key(), out[j].key()
		if a.groupID != b.groupID {
			return a.groupID < b.groupID
		}
		if a.artifactID != b.artifactID {
			return a.artifactID < b.artifactID
		}
		if a.version != b.version {
			return a.version < b.version
		}
		return a.path < b.path
	})
	return out
}
