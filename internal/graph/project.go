// Package graph builds the dependency tree of a project from files produced
// by, or written for, the build tool.
package graph

import (
	"path/filepath"
	"strings"

	"cffcheck/internal/deps"
)

// Builder produces the dependency tree of a single project.
type Builder interface {
	// Build reads the project and its resolved dependency tree.
	Build() (*Project, error)
	// Source names what the builder reads, for diagnostics.
	Source() string
}

// Project is a built project: its own coordinates, the dependencies it
// declares directly and the resolved tree rooted at the project.
type Project struct {
	Name       string
	Coordinate deps.Coordinate

	// Declarations are the project's direct dependency declarations. They
	// are the only place system scoped dependencies carry their file path.
	Declarations []Declaration

	// Root is the project node. Its children are the direct dependencies.
	Root *Node
}

// DisplayName returns the project name, falling back to its coordinates.
func (p *Project) DisplayName() string {
	if p.Name != "" {
		return p.Name
	}
	return p.Coordinate.GAV()
}

// Declaration is a dependency as written in the project's build file.
// Empty fields are absent, not wildcards.
type Declaration struct {
	GroupID    string `json:"groupId" yaml:"groupId" toml:"groupId"`
	ArtifactID string `json:"artifactId" yaml:"artifactId" toml:"artifactId"`
	Version    string `json:"version,omitempty" yaml:"version,omitempty" toml:"version,omitempty"`
	Scope      string `json:"scope,omitempty" yaml:"scope,omitempty" toml:"scope,omitempty"`
	SystemPath string `json:"systemPath,omitempty" yaml:"systemPath,omitempty" toml:"systemPath,omitempty"`
}

// Matches reports whether the declaration names the artifact at c. Each of
// artifactId, groupId and version must be equal, where two absent values
// are equal and an absent value never equals a present one.
func (d Declaration) Matches(c deps.Coordinate) bool {
	return d.ArtifactID == c.ArtifactID &&
		d.GroupID == c.GroupID &&
		d.Version == c.Version
}

// Node is one artifact in the resolved tree.
type Node struct {
	Coordinate deps.Coordinate
	Scope      deps.Scope
	Children   []*Node

	// Trail lists the ids of the node's ancestors, root first. It is
	// empty for the root.
	Trail []string
}

// ID returns the node's trail id, groupId:artifactId:type[:classifier]:version.
func (n *Node) ID() string {
	return n.Coordinate.ID()
}

// AssignTrails sets the trail of every node below root.
func AssignTrails(root *Node) {
	if root == nil {
		return
	}
	root.Trail = nil
	stack := []*Node{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		for _, c := range n.Children {
			trail := make([]string, len(n.Trail), len(n.Trail)+1)
			copy(trail, n.Trail)
			c.Trail = append(trail, n.ID())
			stack = append(stack, c)
		}
	}
}

// Walk visits every node below root depth first, parents before children.
func Walk(root *Node, fn func(*Node)) {
	if root == nil {
		return
	}
	stack := []*Node{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		fn(n)
		for i := len(n.Children) - 1; i >= 0; i-- {
			stack = append(stack, n.Children[i])
		}
	}
}

// NewFileBuilder picks a builder for path by its extension: ".txt", ".tree"
// and ".log" are `mvn dependency:tree` output, anything else a descriptor.
// pom may be empty.
func NewFileBuilder(path, pom string) Builder {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".tree", ".log":
		return &TreeTextBuilder{Path: path, POM: pom}
	default:
		return &DescriptorBuilder{Path: path, POM: pom}
	}
}
