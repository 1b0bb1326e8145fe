package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"cffcheck/internal/deps"
)

// Descriptor is the on-disk form of a resolved project: the project
// coordinates, its direct declarations and the resolved dependency tree.
//
//	project:
//	  name: demo
//	  groupId: com.example
//	  artifactId: demo
//	  version: 1.0.0
//	dependencies:
//	  - {groupId: com.sun, artifactId: tools, version: "1.8", scope: system, systemPath: lib/tools.jar}
//	tree:
//	  - groupId: junit
//	    artifactId: junit
//	    version: 4.13.1
//	    scope: test
//	    children:
//	      - {groupId: org.hamcrest, artifactId: hamcrest-core, version: "1.3", scope: test}
type Descriptor struct {
	Project      DescriptorProject `json:"project" yaml:"project" toml:"project"`
	Dependencies []Declaration     `json:"dependencies,omitempty" yaml:"dependencies,omitempty" toml:"dependencies,omitempty"`
	Tree         []DescriptorNode  `json:"tree,omitempty" yaml:"tree,omitempty" toml:"tree,omitempty"`
}

// DescriptorProject describes the project at the root of the tree.
type DescriptorProject struct {
	Name       string `json:"name,omitempty" yaml:"name,omitempty" toml:"name,omitempty"`
	GroupID    string `json:"groupId" yaml:"groupId" toml:"groupId"`
	ArtifactID string `json:"artifactId" yaml:"artifactId" toml:"artifactId"`
	Version    string `json:"version" yaml:"version" toml:"version"`
	Packaging  string `json:"packaging,omitempty" yaml:"packaging,omitempty" toml:"packaging,omitempty"`
}

// DescriptorNode is one resolved dependency and its own dependencies.
type DescriptorNode struct {
	GroupID    string           `json:"groupId" yaml:"groupId" toml:"groupId"`
	ArtifactID string           `json:"artifactId" yaml:"artifactId" toml:"artifactId"`
	Version    string           `json:"version" yaml:"version" toml:"version"`
	Type       string           `json:"type,omitempty" yaml:"type,omitempty" toml:"type,omitempty"`
	Classifier string           `json:"classifier,omitempty" yaml:"classifier,omitempty" toml:"classifier,omitempty"`
	Scope      string           `json:"scope,omitempty" yaml:"scope,omitempty" toml:"scope,omitempty"`
	Children   []DescriptorNode `json:"children,omitempty" yaml:"children,omitempty" toml:"children,omitempty"`
}

// DescriptorBuilder builds a project from a YAML, JSON or TOML descriptor.
type DescriptorBuilder struct {
	Path string

	// POM optionally names a pom.xml whose declarations are appended to the
	// descriptor's own.
	POM string
}

func (b *DescriptorBuilder) Source() string {
	return b.Path
}

// Build reads and decodes the descriptor. Relative system paths are
// resolved against the descriptor's directory.
func (b *DescriptorBuilder) Build() (*Project, error) {
	data, err := os.ReadFile(b.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read descriptor: %w", err)
	}

	desc, err := DecodeDescriptor(data, descriptorFormat(b.Path))
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(b.Path), err)
	}

	project, err := desc.toProject(filepath.Dir(b.Path))
	if err != nil {
		return nil, fmt.Errorf("invalid descriptor %s: %w", filepath.Base(b.Path), err)
	}

	if b.POM != "" {
		decls, err := LoadPOMDeclarations(b.POM)
		if err != nil {
			return nil, err
		}
		project.Declarations = append(project.Declarations, decls...)
	}
	return project, nil
}

func descriptorFormat(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return "json"
	case ".toml":
		return "toml"
	default:
		return "yaml"
	}
}

// DecodeDescriptor decodes data in the given format (yaml, json or toml).
// Unknown fields are rejected so that typos do not silently drop nodes.
func DecodeDescriptor(data []byte, format string) (*Descriptor, error) {
	var desc Descriptor
	switch format {
	case "json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&desc); err != nil {
			return nil, err
		}
	case "toml":
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&desc); err != nil {
			return nil, err
		}
	case "yaml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&desc); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported descriptor format %q", format)
	}
	return &desc, nil
}

func (d *Descriptor) toProject(baseDir string) (*Project, error) {
	if d.Project.ArtifactID == "" {
		return nil, fmt.Errorf("project.artifactId is required")
	}

	project := &Project{
		Name: d.Project.Name,
		Coordinate: deps.Coordinate{
			GroupID:    d.Project.GroupID,
			ArtifactID: d.Project.ArtifactID,
			Version:    d.Project.Version,
			Type:       d.Project.Packaging,
		},
	}

	for _, decl := range d.Dependencies {
		if decl.SystemPath != "" && !filepath.IsAbs(decl.SystemPath) {
			decl.SystemPath = filepath.Join(baseDir, decl.SystemPath)
		}
		project.Declarations = append(project.Declarations, decl)
	}

	root := &Node{Coordinate: project.Coordinate}
	type pending struct {
		parent *Node
		nodes  []DescriptorNode
	}
	work := []pending{{root, d.Tree}}
	for len(work) > 0 {
		p := work[len(work)-1]
		work = work[:len(work)-1]

		for _, dn := range p.nodes {
			n, err := dn.toNode()
			if err != nil {
				return nil, err
			}
			p.parent.Children = append(p.parent.Children, n)
			if len(dn.Children) > 0 {
				work = append(work, pending{n, dn.Children})
			}
		}
	}

	AssignTrails(root)
	project.Root = root
	return project, nil
}

func (dn DescriptorNode) toNode() (*Node, error) {
	c := deps.Coordinate{
		GroupID:    dn.GroupID,
		ArtifactID: dn.ArtifactID,
		Version:    dn.Version,
		Type:       dn.Type,
		Classifier: dn.Classifier,
	}
	if c.GroupID == "" || c.ArtifactID == "" || c.Version == "" {
		return nil, fmt.Errorf("dependency %q needs groupId, artifactId and version", c.ID())
	}
	scope, err := deps.ParseScope(dn.Scope)
	if err != nil {
		return nil, fmt.Errorf("dependency %s: %w", c.ID(), err)
	}
	return &Node{Coordinate: c, Scope: scope}, nil
}
