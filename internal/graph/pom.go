package graph

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

type pomFile struct {
	XMLName    xml.Name `xml:"project"`
	GroupID    string   `xml:"groupId"`
	ArtifactID string   `xml:"artifactId"`
	Version    string   `xml:"version"`
	Parent     struct {
		GroupID string `xml:"groupId"`
		Version string `xml:"version"`
	} `xml:"parent"`
	Properties struct {
		Entries []pomProperty `xml:",any"`
	} `xml:"properties"`
	Dependencies []pomDependency `xml:"dependencies>dependency"`
}

type pomProperty struct {
	XMLName xml.Name
	Value   string `xml:",chardata"`
}

type pomDependency struct {
	GroupID    string `xml:"groupId"`
	ArtifactID string `xml:"artifactId"`
	Version    string `xml:"version"`
	Scope      string `xml:"scope"`
	SystemPath string `xml:"systemPath"`
}

var propertyRef = regexp.MustCompile(`\$\{([^}]+)\}`)

// LoadPOMDeclarations reads the direct dependency declarations of a
// pom.xml. Property references to the project's basedir, version and
// groupId and to entries of <properties> are expanded; others are left as
// written. Dependencies inherited from a parent are not included.
func LoadPOMDeclarations(path string) ([]Declaration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read pom: %w", err)
	}

	var pom pomFile
	if err := xml.Unmarshal(data, &pom); err != nil {
		return nil, fmt.Errorf("failed to parse pom %s: %w", path, err)
	}

	basedir, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, err
	}

	groupID := firstNonEmpty(pom.GroupID, pom.Parent.GroupID)
	version := firstNonEmpty(pom.Version, pom.Parent.Version)
	props := map[string]string{
		"basedir":            basedir,
		"project.basedir":    basedir,
		"project.groupId":    groupID,
		"project.artifactId": pom.ArtifactID,
		"project.version":    version,
	}
	for _, p := range pom.Properties.Entries {
		props[p.XMLName.Local] = strings.TrimSpace(p.Value)
	}

	expand := func(s string) string {
		return propertyRef.ReplaceAllStringFunc(strings.TrimSpace(s), func(ref string) string {
			if v, ok := props[ref[2:len(ref)-1]]; ok {
				return v
			}
			return ref
		})
	}

	decls := make([]Declaration, 0, len(pom.Dependencies))
	for _, d := range pom.Dependencies {
		decl := Declaration{
			GroupID:    expand(d.GroupID),
			ArtifactID: expand(d.ArtifactID),
			Version:    expand(d.Version),
			Scope:      strings.TrimSpace(d.Scope),
			SystemPath: expand(d.SystemPath),
		}
		if decl.SystemPath != "" && !filepath.IsAbs(decl.SystemPath) {
			decl.SystemPath = filepath.Join(basedir, decl.SystemPath)
		}
		decls = append(decls, decl)
	}
	return decls, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
