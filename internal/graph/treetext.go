package graph

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"cffcheck/internal/deps"
)

// TreeTextBuilder builds a project from the plain text output of
// `mvn dependency:tree`, either captured from the console (with "[INFO] "
// prefixes) or written with -DoutputFile.
type TreeTextBuilder struct {
	Path string

	// POM optionally names the project's pom.xml, the source of
	// declarations for system scoped dependencies.
	POM string
}

func (b *TreeTextBuilder) Source() string {
	return b.Path
}

func (b *TreeTextBuilder) Build() (*Project, error) {
	f, err := os.Open(b.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dependency tree: %w", err)
	}
	defer f.Close()

	project, err := ParseTreeText(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse dependency tree %s: %w", b.Path, err)
	}

	if b.POM != "" {
		decls, err := LoadPOMDeclarations(b.POM)
		if err != nil {
			return nil, err
		}
		project.Declarations = decls
	}
	return project, nil
}

// ParseTreeText parses the first project tree found in r. Lines before the
// project line are ignored, and the tree ends at the first line that is not
// a tree entry.
func ParseTreeText(r io.Reader) (*Project, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var (
		root   *Node
		stack  []*Node // stack[d] is the latest node at depth d
		lineNo int
	)

	for scanner.Scan() {
		lineNo++
		line := stripLogPrefix(scanner.Text())
		if strings.TrimSpace(line) == "" {
			if root != nil {
				break
			}
			continue
		}

		if root == nil {
			c, ok := parseRootLine(line)
			if !ok {
				continue
			}
			root = &Node{Coordinate: c}
			stack = []*Node{root}
			continue
		}

		depth, entry, ok := splitTreePrefix(line)
		if !ok {
			break
		}
		if depth > len(stack) {
			return nil, fmt.Errorf("line %d: entry is nested deeper than its parent", lineNo)
		}
		if strings.HasPrefix(entry, "(") {
			// Verbose output lists omitted duplicates and conflicts in
			// parentheses; they are not part of the resolved tree.
			continue
		}

		c, scope, err := parseEntry(entry)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		n := &Node{Coordinate: c, Scope: scope}
		parent := stack[depth-1]
		parent.Children = append(parent.Children, n)
		stack = append(stack[:depth], n)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if root == nil {
		return nil, fmt.Errorf("no project found in dependency tree output")
	}

	AssignTrails(root)
	return &Project{Coordinate: root.Coordinate, Root: root}, nil
}

func stripLogPrefix(line string) string {
	line = strings.TrimRight(line, "\r")
	for _, p := range []string{"[INFO] ", "[DEBUG] ", "[WARNING] "} {
		if strings.HasPrefix(line, p) {
			return line[len(p):]
		}
	}
	return line
}

// parseRootLine accepts groupId:artifactId:packaging[:classifier]:version
// with no tree prefix.
func parseRootLine(line string) (deps.Coordinate, bool) {
	if strings.ContainsAny(line, " \t") {
		return deps.Coordinate{}, false
	}
	parts := strings.Split(line, ":")
	switch len(parts) {
	case 4:
		return deps.Coordinate{GroupID: parts[0], ArtifactID: parts[1], Type: parts[2], Version: parts[3]}, nonEmpty(parts)
	case 5:
		return deps.Coordinate{GroupID: parts[0], ArtifactID: parts[1], Type: parts[2], Classifier: parts[3], Version: parts[4]}, nonEmpty(parts)
	default:
		return deps.Coordinate{}, false
	}
}

// splitTreePrefix measures the "|  " / "   " indentation ending in "+- " or
// "\- " and returns the depth (1 for direct dependencies) and the entry.
func splitTreePrefix(line string) (int, string, bool) {
	depth := 0
	for i := 0; i+3 <= len(line); i += 3 {
		unit := line[i : i+3]
		switch unit {
		case "+- ", "\\- ":
			return depth + 1, line[i+3:], true
		case "|  ", "   ":
			depth++
		default:
			return 0, "", false
		}
	}
	return 0, "", false
}

// parseEntry parses groupId:artifactId:type[:classifier]:version:scope and
// drops trailers such as " (optional)" or " (version managed from 1.0)".
func parseEntry(entry string) (deps.Coordinate, deps.Scope, error) {
	if i := strings.Index(entry, " "); i >= 0 {
		entry = entry[:i]
	}
	parts := strings.Split(entry, ":")

	var c deps.Coordinate
	var scope string
	switch len(parts) {
	case 5:
		c = deps.Coordinate{GroupID: parts[0], ArtifactID: parts[1], Type: parts[2], Version: parts[3]}
		scope = parts[4]
	case 6:
		c = deps.Coordinate{GroupID: parts[0], ArtifactID: parts[1], Type: parts[2], Classifier: parts[3], Version: parts[4]}
		scope = parts[5]
	default:
		return c, "", fmt.Errorf("malformed dependency %q", entry)
	}
	if !nonEmpty(parts) {
		return c, "", fmt.Errorf("malformed dependency %q", entry)
	}

	s, err := deps.ParseScope(scope)
	if err != nil {
		return c, "", err
	}
	return c, s, nil
}

func nonEmpty(parts []string) bool {
	for _, p := range parts {
		if p == "" {
			return false
		}
	}
	return true
}
