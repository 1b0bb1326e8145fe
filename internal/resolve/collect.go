package resolve

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"cffcheck/internal/deps"
	"cffcheck/internal/graph"
	"cffcheck/internal/slogutil"
)

// Options selects which scopes are left out of collection.
type Options struct {
	ExcludeScopeTest     bool
	ExcludeScopeProvided bool
}

// DefaultOptions excludes both test and provided scopes.
func DefaultOptions() Options {
	return Options{ExcludeScopeTest: true, ExcludeScopeProvided: true}
}

// Excludes reports whether nodes of scope s are left out.
func (o Options) Excludes(s deps.Scope) bool {
	return (o.ExcludeScopeTest && s == deps.ScopeTest) ||
		(o.ExcludeScopeProvided && s == deps.ScopeProvided)
}

// Failure records a node that could not be mapped to a readable file.
type Failure struct {
	ID     string   `json:"id"`
	Scope  string   `json:"scope"`
	Trail  []string `json:"trail,omitempty"`
	Reason string   `json:"reason"`
}

func (f Failure) String() string {
	return fmt.Sprintf("%s (%s): %s", f.ID, f.Scope, f.Reason)
}

// Result is the outcome of a collection.
type Result struct {
	References *deps.ReferenceSet
	Failures   []Failure
	// Excluded counts nodes skipped by scope.
	Excluded int
}

// Failed reports whether any node failed to resolve.
func (r *Result) Failed() bool {
	return len(r.Failures) > 0
}

// Collect resolves every dependency below the project root into a set of
// references. Each node's children are handled before the node itself. A
// node excluded by scope adds nothing but its subtree is still visited, and
// a node that fails to resolve is recorded without stopping the traversal.
func Collect(project *graph.Project, resolver Resolver, opts Options, logger *slog.Logger) *Result {
	res := &Result{References: deps.NewReferenceSet()}
	if project == nil || project.Root == nil {
		return res
	}
	if logger == nil {
		logger = slogutil.NewDiscardLogger()
	}

	c := collector{
		project:  project,
		resolver: resolver,
		opts:     opts,
		logger:   logger,
		result:   res,
	}

	type frame struct {
		node     *graph.Node
		expanded bool
	}
	var stack []frame
	for i := len(project.Root.Children) - 1; i >= 0; i-- {
		stack = append(stack, frame{node: project.Root.Children[i]})
	}

	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if !top.expanded {
			top.expanded = true
			n := top.node
			for i := len(n.Children) - 1; i >= 0; i-- {
				stack = append(stack, frame{node: n.Children[i]})
			}
			continue
		}

		n := top.node
		stack = stack[:len(stack)-1]
		c.visit(n)
	}

	return res
}

type collector struct {
	project  *graph.Project
	resolver Resolver
	opts     Options
	logger   *slog.Logger
	result   *Result
}

func (c *collector) visit(n *graph.Node) {
	if c.opts.Excludes(n.Scope) {
		c.result.Excluded++
		c.logger.Debug("Skipping dependency by scope", "id", n.ID(), "scope", n.Scope)
		return
	}

	var (
		ref deps.Reference
		err error
	)
	if n.Scope == deps.ScopeSystem {
		ref, err = c.resolveSystem(n)
	} else {
		ref, err = c.resolveRepository(n)
	}
	if err != nil {
		c.logger.Error("Unable to resolve dependency",
			"id", n.ID(),
			"scope", n.Scope,
			"project", c.project.DisplayName(),
			"error", err,
		)
		c.result.Failures = append(c.result.Failures, Failure{
			ID:     n.ID(),
			Scope:  string(n.Scope),
			Trail:  n.Trail,
			Reason: err.Error(),
		})
		return
	}

	if !c.result.References.Add(ref) {
		c.logger.Debug("Dependency already collected", "id", n.ID(), "path", ref.Path)
	}
}

// resolveSystem finds the declaration naming the node and checks that its
// system path is a regular file.
func (c *collector) resolveSystem(n *graph.Node) (deps.Reference, error) {
	for _, d := range c.project.Declarations {
		if d.SystemPath == "" || !d.Matches(n.Coordinate) {
			continue
		}
		if !isRegularFile(d.SystemPath) {
			return deps.Reference{}, fmt.Errorf("system path %s is not a file", d.SystemPath)
		}
		path, err := filepath.Abs(d.SystemPath)
		if err != nil {
			return deps.Reference{}, err
		}
		return deps.Reference{
			GroupID:    n.Coordinate.GroupID,
			ArtifactID: n.Coordinate.ArtifactID,
			Version:    n.Coordinate.Version,
			Path:       path,
			Trail:      n.Trail,
		}, nil
	}
	return deps.Reference{}, fmt.Errorf("no system path declared for system scoped dependency")
}

func (c *collector) resolveRepository(n *graph.Node) (deps.Reference, error) {
	a, err := c.resolver.Resolve(n.Coordinate)
	if err != nil {
		return deps.Reference{}, err
	}
	if a == nil || !a.Resolved || a.File == "" || !isRegularFile(a.File) {
		return deps.Reference{}, fmt.Errorf("artifact was not resolved to a file")
	}

	coord := a.Coordinate
	if coord.ArtifactID == "" {
		coord = n.Coordinate
	}
	return deps.Reference{
		GroupID:           coord.GroupID,
		ArtifactID:        coord.ArtifactID,
		Version:           coord.Version,
		Path:              a.File,
		AvailableVersions: a.AvailableVersions,
		Trail:             n.Trail,
	}, nil
}

func isRegularFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
