// Package rule evaluates a project's dependencies against the maximum
// supported class file format.
package rule

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"cffcheck/internal/classfile"
	cerrors "cffcheck/internal/errors"
	"cffcheck/internal/graph"
	"cffcheck/internal/resolve"
	"cffcheck/internal/slogutil"
)

// ArchiveScanner reports whether an archive holds a class newer than
// maxFormat. classfile.Scanner and storage.CachingScanner implement it.
type ArchiveScanner interface {
	Scan(path string, maxFormat int) (bool, error)
}

// Options configures an evaluation.
type Options struct {
	MaxFormat int
	Collect   resolve.Options
}

// DefaultOptions allows Java 7 classes and excludes test and provided
// scopes.
func DefaultOptions() Options {
	return Options{
		MaxFormat: classfile.DefaultMaxFormat,
		Collect:   resolve.DefaultOptions(),
	}
}

// Rule checks every dependency of a project.
type Rule struct {
	opts     Options
	resolver resolve.Resolver
	scanner  ArchiveScanner
	logger   *slog.Logger
}

// New creates a rule. A nil logger discards output.
func New(opts Options, resolver resolve.Resolver, scanner ArchiveScanner, logger *slog.Logger) *Rule {
	if logger == nil {
		logger = slogutil.NewDiscardLogger()
	}
	return &Rule{opts: opts, resolver: resolver, scanner: scanner, logger: logger}
}

// Result summarises an evaluation.
type Result struct {
	RunID    string        `json:"runId"`
	Project  string        `json:"project"`
	Scanned  int           `json:"scanned"`
	Excluded int           `json:"excluded"`
	Duration time.Duration `json:"durationNs"`
	Report   *Report       `json:"report"`
}

// Passed reports whether no dependency exceeded the format.
func (r *Result) Passed() bool {
	return r.Report == nil || r.Report.Empty()
}

// Evaluate builds the project's dependency graph, resolves every node to an
// archive and scans each archive once. It returns a *errors.CffError coded
// GRAPH_BUILD_FAILED, RESOLUTION_FAILED, ARCHIVE_READ_FAILED or
// FORMAT_VIOLATION on failure. For FORMAT_VIOLATION the result is returned
// too, carrying the report.
func (r *Rule) Evaluate(builder graph.Builder) (*Result, error) {
	start := time.Now()
	runID := uuid.New().String()
	logger := r.logger.With("run", runID)

	project, err := builder.Build()
	if err != nil {
		return nil, cerrors.New(cerrors.GraphBuildFailed,
			fmt.Sprintf("Unable to build dependency graph on project %s", builder.Source()), err)
	}
	logger.Debug("Built dependency graph", "project", project.DisplayName(), "source", builder.Source())

	collected := resolve.Collect(project, r.resolver, r.opts.Collect, logger)
	if collected.Failed() {
		reasons := make([]string, 0, len(collected.Failures))
		for _, f := range collected.Failures {
			reasons = append(reasons, f.String())
		}
		return nil, cerrors.New(cerrors.ResolutionFailed,
			"Unable to resolve the projects dependencies",
			fmt.Errorf("%s", strings.Join(reasons, "; "))).WithDetails(collected.Failures)
	}

	result := &Result{
		RunID:    runID,
		Project:  project.DisplayName(),
		Excluded: collected.Excluded,
		Report:   NewReport(r.opts.MaxFormat),
	}

	for _, ref := range collected.References.Items() {
		exceeds, err := r.scanner.Scan(ref.Path, r.opts.MaxFormat)
		if err != nil {
			return nil, cerrors.New(cerrors.ArchiveReadFailed,
				fmt.Sprintf("Unable to read dependency %s", ref.GAV()), err)
		}
		result.Scanned++
		if exceeds {
			logger.Debug("Dependency exceeds supported format", "dependency", ref.GAV(), "path", ref.Path)
			result.Report.Add(ref)
		}
	}

	result.Report.Sort()
	result.Duration = time.Since(start)

	logger.Debug("Class file format check finished",
		"project", result.Project,
		"scanned", result.Scanned,
		"excluded", result.Excluded,
		"violations", len(result.Report.Violations),
		"max", classfile.ReleaseName(r.opts.MaxFormat),
		"duration", result.Duration,
	)

	if !result.Report.Empty() {
		return result, cerrors.New(cerrors.FormatViolation, result.Report.String(), nil).WithDetails(result.Report)
	}
	return result, nil
}
