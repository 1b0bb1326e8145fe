package rule

import (
	"sort"
	"strings"

	"cffcheck/internal/deps"
)

// ReportHeader opens every rendered report.
const ReportHeader = "The following dependencies exceed the maximum supported JVM class file format " +
	"(i.e. they were compiled for a newer JVM then this project supports):"

// Violation is a dependency containing at least one class compiled for a
// newer format than allowed.
type Violation struct {
	GroupID           string   `json:"groupId"`
	ArtifactID        string   `json:"artifactId"`
	Version           string   `json:"version"`
	Path              string   `json:"path"`
	Trail             []string `json:"trail,omitempty"`
	AvailableVersions []string `json:"availableVersions,omitempty"`
}

// GAV returns groupId:artifactId:version.
func (v Violation) GAV() string {
	return v.GroupID + ":" + v.ArtifactID + ":" + v.Version
}

// Report collects the violations of one evaluation.
type Report struct {
	MaxFormat  int         `json:"maxFormat"`
	Violations []Violation `json:"violations"`
}

// NewReport creates an empty report for maxFormat.
func NewReport(maxFormat int) *Report {
	return &Report{MaxFormat: maxFormat, Violations: []Violation{}}
}

// Add records ref as a violation.
func (r *Report) Add(ref deps.Reference) {
	r.Violations = append(r.Violations, Violation{
		GroupID:           ref.GroupID,
		ArtifactID:        ref.ArtifactID,
		Version:           ref.Version,
		Path:              ref.Path,
		Trail:             ref.Trail,
		AvailableVersions: ref.AvailableVersions,
	})
}

// Empty reports whether no violation was recorded.
func (r *Report) Empty() bool {
	return len(r.Violations) == 0
}

// Sort orders violations by coordinates, then path.
func (r *Report) Sort() {
	sort.SliceStable(r.Violations, func(i, j int) bool {
		a, b := r.Violations[i], r.Violations[j]
		if a.GroupID != b.GroupID {
			return a.GroupID < b.GroupID
		}
		if a.ArtifactID != b.ArtifactID {
			return a.ArtifactID < b.ArtifactID
		}
		if a.Version != b.Version {
			return a.Version < b.Version
		}
		return a.Path < b.Path
	})
}

// String renders the report as the failure message: the header, then each
// violating dependency with the path through which the project reaches it.
func (r *Report) String() string {
	var sb strings.Builder
	sb.WriteString(ReportHeader)
	for _, v := range r.Violations {
		sb.WriteString("\n")
		sb.WriteString(v.GAV())
		switch len(v.Trail) {
		case 0:
		case 1:
			sb.WriteString("\n - project path: ")
			sb.WriteString(v.Trail[0])
		default:
			sb.WriteString("\n - project paths: ")
			sb.WriteString(strings.Join(v.Trail, ", "))
		}
	}
	return sb.String()
}
