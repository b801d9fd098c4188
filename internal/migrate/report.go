package migrate

import (
	"time"

	"github.com/CosmoTheDev/gl2gh/models"
)

// RefFailure records one ref that could not be pushed.
type RefFailure struct {
	Ref string `json:"ref"`
	Err error  `json:"-"`
}

// ProjectOutcome is the result of one project's copy pipeline.
type ProjectOutcome struct {
	Project     models.Project `json:"project"`
	StagingPath string         `json:"staging_path"`
	Stage       models.Stage   `json:"stage"`
	// Err is set when the pipeline stopped before pushing.
	Err        error        `json:"-"`
	PushedRefs []string     `json:"pushed_refs"`
	FailedRefs []RefFailure `json:"failed_refs"`
	CleanedUp  bool         `json:"cleaned_up"`
	// Destination is the repository the refs were pushed to.
	Destination *models.Repository `json:"destination,omitempty"`
}

// Failed reports whether the pipeline stopped before the push phase.
func (p ProjectOutcome) Failed() bool { return p.Stage == models.StageFailed }

// reachedPush reports whether refs were attempted for this project.
func (p ProjectOutcome) reachedPush() bool {
	return p.Destination != nil && p.Stage == models.StageDone
}

// CopyReport summarises one CopyContent run.
type CopyReport struct {
	Group      string    `json:"group"`
	Owner      string    `json:"owner"`
	Filter     string    `json:"filter"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	// Err is set when the batch could not be attempted (listing failed).
	Err error `json:"-"`

	// Projects has one entry per worklist project, in worklist order.
	Projects []ProjectOutcome `json:"projects"`

	// DefaultBranch holds the post-copy default-branch results.
	DefaultBranch []models.Result[models.Repository] `json:"default_branch"`
}

// ExitCode is 0 when the batch ran to completion, 1 when it could not be
// attempted. Per-project and per-ref failures do not change it.
func (r *CopyReport) ExitCode() int {
	if r == nil || r.Err != nil {
		return 1
	}
	return 0
}

// Total is the number of projects in the worklist.
func (r *CopyReport) Total() int { return len(r.Projects) }

// FailedProjects counts pipelines that stopped before pushing.
func (r *CopyReport) FailedProjects() int {
	n := 0
	for _, p := range r.Projects {
		if p.Failed() {
			n++
		}
	}
	return n
}

// FailedRefs counts individual ref pushes that failed across all projects.
func (r *CopyReport) FailedRefs() int {
	n := 0
	for _, p := range r.Projects {
		n += len(p.FailedRefs)
	}
	return n
}

// PushedRefs counts successful ref pushes across all projects.
func (r *CopyReport) PushedRefs() int {
	n := 0
	for _, p := range r.Projects {
		n += len(p.PushedRefs)
	}
	return n
}
