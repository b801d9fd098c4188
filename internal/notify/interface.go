package notify

import "context"

// Event types.
const (
	EventCopyCompleted = "copy_completed"
	EventCopyFailed    = "copy_failed"
)

// Event is a run notification.
type Event struct {
	Type   string
	Title  string
	Body   string
	Group  string // source GitLab group
	Owner  string // destination owner, empty for the token's user
	Failed bool
	// Counts holds summary numbers: projects, failed_projects, pushed_refs, failed_refs.
	Counts map[string]int
	// Failures has one "project: reason" line per failed project or ref.
	Failures []string
	// Repositories links each migrated project to its GitHub repository.
	Repositories map[string]string
}

// Channel is implemented by each notification provider.
type Channel interface {
	Name() string
	IsConfigured() bool
	Send(ctx context.Context, evt Event) error
}
