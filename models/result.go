package models

// Result is one slot of a batch operation. Batch operations return one Result
// per input, in input order; a failed item has a nil Value and a non-nil Err.
type Result[T any] struct {
	Target string `json:"target"`
	Value  *T     `json:"value,omitempty"`
	Err    error  `json:"-"`
}

// OK reports whether the item succeeded.
func (r Result[T]) OK() bool { return r.Err == nil }

// Failed counts failed slots.
func Failed[T any](results []Result[T]) int {
	n := 0
	for _, r := range results {
		if r.Err != nil {
			n++
		}
	}
	return n
}

// Stage is a step of one project's copy pipeline. Cleanup of the staging
// directory is recorded separately since it also runs for failed pipelines.
type Stage string

const (
	StagePending        Stage = "pending"
	StageDestReady      Stage = "dest_repo_ready"
	StageCloned         Stage = "cloned"
	StageRemoteAdded    Stage = "remote_added"
	StageRefsEnumerated Stage = "refs_enumerated"
	StagePushing        Stage = "pushing"
	StageDone           Stage = "done"
	StageFailed         Stage = "failed"
)
