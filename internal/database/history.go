package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/CosmoTheDev/gl2gh/internal/migrate"
	"github.com/CosmoTheDev/gl2gh/models"
)

// Run kinds stored in migration_runs.kind.
const (
	KindCopy = "copy-content"
)

// RunRecord is one row of migration_runs.
type RunRecord struct {
	ID         int64  `db:"id" json:"id"`
	Kind       string `db:"kind" json:"kind"`
	GroupName  string `db:"group_name" json:"group"`
	Owner      string `db:"owner" json:"owner"`
	Filter     string `db:"prefix_filter" json:"filter"`
	StartedAt  string `db:"started_at" json:"started_at"`
	FinishedAt string `db:"finished_at" json:"finished_at"`
	ExitCode   int    `db:"exit_code" json:"exit_code"`
	Total      int    `db:"total" json:"total"`
	Failed     int    `db:"failed" json:"failed"`
	Error      string `db:"error" json:"error,omitempty"`
}

// ItemRecord is one row of migration_items.
type ItemRecord struct {
	ID         int64  `db:"id" json:"id"`
	RunID      int64  `db:"run_id" json:"run_id"`
	Name       string `db:"name" json:"name"`
	Path       string `db:"path" json:"path"`
	Stage      string `db:"stage" json:"stage"`
	PushedRefs int    `db:"pushed_refs" json:"pushed_refs"`
	FailedRefs int    `db:"failed_refs" json:"failed_refs"`
	Error      string `db:"error" json:"error,omitempty"`
}

// runSummary is the column subset written when a run finishes.
type runSummary struct {
	FinishedAt string `db:"finished_at"`
	ExitCode   int    `db:"exit_code"`
	Total      int    `db:"total"`
	Failed     int    `db:"failed"`
	Error      string `db:"error"`
}

const runColumns = `id, kind, group_name, owner, prefix_filter, started_at, finished_at, exit_code, total, failed, error`

// Recorder writes run history to the ledger. It is a migrate.Observer.
type Recorder struct {
	db DB
}

func NewRecorder(db DB) *Recorder {
	return &Recorder{db: db}
}

func (r *Recorder) Name() string { return "history" }

// ObserveCopy stores a finished copy-content run and one item per project.
func (r *Recorder) ObserveCopy(ctx context.Context, report *migrate.CopyReport) error {
	if report == nil {
		return nil
	}
	items := make([]ItemRecord, 0, len(report.Projects))
	for _, p := range report.Projects {
		item := ItemRecord{
			Name:       p.Project.Name,
			Path:       p.Project.PathWithNamespace,
			Stage:      string(p.Stage),
			PushedRefs: len(p.PushedRefs),
			FailedRefs: len(p.FailedRefs),
			Error:      errString(p.Err),
		}
		if item.Error == "" && len(p.FailedRefs) > 0 {
			item.Error = errString(p.FailedRefs[0].Err)
		}
		items = append(items, item)
	}
	run := RunRecord{
		Kind:      KindCopy,
		GroupName: report.Group,
		Owner:     report.Owner,
		Filter:    report.Filter,
		StartedAt: timestamp(report.StartedAt),
	}
	summary := runSummary{
		FinishedAt: timestamp(report.FinishedAt),
		ExitCode:   report.ExitCode(),
		Total:      report.Total(),
		Failed:     report.FailedProjects(),
		Error:      errString(report.Err),
	}
	_, err := r.record(ctx, run, items, summary)
	return err
}

// RecordBatch stores the results of a bulk operation (protect-branch,
// archive, webhooks and the repository settings commands) as one run.
func RecordBatch[T any](ctx context.Context, r *Recorder, kind, target string, startedAt time.Time, results []models.Result[T]) (int64, error) {
	items := make([]ItemRecord, 0, len(results))
	for _, res := range results {
		stage := string(models.StageDone)
		if !res.OK() {
			stage = string(models.StageFailed)
		}
		items = append(items, ItemRecord{
			Name:  res.Target,
			Path:  res.Target,
			Stage: stage,
			Error: errString(res.Err),
		})
	}
	run := RunRecord{
		Kind:      kind,
		Owner:     target,
		StartedAt: timestamp(startedAt),
	}
	summary := runSummary{
		FinishedAt: timestamp(time.Now()),
		Total:      len(results),
		Failed:     models.Failed(results),
	}
	return r.record(ctx, run, items, summary)
}

// record inserts the run unfinished, then its items, then the summary, so
// an interrupted write leaves a run with an empty finished_at.
func (r *Recorder) record(ctx context.Context, run RunRecord, items []ItemRecord, summary runSummary) (int64, error) {
	runID, err := r.db.Insert(ctx, "migration_runs", &run)
	if err != nil {
		return 0, fmt.Errorf("recording %s run: %w", run.Kind, err)
	}
	for i := range items {
		items[i].RunID = runID
		if _, err := r.db.Insert(ctx, "migration_items", &items[i]); err != nil {
			return runID, fmt.Errorf("recording item %s of run %d: %w", items[i].Name, runID, err)
		}
	}
	if err := r.db.Update(ctx, "migration_runs", &summary, "id = ?", runID); err != nil {
		return runID, fmt.Errorf("finishing run %d: %w", runID, err)
	}
	slog.Debug("Recorded run", "id", runID, "kind", run.Kind, "items", len(items), "failed", summary.Failed)
	return runID, nil
}

// RecentRuns returns up to limit runs, newest first.
func (r *Recorder) RecentRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	var runs []RunRecord
	err := r.db.Select(ctx, &runs,
		`SELECT `+runColumns+` FROM migration_runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	return runs, nil
}

// Run returns one run by ID.
func (r *Recorder) Run(ctx context.Context, id int64) (*RunRecord, error) {
	var run RunRecord
	err := r.db.Get(ctx, &run, `SELECT `+runColumns+` FROM migration_runs WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.NewError("get run", fmt.Sprint(id), models.ErrNotFound, err)
	}
	if err != nil {
		return nil, fmt.Errorf("getting run %d: %w", id, err)
	}
	return &run, nil
}

// Items returns the items of a run in insertion order.
func (r *Recorder) Items(ctx context.Context, runID int64) ([]ItemRecord, error) {
	var items []ItemRecord
	err := r.db.Select(ctx, &items,
		`SELECT id, run_id, name, path, stage, pushed_refs, failed_refs, error
		 FROM migration_items WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("listing items of run %d: %w", runID, err)
	}
	return items, nil
}

func timestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
