package migrate

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/CosmoTheDev/gl2gh/models"
)

// CopyContent copies every matching project of group to owner (empty owner
// is the authenticated user), then applies the default branch to every
// project that reached the push phase.
//
// The returned error is non-nil only when the batch could not be attempted;
// per-project failures are recorded in the report. Use report.ExitCode for
// the process status.
func (o *Orchestrator) CopyContent(ctx context.Context, group, owner, prefix string) (*CopyReport, error) {
	report := &CopyReport{Group: group, Owner: owner, Filter: prefix, StartedAt: time.Now()}
	defer func() {
		report.FinishedAt = time.Now()
		o.notify(ctx, report)
	}()

	projects, err := o.ListProjectsToMigrate(ctx, group, prefix)
	if err != nil {
		slog.Error("Unable to copy content", "op", "copy content", "target", group, "error", err)
		report.Err = err
		return report, err
	}
	slog.Info("Copying projects", "group", group, "owner", ownerLabel(owner), "count", len(projects), "workers", o.opts.Workers)

	report.Projects = make([]ProjectOutcome, len(projects))
	var g errgroup.Group
	if o.opts.Workers > 0 {
		g.SetLimit(o.opts.Workers)
	}
	for i, p := range projects {
		g.Go(func() error {
			report.Projects[i] = o.copyProject(ctx, owner, p)
			return nil
		})
	}
	_ = g.Wait()

	report.DefaultBranch = o.applyDefaultBranches(ctx, owner, report.Projects)

	slog.Info("Copy finished",
		"group", group,
		"projects", report.Total(),
		"failed_projects", report.FailedProjects(),
		"pushed_refs", report.PushedRefs(),
		"failed_refs", report.FailedRefs(),
	)
	return report, nil
}

// copyProject runs one project through the pipeline. It never panics and
// never returns an error; failures are recorded in the outcome.
func (o *Orchestrator) copyProject(ctx context.Context, owner string, p models.Project) (out ProjectOutcome) {
	key := p.PathWithNamespace
	if key == "" {
		key = p.Name
	}
	out = ProjectOutcome{Project: p, StagingPath: o.stagingPath(key), Stage: models.StagePending}

	defer func() {
		if r := recover(); r != nil {
			out.Err = models.NewError("copy project", p.Name, models.ErrTransport, fmt.Errorf("panic: %v", r))
			out.Stage = models.StageFailed
			slog.Error("Project pipeline panicked", "op", "copy project", "target", p.Name, "panic", r)
		}
	}()

	fail := func(op string, err error) ProjectOutcome {
		out.Err = err
		out.Stage = models.StageFailed
		slog.Error("Project copy failed", "op", op, "target", p.Name, "error", err)
		return out
	}

	repo, err := o.dest.CreateRepository(ctx, owner, p.Name, o.opts.Private, p.Description)
	if err != nil {
		return fail("create repository", err)
	}
	out.Destination = repo
	out.Stage = models.StageDestReady

	// From here on the staging directory may exist and is always removed.
	defer func() {
		o.cleanup(&out)
		if out.Stage == models.StagePushing {
			out.Stage = models.StageDone
		}
	}()

	if err := o.git.Clone(ctx, p.CloneURL, out.StagingPath, SourceRemote); err != nil {
		return fail("clone", err)
	}
	out.Stage = models.StageCloned

	if err := o.git.AddRemote(ctx, out.StagingPath, DestinationRemote, repo.CloneURL); err != nil {
		return fail("add remote", err)
	}
	out.Stage = models.StageRemoteAdded

	branches, err := o.git.ListBranches(ctx, out.StagingPath, SourceRemote)
	if err != nil {
		return fail("list branches", err)
	}
	tags, err := o.git.ListTags(ctx, out.StagingPath)
	if err != nil {
		return fail("list tags", err)
	}
	out.Stage = models.StageRefsEnumerated
	slog.Debug("Enumerated refs", "project", p.Name, "branches", len(branches), "tags", len(tags))

	out.Stage = models.StagePushing
	refs := make([]string, 0, len(branches)+len(tags))
	for _, b := range branches {
		refs = append(refs, "refs/heads/"+b)
	}
	for _, t := range tags {
		refs = append(refs, "refs/tags/"+t)
	}
	// Pushes share one local repository and run one at a time.
	for _, ref := range refs {
		if err := o.git.Push(ctx, out.StagingPath, DestinationRemote, ref); err != nil {
			slog.Warn("Ref push failed", "op", "push", "target", p.Name, "ref", ref, "error", err)
			out.FailedRefs = append(out.FailedRefs, RefFailure{Ref: ref, Err: err})
			continue
		}
		out.PushedRefs = append(out.PushedRefs, ref)
	}
	return out
}

// cleanup removes the staging directory. It runs after every pipeline that
// got past repository creation, whatever the outcome.
func (o *Orchestrator) cleanup(out *ProjectOutcome) {
	if err := o.git.Cleanup(out.StagingPath); err != nil {
		slog.Warn("Failed to clean up staging directory", "op", "cleanup", "target", out.Project.Name,
			"path", out.StagingPath, "error", err)
		return
	}
	out.CleanedUp = true
}

// applyDefaultBranches is the post-copy step: every project that reached the
// push phase gets its default branch set. Projects that failed earlier are
// skipped.
func (o *Orchestrator) applyDefaultBranches(ctx context.Context, owner string, outcomes []ProjectOutcome) []models.Result[models.Repository] {
	type item struct {
		repo, branch string
	}
	var items []item
	for _, out := range outcomes {
		if !out.reachedPush() {
			continue
		}
		items = append(items, item{repo: out.Destination.Name, branch: o.defaultBranchFor(out.Project)})
	}
	if len(items) == 0 {
		return nil
	}
	targets := make([]string, len(items))
	for i, it := range items {
		targets[i] = it.repo
	}
	return fanOut(ctx, o.opts.Workers, "set default branch", targets, func(ctx context.Context, i int, repo string) (*models.Repository, error) {
		return o.dest.SetDefaultBranch(ctx, owner, repo, items[i].branch)
	})
}

func (o *Orchestrator) defaultBranchFor(p models.Project) string {
	switch {
	case o.opts.DefaultBranch != "":
		return o.opts.DefaultBranch
	case p.DefaultBranch != "":
		return p.DefaultBranch
	default:
		return FallbackDefaultBranch
	}
}

func ownerLabel(owner string) string {
	if owner == "" {
		return "(current user)"
	}
	return owner
}
