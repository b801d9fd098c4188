package migrate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/CosmoTheDev/gl2gh/models"
)

// fanOut runs fn once per target, at most limit at a time (0 = unbounded).
// Each call is isolated: an error or panic fills that slot's Err and is
// logged; siblings proceed. Results are returned in target order.
func fanOut[T any](ctx context.Context, limit int, op string, targets []string,
	fn func(ctx context.Context, i int, target string) (*T, error),
) []models.Result[T] {
	results := make([]models.Result[T], len(targets))
	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, target := range targets {
		g.Go(func() error {
			results[i] = runOne(ctx, op, i, target, fn)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func runOne[T any](ctx context.Context, op string, i int, target string,
	fn func(ctx context.Context, i int, target string) (*T, error),
) (res models.Result[T]) {
	res.Target = target
	defer func() {
		if r := recover(); r != nil {
			res.Value = nil
			res.Err = models.NewError(op, target, models.ErrTransport, fmt.Errorf("panic: %v", r))
			slog.Error("Operation panicked", "op", op, "target", target, "panic", r)
		}
	}()
	v, err := fn(ctx, i, target)
	if err != nil {
		res.Err = err
		if errors.Is(err, models.ErrConflict) {
			slog.Warn("Operation skipped", "op", op, "target", target, "error", err)
		} else {
			slog.Error("Operation failed", "op", op, "target", target, "error", err)
		}
		return res
	}
	res.Value = v
	return res
}

// applied marks a successful call that has no value to return.
var applied = &struct{}{}

// ConfigureBranchProtection applies the same policy to branch on every repo.
func (o *Orchestrator) ConfigureBranchProtection(ctx context.Context, owner string, repos []string, branch string, policy models.BranchProtectionPolicy) []models.Result[struct{}] {
	return fanOut(ctx, o.opts.Workers, "configure branch protection", repos, func(ctx context.Context, _ int, repo string) (*struct{}, error) {
		if err := o.dest.ConfigureBranchProtection(ctx, owner, repo, branch, policy); err != nil {
			return nil, err
		}
		return applied, nil
	})
}

// SetAutoDeleteMergedBranches turns on branch deletion after merge for every repo.
func (o *Orchestrator) SetAutoDeleteMergedBranches(ctx context.Context, owner string, repos []string) []models.Result[models.Repository] {
	return fanOut(ctx, o.opts.Workers, "set auto-delete merged branches", repos, func(ctx context.Context, _ int, repo string) (*models.Repository, error) {
		return o.dest.SetAutoDeleteMergedBranches(ctx, owner, repo)
	})
}

// SetDefaultBranch sets branch as the default branch of every repo.
func (o *Orchestrator) SetDefaultBranch(ctx context.Context, owner string, repos []string, branch string) []models.Result[models.Repository] {
	return fanOut(ctx, o.opts.Workers, "set default branch", repos, func(ctx context.Context, _ int, repo string) (*models.Repository, error) {
		return o.dest.SetDefaultBranch(ctx, owner, repo, branch)
	})
}

// ArchiveProjects archives every project path on the source platform.
func (o *Orchestrator) ArchiveProjects(ctx context.Context, paths []string) []models.Result[models.ArchiveResult] {
	return fanOut(ctx, o.opts.Workers, "archive project", paths, func(ctx context.Context, _ int, path string) (*models.ArchiveResult, error) {
		return o.source.ArchiveProject(ctx, path)
	})
}

// CreateWebhooks installs each spec on its repository. An existing webhook
// fails its slot with models.ErrWebhookExists, which callers can tell apart
// from transport failures.
func (o *Orchestrator) CreateWebhooks(ctx context.Context, specs []models.WebhookSpec, owner string) []models.Result[struct{}] {
	targets := make([]string, len(specs))
	for i, s := range specs {
		targets[i] = s.RepoName
	}
	return fanOut(ctx, o.opts.Workers, "create webhook", targets, func(ctx context.Context, i int, _ string) (*struct{}, error) {
		if err := o.dest.CreateWebhook(ctx, owner, specs[i]); err != nil {
			return nil, err
		}
		return applied, nil
	})
}
