package migrate

import (
	"context"
	"log/slog"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/CosmoTheDev/gl2gh/models"
)

// ListProjectsToMigrate returns the projects of group in migration order:
// direct projects, then shared projects, then each subgroup's direct
// projects, stably sorted by name and filtered by prefix. Same-named projects
// are all kept. Any lookup failure fails the whole listing.
func (o *Orchestrator) ListProjectsToMigrate(ctx context.Context, group, prefix string) ([]models.Project, error) {
	var (
		root      *models.Group
		subgroups []models.Subgroup
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		root, err = o.source.GetGroup(gctx, group)
		return err
	})
	g.Go(func() error {
		var err error
		subgroups, err = o.source.ListSubgroups(gctx, group)
		return err
	})
	if err := g.Wait(); err != nil {
		slog.Error("Listing group failed", "op", "list projects", "target", group, "error", err)
		return nil, err
	}

	// Indexed slots keep subgroup order independent of completion order.
	perSubgroup := make([][]models.Project, len(subgroups))
	g, gctx = errgroup.WithContext(ctx)
	if o.opts.Workers > 0 {
		g.SetLimit(o.opts.Workers)
	}
	for i, sg := range subgroups {
		g.Go(func() error {
			key := sg.Path
			if key == "" {
				key = sg.Name
			}
			sub, err := o.source.GetSubgroup(gctx, group, key)
			if err != nil {
				return err
			}
			perSubgroup[i] = sub.DirectProjects()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		slog.Error("Listing subgroup failed", "op", "list projects", "target", group, "error", err)
		return nil, err
	}

	worklist := root.DirectProjects()
	worklist = append(worklist, root.SharedProjects()...)
	for _, projects := range perSubgroup {
		worklist = append(worklist, projects...)
	}

	sort.SliceStable(worklist, func(i, j int) bool {
		return worklist[i].Name < worklist[j].Name
	})

	filtered := worklist[:0]
	for _, p := range worklist {
		if p.HasPrefix(prefix) {
			filtered = append(filtered, p)
		}
	}
	slog.Debug("Listed projects", "group", group, "subgroups", len(subgroups), "matched", len(filtered))
	return filtered, nil
}
