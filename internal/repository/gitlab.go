package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	gitlab "gitlab.com/gitlab-org/api/client-go"

	"github.com/CosmoTheDev/gl2gh/internal/config"
	"github.com/CosmoTheDev/gl2gh/models"
)

// GitLabDirectory implements SourceDirectory for GitLab (cloud and self-managed).
type GitLabDirectory struct {
	client  *gitlab.Client
	timeout time.Duration
}

// NewGitLabDirectory creates a GitLabDirectory from the given configuration.
// timeout bounds every API call; extra options are passed to the client.
func NewGitLabDirectory(cfg config.GitLabConfig, timeout time.Duration, opts ...gitlab.ClientOptionFunc) (*GitLabDirectory, error) {
	if cfg.Token == "" {
		return nil, missingToken("gitlab")
	}
	if cfg.URL != "" && cfg.URL != "gitlab.com" {
		opts = append([]gitlab.ClientOptionFunc{gitlab.WithBaseURL(baseURL(cfg.URL))}, opts...)
	}
	client, err := gitlab.NewClient(cfg.Token, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating GitLab client: %w", err)
	}
	return &GitLabDirectory{client: client, timeout: timeout}, nil
}

func (g *GitLabDirectory) GetGroup(ctx context.Context, group string) (*models.Group, error) {
	ctx, cancel := withTimeout(ctx, g.timeout)
	defer cancel()

	slog.Debug("Fetching group", "group", group)
	notFound := "no group found with name " + group
	grp, resp, err := g.client.Groups.GetGroup(group, &gitlab.GetGroupOptions{}, gitlab.WithContext(ctx))
	if err != nil {
		return nil, gitlabError("fetch group", group, notFound, resp, err)
	}
	direct, err := g.listProjects(ctx, group, notFound)
	if err != nil {
		return nil, err
	}
	shared, err := g.listSharedProjects(ctx, group, notFound)
	if err != nil {
		return nil, err
	}
	return models.NewGroup(grp.Name, grp.FullPath, direct, shared), nil
}

// listProjects pages through the projects owned directly by group.
func (g *GitLabDirectory) listProjects(ctx context.Context, group, notFound string) ([]models.Project, error) {
	opt := &gitlab.ListGroupProjectsOptions{
		ListOptions: gitlab.ListOptions{PerPage: 100, Page: 1},
		WithShared:  gitlab.Ptr(false),
	}
	var out []models.Project
	for {
		projects, resp, err := g.client.Groups.ListGroupProjects(group, opt, gitlab.WithContext(ctx))
		if err != nil {
			return nil, gitlabError("list projects", group, notFound, resp, err)
		}
		out = append(out, convertProjects(projects)...)
		if resp == nil || resp.NextPage == 0 {
			break
		}
		opt.Page = resp.NextPage
	}
	return out, nil
}

// listSharedProjects pages through the projects shared with group.
func (g *GitLabDirectory) listSharedProjects(ctx context.Context, group, notFound string) ([]models.Project, error) {
	opt := &gitlab.ListGroupSharedProjectsOptions{
		ListOptions: gitlab.ListOptions{PerPage: 100, Page: 1},
	}
	var out []models.Project
	for {
		projects, resp, err := g.client.Groups.ListGroupSharedProjects(group, opt, gitlab.WithContext(ctx))
		if err != nil {
			return nil, gitlabError("list shared projects", group, notFound, resp, err)
		}
		out = append(out, convertProjects(projects)...)
		if resp == nil || resp.NextPage == 0 {
			break
		}
		opt.Page = resp.NextPage
	}
	return out, nil
}

func (g *GitLabDirectory) ListSubgroups(ctx context.Context, group string) ([]models.Subgroup, error) {
	ctx, cancel := withTimeout(ctx, g.timeout)
	defer cancel()

	opt := &gitlab.ListSubGroupsOptions{
		ListOptions: gitlab.ListOptions{PerPage: 100, Page: 1},
	}
	var out []models.Subgroup
	for {
		groups, resp, err := g.client.Groups.ListSubGroups(group, opt, gitlab.WithContext(ctx))
		if err != nil {
			return nil, gitlabError("list subgroups", group, "no group found with name "+group, resp, err)
		}
		for _, sg := range groups {
			if sg == nil {
				continue
			}
			out = append(out, models.Subgroup{Name: sg.Name, Path: sg.Path})
		}
		if resp == nil || resp.NextPage == 0 {
			break
		}
		opt.Page = resp.NextPage
	}
	slog.Debug("Listed subgroups", "group", group, "count", len(out))
	return out, nil
}

// GetSubgroup looks up group/subgroup. Shared projects are not collected at
// subgroup depth.
func (g *GitLabDirectory) GetSubgroup(ctx context.Context, group, subgroup string) (*models.Group, error) {
	ctx, cancel := withTimeout(ctx, g.timeout)
	defer cancel()

	fullPath := group + "/" + subgroup
	notFound := "no subgroup found with name " + subgroup
	grp, resp, err := g.client.Groups.GetGroup(fullPath, &gitlab.GetGroupOptions{}, gitlab.WithContext(ctx))
	if err != nil {
		return nil, gitlabError("fetch subgroup", fullPath, notFound, resp, err)
	}
	direct, err := g.listProjects(ctx, fullPath, notFound)
	if err != nil {
		return nil, err
	}
	return models.NewGroup(grp.Name, grp.FullPath, direct, nil), nil
}

func (g *GitLabDirectory) ArchiveProject(ctx context.Context, path string) (*models.ArchiveResult, error) {
	ctx, cancel := withTimeout(ctx, g.timeout)
	defer cancel()

	slog.Info("Archiving project", "project", path)
	p, resp, err := g.client.Projects.ArchiveProject(path, gitlab.WithContext(ctx))
	if err != nil {
		return nil, gitlabError("archive project", path, "no project found with path "+path, resp, err)
	}
	return &models.ArchiveResult{Path: p.PathWithNamespace, Archived: p.Archived}, nil
}

// gitlabError classifies a failed call: 404 becomes ErrNotFound carrying
// notFound as its message, anything else ErrTransport.
func gitlabError(op, target, notFound string, resp *gitlab.Response, err error) error {
	status := 0
	if resp != nil && resp.Response != nil {
		status = resp.StatusCode
	}
	if classify(status, models.ErrTransport) == models.ErrNotFound {
		return models.NewError(op, target, models.ErrNotFound, errors.New(notFound))
	}
	return models.NewError(op, target, models.ErrTransport, err)
}

func convertProjects(projects []*gitlab.Project) []models.Project {
	out := make([]models.Project, 0, len(projects))
	for _, p := range projects {
		if p == nil {
			continue
		}
		out = append(out, models.Project{
			Name:              p.Name,
			Description:       p.Description,
			CloneURL:          p.HTTPURLToRepo,
			PathWithNamespace: p.PathWithNamespace,
			DefaultBranch:     p.DefaultBranch,
		})
	}
	return out
}
