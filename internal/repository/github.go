package repository

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	gogithub "github.com/google/go-github/v68/github"
	"golang.org/x/oauth2"

	"github.com/CosmoTheDev/gl2gh/internal/config"
	"github.com/CosmoTheDev/gl2gh/models"
)

// GitHubDestination implements Destination for GitHub and GitHub Enterprise.
type GitHubDestination struct {
	client  *gogithub.Client
	timeout time.Duration

	mu    sync.Mutex
	login string
}

// NewGitHubDestination creates a GitHubDestination from the given configuration.
func NewGitHubDestination(cfg config.GitHubConfig, timeout time.Duration) (*GitHubDestination, error) {
	if cfg.Token == "" {
		return nil, missingToken("github")
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token})
	tc := oauth2.NewClient(context.Background(), ts)
	client := gogithub.NewClient(tc)

	// Support GitHub Enterprise by overriding the base URL.
	if cfg.URL != "" && cfg.URL != "github.com" {
		base := baseURL(cfg.URL)
		var err error
		client, err = client.WithEnterpriseURLs(base+"/api/v3/", base+"/api/uploads/")
		if err != nil {
			return nil, fmt.Errorf("configuring GitHub enterprise URLs: %w", err)
		}
	}
	return &GitHubDestination{client: client, timeout: timeout}, nil
}

// CurrentUser returns the login of the authenticated user. A successful
// lookup is cached for the lifetime of the client.
func (g *GitHubDestination) CurrentUser(ctx context.Context) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.login != "" {
		return g.login, nil
	}

	ctx, cancel := withTimeout(ctx, g.timeout)
	defer cancel()
	u, resp, err := g.client.Users.Get(ctx, "")
	if err != nil {
		return "", githubError("resolve current user", "", resp, err)
	}
	g.login = u.GetLogin()
	return g.login, nil
}

// resolveOwner maps the empty "current user" owner to a login.
func (g *GitHubDestination) resolveOwner(ctx context.Context, owner string) (string, error) {
	if owner != "" {
		return owner, nil
	}
	return g.CurrentUser(ctx)
}

func (g *GitHubDestination) CreateRepository(ctx context.Context, owner, name string, private bool, description string) (*models.Repository, error) {
	cctx, cancel := withTimeout(ctx, g.timeout)
	defer cancel()

	slog.Info("Creating repository", "owner", ownerLabel(owner), "repo", name)
	r, resp, err := g.client.Repositories.Create(cctx, owner, &gogithub.Repository{
		Name:        gogithub.Ptr(name),
		Private:     gogithub.Ptr(private),
		Description: gogithub.Ptr(description),
	})
	if err == nil {
		return convertRepository(r), nil
	}
	if status(resp) == http.StatusUnprocessableEntity {
		slog.Info("Repository already exists, fetching it", "owner", ownerLabel(owner), "repo", name)
		return g.GetRepository(ctx, owner, name)
	}
	return nil, githubError("create repository", name, resp, err)
}

func (g *GitHubDestination) GetRepository(ctx context.Context, owner, name string) (*models.Repository, error) {
	owner, err := g.resolveOwner(ctx, owner)
	if err != nil {
		return nil, err
	}
	ctx, cancel := withTimeout(ctx, g.timeout)
	defer cancel()

	r, resp, err := g.client.Repositories.Get(ctx, owner, name)
	if err != nil {
		return nil, githubError("get repository", owner+"/"+name, resp, err)
	}
	return convertRepository(r), nil
}

func (g *GitHubDestination) ConfigureBranchProtection(ctx context.Context, owner, repo, branch string, policy models.BranchProtectionPolicy) error {
	owner, err := g.resolveOwner(ctx, owner)
	if err != nil {
		return err
	}
	ctx, cancel := withTimeout(ctx, g.timeout)
	defer cancel()

	contexts := policy.RequiredStatusCheckContexts
	if contexts == nil {
		contexts = []string{}
	}
	slog.Info("Configuring branch protection", "repo", repo, "branch", branch)
	_, _, err = g.client.Repositories.UpdateBranchProtection(ctx, owner, repo, branch, &gogithub.ProtectionRequest{
		RequiredStatusChecks: &gogithub.RequiredStatusChecks{
			Strict:   true,
			Contexts: &contexts,
		},
		RequiredPullRequestReviews: &gogithub.PullRequestReviewsEnforcementRequest{
			DismissStaleReviews:          policy.DismissStaleReviews,
			RequiredApprovingReviewCount: policy.RequiredApprovingReviewCount,
		},
		EnforceAdmins: policy.EnforceAdmins,
		Restrictions:  nil,
	})
	if err != nil {
		return models.NewError("configure branch protection", repo+"@"+branch, models.ErrConfiguration, err)
	}
	slog.Debug("Configured branch protection", "repo", repo, "branch", branch)
	return nil
}

func (g *GitHubDestination) SetAutoDeleteMergedBranches(ctx context.Context, owner, repo string) (*models.Repository, error) {
	return g.edit(ctx, "set auto-delete merged branches", owner, repo, &gogithub.Repository{
		DeleteBranchOnMerge: gogithub.Ptr(true),
	})
}

func (g *GitHubDestination) SetDefaultBranch(ctx context.Context, owner, repo, branch string) (*models.Repository, error) {
	return g.edit(ctx, "set default branch", owner, repo, &gogithub.Repository{
		DefaultBranch: gogithub.Ptr(branch),
	})
}

func (g *GitHubDestination) edit(ctx context.Context, op, owner, repo string, patch *gogithub.Repository) (*models.Repository, error) {
	owner, err := g.resolveOwner(ctx, owner)
	if err != nil {
		return nil, err
	}
	ctx, cancel := withTimeout(ctx, g.timeout)
	defer cancel()

	slog.Info("Updating repository", "op", op, "repo", repo)
	r, _, err := g.client.Repositories.Edit(ctx, owner, repo, patch)
	if err != nil {
		return nil, models.NewError(op, repo, models.ErrConfiguration, err)
	}
	return convertRepository(r), nil
}

func (g *GitHubDestination) CreateWebhook(ctx context.Context, owner string, spec models.WebhookSpec) error {
	owner, err := g.resolveOwner(ctx, owner)
	if err != nil {
		return err
	}
	ctx, cancel := withTimeout(ctx, g.timeout)
	defer cancel()

	slog.Info("Creating webhook", "repo", spec.RepoName, "url", spec.PayloadURL)
	_, resp, err := g.client.Repositories.CreateHook(ctx, owner, spec.RepoName, &gogithub.Hook{
		Name:   gogithub.Ptr("web"),
		Active: gogithub.Ptr(true),
		Events: spec.Events,
		Config: &gogithub.HookConfig{
			URL:         gogithub.Ptr(spec.PayloadURL),
			ContentType: gogithub.Ptr("json"),
			Secret:      gogithub.Ptr(spec.Secret),
		},
	})
	if err == nil {
		return nil
	}
	if status(resp) == http.StatusUnprocessableEntity {
		return models.NewError("create webhook", spec.RepoName, models.ErrWebhookExists, err)
	}
	return models.NewError("create webhook", spec.RepoName, models.ErrTransport, err)
}

func status(resp *gogithub.Response) int {
	if resp == nil || resp.Response == nil {
		return 0
	}
	return resp.StatusCode
}

// githubError maps the response status to an error kind, defaulting to ErrTransport.
func githubError(op, target string, resp *gogithub.Response, err error) error {
	return models.NewError(op, target, classify(status(resp), models.ErrTransport), err)
}

func ownerLabel(owner string) string {
	if owner == "" {
		return "(current user)"
	}
	return owner
}

func convertRepository(r *gogithub.Repository) *models.Repository {
	return &models.Repository{
		Owner:                    r.GetOwner().GetLogin(),
		Name:                     r.GetName(),
		FullName:                 r.GetFullName(),
		CloneURL:                 r.GetCloneURL(),
		HTMLURL:                  r.GetHTMLURL(),
		Private:                  r.GetPrivate(),
		AutoDeleteMergedBranches: r.GetDeleteBranchOnMerge(),
		DefaultBranch:            r.GetDefaultBranch(),
	}
}
