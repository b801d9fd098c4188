package repository

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/CosmoTheDev/gl2gh/models"
)

// SourceDirectory reads the group hierarchy of the source platform.
// Implementation: GitLabDirectory.
type SourceDirectory interface {
	// GetGroup returns a top-level group with its direct and shared projects.
	GetGroup(ctx context.Context, group string) (*models.Group, error)

	// ListSubgroups returns the direct subgroups of group.
	ListSubgroups(ctx context.Context, group string) ([]models.Subgroup, error)

	// GetSubgroup returns group/subgroup with its direct projects only.
	GetSubgroup(ctx context.Context, group, subgroup string) (*models.Group, error)

	// ArchiveProject marks the project at path (namespace/name) archived.
	ArchiveProject(ctx context.Context, path string) (*models.ArchiveResult, error)
}

// Destination creates and configures repositories on the destination platform.
// An empty owner addresses the authenticated user's own account.
// Implementation: GitHubDestination.
type Destination interface {
	// CreateRepository creates owner/name, or returns the existing repository
	// when the platform reports that it already exists.
	CreateRepository(ctx context.Context, owner, name string, private bool, description string) (*models.Repository, error)

	GetRepository(ctx context.Context, owner, name string) (*models.Repository, error)

	ConfigureBranchProtection(ctx context.Context, owner, repo, branch string, policy models.BranchProtectionPolicy) error

	SetAutoDeleteMergedBranches(ctx context.Context, owner, repo string) (*models.Repository, error)

	SetDefaultBranch(ctx context.Context, owner, repo, branch string) (*models.Repository, error)

	// CreateWebhook fails with models.ErrWebhookExists on conflict.
	CreateWebhook(ctx context.Context, owner string, spec models.WebhookSpec) error
}

// ContentTransfer moves git refs through a local staging clone.
// Implementation: GitTransfer.
type ContentTransfer interface {
	Clone(ctx context.Context, sourceURL, localPath, remote string) error
	AddRemote(ctx context.Context, localPath, remote, remoteURL string) error

	// ListBranches returns the branches of remote, excluding HEAD, and makes
	// each one available locally for pushing.
	ListBranches(ctx context.Context, localPath, remote string) ([]string, error)
	ListTags(ctx context.Context, localPath string) ([]string, error)

	// Push sends one fully qualified ref (refs/heads/x or refs/tags/x) to remote.
	Push(ctx context.Context, localPath, remote, ref string) error

	// Cleanup removes the staging directory.
	Cleanup(localPath string) error
}

// withTimeout bounds one network call. A zero duration leaves ctx untouched.
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, d)
}

// classify maps an HTTP status to an error kind. fallback is used for
// statuses without a specific meaning for the operation.
func classify(status int, fallback error) error {
	switch status {
	case http.StatusNotFound:
		return models.ErrNotFound
	case http.StatusConflict, http.StatusUnprocessableEntity:
		return models.ErrConflict
	default:
		return fallback
	}
}

// baseURL turns a configured host or URL into a scheme-qualified URL.
// "gitlab.example.com" becomes "https://gitlab.example.com".
func baseURL(hostOrURL string) string {
	if strings.Contains(hostOrURL, "://") {
		return strings.TrimSuffix(hostOrURL, "/")
	}
	return "https://" + strings.TrimSuffix(hostOrURL, "/")
}

// ErrMissingToken is returned by constructors when no credential is configured.
var ErrMissingToken = errors.New("no token configured")

func missingToken(platform string) error {
	return models.NewError("configure client", platform, models.ErrConfiguration,
		fmt.Errorf("%w; set it in the config file or the environment", ErrMissingToken))
}
