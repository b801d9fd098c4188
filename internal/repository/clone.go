package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	gogit "github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"

	"github.com/CosmoTheDev/gl2gh/models"
)

// Credentials authenticate git-over-HTTPS in one direction.
type Credentials struct {
	Username string
	Token    string
}

func (c Credentials) auth() transport.AuthMethod {
	if c.Token == "" {
		return nil
	}
	user := c.Username
	if user == "" {
		user = "gl2gh"
	}
	return &githttp.BasicAuth{Username: user, Password: c.Token}
}

// GitTransfer implements ContentTransfer with go-git. Source credentials are
// used for clone, destination credentials for push.
type GitTransfer struct {
	source  Credentials
	dest    Credentials
	timeout time.Duration
}

// NewGitTransfer creates a GitTransfer. timeout bounds each clone or push.
func NewGitTransfer(source, dest Credentials, timeout time.Duration) *GitTransfer {
	return &GitTransfer{source: source, dest: dest, timeout: timeout}
}

// Clone does a full, non-bare clone of sourceURL into localPath with the
// origin remote named remote. A stale directory at localPath is removed first.
func (t *GitTransfer) Clone(ctx context.Context, sourceURL, localPath, remote string) error {
	ctx, cancel := withTimeout(ctx, t.timeout)
	defer cancel()

	if err := os.RemoveAll(localPath); err != nil {
		return models.NewError("clone", localPath, models.ErrClone, fmt.Errorf("removing stale directory: %w", err))
	}
	if err := os.MkdirAll(filepath.Dir(localPath), 0o755); err != nil {
		return models.NewError("clone", localPath, models.ErrClone, fmt.Errorf("creating destination parent: %w", err))
	}

	slog.Debug("Cloning repository", "url", redact(sourceURL), "dest", localPath, "remote", remote)
	_, err := gogit.PlainCloneContext(ctx, localPath, false, &gogit.CloneOptions{
		URL:        sourceURL,
		RemoteName: remote,
		Tags:       gogit.AllTags,
		Auth:       t.source.auth(),
	})
	if err != nil {
		// An empty source repository clones to nothing; keep the directory so
		// the pipeline can proceed with zero refs.
		if errors.Is(err, transport.ErrEmptyRemoteRepository) {
			slog.Warn("Source repository is empty", "url", redact(sourceURL))
			return t.initEmpty(localPath, remote, sourceURL)
		}
		return models.NewError("clone", redact(sourceURL), models.ErrClone, err)
	}
	return nil
}

func (t *GitTransfer) initEmpty(localPath, remote, sourceURL string) error {
	repo, err := gogit.PlainInit(localPath, false)
	if err != nil {
		return models.NewError("clone", redact(sourceURL), models.ErrClone, err)
	}
	if _, err := repo.CreateRemote(&gitconfig.RemoteConfig{Name: remote, URLs: []string{sourceURL}}); err != nil {
		return models.NewError("clone", redact(sourceURL), models.ErrClone, err)
	}
	return nil
}

// AddRemote registers remoteURL under remote, replacing an existing remote of
// the same name.
func (t *GitTransfer) AddRemote(_ context.Context, localPath, remote, remoteURL string) error {
	repo, err := gogit.PlainOpen(localPath)
	if err != nil {
		return models.NewError("add remote", remote, models.ErrRemote, err)
	}
	cfg := &gitconfig.RemoteConfig{Name: remote, URLs: []string{remoteURL}}
	_, err = repo.CreateRemote(cfg)
	if errors.Is(err, gogit.ErrRemoteExists) {
		if err = repo.DeleteRemote(remote); err == nil {
			_, err = repo.CreateRemote(cfg)
		}
	}
	if err != nil {
		return models.NewError("add remote", remote, models.ErrRemote, err)
	}
	slog.Debug("Added remote", "path", localPath, "remote", remote, "url", redact(remoteURL))
	return nil
}

// ListBranches returns the branches fetched from remote, skipping HEAD and
// symbolic refs, and creates a local branch for each so it can be pushed.
func (t *GitTransfer) ListBranches(_ context.Context, localPath, remote string) ([]string, error) {
	repo, err := gogit.PlainOpen(localPath)
	if err != nil {
		return nil, models.NewError("list branches", localPath, models.ErrRemote, err)
	}
	refs, err := repo.References()
	if err != nil {
		return nil, models.NewError("list branches", localPath, models.ErrRemote, err)
	}
	defer refs.Close()

	prefix := "refs/remotes/" + remote + "/"
	var branches []string
	err = refs.ForEach(func(ref *plumbing.Reference) error {
		name := ref.Name().String()
		if ref.Type() != plumbing.HashReference || !strings.HasPrefix(name, prefix) {
			return nil
		}
		branch := strings.TrimPrefix(name, prefix)
		if branch == "HEAD" {
			return nil
		}
		local := plumbing.NewHashReference(plumbing.NewBranchReferenceName(branch), ref.Hash())
		if err := repo.Storer.SetReference(local); err != nil {
			return fmt.Errorf("checking out %s: %w", branch, err)
		}
		branches = append(branches, branch)
		return nil
	})
	if err != nil {
		return nil, models.NewError("list branches", localPath, models.ErrRemote, err)
	}
	return branches, nil
}

func (t *GitTransfer) ListTags(_ context.Context, localPath string) ([]string, error) {
	repo, err := gogit.PlainOpen(localPath)
	if err != nil {
		return nil, models.NewError("list tags", localPath, models.ErrRemote, err)
	}
	iter, err := repo.Tags()
	if err != nil {
		return nil, models.NewError("list tags", localPath, models.ErrRemote, err)
	}
	defer iter.Close()

	var tags []string
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		tags = append(tags, ref.Name().Short())
		return nil
	})
	if err != nil {
		return nil, models.NewError("list tags", localPath, models.ErrRemote, err)
	}
	return tags, nil
}

// Push sends ref to remote under the same name. An up-to-date remote is not
// an error.
func (t *GitTransfer) Push(ctx context.Context, localPath, remote, ref string) error {
	ctx, cancel := withTimeout(ctx, t.timeout)
	defer cancel()

	repo, err := gogit.PlainOpen(localPath)
	if err != nil {
		return models.NewError("push", ref, models.ErrPush, err)
	}
	if _, err := repo.Reference(plumbing.ReferenceName(ref), true); err != nil {
		return models.NewError("push", ref, models.ErrPush, fmt.Errorf("resolving local ref: %w", err))
	}
	err = repo.PushContext(ctx, &gogit.PushOptions{
		RemoteName: remote,
		RefSpecs:   []gitconfig.RefSpec{gitconfig.RefSpec(ref + ":" + ref)},
		Auth:       t.dest.auth(),
	})
	if err != nil && !errors.Is(err, gogit.NoErrAlreadyUpToDate) {
		return models.NewError("push", ref, models.ErrPush, err)
	}
	return nil
}

// Cleanup removes the staging directory and everything below it.
func (t *GitTransfer) Cleanup(localPath string) error {
	if err := os.RemoveAll(localPath); err != nil {
		return fmt.Errorf("removing %s: %w", localPath, err)
	}
	return nil
}

// redact drops userinfo from a URL before it is logged.
func redact(rawURL string) string {
	scheme, rest, ok := strings.Cut(rawURL, "://")
	if !ok {
		return rawURL
	}
	if at := strings.Index(rest, "@"); at >= 0 && at < strings.IndexByte(rest+"/", '/') {
		rest = rest[at+1:]
	}
	return scheme + "://" + rest
}
