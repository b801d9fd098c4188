package repository

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CosmoTheDev/gl2gh/internal/config"
	"github.com/CosmoTheDev/gl2gh/models"
)

const existingRepoJSON = `{"name":"some-repo","full_name":"BAR/some-repo","owner":{"login":"BAR"},"private":true,
"clone_url":"https://github.com/BAR/some-repo.git","html_url":"https://github.com/BAR/some-repo","default_branch":"main"}`

type recordedRequest struct {
	Method string
	Path   string
	Accept string
	Body   map[string]any
}

type requestLog struct {
	mu   sync.Mutex
	reqs []recordedRequest
}

func (l *requestLog) add(r recordedRequest) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.reqs = append(l.reqs, r)
}

func (l *requestLog) all() []recordedRequest {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]recordedRequest(nil), l.reqs...)
}

func newGitHubServer(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) (*GitHubDestination, *requestLog) {
	t.Helper()
	log := &requestLog{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer gh-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		rec := recordedRequest{Method: r.Method, Path: r.URL.Path, Accept: r.Header.Get("Accept")}
		if data, _ := io.ReadAll(r.Body); len(data) > 0 {
			_ = json.Unmarshal(data, &rec.Body)
		}
		log.add(rec)
		w.Header().Set("Content-Type", "application/json")
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	dest, err := NewGitHubDestination(config.GitHubConfig{URL: srv.URL, Token: "gh-token"}, 5*time.Second)
	require.NoError(t, err)
	return dest, log
}

func TestGitHubCreateRepository(t *testing.T) {
	dest, reqs := newGitHubServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(existingRepoJSON))
	})

	repo, err := dest.CreateRepository(t.Context(), "BAR", "some-repo", true, "a description")
	require.NoError(t, err)
	assert.Equal(t, "https://github.com/BAR/some-repo.git", repo.CloneURL)
	assert.Equal(t, "BAR", repo.Owner)

	require.Len(t, reqs.all(), 1)
	got := reqs.all()[0]
	assert.Equal(t, "POST", got.Method)
	assert.Equal(t, "/api/v3/orgs/BAR/repos", got.Path)
	assert.Equal(t, "some-repo", got.Body["name"])
	assert.Equal(t, true, got.Body["private"])
	assert.Equal(t, "a description", got.Body["description"])
}

func TestGitHubCreateRepositoryConflictFetchesExisting(t *testing.T) {
	dest, reqs := newGitHubServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/api/v3/orgs/BAR/repos":
			w.WriteHeader(http.StatusUnprocessableEntity)
			w.Write([]byte(`{"message":"Repository creation failed.","errors":[{"resource":"Repository","code":"custom","field":"name","message":"name already exists on this account"}]}`))
		case r.Method == http.MethodGet && r.URL.Path == "/api/v3/repos/BAR/some-repo":
			w.Write([]byte(existingRepoJSON))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	first, err := dest.CreateRepository(t.Context(), "BAR", "some-repo", true, "")
	require.NoError(t, err)
	second, err := dest.CreateRepository(t.Context(), "BAR", "some-repo", true, "")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, "BAR/some-repo", first.FullName)
	assert.Len(t, reqs.all(), 4)
}

func TestGitHubCreateRepositoryForCurrentUser(t *testing.T) {
	var userLookups atomic.Int32
	dest, reqs := newGitHubServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/api/v3/user/repos":
			w.WriteHeader(http.StatusUnprocessableEntity)
			w.Write([]byte(`{"message":"Repository creation failed."}`))
		case r.URL.Path == "/api/v3/user":
			userLookups.Add(1)
			w.Write([]byte(`{"login":"me"}`))
		case r.URL.Path == "/api/v3/repos/me/some-repo":
			w.Write([]byte(strings.ReplaceAll(existingRepoJSON, "BAR", "me")))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	for i := 0; i < 2; i++ {
		repo, err := dest.CreateRepository(t.Context(), "", "some-repo", true, "")
		require.NoError(t, err)
		assert.Equal(t, "me/some-repo", repo.FullName)
	}
	assert.Equal(t, int32(1), userLookups.Load())
	assert.Equal(t, "/api/v3/user/repos", reqs.all()[0].Path)
}

func TestGitHubCurrentUserRetriesAfterFailure(t *testing.T) {
	var userLookups atomic.Int32
	dest, _ := newGitHubServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v3/user" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if userLookups.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			w.Write([]byte(`{"message":"upstream unavailable"}`))
			return
		}
		w.Write([]byte(`{"login":"me"}`))
	})

	_, err := dest.CurrentUser(t.Context())
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrTransport))

	for i := 0; i < 2; i++ {
		login, err := dest.CurrentUser(t.Context())
		require.NoError(t, err)
		assert.Equal(t, "me", login)
	}
	assert.Equal(t, int32(2), userLookups.Load())
}

func TestGitHubCreateRepositoryServerError(t *testing.T) {
	dest, _ := newGitHubServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"message":"boom"}`))
	})

	_, err := dest.CreateRepository(t.Context(), "BAR", "some-repo", true, "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrTransport))
}

func TestGitHubGetRepositoryNotFound(t *testing.T) {
	dest, _ := newGitHubServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"message":"Not Found"}`))
	})

	_, err := dest.GetRepository(t.Context(), "BAR", "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrNotFound))
	assert.Contains(t, err.Error(), "BAR/missing")
}

func TestGitHubConfigureBranchProtection(t *testing.T) {
	dest, reqs := newGitHubServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	})

	err := dest.ConfigureBranchProtection(t.Context(), "BAR", "repo", "master", models.DefaultBranchProtectionPolicy())
	require.NoError(t, err)

	require.Len(t, reqs.all(), 1)
	got := reqs.all()[0]
	assert.Equal(t, "PUT", got.Method)
	assert.Equal(t, "/api/v3/repos/BAR/repo/branches/master/protection", got.Path)
	assert.Contains(t, got.Accept, "luke-cage-preview")

	checks := got.Body["required_status_checks"].(map[string]any)
	assert.Equal(t, true, checks["strict"])
	assert.Equal(t, []any{}, checks["contexts"])
	reviews := got.Body["required_pull_request_reviews"].(map[string]any)
	assert.Equal(t, float64(1), reviews["required_approving_review_count"])
	assert.Equal(t, true, reviews["dismiss_stale_reviews"])
	assert.Equal(t, true, got.Body["enforce_admins"])
	assert.Contains(t, got.Body, "restrictions")
	assert.Nil(t, got.Body["restrictions"])
}

func TestGitHubConfigureBranchProtectionFailure(t *testing.T) {
	dest, _ := newGitHubServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"message":"Upgrade to GitHub Pro"}`))
	})

	err := dest.ConfigureBranchProtection(t.Context(), "BAR", "repo", "master", models.DefaultBranchProtectionPolicy())
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrConfiguration))
}

func TestGitHubRepositorySettings(t *testing.T) {
	dest, reqs := newGitHubServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"name":"repo","delete_branch_on_merge":true,"default_branch":"develop"}`))
	})

	repo, err := dest.SetAutoDeleteMergedBranches(t.Context(), "BAR", "repo")
	require.NoError(t, err)
	assert.True(t, repo.AutoDeleteMergedBranches)

	repo, err = dest.SetDefaultBranch(t.Context(), "BAR", "repo", "develop")
	require.NoError(t, err)
	assert.Equal(t, "develop", repo.DefaultBranch)

	require.Len(t, reqs.all(), 2)
	assert.Equal(t, "PATCH", reqs.all()[0].Method)
	assert.Equal(t, "/api/v3/repos/BAR/repo", reqs.all()[0].Path)
	assert.Equal(t, true, reqs.all()[0].Body["delete_branch_on_merge"])
	assert.Equal(t, "develop", reqs.all()[1].Body["default_branch"])
}

func TestGitHubRepositorySettingsFailure(t *testing.T) {
	dest, _ := newGitHubServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := dest.SetDefaultBranch(t.Context(), "BAR", "repo", "main")
	assert.True(t, errors.Is(err, models.ErrConfiguration))
	_, err = dest.SetAutoDeleteMergedBranches(t.Context(), "BAR", "repo")
	assert.True(t, errors.Is(err, models.ErrConfiguration))
}

func TestGitHubCreateWebhook(t *testing.T) {
	spec := models.WebhookSpec{RepoName: "repo", Secret: "s3cr3t", Events: []string{"push"}, PayloadURL: "https://ci.example.com/hook"}

	t.Run("created", func(t *testing.T) {
		dest, reqs := newGitHubServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(`{"id":1}`))
		})
		require.NoError(t, dest.CreateWebhook(t.Context(), "BAR", spec))

		got := reqs.all()[0]
		assert.Equal(t, "/api/v3/repos/BAR/repo/hooks", got.Path)
		assert.Equal(t, "web", got.Body["name"])
		assert.Equal(t, true, got.Body["active"])
		assert.Equal(t, []any{"push"}, got.Body["events"])
		cfg := got.Body["config"].(map[string]any)
		assert.Equal(t, "json", cfg["content_type"])
		assert.Equal(t, "s3cr3t", cfg["secret"])
		assert.Equal(t, "https://ci.example.com/hook", cfg["url"])
	})

	t.Run("conflict", func(t *testing.T) {
		dest, _ := newGitHubServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnprocessableEntity)
			w.Write([]byte(`{"message":"Validation Failed","errors":[{"message":"Hook already exists on this repository"}]}`))
		})
		err := dest.CreateWebhook(t.Context(), "BAR", spec)
		require.Error(t, err)
		assert.True(t, errors.Is(err, models.ErrWebhookExists))
		assert.True(t, errors.Is(err, models.ErrConflict))
		assert.False(t, errors.Is(err, models.ErrTransport))
	})

	t.Run("server error", func(t *testing.T) {
		dest, _ := newGitHubServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		})
		err := dest.CreateWebhook(t.Context(), "BAR", spec)
		require.Error(t, err)
		assert.True(t, errors.Is(err, models.ErrTransport))
		assert.False(t, errors.Is(err, models.ErrWebhookExists))
	})
}
