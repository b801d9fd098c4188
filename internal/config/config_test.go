package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWithoutFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "gitlab.com", cfg.GitLab.URL)
	assert.Equal(t, "github.com", cfg.GitHub.URL)
	assert.Equal(t, 4, cfg.Migration.Workers)
	assert.True(t, cfg.Migration.Private)
	assert.Equal(t, 30*time.Second, cfg.Migration.RequestTimeout)
	assert.Equal(t, 10*time.Minute, cfg.Migration.GitTimeout)
	assert.True(t, cfg.Database.Enabled)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
}

func TestLoadFileAndEnvOverride(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("GL2GH_GITHUB_TOKEN", "from-env")

	path := filepath.Join(t.TempDir(), "config.yaml")
	doc := `
gitlab:
  url: https://gitlab.internal
  token: gl-token
github:
  token: from-file
migration:
  workers: 0
  git_timeout: 90s
  work_dir: ~/scratch
database:
  path: ~/ledger.db
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://gitlab.internal", cfg.GitLab.URL)
	assert.Equal(t, "gl-token", cfg.GitLab.Token)
	assert.Equal(t, "from-env", cfg.GitHub.Token)
	assert.Equal(t, 0, cfg.Migration.Workers)
	assert.Equal(t, 90*time.Second, cfg.Migration.GitTimeout)
	assert.Equal(t, filepath.Join(home, "scratch"), cfg.Migration.WorkDir)
	assert.Equal(t, filepath.Join(home, "ledger.db"), cfg.Database.Path)
}

func TestLoadMalformedFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("gitlab: [unclosed"), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg, err := Load(path)
	require.NoError(t, err)
	cfg.GitLab.Token = "saved"
	cfg.Migration.GitTimeout = 2 * time.Minute
	require.NoError(t, Save(cfg, path))

	again, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "saved", again.GitLab.Token)
	assert.Equal(t, 2*time.Minute, again.Migration.GitTimeout)
}

func TestValidate(t *testing.T) {
	cfg := &Config{
		GitLab: GitLabConfig{URL: "gitlab.com"},
		GitHub: GitHubConfig{URL: "github.com", Token: "gh"},
	}
	assert.NoError(t, cfg.Validate(NeedGitHub))

	err := cfg.Validate(NeedGitLab | NeedGitHub)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GL2GH_GITLAB_TOKEN")
	assert.NotContains(t, err.Error(), "GL2GH_GITHUB_TOKEN")

	cfg.Migration.Workers = -1
	assert.Error(t, cfg.Validate(0))
}
