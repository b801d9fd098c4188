package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CosmoTheDev/gl2gh/models"
)

func TestParseBranchProtectionPolicy(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want models.BranchProtectionPolicy
	}{
		{
			name: "empty document uses defaults",
			doc:  "",
			want: models.DefaultBranchProtectionPolicy(),
		},
		{
			name: "null fields use defaults",
			doc:  "required_approving_review_count: null\nenforce_admins: ~\n",
			want: models.DefaultBranchProtectionPolicy(),
		},
		{
			name: "explicit values kept",
			doc: `
required_status_checks_contexts: [ci/build, ci/lint]
required_approving_review_count: 2
dismiss_stale_reviews: false
enforce_admins: false
`,
			want: models.BranchProtectionPolicy{
				RequiredStatusCheckContexts:  []string{"ci/build", "ci/lint"},
				RequiredApprovingReviewCount: 2,
				DismissStaleReviews:          false,
				EnforceAdmins:                false,
			},
		},
		{
			name: "partial document",
			doc:  "required_status_checks_contexts: [ci]\n",
			want: models.BranchProtectionPolicy{
				RequiredStatusCheckContexts:  []string{"ci"},
				RequiredApprovingReviewCount: 1,
				DismissStaleReviews:          true,
				EnforceAdmins:                true,
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseBranchProtectionPolicy([]byte(tt.doc))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseBranchProtectionPolicyRejectsBadCount(t *testing.T) {
	_, err := ParseBranchProtectionPolicy([]byte("required_approving_review_count: 9\n"))
	assert.True(t, errors.Is(err, models.ErrValidation))
}

func TestLoadBranchProtectionPolicy(t *testing.T) {
	policy, err := LoadBranchProtectionPolicy("")
	require.NoError(t, err)
	assert.Equal(t, models.DefaultBranchProtectionPolicy(), policy)

	_, err = LoadBranchProtectionPolicy(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.True(t, errors.Is(err, models.ErrConfiguration))
}

const webhookDoc = `
events: [push]
payloadUrl: https://ci.example.com/hook
repo-a:
  secret: a-secret
repo-b:
  secret: b-secret
  events: [push, pull_request]
  payloadUrl: https://other.example.com/hook
repo-c:
  events: [push]
`

func TestWebhookTemplateSpecs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "webhooks.yaml")
	require.NoError(t, os.WriteFile(path, []byte(webhookDoc), 0o600))
	tpl, err := LoadWebhookTemplate(path)
	require.NoError(t, err)

	specs, err := tpl.Specs([]string{"repo-a", "repo-b"})
	require.NoError(t, err)
	require.Len(t, specs, 2)

	assert.Equal(t, models.WebhookSpec{
		RepoName: "repo-a", Secret: "a-secret",
		Events: []string{"push"}, PayloadURL: "https://ci.example.com/hook",
	}, specs[0])
	assert.Equal(t, []string{"push", "pull_request"}, specs[1].Events)
	assert.Equal(t, "https://other.example.com/hook", specs[1].PayloadURL)
}

func TestWebhookTemplateSpecsMissingConfig(t *testing.T) {
	tpl, err := ParseWebhookTemplate([]byte(webhookDoc))
	require.NoError(t, err)

	for _, repo := range []string{"repo-c", "unknown"} {
		_, err := tpl.Specs([]string{"repo-a", repo})
		require.Error(t, err, repo)
		assert.True(t, errors.Is(err, models.ErrValidation))
		assert.Contains(t, err.Error(), "no config found for "+repo)
	}
}

func TestWebhookTemplateSpecsNoEvents(t *testing.T) {
	tpl, err := ParseWebhookTemplate([]byte("payloadUrl: https://x\nrepo:\n  secret: s\n"))
	require.NoError(t, err)

	_, err = tpl.Specs([]string{"repo"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no events found for repo")
}
