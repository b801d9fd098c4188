package models

import "fmt"

// Default values applied to a BranchProtectionPolicy when the rule file omits
// a field or sets it to null.
const (
	DefaultRequiredApprovingReviewCount = 1
	DefaultDismissStaleReviews          = true
	DefaultEnforceAdmins                = true
)

// BranchProtectionPolicy describes the protection applied to one branch of a
// destination repository.
type BranchProtectionPolicy struct {
	RequiredStatusCheckContexts  []string `json:"required_status_checks_contexts" yaml:"required_status_checks_contexts"`
	RequiredApprovingReviewCount int      `json:"required_approving_review_count" yaml:"required_approving_review_count"`
	DismissStaleReviews          bool     `json:"dismiss_stale_reviews"           yaml:"dismiss_stale_reviews"`
	EnforceAdmins                bool     `json:"enforce_admins"                  yaml:"enforce_admins"`
}

// DefaultBranchProtectionPolicy returns the policy used when no rules are given.
func DefaultBranchProtectionPolicy() BranchProtectionPolicy {
	return BranchProtectionPolicy{
		RequiredStatusCheckContexts:  []string{},
		RequiredApprovingReviewCount: DefaultRequiredApprovingReviewCount,
		DismissStaleReviews:          DefaultDismissStaleReviews,
		EnforceAdmins:                DefaultEnforceAdmins,
	}
}

// WebhookSpec describes a webhook to install on one destination repository.
type WebhookSpec struct {
	RepoName   string   `json:"repo_name"`
	Secret     string   `json:"-"`
	Events     []string `json:"events"`
	PayloadURL string   `json:"payload_url"`
}

// NewWebhookSpec validates and builds a WebhookSpec. events must be non-empty
// and payloadURL must be set; nothing else is checked.
func NewWebhookSpec(repoName, secret string, events []string, payloadURL string) (WebhookSpec, error) {
	if len(events) == 0 {
		return WebhookSpec{}, &Error{
			Op: "build webhook", Target: repoName, Kind: ErrValidation,
			Err: fmt.Errorf("no events found for %s", repoName),
		}
	}
	if payloadURL == "" {
		return WebhookSpec{}, &Error{
			Op: "build webhook", Target: repoName, Kind: ErrValidation,
			Err: fmt.Errorf("no payloadUrl found for %s", repoName),
		}
	}
	return WebhookSpec{
		RepoName:   repoName,
		Secret:     secret,
		Events:     append([]string(nil), events...),
		PayloadURL: payloadURL,
	}, nil
}
