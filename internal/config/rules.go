package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/CosmoTheDev/gl2gh/models"
)

// branchProtectionFile mirrors the rules file. Pointer fields distinguish
// "absent or null" from an explicit zero value.
type branchProtectionFile struct {
	RequiredStatusCheckContexts  []string `yaml:"required_status_checks_contexts"`
	RequiredApprovingReviewCount *int     `yaml:"required_approving_review_count"`
	DismissStaleReviews          *bool    `yaml:"dismiss_stale_reviews"`
	EnforceAdmins                *bool    `yaml:"enforce_admins"`
}

// LoadBranchProtectionPolicy reads a branch protection rules file. A missing
// path or an empty document yields the default policy.
func LoadBranchProtectionPolicy(path string) (models.BranchProtectionPolicy, error) {
	if path == "" {
		slog.Warn("Branch protection rules missing, using defaults")
		return models.DefaultBranchProtectionPolicy(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return models.BranchProtectionPolicy{}, models.NewError("read rules", path, models.ErrConfiguration, err)
	}
	return ParseBranchProtectionPolicy(data)
}

// ParseBranchProtectionPolicy decodes rules YAML and applies defaults.
func ParseBranchProtectionPolicy(data []byte) (models.BranchProtectionPolicy, error) {
	var raw *branchProtectionFile
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return models.BranchProtectionPolicy{}, models.NewError("parse rules", "branch protection", models.ErrValidation, err)
	}
	policy := models.DefaultBranchProtectionPolicy()
	if raw == nil {
		slog.Warn("Branch protection rules missing, using defaults")
		return policy, nil
	}
	if raw.RequiredStatusCheckContexts != nil {
		policy.RequiredStatusCheckContexts = raw.RequiredStatusCheckContexts
	}
	if raw.RequiredApprovingReviewCount != nil {
		n := *raw.RequiredApprovingReviewCount
		if n < 0 || n > 6 {
			return models.BranchProtectionPolicy{}, models.NewError("parse rules", "required_approving_review_count",
				models.ErrValidation, fmt.Errorf("must be between 0 and 6, got %d", n))
		}
		policy.RequiredApprovingReviewCount = n
	}
	if raw.DismissStaleReviews != nil {
		policy.DismissStaleReviews = *raw.DismissStaleReviews
	}
	if raw.EnforceAdmins != nil {
		policy.EnforceAdmins = *raw.EnforceAdmins
	}
	return policy, nil
}

// Common keys of a webhook template. Every other top-level key is a repository name.
const (
	webhookEventsKey     = "events"
	webhookPayloadURLKey = "payloadUrl"
)

// WebhookRepoEntry is one repository's section of a webhook template.
type WebhookRepoEntry struct {
	Secret     string   `yaml:"secret"`
	Events     []string `yaml:"events"`
	PayloadURL string   `yaml:"payloadUrl"`
}

// WebhookTemplate holds shared webhook settings plus per-repository overrides.
type WebhookTemplate struct {
	Events     []string
	PayloadURL string
	Repos      map[string]WebhookRepoEntry
}

// LoadWebhookTemplate reads a webhook template file.
func LoadWebhookTemplate(path string) (*WebhookTemplate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, models.NewError("read webhook template", path, models.ErrConfiguration, err)
	}
	return ParseWebhookTemplate(data)
}

// ParseWebhookTemplate decodes a webhook template document:
//
//	events: [push]
//	payloadUrl: https://ci.example.com/hook
//	my-repo:
//	  secret: s3cr3t
//	  events: [push, pull_request]   # optional override
func ParseWebhookTemplate(data []byte) (*WebhookTemplate, error) {
	var doc map[string]yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, models.NewError("parse webhook template", "webhooks", models.ErrValidation, err)
	}
	tpl := &WebhookTemplate{Repos: make(map[string]WebhookRepoEntry, len(doc))}
	for key, node := range doc {
		var err error
		switch key {
		case webhookEventsKey:
			err = node.Decode(&tpl.Events)
		case webhookPayloadURLKey:
			err = node.Decode(&tpl.PayloadURL)
		default:
			var entry WebhookRepoEntry
			if err = node.Decode(&entry); err == nil {
				tpl.Repos[key] = entry
			}
		}
		if err != nil {
			return nil, models.NewError("parse webhook template", key, models.ErrValidation, err)
		}
	}
	return tpl, nil
}

// Specs builds one validated WebhookSpec per repository name, in order.
// Per-repo events and payloadUrl take precedence over the shared values.
func (t *WebhookTemplate) Specs(repoNames []string) ([]models.WebhookSpec, error) {
	specs := make([]models.WebhookSpec, 0, len(repoNames))
	for _, name := range repoNames {
		entry, ok := t.Repos[name]
		if !ok || strings.TrimSpace(entry.Secret) == "" {
			slog.Error("No webhook config found", "repo", name)
			return nil, models.NewError("build webhook", name, models.ErrValidation,
				fmt.Errorf("no config found for %s", name))
		}
		events := entry.Events
		if len(events) == 0 {
			events = t.Events
		}
		payloadURL := entry.PayloadURL
		if payloadURL == "" {
			payloadURL = t.PayloadURL
		}
		spec, err := models.NewWebhookSpec(name, entry.Secret, events, payloadURL)
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}
	return specs, nil
}
