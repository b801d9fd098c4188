package config

import "time"

// Config is the root configuration structure for gl2gh.
// Serialised to ~/.gl2gh/config.yaml.
type Config struct {
	GitLab    GitLabConfig    `mapstructure:"gitlab"    yaml:"gitlab"    json:"gitlab"`
	GitHub    GitHubConfig    `mapstructure:"github"    yaml:"github"    json:"github"`
	Migration MigrationConfig `mapstructure:"migration" yaml:"migration" json:"migration"`
	Database  DatabaseConfig  `mapstructure:"database"  yaml:"database"  json:"database"`
	Notify    NotifyConfig    `mapstructure:"notify"    yaml:"notify"    json:"notify"`
}

// GitLabConfig holds the source instance and its credentials.
type GitLabConfig struct {
	// URL is the host (gitlab.com) or a full base URL for self-managed instances.
	URL   string `mapstructure:"url"   yaml:"url"   json:"url"`
	Token string `mapstructure:"token" yaml:"token" json:"token"`
	// Username is sent with the token for git-over-HTTPS. Defaults to "oauth2".
	Username string `mapstructure:"username" yaml:"username" json:"username"`
}

// GitHubConfig holds the destination instance and its credentials.
type GitHubConfig struct {
	// URL allows enterprise GitHub (e.g. github.mycompany.com).
	URL      string `mapstructure:"url"      yaml:"url"      json:"url"`
	Token    string `mapstructure:"token"    yaml:"token"    json:"token"`
	Username string `mapstructure:"username" yaml:"username" json:"username"`
}

// MigrationConfig controls the copy pipeline.
type MigrationConfig struct {
	// WorkDir is the scratch root; clones are staged under <work_dir>/migrate.
	WorkDir string `mapstructure:"work_dir" yaml:"work_dir" json:"work_dir"`
	// Workers caps concurrent project pipelines. 0 runs them all at once.
	Workers int `mapstructure:"workers" yaml:"workers" json:"workers"`
	// Private marks created destination repositories private.
	Private bool `mapstructure:"private" yaml:"private" json:"private"`
	// DefaultBranch is applied after copy. Empty means the source default, then "master".
	DefaultBranch  string        `mapstructure:"default_branch"  yaml:"default_branch"  json:"default_branch"`
	RequestTimeout time.Duration `mapstructure:"request_timeout" yaml:"request_timeout" json:"request_timeout"`
	GitTimeout     time.Duration `mapstructure:"git_timeout"     yaml:"git_timeout"     json:"git_timeout"`
}

// DatabaseConfig controls the run-history ledger.
type DatabaseConfig struct {
	// Enabled turns the ledger on. Defaults to true.
	Enabled bool `mapstructure:"enabled" yaml:"enabled" json:"enabled"`
	// Driver is "sqlite" (default) or "mysql".
	Driver string `mapstructure:"driver" yaml:"driver" json:"driver"`
	// Path is the SQLite file path (expanded at runtime).
	Path string `mapstructure:"path" yaml:"path" json:"path"`
	// DSN is the MySQL data source name (used when Driver == "mysql").
	DSN string `mapstructure:"dsn" yaml:"dsn" json:"dsn"`
}

// NotifyConfig controls run-completion notifications.
type NotifyConfig struct {
	Slack   SlackConfig   `mapstructure:"slack"   yaml:"slack"   json:"slack"`
	Webhook WebhookConfig `mapstructure:"webhook" yaml:"webhook" json:"webhook"`
	// Events filters which events are sent. Empty sends everything.
	Events []string `mapstructure:"events" yaml:"events" json:"events"`
}

type SlackConfig struct {
	WebhookURL string `mapstructure:"webhook_url" yaml:"webhook_url" json:"webhook_url"`
}

type WebhookConfig struct {
	URL string `mapstructure:"url" yaml:"url" json:"url"`
	// Secret signs payloads with HMAC-SHA256 when set.
	Secret string `mapstructure:"secret" yaml:"secret" json:"secret"`
}
