package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"
)

const (
	DefaultConfigDir  = ".gl2gh"
	DefaultConfigFile = "config.yaml"
	DefaultDBFile     = ".gl2gh/gl2gh.db"
	EnvPrefix         = "GL2GH"
)

// Load reads the config file (if any), applies GL2GH_* environment overrides
// and returns a populated Config. configPath may override the default location.
func Load(configPath string) (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("cannot determine home directory: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(filepath.Join(home, DefaultConfigDir))
	}

	setDefaults(v, home)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !isNotExist(err) {
			// Config file exists but is malformed.
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	expandPaths(&cfg, home)
	return &cfg, nil
}

// Save writes the config to disk as YAML.
func Save(cfg *Config, configPath string) error {
	path, err := ConfigPath(configPath)
	if err != nil {
		return fmt.Errorf("cannot determine home directory: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("serialising config: %w", err)
	}
	return os.WriteFile(path, data, 0o600)
}

// ConfigPath returns the effective config file path.
func ConfigPath(override string) (string, error) {
	if override != "" {
		return override, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, DefaultConfigDir, DefaultConfigFile), nil
}

// Requirement names a credential a command needs.
type Requirement int

const (
	NeedGitLab Requirement = 1 << iota
	NeedGitHub
)

// Validate reports every missing setting the given requirements depend on.
func (c *Config) Validate(need Requirement) error {
	var missing []string
	if need&NeedGitLab != 0 {
		if c.GitLab.Token == "" {
			missing = append(missing, "gitlab.token ("+EnvPrefix+"_GITLAB_TOKEN)")
		}
		if c.GitLab.URL == "" {
			missing = append(missing, "gitlab.url")
		}
	}
	if need&NeedGitHub != 0 {
		if c.GitHub.Token == "" {
			missing = append(missing, "github.token ("+EnvPrefix+"_GITHUB_TOKEN)")
		}
		if c.GitHub.URL == "" {
			missing = append(missing, "github.url")
		}
	}
	if c.Migration.Workers < 0 {
		missing = append(missing, "migration.workers must be >= 0")
	}
	if len(missing) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(missing, ", "))
	}
	return nil
}

// setDefaults populates viper with sensible out-of-the-box values. Every key
// is registered so AutomaticEnv can override it during Unmarshal.
func setDefaults(v *viper.Viper, home string) {
	cwd, err := os.Getwd()
	if err != nil {
		cwd = os.TempDir()
	}

	v.SetDefault("gitlab.url", "gitlab.com")
	v.SetDefault("gitlab.token", "")
	v.SetDefault("gitlab.username", "oauth2")

	v.SetDefault("github.url", "github.com")
	v.SetDefault("github.token", "")
	v.SetDefault("github.username", "x-access-token")

	v.SetDefault("migration.work_dir", filepath.Join(cwd, "tmp"))
	v.SetDefault("migration.workers", 4)
	v.SetDefault("migration.private", true)
	v.SetDefault("migration.default_branch", "")
	v.SetDefault("migration.request_timeout", 30*time.Second)
	v.SetDefault("migration.git_timeout", 10*time.Minute)

	v.SetDefault("database.enabled", true)
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", filepath.Join(home, DefaultDBFile))
	v.SetDefault("database.dsn", "")

	v.SetDefault("notify.slack.webhook_url", "")
	v.SetDefault("notify.webhook.url", "")
	v.SetDefault("notify.webhook.secret", "")
	v.SetDefault("notify.events", []string{})
}

// expandPaths resolves ~ in configured paths.
func expandPaths(cfg *Config, home string) {
	cfg.Database.Path = expandHome(cfg.Database.Path, home)
	cfg.Migration.WorkDir = expandHome(cfg.Migration.WorkDir, home)
}

func expandHome(path, home string) string {
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(home, path[2:])
	}
	return path
}

func isNotExist(err error) bool {
	return os.IsNotExist(err) || strings.Contains(err.Error(), "no such file")
}
