package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/CosmoTheDev/gl2gh/internal/config"
	"github.com/CosmoTheDev/gl2gh/internal/database"
	"github.com/CosmoTheDev/gl2gh/internal/migrate"
	"github.com/CosmoTheDev/gl2gh/internal/notify"
	"github.com/CosmoTheDev/gl2gh/internal/repository"
	"github.com/CosmoTheDev/gl2gh/models"
)

// loadConfig reads the config file and checks the credentials need lists.
func loadConfig(need config.Requirement) (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(need); err != nil {
		return nil, err
	}
	return cfg, nil
}

// session bundles the orchestrator with the optional run ledger.
type session struct {
	cfg      *config.Config
	orch     *migrate.Orchestrator
	recorder *database.Recorder
	db       database.DB
}

// newSession wires the clients need asks for. Unneeded sides stay nil.
func newSession(ctx context.Context, need config.Requirement) (*session, error) {
	cfg, err := loadConfig(need)
	if err != nil {
		return nil, err
	}

	var (
		source repository.SourceDirectory
		dest   repository.Destination
		git    repository.ContentTransfer
	)
	if need&config.NeedGitLab != 0 {
		gl, err := repository.NewGitLabDirectory(cfg.GitLab, cfg.Migration.RequestTimeout)
		if err != nil {
			return nil, err
		}
		source = gl
	}
	if need&config.NeedGitHub != 0 {
		gh, err := repository.NewGitHubDestination(cfg.GitHub, cfg.Migration.RequestTimeout)
		if err != nil {
			return nil, err
		}
		dest = gh
	}
	if need == config.NeedGitLab|config.NeedGitHub {
		git = repository.NewGitTransfer(
			repository.Credentials{Username: cfg.GitLab.Username, Token: cfg.GitLab.Token},
			repository.Credentials{Username: cfg.GitHub.Username, Token: cfg.GitHub.Token},
			cfg.Migration.GitTimeout,
		)
	}

	s := &session{
		cfg:  cfg,
		orch: migrate.NewOrchestrator(source, dest, git, migrate.OptionsFromConfig(cfg.Migration)),
	}
	if cfg.Database.Enabled {
		db, err := database.Open(ctx, cfg.Database)
		if err != nil {
			// The ledger is optional.
			slog.Warn("Run history disabled", "error", err)
		} else {
			s.db = db
			s.recorder = database.NewRecorder(db)
			s.orch.AddObserver(s.recorder)
		}
	}
	if d := notify.NewDispatcher(cfg.Notify); d.IsAnyConfigured() {
		s.orch.AddObserver(d)
	}
	return s, nil
}

func (s *session) Close() {
	if s.db != nil {
		s.db.Close()
	}
}

// recordBatch stores a bulk operation's results in the ledger, if enabled.
func recordBatch[T any](ctx context.Context, s *session, kind, target string, started time.Time, results []models.Result[T]) {
	if s.recorder == nil {
		return
	}
	if _, err := database.RecordBatch(ctx, s.recorder, kind, target, started, results); err != nil {
		slog.Warn("Failed to record run", "kind", kind, "error", err)
	}
}

// splitList parses a comma-separated flag value, dropping blanks.
func splitList(v string) []string {
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
