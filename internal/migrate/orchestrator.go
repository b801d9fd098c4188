package migrate

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/CosmoTheDev/gl2gh/internal/config"
	"github.com/CosmoTheDev/gl2gh/internal/repository"
)

// Remote labels used on a staged clone.
const (
	SourceRemote      = "gitlab"
	DestinationRemote = "github"
)

// FallbackDefaultBranch is set after copy when neither the configuration nor
// the source project names a default branch.
const FallbackDefaultBranch = "master"

// Options controls the copy pipeline.
type Options struct {
	// WorkDir is the scratch root. Clones are staged under WorkDir/migrate.
	WorkDir string
	// Workers caps concurrent pipelines and per-item calls. 0 means unbounded.
	Workers int
	// Private marks created repositories private.
	Private bool
	// DefaultBranch overrides the branch applied after copy.
	DefaultBranch string
}

// OptionsFromConfig maps the migration section of the config file.
func OptionsFromConfig(cfg config.MigrationConfig) Options {
	return Options{
		WorkDir:       cfg.WorkDir,
		Workers:       cfg.Workers,
		Private:       cfg.Private,
		DefaultBranch: cfg.DefaultBranch,
	}
}

// Observer receives the report of every CopyContent run. Errors are logged
// and never change the outcome of the run.
type Observer interface {
	ObserveCopy(ctx context.Context, report *CopyReport) error
}

// Orchestrator drives listing, the per-project copy pipeline and the bulk
// configuration operations on top of the three platform clients.
type Orchestrator struct {
	source    repository.SourceDirectory
	dest      repository.Destination
	git       repository.ContentTransfer
	opts      Options
	observers []Observer
}

// NewOrchestrator creates an Orchestrator.
func NewOrchestrator(source repository.SourceDirectory, dest repository.Destination, git repository.ContentTransfer, opts Options) *Orchestrator {
	if opts.WorkDir == "" {
		opts.WorkDir = "tmp"
	}
	return &Orchestrator{source: source, dest: dest, git: git, opts: opts}
}

// AddObserver registers an observer for CopyContent reports.
func (o *Orchestrator) AddObserver(obs Observer) {
	if obs != nil {
		o.observers = append(o.observers, obs)
	}
}

// SetWorkers overrides the concurrency cap. 0 means unbounded.
func (o *Orchestrator) SetWorkers(n int) {
	if n >= 0 {
		o.opts.Workers = n
	}
}

func (o *Orchestrator) notify(ctx context.Context, report *CopyReport) {
	for _, obs := range o.observers {
		if err := obs.ObserveCopy(ctx, report); err != nil {
			slog.Warn("Report observer failed", "observer", observerName(obs), "error", err)
		}
	}
}

func observerName(obs Observer) string {
	if n, ok := obs.(interface{ Name() string }); ok {
		return n.Name()
	}
	return "unknown"
}

// stagingPath returns the local clone directory for a project. It is keyed by
// the full namespace path so same-named projects from different subgroups
// never share a directory.
func (o *Orchestrator) stagingPath(key string) string {
	return filepath.Join(o.opts.WorkDir, "migrate", filepath.FromSlash(key))
}
