package migrate

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/CosmoTheDev/gl2gh/models"
)

func proj(group, name string) models.Project {
	return models.Project{
		Name:              name,
		CloneURL:          "https://gitlab.example.com/" + group + "/" + name + ".git",
		PathWithNamespace: group + "/" + name,
	}
}

func projects(group string, names ...string) []models.Project {
	out := make([]models.Project, len(names))
	for i, n := range names {
		out[i] = proj(group, n)
	}
	return out
}

// fakeSource serves a fixed group tree.
type fakeSource struct {
	groups    map[string]*models.Group
	subgroups map[string][]models.Subgroup
	failOn    map[string]error

	mu       sync.Mutex
	archived []string
}

// fooTree is group FOO: three direct projects, one shared project and two
// subgroups that both contain project1 and project2.
func fooTree() *fakeSource {
	return &fakeSource{
		groups: map[string]*models.Group{
			"FOO": models.NewGroup("FOO", "FOO",
				projects("FOO", "repository-1", "repository-2", "repository-3"),
				projects("OTHER", "shared-project1")),
			"FOO/subgroup1": models.NewGroup("subgroup1", "FOO/subgroup1",
				projects("FOO/subgroup1", "project1", "project2"), nil),
			"FOO/subgroup2": models.NewGroup("subgroup2", "FOO/subgroup2",
				projects("FOO/subgroup2", "project1", "project2"), nil),
		},
		subgroups: map[string][]models.Subgroup{
			"FOO": {{Name: "subgroup1", Path: "subgroup1"}, {Name: "subgroup2", Path: "subgroup2"}},
		},
	}
}

func (f *fakeSource) fail(key string) error {
	if f.failOn == nil {
		return nil
	}
	return f.failOn[key]
}

func (f *fakeSource) GetGroup(_ context.Context, group string) (*models.Group, error) {
	if err := f.fail("group:" + group); err != nil {
		return nil, err
	}
	g, ok := f.groups[group]
	if !ok {
		return nil, models.NewError("fetch group", group, models.ErrNotFound, fmt.Errorf("no group found with name %s", group))
	}
	return g, nil
}

func (f *fakeSource) ListSubgroups(_ context.Context, group string) ([]models.Subgroup, error) {
	if err := f.fail("subgroups:" + group); err != nil {
		return nil, err
	}
	if _, ok := f.groups[group]; !ok {
		return nil, models.NewError("list subgroups", group, models.ErrNotFound, fmt.Errorf("no group found with name %s", group))
	}
	return f.subgroups[group], nil
}

func (f *fakeSource) GetSubgroup(_ context.Context, group, subgroup string) (*models.Group, error) {
	key := group + "/" + subgroup
	if err := f.fail("group:" + key); err != nil {
		return nil, err
	}
	g, ok := f.groups[key]
	if !ok {
		return nil, models.NewError("fetch subgroup", key, models.ErrNotFound, fmt.Errorf("no subgroup found with name %s", subgroup))
	}
	// Subgroup handles never carry shared projects.
	return models.NewGroup(g.Name, g.FullPath, g.DirectProjects(), nil), nil
}

func (f *fakeSource) ArchiveProject(_ context.Context, path string) (*models.ArchiveResult, error) {
	if err := f.fail("archive:" + path); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.archived = append(f.archived, path)
	return &models.ArchiveResult{Path: path, Archived: true}, nil
}

// fakeDest is an in-memory destination with idempotent creation.
type fakeDest struct {
	failCreate  map[string]bool
	failSetting map[string]bool
	hookErr     map[string]error

	mu             sync.Mutex
	repos          map[string]*models.Repository
	createCalls    int
	defaultBranch  map[string]string
	autoDelete     map[string]bool
	protected      map[string]models.BranchProtectionPolicy
	hooks          []models.WebhookSpec
	defaultCallLog []string
}

func newFakeDest() *fakeDest {
	return &fakeDest{
		repos:         map[string]*models.Repository{},
		defaultBranch: map[string]string{},
		autoDelete:    map[string]bool{},
		protected:     map[string]models.BranchProtectionPolicy{},
	}
}

func (f *fakeDest) CreateRepository(_ context.Context, owner, name string, private bool, desc string) (*models.Repository, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	if f.failCreate[name] {
		return nil, models.NewError("create repository", name, models.ErrTransport, errors.New("HTTP 500"))
	}
	if r, ok := f.repos[owner+"/"+name]; ok {
		cp := *r
		return &cp, nil
	}
	r := &models.Repository{
		Owner: owner, Name: name, FullName: owner + "/" + name, Private: private,
		CloneURL: "https://github.com/" + owner + "/" + name + ".git",
	}
	f.repos[owner+"/"+name] = r
	cp := *r
	return &cp, nil
}

func (f *fakeDest) GetRepository(_ context.Context, owner, name string) (*models.Repository, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.repos[owner+"/"+name]
	if !ok {
		return nil, models.NewError("get repository", owner+"/"+name, models.ErrNotFound, nil)
	}
	cp := *r
	return &cp, nil
}

func (f *fakeDest) ConfigureBranchProtection(_ context.Context, owner, repo, branch string, policy models.BranchProtectionPolicy) error {
	if f.failSetting[repo] {
		return models.NewError("configure branch protection", repo, models.ErrConfiguration, errors.New("HTTP 403"))
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.protected[repo+"@"+branch] = policy
	return nil
}

func (f *fakeDest) SetAutoDeleteMergedBranches(_ context.Context, owner, repo string) (*models.Repository, error) {
	if f.failSetting[repo] {
		return nil, models.NewError("set auto-delete merged branches", repo, models.ErrConfiguration, errors.New("HTTP 403"))
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.autoDelete[repo] = true
	return &models.Repository{Owner: owner, Name: repo, AutoDeleteMergedBranches: true}, nil
}

func (f *fakeDest) SetDefaultBranch(_ context.Context, owner, repo, branch string) (*models.Repository, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.defaultCallLog = append(f.defaultCallLog, repo)
	if f.failSetting[repo] {
		return nil, models.NewError("set default branch", repo, models.ErrConfiguration, errors.New("HTTP 422"))
	}
	f.defaultBranch[repo] = branch
	return &models.Repository{Owner: owner, Name: repo, DefaultBranch: branch}, nil
}

func (f *fakeDest) CreateWebhook(_ context.Context, owner string, spec models.WebhookSpec) error {
	if err := f.hookErr[spec.RepoName]; err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hooks = append(f.hooks, spec)
	return nil
}

// fakeGit stages real directories so cleanup can be observed on disk.
type fakeGit struct {
	branches []string
	tags     []string
	// failPush and failClone match on ref name and source URL substrings.
	failPush  string
	failClone string
	panicOn   string

	clones, remotes, pushes, cleanups atomic.Int32
	inFlight, maxInFlight             atomic.Int32

	mu     sync.Mutex
	pushed map[string][]string
}

func newFakeGit(branches ...string) *fakeGit {
	return &fakeGit{branches: branches, pushed: map[string][]string{}}
}

func (f *fakeGit) Clone(_ context.Context, sourceURL, localPath, remote string) error {
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		m := f.maxInFlight.Load()
		if n <= m || f.maxInFlight.CompareAndSwap(m, n) {
			break
		}
	}
	f.clones.Add(1)
	if f.panicOn != "" && strings.Contains(sourceURL, f.panicOn) {
		panic("corrupt pack")
	}
	if f.failClone != "" && strings.Contains(sourceURL, f.failClone) {
		// Leave a partial directory behind like an interrupted clone.
		_ = os.MkdirAll(localPath, 0o755)
		return models.NewError("clone", sourceURL, models.ErrClone, errors.New("authentication required"))
	}
	if remote != SourceRemote {
		return fmt.Errorf("unexpected remote %q", remote)
	}
	return os.WriteFile(filepath.Join(mustMkdir(localPath), "HEAD"), []byte("ref: refs/heads/master\n"), 0o644)
}

func mustMkdir(dir string) string {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		panic(err)
	}
	return dir
}

func (f *fakeGit) AddRemote(_ context.Context, localPath, remote, remoteURL string) error {
	f.remotes.Add(1)
	if remote != DestinationRemote || remoteURL == "" {
		return models.NewError("add remote", remote, models.ErrRemote, errors.New("bad remote"))
	}
	return nil
}

func (f *fakeGit) ListBranches(_ context.Context, localPath, remote string) ([]string, error) {
	return append([]string(nil), f.branches...), nil
}

func (f *fakeGit) ListTags(_ context.Context, localPath string) ([]string, error) {
	return append([]string(nil), f.tags...), nil
}

func (f *fakeGit) Push(_ context.Context, localPath, remote, ref string) error {
	f.pushes.Add(1)
	if _, err := os.Stat(localPath); err != nil {
		return fmt.Errorf("push after cleanup: %w", err)
	}
	if f.failPush != "" && strings.Contains(ref, f.failPush) {
		return models.NewError("push", ref, models.ErrPush, errors.New("remote rejected"))
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pushed[localPath] = append(f.pushed[localPath], ref)
	return nil
}

func (f *fakeGit) Cleanup(localPath string) error {
	f.cleanups.Add(1)
	return os.RemoveAll(localPath)
}

// recordingObserver captures reports handed to observers.
type recordingObserver struct {
	err     error
	reports []*CopyReport
}

func (r *recordingObserver) ObserveCopy(_ context.Context, report *CopyReport) error {
	r.reports = append(r.reports, report)
	return r.err
}
