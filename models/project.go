package models

import (
	"fmt"
	"strings"
)

// Project is a single source repository to migrate. Names are unique within
// one group scope only; the same name may appear under unrelated subgroups.
type Project struct {
	Name              string `json:"name"`
	Description       string `json:"description,omitempty"`
	CloneURL          string `json:"http_url_to_repo"`
	PathWithNamespace string `json:"path_with_namespace,omitempty"`
	DefaultBranch     string `json:"default_branch,omitempty"`
}

// HasPrefix reports whether the project name starts with prefix.
// An empty prefix matches every project.
func (p Project) HasPrefix(prefix string) bool {
	return strings.HasPrefix(p.Name, prefix)
}

func (p Project) String() string {
	return fmt.Sprintf("%s, %s, %s", p.Name, p.Description, p.CloneURL)
}

// Group is the result of a group or subgroup lookup on the source platform.
//
// Shared projects are only populated for top-level group lookups; subgroup
// lookups leave them empty and callers must not read them.
type Group struct {
	Name     string   `json:"name"`
	FullPath string   `json:"full_path"`
	Path     []string `json:"-"`

	projects       []Project
	sharedProjects []Project
}

// NewGroup builds a Group handle. path holds the segments from the root group.
func NewGroup(name, fullPath string, projects, shared []Project) *Group {
	return &Group{
		Name:           name,
		FullPath:       fullPath,
		Path:           strings.Split(fullPath, "/"),
		projects:       projects,
		sharedProjects: shared,
	}
}

// DirectProjects returns the projects owned directly by the group.
func (g *Group) DirectProjects() []Project {
	return append([]Project(nil), g.projects...)
}

// SharedProjects returns projects shared with the group by other namespaces.
func (g *Group) SharedProjects() []Project {
	return append([]Project(nil), g.sharedProjects...)
}

// Subgroup is an intermediate handle used to fetch a subgroup's own listing.
type Subgroup struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// ArchiveResult is returned by the source platform after archiving a project.
type ArchiveResult struct {
	Path     string `json:"path_with_namespace"`
	Archived bool   `json:"archived"`
}
