package models

// Repository is a destination repository as returned by create, fetch or
// settings calls on the destination platform.
type Repository struct {
	Owner                    string `json:"owner"`
	Name                     string `json:"name"`
	FullName                 string `json:"full_name"`
	CloneURL                 string `json:"clone_url"`
	HTMLURL                  string `json:"html_url"`
	Private                  bool   `json:"private"`
	AutoDeleteMergedBranches bool   `json:"delete_branch_on_merge"`
	DefaultBranch            string `json:"default_branch"`
}
