package github

import "time"

// Repo is a repository as returned by the list-repositories endpoint.
type Repo struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	FullName      string    `json:"full_name"`
	Description   string    `json:"description"`
	HTMLURL       string    `json:"html_url"`
	Homepage      string    `json:"homepage"`
	Private       bool      `json:"private"`
	Visibility    string    `json:"visibility"`
	Fork          bool      `json:"fork"`
	Archived      bool      `json:"archived"`
	DefaultBranch string    `json:"default_branch"`
	Language      string    `json:"language"`
	Topics        []string  `json:"topics"`
	Stars         int       `json:"stargazers_count"`
	Forks         int       `json:"forks_count"`
	Size          int       `json:"size"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// IsPublic reports whether the repository is visible to anonymous users.
func (r Repo) IsPublic() bool {
	return r.Visibility == "public" || !r.Private
}

// Owner returns the owner part of FullName.
func (r Repo) Owner() string {
	for i := 0; i < len(r.FullName); i++ {
		if r.FullName[i] == '/' {
			return r.FullName[:i]
		}
	}
	return ""
}

// Branch returns the default branch, or "main" when the API omitted it.
func (r Repo) Branch() string {
	if r.DefaultBranch == "" {
		return "main"
	}
	return r.DefaultBranch
}

// LanguageBytes is one entry of a repository's language breakdown.
type LanguageBytes struct {
	Name  string `json:"name"`
	Bytes int64  `json:"bytes"`
}

// TreeEntry represents a file or directory in the repository tree.
type TreeEntry struct {
	Path string `json:"path"`
	Type string `json:"type"` // "blob", "tree" or "commit"
	SHA  string `json:"sha,omitempty"`
	Size int    `json:"size,omitempty"`
}

// IsBlob reports whether the entry is a regular file.
func (e TreeEntry) IsBlob() bool { return e.Type == "blob" }

type refResponse struct {
	Ref    string `json:"ref"`
	Object struct {
		SHA  string `json:"sha"`
		Type string `json:"type"`
	} `json:"object"`
}

type treeResponse struct {
	SHA       string      `json:"sha"`
	Tree      []TreeEntry `json:"tree"`
	Truncated bool        `json:"truncated"`
}

// contentResponse is the contents API response for a single file.
type contentResponse struct {
	Name     string `json:"name"`
	Path     string `json:"path"`
	Type     string `json:"type"`
	Size     int    `json:"size"`
	Content  string `json:"content"`
	Encoding string `json:"encoding"`
}
