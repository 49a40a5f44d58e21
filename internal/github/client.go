package github

import (
	"context"
	"fmt"
	"sort"
	"time"

	gogithub "github.com/google/go-github/v55/github"
	"golang.org/x/oauth2"
)

// Repository is the subset of GitHub repository metadata surfaced to users
// when browsing importable repositories
type Repository struct {
	ID            int64      `json:"id"`
	Name          string     `json:"name"`
	FullName      string     `json:"full_name"`
	Owner         string     `json:"owner"`
	Private       bool       `json:"private"`
	Description   string     `json:"description"`
	Language      string     `json:"language"`
	HTMLURL       string     `json:"html_url"`
	CloneURL      string     `json:"clone_url"`
	DefaultBranch string     `json:"default_branch"`
	UpdatedAt     *time.Time `json:"updated_at"`
}

// Client performs GitHub API operations with per-user OAuth tokens
type Client struct {
	// baseURL overrides the API endpoint for tests (GitHub Enterprise form)
	baseURL string
}

// NewClient creates a GitHub API client
func NewClient() *Client {
	return &Client{}
}

// NewClientWithBaseURL creates a GitHub API client against a custom endpoint
func NewClientWithBaseURL(baseURL string) *Client {
	return &Client{baseURL: baseURL}
}

func (c *Client) api(ctx context.Context, token string) (*gogithub.Client, error) {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	client := gogithub.NewClient(oauth2.NewClient(ctx, ts))
	if c.baseURL != "" {
		return client.WithEnterpriseURLs(c.baseURL, c.baseURL)
	}
	return client, nil
}

// ListRepositories lists the repositories visible to the token's user,
// most recently updated first
func (c *Client) ListRepositories(ctx context.Context, token string) ([]Repository, error) {
	api, err := c.api(ctx, token)
	if err != nil {
		return nil, err
	}

	opts := &gogithub.RepositoryListOptions{
		Sort:        "updated",
		ListOptions: gogithub.ListOptions{PerPage: 100},
	}
	repos, _, err := api.Repositories.List(ctx, "", opts)
	if err != nil {
		return nil, fmt.Errorf("list repositories: %w", err)
	}

	result := make([]Repository, 0, len(repos))
	for _, repo := range repos {
		result = append(result, convertRepository(repo))
	}
	return result, nil
}

// GetRepository fetches a single repository's metadata
func (c *Client) GetRepository(ctx context.Context, token, owner, name string) (*Repository, error) {
	api, err := c.api(ctx, token)
	if err != nil {
		return nil, err
	}

	repo, _, err := api.Repositories.Get(ctx, owner, name)
	if err != nil {
		return nil, fmt.Errorf("get repository %s/%s: %w", owner, name, err)
	}
	converted := convertRepository(repo)
	return &converted, nil
}

// GetBranchHead fetches the head commit SHA of a branch. Used by the sync
// job to verify the tracked branch is reachable and current.
func (c *Client) GetBranchHead(ctx context.Context, token, owner, name, branch string) (string, error) {
	api, err := c.api(ctx, token)
	if err != nil {
		return "", err
	}

	sha, _, err := api.Repositories.GetCommitSHA1(ctx, owner, name, "heads/"+branch, "")
	if err != nil {
		return "", fmt.Errorf("get branch %s/%s@%s: %w", owner, name, branch, err)
	}
	return sha, nil
}

// ContentEntry is one file or directory in a repository contents listing
type ContentEntry struct {
	Name string `json:"name"`
	Path string `json:"path"`
	Type string `json:"type"`
	Size int    `json:"size"`
	SHA  string `json:"sha"`
}

// ListContents lists the entries at a path in the repository, directories
// first. An empty path lists the repository root.
func (c *Client) ListContents(ctx context.Context, token, owner, name, path string) ([]ContentEntry, error) {
	api, err := c.api(ctx, token)
	if err != nil {
		return nil, err
	}

	file, dir, _, err := api.Repositories.GetContents(ctx, owner, name, path, nil)
	if err != nil {
		return nil, fmt.Errorf("list contents %s/%s at %q: %w", owner, name, path, err)
	}
	if file != nil {
		dir = []*gogithub.RepositoryContent{file}
	}

	entries := make([]ContentEntry, 0, len(dir))
	for _, entry := range dir {
		entries = append(entries, ContentEntry{
			Name: entry.GetName(),
			Path: entry.GetPath(),
			Type: entry.GetType(),
			Size: entry.GetSize(),
			SHA:  entry.GetSHA(),
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Type != entries[j].Type {
			return entries[i].Type == "dir"
		}
		return entries[i].Name < entries[j].Name
	})
	return entries, nil
}

// GetFileContent fetches and decodes a single file. Directories and other
// non-file entries are rejected.
func (c *Client) GetFileContent(ctx context.Context, token, owner, name, path string) (string, error) {
	api, err := c.api(ctx, token)
	if err != nil {
		return "", err
	}

	file, _, _, err := api.Repositories.GetContents(ctx, owner, name, path, nil)
	if err != nil {
		return "", fmt.Errorf("get file %s/%s at %q: %w", owner, name, path, err)
	}
	if file == nil || file.GetType() != "file" {
		return "", fmt.Errorf("path %q in %s/%s is not a file", path, owner, name)
	}

	content, err := file.GetContent()
	if err != nil {
		return "", fmt.Errorf("decode file %s/%s at %q: %w", owner, name, path, err)
	}
	return content, nil
}

func convertRepository(repo *gogithub.Repository) Repository {
	converted := Repository{
		ID:            repo.GetID(),
		Name:          repo.GetName(),
		FullName:      repo.GetFullName(),
		Owner:         repo.GetOwner().GetLogin(),
		Private:       repo.GetPrivate(),
		Description:   repo.GetDescription(),
		Language:      repo.GetLanguage(),
		HTMLURL:       repo.GetHTMLURL(),
		CloneURL:      repo.GetCloneURL(),
		DefaultBranch: repo.GetDefaultBranch(),
	}
	if converted.DefaultBranch == "" {
		converted.DefaultBranch = "main"
	}
	if updated := repo.GetUpdatedAt(); !updated.IsZero() {
		t := updated.Time
		converted.UpdatedAt = &t
	}
	return converted
}
