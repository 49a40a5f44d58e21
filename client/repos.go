package client

import (
	"context"
	"errors"
	"net/http"
	"net/url"
)

// ImportRepositoryRequest identifies the repository to import. AccountUID
// selects the linked GitHub account holding access; empty uses the first
// linked account. Branch defaults to the repository's default branch.
type ImportRepositoryRequest struct {
	AccountUID string `json:"account_uid"`
	Owner      string `json:"owner"`
	Name       string `json:"name"`
	Branch     string `json:"branch"`
	Private    bool   `json:"private"`
}

// ListGitHubRepositories lists the live repositories visible through a linked
// GitHub account. githubUID selects the account; empty uses the first one.
func (c *Client) ListGitHubRepositories(ctx context.Context, githubUID string) ([]GitHubRepository, error) {
	path := "/api/github/repos/"
	if githubUID != "" {
		path += "?github_uid=" + url.QueryEscape(githubUID)
	}

	var repos []GitHubRepository
	if err := c.do(ctx, http.MethodGet, path, nil, &repos); err != nil {
		return nil, err
	}
	return repos, nil
}

// ListRepositoryContents browses a live repository's tree. path selects a
// subdirectory, empty for the repository root. githubUID selects the linked
// account; empty uses the first one.
func (c *Client) ListRepositoryContents(ctx context.Context, githubUID, owner, name, path string) ([]ContentEntry, error) {
	query := url.Values{}
	if path != "" {
		query.Set("path", path)
	}
	if githubUID != "" {
		query.Set("github_uid", githubUID)
	}
	endpoint := "/api/github/repos/" + url.PathEscape(owner) + "/" + url.PathEscape(name) + "/contents/"
	if encoded := query.Encode(); encoded != "" {
		endpoint += "?" + encoded
	}

	var entries []ContentEntry
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// GetFileContent fetches a single decoded file from a live repository
func (c *Client) GetFileContent(ctx context.Context, githubUID, owner, name, path string) (*FileContent, error) {
	query := url.Values{}
	query.Set("path", path)
	if githubUID != "" {
		query.Set("github_uid", githubUID)
	}
	endpoint := "/api/github/repos/" + url.PathEscape(owner) + "/" + url.PathEscape(name) + "/file/?" + query.Encode()

	var file FileContent
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &file); err != nil {
		return nil, err
	}
	return &file, nil
}

// GitHubConnectionStatus reports whether the user has linked GitHub accounts
func (c *Client) GitHubConnectionStatus(ctx context.Context) (*GitHubConnectionStatus, error) {
	var status GitHubConnectionStatus
	if err := c.do(ctx, http.MethodGet, "/api/github/status/", nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// ListImportedRepositories returns the user's tracked repositories
func (c *Client) ListImportedRepositories(ctx context.Context) ([]ImportedRepository, error) {
	var repos []ImportedRepository
	if err := c.do(ctx, http.MethodGet, "/api/github/imported/", nil, &repos); err != nil {
		return nil, err
	}
	return repos, nil
}

// ImportRepository starts tracking a repository; its sync status begins at
// pending. Fails with ErrAlreadyImported when the repository is already
// tracked.
func (c *Client) ImportRepository(ctx context.Context, req ImportRepositoryRequest) (*ImportedRepository, error) {
	var repo ImportedRepository
	if err := c.do(ctx, http.MethodPost, "/api/github/imported/", req, &repo); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusConflict {
			return nil, ErrAlreadyImported
		}
		return nil, err
	}
	return &repo, nil
}

// SyncRepository requests a sync and returns the repository in its syncing
// state. A request while a sync is already running is not rejected; the
// server's last status report wins.
func (c *Client) SyncRepository(ctx context.Context, id string) (*ImportedRepository, error) {
	var repo ImportedRepository
	if err := c.do(ctx, http.MethodPost, "/api/github/imported/"+id+"/sync/", nil, &repo); err != nil {
		return nil, err
	}
	return &repo, nil
}

// GetRepository fetches the current state of a tracked repository; polled by
// callers watching a sync complete
func (c *Client) GetRepository(ctx context.Context, id string) (*ImportedRepository, error) {
	repos, err := c.ListImportedRepositories(ctx)
	if err != nil {
		return nil, err
	}
	for i := range repos {
		if repos[i].ID == id {
			return &repos[i], nil
		}
	}
	return nil, ErrNotFound
}

// DeleteRepository stops tracking a repository. Hard delete; confirmation is
// the caller's concern.
func (c *Client) DeleteRepository(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/github/imported/"+id, nil, nil)
}
