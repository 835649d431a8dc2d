package github

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/google/go-github/v66/github"
	"golang.org/x/oauth2"
)

// ClientOptions configures how the API client authenticates and where it connects
type ClientOptions struct {
	// Username selects HTTP Basic auth when set; otherwise Token is sent as a bearer token
	Username string
	Token    string

	// BaseURL and UploadURL override api.github.com and uploads.github.com.
	// When only BaseURL is set and it ends in /api/v3/, UploadURL is derived
	// as /api/uploads/ on the same host.
	BaseURL   string
	UploadURL string

	Logger *slog.Logger
}

// Client implements the APIClient interface using the GitHub REST API
type Client struct {
	client *github.Client
	logger *slog.Logger
}

// NewClient creates a new GitHub API client from already-resolved credentials
func NewClient(opts ClientOptions) (*Client, error) {
	if opts.Token == "" {
		return nil, NewConfigurationError("GitHub token cannot be empty", nil)
	}

	var httpClient *http.Client
	if opts.Username != "" {
		tp := &github.BasicAuthTransport{
			Username: opts.Username,
			Password: opts.Token,
		}
		httpClient = tp.Client()
	} else {
		ts := oauth2.StaticTokenSource(
			&oauth2.Token{AccessToken: opts.Token},
		)
		httpClient = oauth2.NewClient(context.Background(), ts)
	}

	gh := github.NewClient(httpClient)

	if opts.BaseURL != "" {
		u, err := parseBaseURL(opts.BaseURL)
		if err != nil {
			return nil, NewConfigurationError(fmt.Sprintf("invalid API URL %q", opts.BaseURL), err)
		}
		gh.BaseURL = u
	}
	switch {
	case opts.UploadURL != "":
		u, err := parseBaseURL(opts.UploadURL)
		if err != nil {
			return nil, NewConfigurationError(fmt.Sprintf("invalid upload URL %q", opts.UploadURL), err)
		}
		gh.UploadURL = u
	case opts.BaseURL != "":
		u, err := deriveUploadURL(gh.BaseURL)
		if err != nil {
			return nil, NewConfigurationError(fmt.Sprintf("no upload URL for API URL %q", opts.BaseURL), err)
		}
		gh.UploadURL = u
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		client: gh,
		logger: logger,
	}, nil
}

// parseBaseURL parses u and ensures the trailing slash go-github requires
func parseBaseURL(u string) (*url.URL, error) {
	if !strings.HasSuffix(u, "/") {
		u += "/"
	}
	parsed, err := url.Parse(u)
	if err != nil {
		return nil, err
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("URL must be absolute")
	}
	return parsed, nil
}

// deriveUploadURL maps an enterprise API URL (https://host/api/v3/) to its
// upload URL (https://host/api/uploads/). Assets are never sent to
// uploads.github.com unless the API URL is api.github.com itself.
func deriveUploadURL(base *url.URL) (*url.URL, error) {
	if base.Host == "api.github.com" {
		return url.Parse("https://uploads.github.com/")
	}
	if !strings.HasSuffix(base.Path, "/api/v3/") {
		return nil, fmt.Errorf("API URL does not end in /api/v3/, set the upload URL explicitly")
	}
	u := *base
	u.Path = strings.TrimSuffix(base.Path, "/api/v3/") + "/api/uploads/"
	u.RawPath = ""
	return &u, nil
}

// GetReleaseByTag retrieves the release for a tag, returning ErrReleaseNotFound on 404
func (c *Client) GetReleaseByTag(ctx context.Context, owner, repo, tag string) (*RemoteRelease, error) {
	c.logger.Debug("get release by tag", "owner", owner, "repo", repo, "tag", tag)

	release, resp, err := c.client.Repositories.GetReleaseByTag(ctx, owner, repo, tag)
	if err != nil {
		if isStatus(resp, err, http.StatusNotFound) {
			return nil, ErrReleaseNotFound
		}
		return nil, WrapGitHubError(err, fmt.Sprintf("release %s for %s/%s", tag, owner, repo))
	}

	return convertGitHubRelease(release), nil
}

// CreateRelease creates a published, non-prerelease release for spec.Tag
func (c *Client) CreateRelease(ctx context.Context, owner, repo string, spec ReleaseSpec) (*RemoteRelease, error) {
	c.logger.Debug("create release", "owner", owner, "repo", repo, "tag", spec.Tag, "target", spec.TargetRef)

	req := &github.RepositoryRelease{
		TagName:         github.String(spec.Tag),
		TargetCommitish: github.String(spec.TargetRef),
		Name:            github.String(spec.Title),
		Body:            github.String(spec.Body),
		Draft:           github.Bool(false),
		Prerelease:      github.Bool(false),
	}

	release, _, err := c.client.Repositories.CreateRelease(ctx, owner, repo, req)
	if err != nil {
		return nil, WrapGitHubError(err, fmt.Sprintf("release %s for %s/%s", spec.Tag, owner, repo))
	}

	return convertGitHubRelease(release), nil
}

// UpdateRelease overwrites the title and body of an existing release.
// The target ref is never sent: it only applies when a release is created.
func (c *Client) UpdateRelease(ctx context.Context, owner, repo string, releaseID int64, spec ReleaseSpec) (*RemoteRelease, error) {
	c.logger.Debug("update release", "owner", owner, "repo", repo, "release_id", releaseID)

	req := &github.RepositoryRelease{
		Name:       github.String(spec.Title),
		Body:       github.String(spec.Body),
		Draft:      github.Bool(false),
		Prerelease: github.Bool(false),
	}

	release, _, err := c.client.Repositories.EditRelease(ctx, owner, repo, releaseID, req)
	if err != nil {
		return nil, WrapGitHubError(err, fmt.Sprintf("release %d for %s/%s", releaseID, owner, repo))
	}

	return convertGitHubRelease(release), nil
}

// UpdateReleaseBody patches only the body text of an existing release
func (c *Client) UpdateReleaseBody(ctx context.Context, owner, repo string, releaseID int64, body string) (*RemoteRelease, error) {
	c.logger.Debug("update release body", "owner", owner, "repo", repo, "release_id", releaseID, "body_len", len(body))

	req := &github.RepositoryRelease{
		Body: github.String(body),
	}

	release, _, err := c.client.Repositories.EditRelease(ctx, owner, repo, releaseID, req)
	if err != nil {
		return nil, WrapGitHubError(err, fmt.Sprintf("release %d for %s/%s", releaseID, owner, repo))
	}

	return convertGitHubRelease(release), nil
}

// ListReleaseAssets lists the assets of a release. Only the first page of 100 is read.
func (c *Client) ListReleaseAssets(ctx context.Context, owner, repo string, releaseID int64) ([]RemoteAsset, error) {
	c.logger.Debug("list release assets", "owner", owner, "repo", repo, "release_id", releaseID)

	opts := &github.ListOptions{PerPage: 100}

	assets, _, err := c.client.Repositories.ListReleaseAssets(ctx, owner, repo, releaseID, opts)
	if err != nil {
		return nil, WrapGitHubError(err, fmt.Sprintf("assets of release %d for %s/%s", releaseID, owner, repo))
	}

	result := make([]RemoteAsset, 0, len(assets))
	for _, a := range assets {
		result = append(result, convertGitHubAsset(a))
	}
	return result, nil
}

// DeleteReleaseAsset deletes a release asset
func (c *Client) DeleteReleaseAsset(ctx context.Context, owner, repo string, assetID int64) error {
	c.logger.Debug("delete release asset", "owner", owner, "repo", repo, "asset_id", assetID)

	_, err := c.client.Repositories.DeleteReleaseAsset(ctx, owner, repo, assetID)
	if err != nil {
		return WrapGitHubError(err, fmt.Sprintf("asset %d for %s/%s", assetID, owner, repo))
	}
	return nil
}

// UploadReleaseAsset uploads the raw bytes of a local file as a new release asset
func (c *Client) UploadReleaseAsset(ctx context.Context, owner, repo string, releaseID int64, asset LocalAsset) (*RemoteAsset, error) {
	c.logger.Debug("upload release asset", "owner", owner, "repo", repo, "release_id", releaseID, "name", asset.Name, "path", asset.Path)

	f, err := os.Open(asset.Path)
	if err != nil {
		return nil, &GitHubError{
			Type:     ErrorTypeValidation,
			Message:  fmt.Sprintf("cannot open asset file: %v", err),
			Cause:    err,
			Resource: asset.Path,
		}
	}
	defer func() {
		_ = f.Close()
	}()

	opts := &github.UploadOptions{
		Name:      asset.Name,
		MediaType: AssetContentType,
	}

	uploaded, _, err := c.client.Repositories.UploadReleaseAsset(ctx, owner, repo, releaseID, opts, f)
	if err != nil {
		return nil, WrapGitHubError(err, fmt.Sprintf("asset %s for %s/%s", asset.Name, owner, repo))
	}

	result := convertGitHubAsset(uploaded)
	return &result, nil
}

// isStatus reports whether a failed call ended with the given HTTP status
func isStatus(resp *github.Response, err error, status int) bool {
	if resp != nil && resp.Response != nil && resp.StatusCode == status {
		return true
	}
	var apiErr *github.ErrorResponse
	if errors.As(err, &apiErr) && apiErr.Response != nil {
		return apiErr.Response.StatusCode == status
	}
	return false
}

// convertGitHubRelease converts a GitHub API release to our internal type
func convertGitHubRelease(release *github.RepositoryRelease) *RemoteRelease {
	r := &RemoteRelease{
		ID:         release.GetID(),
		Tag:        release.GetTagName(),
		TargetRef:  release.GetTargetCommitish(),
		Title:      release.GetName(),
		Body:       release.GetBody(),
		HTMLURL:    release.GetHTMLURL(),
		UploadURL:  release.GetUploadURL(),
		Draft:      release.GetDraft(),
		Prerelease: release.GetPrerelease(),
	}
	for _, a := range release.Assets {
		r.Assets = append(r.Assets, convertGitHubAsset(a))
	}
	return r
}

// convertGitHubAsset converts a GitHub API release asset to our internal type
func convertGitHubAsset(asset *github.ReleaseAsset) RemoteAsset {
	return RemoteAsset{
		ID:          asset.GetID(),
		Name:        asset.GetName(),
		ContentType: asset.GetContentType(),
		Size:        asset.GetSize(),
		DownloadURL: asset.GetBrowserDownloadURL(),
	}
}
