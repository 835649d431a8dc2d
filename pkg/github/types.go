package github

import (
	"path/filepath"
	"strings"
)

const (
	// DefaultTargetRef is the branch a new release's tag is created from
	DefaultTargetRef = "main"

	// AssetContentType is the media type every asset is uploaded with
	AssetContentType = "application/octet-stream"
)

// Repository identifies a GitHub repository as owner/name
type Repository struct {
	Owner string `json:"owner"`
	Name  string `json:"name"`
}

// String returns the owner/name form
func (r Repository) String() string {
	return r.Owner + "/" + r.Name
}

// ParseRepository parses an owner/name repository identifier
func ParseRepository(s string) (Repository, error) {
	owner, name, ok := strings.Cut(strings.TrimSpace(s), "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return Repository{}, &ValidationError{
			Field:   "repository",
			Value:   s,
			Message: "repository must be in owner/name form",
		}
	}
	return Repository{Owner: owner, Name: name}, nil
}

// ReleaseSpec describes the desired state of a release
type ReleaseSpec struct {
	Repository Repository `json:"repository"`
	Tag        string     `json:"tag"`
	TargetRef  string     `json:"target_commitish"` // only used on creation
	Title      string     `json:"name"`
	Body       string     `json:"body"`
}

// RemoteRelease represents a release as returned by GitHub
type RemoteRelease struct {
	ID         int64         `json:"id"`
	Tag        string        `json:"tag_name"`
	TargetRef  string        `json:"target_commitish"`
	Title      string        `json:"name"`
	Body       string        `json:"body"`
	HTMLURL    string        `json:"html_url"`
	UploadURL  string        `json:"upload_url"`
	Draft      bool          `json:"draft"`
	Prerelease bool          `json:"prerelease"`
	Assets     []RemoteAsset `json:"assets,omitempty"`
}

// RemoteAsset represents a file attached to a release
type RemoteAsset struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	ContentType string `json:"content_type"`
	Size        int    `json:"size"`
	DownloadURL string `json:"browser_download_url"`
}

// LocalAsset is a file on disk to be uploaded as a release asset
type LocalAsset struct {
	Path string `json:"path"`
	Name string `json:"name"`
	Size int64  `json:"size"`
}

// NewLocalAsset builds a LocalAsset named by the basename of path
func NewLocalAsset(path string) LocalAsset {
	return LocalAsset{
		Path: path,
		Name: filepath.Base(path),
	}
}

// NewLocalAssets builds LocalAssets for every path
func NewLocalAssets(paths []string) []LocalAsset {
	assets := make([]LocalAsset, 0, len(paths))
	for _, p := range paths {
		assets = append(assets, NewLocalAsset(p))
	}
	return assets
}
