package github

import (
	"context"
	"encoding/base64"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"relpub/pkg/github/githubtest"
)

// newTestClient creates a client pointed at the fake server
func newTestClient(t *testing.T, srv *githubtest.Server) *Client {
	t.Helper()
	client, err := NewClient(ClientOptions{
		Token:     "test-token",
		BaseURL:   srv.APIURL(),
		UploadURL: srv.UploadURL(),
	})
	require.NoError(t, err)
	return client
}

func writeAsset(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestNewClient(t *testing.T) {
	tests := []struct {
		name        string
		opts        ClientOptions
		expectError bool
		errorType   ErrorType
	}{
		{
			name: "bearer token",
			opts: ClientOptions{Token: "test-token"},
		},
		{
			name: "basic auth",
			opts: ClientOptions{Username: "octocat", Token: "test-token"},
		},
		{
			name: "enterprise endpoints",
			opts: ClientOptions{
				Token:     "test-token",
				BaseURL:   "https://github.example.com/api/v3",
				UploadURL: "https://github.example.com/api/uploads",
			},
		},
		{
			name:        "empty token",
			opts:        ClientOptions{Username: "octocat"},
			expectError: true,
			errorType:   ErrorTypeConfiguration,
		},
		{
			name:        "relative API URL",
			opts:        ClientOptions{Token: "test-token", BaseURL: "api/v3"},
			expectError: true,
			errorType:   ErrorTypeConfiguration,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewClient(tt.opts)
			if tt.expectError {
				require.Error(t, err)
				assert.True(t, IsErrorType(err, tt.errorType), "unexpected error: %v", err)
				assert.Nil(t, client)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, client)
			assert.NotNil(t, client.client)
		})
	}
}

func TestNewClient_TrailingSlashAdded(t *testing.T) {
	client, err := NewClient(ClientOptions{
		Token:   "test-token",
		BaseURL: "https://github.example.com/api/v3",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://github.example.com/api/v3/", client.client.BaseURL.String())
}

func TestNewClient_UploadURL(t *testing.T) {
	tests := []struct {
		name        string
		opts        ClientOptions
		expected    string
		expectError bool
	}{
		{
			name:     "public GitHub",
			opts:     ClientOptions{Token: "test-token"},
			expected: "https://uploads.github.com/",
		},
		{
			name:     "enterprise API URL only",
			opts:     ClientOptions{Token: "test-token", BaseURL: "https://ghe.example.com/api/v3/"},
			expected: "https://ghe.example.com/api/uploads/",
		},
		{
			name:     "enterprise API URL without trailing slash",
			opts:     ClientOptions{Token: "test-token", BaseURL: "https://ghe.example.com/api/v3"},
			expected: "https://ghe.example.com/api/uploads/",
		},
		{
			name:     "explicit upload URL wins",
			opts:     ClientOptions{Token: "test-token", BaseURL: "https://ghe.example.com/api/v3/", UploadURL: "https://files.example.com/"},
			expected: "https://files.example.com/",
		},
		{
			name:     "api.github.com",
			opts:     ClientOptions{Token: "test-token", BaseURL: "https://api.github.com/"},
			expected: "https://uploads.github.com/",
		},
		{
			name:        "non-standard API URL without upload URL",
			opts:        ClientOptions{Token: "test-token", BaseURL: "https://ghe.example.com/rest/"},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewClient(tt.opts)
			if tt.expectError {
				require.Error(t, err)
				assert.True(t, IsErrorType(err, ErrorTypeConfiguration))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, client.client.UploadURL.String())
		})
	}
}

func TestClient_UploadGoesToDerivedHost(t *testing.T) {
	srv := githubtest.NewServer()
	defer srv.Close()
	release := srv.AddRelease("acme", "tool", "v1.0.0", "v1.0.0", "body")

	client, err := NewClient(ClientOptions{Token: "test-token", BaseURL: srv.APIURL()})
	require.NoError(t, err)
	assert.Equal(t, srv.UploadURL(), client.client.UploadURL.String())

	path := writeAsset(t, t.TempDir(), "tool.zip", "zip")
	_, err = client.UploadReleaseAsset(context.Background(), "acme", "tool", release.ID, NewLocalAsset(path))
	require.NoError(t, err)

	require.Len(t, srv.Release("acme", "tool", "v1.0.0").Assets, 1)
}

func TestClient_AuthorizationHeader(t *testing.T) {
	srv := githubtest.NewServer()
	defer srv.Close()

	t.Run("bearer", func(t *testing.T) {
		client := newTestClient(t, srv)
		_, err := client.GetReleaseByTag(context.Background(), "acme", "tool", "v1.0.0")
		require.ErrorIs(t, err, ErrReleaseNotFound)

		auths := srv.Authorizations()
		assert.Equal(t, "Bearer test-token", auths[len(auths)-1])
	})

	t.Run("basic", func(t *testing.T) {
		client, err := NewClient(ClientOptions{
			Username: "octocat",
			Token:    "test-token",
			BaseURL:  srv.APIURL(),
		})
		require.NoError(t, err)

		_, err = client.GetReleaseByTag(context.Background(), "acme", "tool", "v1.0.0")
		require.ErrorIs(t, err, ErrReleaseNotFound)

		expected := "Basic " + base64.StdEncoding.EncodeToString([]byte("octocat:test-token"))
		auths := srv.Authorizations()
		assert.Equal(t, expected, auths[len(auths)-1])
	})
}

func TestClient_GetReleaseByTag(t *testing.T) {
	srv := githubtest.NewServer()
	defer srv.Close()

	existing := srv.AddRelease("acme", "tool", "v1.0.0", "Tool 1.0.0", "First release")
	srv.AddAsset(existing, "tool-linux-amd64", []byte("binary"))

	client := newTestClient(t, srv)
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		release, err := client.GetReleaseByTag(ctx, "acme", "tool", "v1.0.0")
		require.NoError(t, err)
		assert.Equal(t, existing.ID, release.ID)
		assert.Equal(t, "v1.0.0", release.Tag)
		assert.Equal(t, "Tool 1.0.0", release.Title)
		assert.Equal(t, "First release", release.Body)
		assert.Equal(t, "https://github.com/acme/tool/releases/tag/v1.0.0", release.HTMLURL)
		require.Len(t, release.Assets, 1)
		assert.Equal(t, "tool-linux-amd64", release.Assets[0].Name)
		assert.Equal(t, 6, release.Assets[0].Size)
	})

	t.Run("not found is a sentinel", func(t *testing.T) {
		release, err := client.GetReleaseByTag(ctx, "acme", "tool", "v9.9.9")
		assert.Nil(t, release)
		assert.ErrorIs(t, err, ErrReleaseNotFound)
	})

	t.Run("server error", func(t *testing.T) {
		srv.Fail("GET /repos/acme/tool/releases/tags/v2.0.0", http.StatusInternalServerError)

		_, err := client.GetReleaseByTag(ctx, "acme", "tool", "v2.0.0")
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrReleaseNotFound)
		assert.True(t, IsErrorType(err, ErrorTypeRemote))

		var ghErr *GitHubError
		require.ErrorAs(t, err, &ghErr)
		assert.Equal(t, http.StatusInternalServerError, ghErr.StatusCode)
	})

	t.Run("unauthorized", func(t *testing.T) {
		srv.Fail("GET /repos/acme/tool/releases/tags/v3.0.0", http.StatusUnauthorized)

		_, err := client.GetReleaseByTag(ctx, "acme", "tool", "v3.0.0")
		assert.True(t, IsErrorType(err, ErrorTypeAuth))
	})
}

func TestClient_CreateRelease(t *testing.T) {
	srv := githubtest.NewServer()
	defer srv.Close()

	client := newTestClient(t, srv)

	spec := ReleaseSpec{
		Repository: Repository{Owner: "acme", Name: "tool"},
		Tag:        "v1.0.0",
		TargetRef:  "release-1.0",
		Title:      "Tool 1.0.0",
		Body:       "Changelog",
	}

	release, err := client.CreateRelease(context.Background(), "acme", "tool", spec)
	require.NoError(t, err)
	assert.NotZero(t, release.ID)
	assert.Equal(t, "v1.0.0", release.Tag)

	stored := srv.Release("acme", "tool", "v1.0.0")
	require.NotNil(t, stored)
	assert.Equal(t, "release-1.0", stored.Target)
	assert.Equal(t, "Tool 1.0.0", stored.Name)
	assert.Equal(t, "Changelog", stored.Body)
	assert.False(t, stored.Draft)
	assert.False(t, stored.Prerelease)
}

func TestClient_CreateRelease_TagTaken(t *testing.T) {
	srv := githubtest.NewServer()
	defer srv.Close()
	srv.AddRelease("acme", "tool", "v1.0.0", "v1.0.0", "body")

	client := newTestClient(t, srv)

	_, err := client.CreateRelease(context.Background(), "acme", "tool", ReleaseSpec{Tag: "v1.0.0"})
	require.Error(t, err)
	assert.True(t, IsErrorType(err, ErrorTypeValidation))
	assert.Contains(t, err.Error(), "tag_name: already exists")
}

func TestClient_UpdateRelease(t *testing.T) {
	srv := githubtest.NewServer()
	defer srv.Close()

	existing := srv.AddRelease("acme", "tool", "v1.0.0", "Old title", "Old body")
	client := newTestClient(t, srv)

	spec := ReleaseSpec{
		Tag:       "v1.0.0",
		TargetRef: "some-other-branch",
		Title:     "New title",
		Body:      "New body",
	}

	release, err := client.UpdateRelease(context.Background(), "acme", "tool", existing.ID, spec)
	require.NoError(t, err)
	assert.Equal(t, existing.ID, release.ID)
	assert.Equal(t, "New title", release.Title)
	assert.Equal(t, "New body", release.Body)

	stored := srv.Release("acme", "tool", "v1.0.0")
	assert.Equal(t, "main", stored.Target, "target must not change on update")
}

func TestClient_UpdateReleaseBody(t *testing.T) {
	srv := githubtest.NewServer()
	defer srv.Close()

	existing := srv.AddRelease("acme", "tool", "v1.0.0", "Keep me", "Old body")
	client := newTestClient(t, srv)

	release, err := client.UpdateReleaseBody(context.Background(), "acme", "tool", existing.ID, "Patched")
	require.NoError(t, err)
	assert.Equal(t, "Patched", release.Body)
	assert.Equal(t, "Keep me", release.Title)
}

func TestClient_ListAndDeleteReleaseAssets(t *testing.T) {
	srv := githubtest.NewServer()
	defer srv.Close()

	existing := srv.AddRelease("acme", "tool", "v1.0.0", "v1.0.0", "body")
	a := srv.AddAsset(existing, "a.tar.gz", []byte("aaa"))
	srv.AddAsset(existing, "b.tar.gz", []byte("bb"))

	client := newTestClient(t, srv)
	ctx := context.Background()

	assets, err := client.ListReleaseAssets(ctx, "acme", "tool", existing.ID)
	require.NoError(t, err)
	require.Len(t, assets, 2)
	assert.Equal(t, "a.tar.gz", assets[0].Name)
	assert.Equal(t, "b.tar.gz", assets[1].Name)

	require.NoError(t, client.DeleteReleaseAsset(ctx, "acme", "tool", a.ID))

	assets, err = client.ListReleaseAssets(ctx, "acme", "tool", existing.ID)
	require.NoError(t, err)
	require.Len(t, assets, 1)
	assert.Equal(t, "b.tar.gz", assets[0].Name)

	err = client.DeleteReleaseAsset(ctx, "acme", "tool", a.ID)
	assert.True(t, IsErrorType(err, ErrorTypeNotFound))
}

func TestClient_UploadReleaseAsset(t *testing.T) {
	srv := githubtest.NewServer()
	defer srv.Close()

	existing := srv.AddRelease("acme", "tool", "v1.0.0", "v1.0.0", "body")
	client := newTestClient(t, srv)

	dir := t.TempDir()
	path := writeAsset(t, dir, "tool v1.zip", "zip-bytes")

	uploaded, err := client.UploadReleaseAsset(context.Background(), "acme", "tool", existing.ID, NewLocalAsset(path))
	require.NoError(t, err)
	assert.NotZero(t, uploaded.ID)
	assert.Equal(t, "tool v1.zip", uploaded.Name)

	stored := srv.Release("acme", "tool", "v1.0.0")
	require.Len(t, stored.Assets, 1)
	assert.Equal(t, "tool v1.zip", stored.Assets[0].Name)
	assert.Equal(t, AssetContentType, stored.Assets[0].ContentType)
	assert.Equal(t, []byte("zip-bytes"), stored.Assets[0].Data)
}

func TestClient_UploadReleaseAsset_MissingFile(t *testing.T) {
	srv := githubtest.NewServer()
	defer srv.Close()

	existing := srv.AddRelease("acme", "tool", "v1.0.0", "v1.0.0", "body")
	client := newTestClient(t, srv)

	asset := NewLocalAsset(filepath.Join(t.TempDir(), "missing.bin"))
	_, err := client.UploadReleaseAsset(context.Background(), "acme", "tool", existing.ID, asset)
	require.Error(t, err)
	assert.True(t, IsErrorType(err, ErrorTypeValidation))

	for _, r := range srv.Requests() {
		assert.NotContains(t, r, "/assets", "no upload request expected")
	}
}

func TestClient_UploadReleaseAsset_NameTaken(t *testing.T) {
	srv := githubtest.NewServer()
	defer srv.Close()

	existing := srv.AddRelease("acme", "tool", "v1.0.0", "v1.0.0", "body")
	srv.AddAsset(existing, "tool.zip", []byte("old"))
	client := newTestClient(t, srv)

	path := writeAsset(t, t.TempDir(), "tool.zip", "new")
	_, err := client.UploadReleaseAsset(context.Background(), "acme", "tool", existing.ID, NewLocalAsset(path))
	require.Error(t, err)
	assert.True(t, IsErrorType(err, ErrorTypeValidation))
}
