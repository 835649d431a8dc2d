package github

import (
	"context"
	"fmt"
	"strings"
)

// TokenInfo contains information about the authenticated token
type TokenInfo struct {
	User   string   `json:"user"`
	Scopes []string `json:"scopes"`
}

// TokenInfo fetches the authenticated user and the OAuth scopes of the token.
// Fine-grained tokens report no scopes; only classic tokens are checked.
func (c *Client) TokenInfo(ctx context.Context) (*TokenInfo, error) {
	user, resp, err := c.client.Users.Get(ctx, "")
	if err != nil {
		return nil, WrapGitHubError(err, "authenticated user")
	}

	scopes := []string{}
	if scopeHeader := resp.Header.Get("X-OAuth-Scopes"); scopeHeader != "" {
		scopes = strings.Split(strings.ReplaceAll(scopeHeader, " ", ""), ",")
	}

	info := &TokenInfo{
		User:   user.GetLogin(),
		Scopes: scopes,
	}

	if len(scopes) > 0 {
		if err := validatePermissions(scopes); err != nil {
			return info, err
		}
	}

	return info, nil
}

// validatePermissions checks that a classic token can write releases
func validatePermissions(scopes []string) error {
	for _, scope := range scopes {
		if scope == "repo" || scope == "public_repo" {
			return nil
		}
	}

	return &GitHubError{
		Type:    ErrorTypePermission,
		Message: fmt.Sprintf("token scopes [%s] cannot publish releases: the repo or public_repo scope is required", strings.Join(scopes, ", ")),
	}
}

// GetAuthInstructions returns instructions for setting up GitHub authentication
func GetAuthInstructions() string {
	return `GitHub credentials are required. They are looked up in this order:

1. Flags:
   relpub --username <login> --token <token> ...

2. Environment variables (recommended for CI/CD):
   export GITHUB_TOKEN="your_personal_access_token"
   export GITHUB_USER="your_login"            # optional, enables basic auth

3. Configuration file (~/.relpub/config.yaml):

   github:
     username: "your_login"
     token: "your_personal_access_token"

4. Git credential helper:
   the same credentials git uses for https://github.com
   (git credential fill)

5. Interactive prompt, with --prompt

The token needs the 'repo' scope (or 'public_repo' for public repositories),
or for fine-grained tokens the "Contents: read and write" permission.`
}
