package github

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// BodyUpdater patches the body text of an existing release
type BodyUpdater struct {
	client APIClient
}

// NewBodyUpdater creates a new body updater
func NewBodyUpdater(client APIClient) *BodyUpdater {
	return &BodyUpdater{client: client}
}

// UpdateBody looks the release for tag up and replaces its body. Unlike
// Reconcile, a missing release is an error: there is nothing to patch.
func (u *BodyUpdater) UpdateBody(ctx context.Context, repo Repository, tag, body string) (*RemoteRelease, error) {
	var validationErrors ValidationErrors
	if msg := checkTag(tag); msg != "" {
		validationErrors.Add("tag", tag, msg)
	}
	if strings.TrimSpace(body) == "" {
		validationErrors.Add("body", "", "release text is required: use --body or --body-file")
	}
	if err := validationErrors.AsError(); err != nil {
		return nil, err
	}

	release, err := u.client.GetReleaseByTag(ctx, repo.Owner, repo.Name, tag)
	if errors.Is(err, ErrReleaseNotFound) {
		return nil, &GitHubError{
			Type:     ErrorTypeNotFound,
			Message:  "release not found, publish it first",
			Cause:    err,
			Resource: fmt.Sprintf("release %s for %s", tag, repo),
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up release %s: %w", tag, err)
	}

	updated, err := u.client.UpdateReleaseBody(ctx, repo.Owner, repo.Name, release.ID, body)
	if err != nil {
		return nil, fmt.Errorf("failed to update body of release %s: %w", tag, err)
	}
	return updated, nil
}
