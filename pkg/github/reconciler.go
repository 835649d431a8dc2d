package github

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

var _ APIClient = (*Client)(nil)

// ReconcilerOptions configures a reconciler
type ReconcilerOptions struct {
	// Reporter is notified of every mutation; nil discards notifications
	Reporter Reporter

	// Prune deletes remote assets whose names are not among the local assets
	Prune bool

	Logger *slog.Logger
}

// reconciler implements the Reconciler interface
type reconciler struct {
	client   APIClient
	reporter Reporter
	prune    bool
	logger   *slog.Logger
}

// NewReconciler creates a new reconciler instance
func NewReconciler(client APIClient, opts ReconcilerOptions) Reconciler {
	r := &reconciler{
		client:   client,
		reporter: opts.Reporter,
		prune:    opts.Prune,
		logger:   opts.Logger,
	}
	if r.reporter == nil {
		r.reporter = nopReporter{}
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	return r
}

// Validate checks the desired release and the local assets without touching the network
func (r *reconciler) Validate(spec ReleaseSpec, assets []LocalAsset) error {
	if err := spec.WithDefaults().Validate(); err != nil {
		return err
	}
	_, err := ValidateAssets(assets)
	return err
}

// Reconcile validates, plans and applies in one step. Validation failures abort
// before any API call is made.
func (r *reconciler) Reconcile(ctx context.Context, spec ReleaseSpec, assets []LocalAsset) (*RemoteRelease, error) {
	spec = spec.WithDefaults()
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	validated, err := ValidateAssets(assets)
	if err != nil {
		return nil, err
	}

	plan, err := r.Plan(ctx, spec, validated)
	if err != nil {
		return nil, err
	}

	return r.Apply(ctx, plan)
}

// Plan looks the release up by tag and diffs its assets against the local
// assets. It performs reads only.
func (r *reconciler) Plan(ctx context.Context, spec ReleaseSpec, assets []LocalAsset) (*ReleasePlan, error) {
	spec = spec.WithDefaults()
	repo := spec.Repository
	plan := &ReleasePlan{Spec: spec}

	current, err := r.client.GetReleaseByTag(ctx, repo.Owner, repo.Name, spec.Tag)
	switch {
	case errors.Is(err, ErrReleaseNotFound):
		r.logger.Debug("release does not exist, planning creation", "repository", repo.String(), "tag", spec.Tag)
		plan.Release = &ReleaseChange{
			Type:  ChangeTypeCreate,
			After: spec,
		}
	case err != nil:
		return nil, fmt.Errorf("failed to look up release %s: %w", spec.Tag, err)
	default:
		r.logger.Debug("release exists, planning update", "repository", repo.String(), "tag", spec.Tag, "release_id", current.ID)
		plan.Release = &ReleaseChange{
			Type:   ChangeTypeUpdate,
			Before: current,
			After:  spec,
		}

		plan.Existing, err = r.client.ListReleaseAssets(ctx, repo.Owner, repo.Name, current.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to list assets of release %s: %w", spec.Tag, err)
		}
	}

	plan.Assets = r.planAssetChanges(plan.Existing, assets)
	return plan, nil
}

// planAssetChanges builds the ordered asset changes: evictions of colliding
// names first, then pruned assets, then every upload
func (r *reconciler) planAssetChanges(existing []RemoteAsset, assets []LocalAsset) []AssetChange {
	remoteByName := make(map[string][]RemoteAsset)
	for _, a := range existing {
		remoteByName[a.Name] = append(remoteByName[a.Name], a)
	}

	localNames := make(map[string]bool, len(assets))
	var changes []AssetChange

	for _, local := range assets {
		localNames[local.Name] = true
		for _, remote := range remoteByName[local.Name] {
			remote := remote
			changes = append(changes, AssetChange{
				Type:     ChangeTypeDelete,
				Before:   &remote,
				Replaces: true,
			})
		}
	}

	if r.prune {
		for _, remote := range existing {
			if localNames[remote.Name] {
				continue
			}
			remote := remote
			changes = append(changes, AssetChange{
				Type:   ChangeTypeDelete,
				Before: &remote,
			})
		}
	}

	for _, local := range assets {
		local := local
		changes = append(changes, AssetChange{
			Type:  ChangeTypeCreate,
			After: &local,
		})
	}

	return changes
}

// Apply executes the plan. The release is created or updated first, then every
// deletion runs before any upload. A failure aborts immediately and leaves
// whatever was already applied in place; re-running converges.
func (r *reconciler) Apply(ctx context.Context, plan *ReleasePlan) (*RemoteRelease, error) {
	if plan == nil || plan.Release == nil {
		return nil, fmt.Errorf("nothing to apply: plan has no release change")
	}

	spec := plan.Spec
	repo := spec.Repository

	var (
		release *RemoteRelease
		err     error
	)

	switch plan.Release.Type {
	case ChangeTypeCreate:
		release, err = r.client.CreateRelease(ctx, repo.Owner, repo.Name, spec)
		if err != nil {
			return nil, fmt.Errorf("failed to create release %s: %w", spec.Tag, err)
		}
		r.reporter.ReleaseCreated(release)
	case ChangeTypeUpdate:
		if plan.Release.Before == nil {
			return nil, fmt.Errorf("update plan for %s has no current release", spec.Tag)
		}
		release, err = r.client.UpdateRelease(ctx, repo.Owner, repo.Name, plan.Release.Before.ID, spec)
		if err != nil {
			return nil, fmt.Errorf("failed to update release %s: %w", spec.Tag, err)
		}
		r.reporter.ReleaseUpdated(release)
	default:
		return nil, fmt.Errorf("unsupported release change type: %s", plan.Release.Type)
	}

	deleted := make(map[int64]bool)
	for _, change := range plan.Deletions() {
		if err := r.client.DeleteReleaseAsset(ctx, repo.Owner, repo.Name, change.Before.ID); err != nil {
			return nil, fmt.Errorf("failed to delete asset %s: %w", change.Before.Name, err)
		}
		deleted[change.Before.ID] = true
		r.reporter.AssetDeleted(*change.Before)
	}

	var assets []RemoteAsset
	for _, a := range plan.Existing {
		if !deleted[a.ID] {
			assets = append(assets, a)
		}
	}

	for _, change := range plan.Uploads() {
		uploaded, err := r.client.UploadReleaseAsset(ctx, repo.Owner, repo.Name, release.ID, *change.After)
		if err != nil {
			return nil, fmt.Errorf("failed to upload asset %s: %w", change.After.Name, err)
		}
		assets = append(assets, *uploaded)
		r.reporter.AssetUploaded(uploaded)
	}

	release.Assets = assets
	return release, nil
}

type nopReporter struct{}

func (nopReporter) ReleaseCreated(*RemoteRelease) {}
func (nopReporter) ReleaseUpdated(*RemoteRelease) {}
func (nopReporter) AssetDeleted(RemoteAsset)      {}
func (nopReporter) AssetUploaded(*RemoteAsset)    {}
