package github

import "context"

// APIClient defines the interface for GitHub Releases API operations
type APIClient interface {
	// Release operations
	GetReleaseByTag(ctx context.Context, owner, repo, tag string) (*RemoteRelease, error)
	CreateRelease(ctx context.Context, owner, repo string, spec ReleaseSpec) (*RemoteRelease, error)
	UpdateRelease(ctx context.Context, owner, repo string, releaseID int64, spec ReleaseSpec) (*RemoteRelease, error)
	UpdateReleaseBody(ctx context.Context, owner, repo string, releaseID int64, body string) (*RemoteRelease, error)

	// Asset operations
	ListReleaseAssets(ctx context.Context, owner, repo string, releaseID int64) ([]RemoteAsset, error)
	DeleteReleaseAsset(ctx context.Context, owner, repo string, assetID int64) error
	UploadReleaseAsset(ctx context.Context, owner, repo string, releaseID int64, asset LocalAsset) (*RemoteAsset, error)
}

// Reconciler defines the interface for release reconciliation operations
type Reconciler interface {
	Plan(ctx context.Context, spec ReleaseSpec, assets []LocalAsset) (*ReleasePlan, error)
	Apply(ctx context.Context, plan *ReleasePlan) (*RemoteRelease, error)
	Validate(spec ReleaseSpec, assets []LocalAsset) error
	Reconcile(ctx context.Context, spec ReleaseSpec, assets []LocalAsset) (*RemoteRelease, error)
}

// Reporter receives a notification for every mutation Apply performs
type Reporter interface {
	ReleaseCreated(release *RemoteRelease)
	ReleaseUpdated(release *RemoteRelease)
	AssetDeleted(asset RemoteAsset)
	AssetUploaded(asset *RemoteAsset)
}

// ChangeType represents the type of change in a reconciliation plan
type ChangeType string

const (
	ChangeTypeCreate ChangeType = "create"
	ChangeTypeUpdate ChangeType = "update"
	ChangeTypeDelete ChangeType = "delete"
)

// ReleasePlan represents a plan of changes to be applied to one release.
// Asset deletions always precede uploads in Assets.
type ReleasePlan struct {
	Spec    ReleaseSpec    `json:"spec"`
	Release *ReleaseChange `json:"release"`
	Assets  []AssetChange  `json:"assets,omitempty"`

	// Existing holds the remote assets found when the plan was made
	Existing []RemoteAsset `json:"existing,omitempty"`
}

// ReleaseChange represents the creation or update of the release object
type ReleaseChange struct {
	Type   ChangeType     `json:"type"`
	Before *RemoteRelease `json:"before,omitempty"`
	After  ReleaseSpec    `json:"after"`
}

// AssetChange represents the deletion of a remote asset or the upload of a local one
type AssetChange struct {
	Type   ChangeType   `json:"type"`
	Before *RemoteAsset `json:"before,omitempty"`
	After  *LocalAsset  `json:"after,omitempty"`

	// Replaces is set on a deletion that evicts a name about to be re-uploaded
	Replaces bool `json:"replaces,omitempty"`
}

// Deletions returns the delete changes of the plan in order
func (p *ReleasePlan) Deletions() []AssetChange {
	return p.assetChanges(ChangeTypeDelete)
}

// Uploads returns the upload changes of the plan in order
func (p *ReleasePlan) Uploads() []AssetChange {
	return p.assetChanges(ChangeTypeCreate)
}

func (p *ReleasePlan) assetChanges(t ChangeType) []AssetChange {
	var changes []AssetChange
	for _, c := range p.Assets {
		if c.Type == t {
			changes = append(changes, c)
		}
	}
	return changes
}
