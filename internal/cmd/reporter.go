package cmd

import (
	"fmt"
	"io"

	"relpub/pkg/github"
)

// statusReporter prints one machine-parsable line per mutation:
//
//	release_created <tag> <id>
//	release_updated <tag> <id>
//	asset_deleted <name>
//	asset_uploaded <name>
type statusReporter struct {
	w io.Writer
}

func newStatusReporter(w io.Writer) *statusReporter {
	return &statusReporter{w: w}
}

func (r *statusReporter) ReleaseCreated(release *github.RemoteRelease) {
	fmt.Fprintf(r.w, "release_created %s %d\n", release.Tag, release.ID)
}

func (r *statusReporter) ReleaseUpdated(release *github.RemoteRelease) {
	fmt.Fprintf(r.w, "release_updated %s %d\n", release.Tag, release.ID)
}

func (r *statusReporter) AssetDeleted(asset github.RemoteAsset) {
	fmt.Fprintf(r.w, "asset_deleted %s\n", asset.Name)
}

func (r *statusReporter) AssetUploaded(asset *github.RemoteAsset) {
	fmt.Fprintf(r.w, "asset_uploaded %s\n", asset.Name)
}
