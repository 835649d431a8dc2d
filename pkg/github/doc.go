// Package github provides GitHub release publishing for relpub.
// It reconciles a release identified by its tag against desired metadata and
// a set of local asset files, and patches release body text.
//
// The package includes:
// - APIClient interface for the GitHub Releases REST API
// - Reconciler interface for release and asset reconciliation
// - Manifest loading for declarative release descriptions
// - Type definitions for releases and assets
package github
