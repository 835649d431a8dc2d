package github

import (
	"fmt"
	"os"
	"strings"
)

// WithDefaults returns a copy of s with the title defaulted to the tag
// and the target ref defaulted to DefaultTargetRef
func (s ReleaseSpec) WithDefaults() ReleaseSpec {
	if strings.TrimSpace(s.Title) == "" {
		s.Title = s.Tag
	}
	if strings.TrimSpace(s.TargetRef) == "" {
		s.TargetRef = DefaultTargetRef
	}
	return s
}

// Validate validates the desired release state
func (s ReleaseSpec) Validate() error {
	var validationErrors ValidationErrors

	if s.Repository.Owner == "" || s.Repository.Name == "" {
		validationErrors.Add("repository", s.Repository.String(), "repository must be in owner/name form")
	}

	if msg := checkTag(s.Tag); msg != "" {
		validationErrors.Add("tag", s.Tag, msg)
	}

	if strings.TrimSpace(s.Body) == "" {
		validationErrors.Add("body", "", "release text is required: use --body or --body-file")
	}

	return validationErrors.AsError()
}

// checkTag returns why tag cannot name a release, or "" when it can.
// '#' and '%' are legal in git refs but go-github puts the tag into the
// request path unescaped, so they would address a different release.
func checkTag(tag string) string {
	switch {
	case strings.TrimSpace(tag) == "":
		return "tag is required"
	case strings.ContainsAny(tag, " \t\n~^:?*[\\"):
		return "tag contains characters git does not allow in a ref"
	case strings.ContainsAny(tag, "#%"):
		return "tag must not contain # or %"
	}
	return ""
}

// ValidateAssets checks that every local asset exists, is a readable regular
// file and that no two assets share a name. It returns the assets with their
// sizes filled in. No network call is made.
func ValidateAssets(assets []LocalAsset) ([]LocalAsset, error) {
	var validationErrors ValidationErrors

	if len(assets) == 0 {
		validationErrors.Add("assets", "", "at least one asset file is required")
		return nil, validationErrors.AsError()
	}

	seen := make(map[string]string, len(assets))
	validated := make([]LocalAsset, 0, len(assets))

	for _, asset := range assets {
		if prev, ok := seen[asset.Name]; ok {
			validationErrors.Add("assets", asset.Path,
				fmt.Sprintf("asset name %q is also used by %s", asset.Name, prev))
			continue
		}
		seen[asset.Name] = asset.Path

		info, err := os.Stat(asset.Path)
		if err != nil {
			validationErrors.Add("assets", asset.Path, "file not found")
			continue
		}
		if !info.Mode().IsRegular() {
			validationErrors.Add("assets", asset.Path, "not a regular file")
			continue
		}

		f, err := os.Open(asset.Path)
		if err != nil {
			validationErrors.Add("assets", asset.Path, "file is not readable")
			continue
		}
		_ = f.Close()

		asset.Size = info.Size()
		validated = append(validated, asset)
	}

	if err := validationErrors.AsError(); err != nil {
		return nil, err
	}
	return validated, nil
}
