package github

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Manifest is a declarative description of a release, loaded from YAML
type Manifest struct {
	Repository string   `yaml:"repository"`
	Tag        string   `yaml:"tag"`
	Target     string   `yaml:"target,omitempty"`
	Name       string   `yaml:"name,omitempty"`
	Body       string   `yaml:"body,omitempty"`
	BodyFile   string   `yaml:"body_file,omitempty"`
	Assets     []string `yaml:"assets"`
	Prune      bool     `yaml:"prune,omitempty"`
}

// Validate validates the manifest structure
func (m *Manifest) Validate() error {
	var validationErrors ValidationErrors

	if _, err := ParseRepository(m.Repository); err != nil {
		validationErrors.Add("repository", m.Repository, "repository must be in owner/name form")
	}

	if strings.TrimSpace(m.Tag) == "" {
		validationErrors.Add("tag", m.Tag, "tag is required")
	}

	if m.Body != "" && m.BodyFile != "" {
		validationErrors.Add("body", "", "body and body_file are mutually exclusive")
	}

	for i, a := range m.Assets {
		if strings.TrimSpace(a) == "" {
			validationErrors.Add("assets", "", fmt.Sprintf("asset %d: path cannot be empty", i+1))
		}
	}

	return validationErrors.AsError()
}

// ReleaseBody returns the inline body or the contents of body_file
func (m *Manifest) ReleaseBody() (string, error) {
	if m.BodyFile == "" {
		return m.Body, nil
	}
	data, err := os.ReadFile(m.BodyFile)
	if err != nil {
		return "", &ValidationError{
			Field:   "body_file",
			Value:   m.BodyFile,
			Message: fmt.Sprintf("cannot read release text: %v", err),
		}
	}
	return string(data), nil
}

// ReleaseSpec converts the manifest into the desired release state. Defaults
// are not applied so callers can layer flags and config on top first.
func (m *Manifest) ReleaseSpec() (ReleaseSpec, error) {
	repo, err := ParseRepository(m.Repository)
	if err != nil {
		return ReleaseSpec{}, err
	}

	body, err := m.ReleaseBody()
	if err != nil {
		return ReleaseSpec{}, err
	}

	return ReleaseSpec{
		Repository: repo,
		Tag:        m.Tag,
		TargetRef:  m.Target,
		Title:      m.Name,
		Body:       body,
	}, nil
}

// LoadManifest parses a manifest from YAML. Unknown keys are rejected.
func LoadManifest(data []byte) (*Manifest, error) {
	var m Manifest

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("manifest validation failed: %w", err)
	}

	return &m, nil
}

// LoadManifestFromFile loads a manifest from a file. Relative body_file and
// asset paths are resolved against the manifest's directory.
func LoadManifestFromFile(filename string) (*Manifest, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest file: %w", err)
	}

	m, err := LoadManifest(data)
	if err != nil {
		return nil, err
	}

	dir := filepath.Dir(filename)
	if m.BodyFile != "" && !filepath.IsAbs(m.BodyFile) {
		m.BodyFile = filepath.Join(dir, m.BodyFile)
	}
	for i, a := range m.Assets {
		if !filepath.IsAbs(a) {
			m.Assets[i] = filepath.Join(dir, a)
		}
	}

	return m, nil
}
