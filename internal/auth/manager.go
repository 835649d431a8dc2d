package auth

import (
	"context"
	"log/slog"
)

// Credentials is an already-resolved identity and secret pair.
// An empty Username means the token is used as a bearer token.
type Credentials struct {
	Username string `json:"username,omitempty"`
	Token    string `json:"-"`

	// Source names the source that supplied the token
	Source string `json:"source"`
}

// Complete reports whether the credentials can authenticate
func (c Credentials) Complete() bool {
	return c.Token != ""
}

// Source is one place credentials may come from. A source with nothing to
// offer returns zero Credentials and a nil error.
type Source interface {
	Name() string
	Lookup(ctx context.Context) (Credentials, error)
}

// Manager resolves credentials from an ordered list of sources
type Manager struct {
	sources       []Source
	gitConfigPath string
	logger        *slog.Logger
}

// NewManager creates a new credential manager trying sources in order
func NewManager(sources ...Source) *Manager {
	return &Manager{
		sources: sources,
		logger:  slog.Default(),
	}
}

// WithGitConfig makes the manager fill a missing username from the
// [github] user key of the given git config file
func (m *Manager) WithGitConfig(path string) *Manager {
	m.gitConfigPath = path
	return m
}

// WithLogger sets the logger
func (m *Manager) WithLogger(logger *slog.Logger) *Manager {
	m.logger = logger
	return m
}

// Resolve returns the first complete credentials. A username seen in an
// earlier source is kept when a later source supplies only a token.
// Source errors are logged and the next source is tried; if none yields a
// token the result is a configuration Error.
func (m *Manager) Resolve(ctx context.Context) (Credentials, error) {
	var (
		username string
		tried    []string
	)

	for _, src := range m.sources {
		tried = append(tried, src.Name())

		creds, err := src.Lookup(ctx)
		if err != nil {
			m.logger.Debug("credential source failed", "source", src.Name(), "error", err)
			continue
		}

		if username == "" && creds.Username != "" {
			username = creds.Username
		}

		if !creds.Complete() {
			continue
		}

		if creds.Username == "" {
			creds.Username = username
		}
		if creds.Username == "" && m.gitConfigPath != "" {
			creds.Username = GitHubUserFromGitConfig(m.gitConfigPath)
		}
		creds.Source = src.Name()

		m.logger.Debug("resolved credentials", "source", creds.Source, "username", creds.Username)
		return creds, nil
	}

	if username != "" {
		return Credentials{}, incompleteCredentialsError(username)
	}
	return Credentials{}, missingCredentialsError(tried)
}
