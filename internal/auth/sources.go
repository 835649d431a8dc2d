package auth

import (
	"context"
	"os"
	"strings"

	"relpub/pkg/config"
)

// StaticSource supplies credentials given on the command line
type StaticSource struct {
	Username string
	Token    string
}

// Name implements Source
func (s StaticSource) Name() string { return "flags" }

// Lookup implements Source
func (s StaticSource) Lookup(_ context.Context) (Credentials, error) {
	return Credentials{
		Username: strings.TrimSpace(s.Username),
		Token:    strings.TrimSpace(s.Token),
	}, nil
}

// EnvSource reads GITHUB_TOKEN (or GH_TOKEN) and GITHUB_USER
type EnvSource struct {
	// Getenv defaults to os.Getenv
	Getenv func(string) string
}

// Name implements Source
func (s EnvSource) Name() string { return "environment" }

// Lookup implements Source
func (s EnvSource) Lookup(_ context.Context) (Credentials, error) {
	getenv := s.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}

	token := strings.TrimSpace(getenv("GITHUB_TOKEN"))
	if token == "" {
		token = strings.TrimSpace(getenv("GH_TOKEN"))
	}

	return Credentials{
		Username: strings.TrimSpace(getenv("GITHUB_USER")),
		Token:    token,
	}, nil
}

// ConfigSource reads github.username and github.token from the config file
type ConfigSource struct {
	Config *config.Config
}

// Name implements Source
func (s ConfigSource) Name() string { return "config" }

// Lookup implements Source
func (s ConfigSource) Lookup(_ context.Context) (Credentials, error) {
	if s.Config == nil {
		return Credentials{}, nil
	}
	return Credentials{
		Username: strings.TrimSpace(s.Config.GitHub.Username),
		Token:    strings.TrimSpace(s.Config.GitHub.Token),
	}, nil
}
