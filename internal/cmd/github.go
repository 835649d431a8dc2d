package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"relpub/internal/auth"
	"relpub/pkg/config"
	"relpub/pkg/github"
)

// loadConfig loads the configuration file selected by --config, RELPUB_CONFIG
// or the default location
func loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.LoadConfigFromPath(configPath)
	} else {
		cfg, err = config.LoadConfig()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load relpub config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, github.NewConfigurationError(fmt.Sprintf("invalid relpub config: %v", err), err)
	}
	return cfg, nil
}

// credentialSources builds the ordered credential chain
var credentialSources = func(cfg *config.Config) []auth.Source {
	sources := []auth.Source{
		auth.StaticSource{Username: flagUsername, Token: flagToken},
		auth.EnvSource{},
		auth.ConfigSource{Config: cfg},
		auth.NewGitHelperSource(cfg.CredentialHost()),
	}
	if flagPrompt {
		sources = append(sources, auth.NewPromptSource())
	}
	return sources
}

// resolveCredentials walks the credential chain
func resolveCredentials(ctx context.Context, cfg *config.Config) (auth.Credentials, error) {
	manager := auth.NewManager(credentialSources(cfg)...).
		WithGitConfig(auth.DefaultGitConfigPath()).
		WithLogger(slog.Default())

	return manager.Resolve(ctx)
}

// newGitHubClient resolves credentials and builds an API client for the
// configured endpoints. Flags take precedence over the config file.
func newGitHubClient(ctx context.Context, cfg *config.Config) (*github.Client, auth.Credentials, error) {
	creds, err := resolveCredentials(ctx, cfg)
	if err != nil {
		return nil, auth.Credentials{}, err
	}

	apiURL := cfg.GitHub.APIURL
	if flagAPIURL != "" {
		apiURL = flagAPIURL
	}
	uploadURL := cfg.GitHub.UploadURL
	if flagUploadURL != "" {
		uploadURL = flagUploadURL
	}

	client, err := github.NewClient(github.ClientOptions{
		Username:  creds.Username,
		Token:     creds.Token,
		BaseURL:   apiURL,
		UploadURL: uploadURL,
		Logger:    slog.Default(),
	})
	if err != nil {
		return nil, auth.Credentials{}, err
	}
	return client, creds, nil
}

// readBody returns the inline body, or the contents of file when set.
// A file of "-" reads standard input.
func readBody(inline, file string) (string, error) {
	if file == "" {
		return inline, nil
	}

	var (
		data []byte
		err  error
	)
	if file == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(file)
	}
	if err != nil {
		return "", &github.ValidationError{
			Field:   "body-file",
			Value:   file,
			Message: fmt.Sprintf("cannot read release text: %v", err),
		}
	}
	return string(data), nil
}
