package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"relpub/pkg/config"
)

func TestStaticSource(t *testing.T) {
	creds, err := StaticSource{Username: " octocat ", Token: " ghp_flag\n"}.Lookup(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "octocat", creds.Username)
	assert.Equal(t, "ghp_flag", creds.Token)
	assert.Equal(t, "flags", StaticSource{}.Name())
}

func TestEnvSource(t *testing.T) {
	tests := []struct {
		name          string
		env           map[string]string
		expectedUser  string
		expectedToken string
	}{
		{
			name:          "GITHUB_TOKEN and GITHUB_USER",
			env:           map[string]string{"GITHUB_TOKEN": "ghp_env", "GITHUB_USER": "octocat"},
			expectedUser:  "octocat",
			expectedToken: "ghp_env",
		},
		{
			name:          "GITHUB_TOKEN preferred over GH_TOKEN",
			env:           map[string]string{"GITHUB_TOKEN": "ghp_one", "GH_TOKEN": "ghp_two"},
			expectedToken: "ghp_one",
		},
		{
			name:          "GH_TOKEN fallback",
			env:           map[string]string{"GH_TOKEN": "ghp_two"},
			expectedToken: "ghp_two",
		},
		{
			name: "nothing set",
			env:  map[string]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := EnvSource{Getenv: func(key string) string { return tt.env[key] }}

			creds, err := src.Lookup(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.expectedUser, creds.Username)
			assert.Equal(t, tt.expectedToken, creds.Token)
		})
	}
}

func TestConfigSource(t *testing.T) {
	cfg := &config.Config{
		GitHub: config.GitHubConfig{Username: "octocat", Token: "ghp_config"},
	}

	creds, err := ConfigSource{Config: cfg}.Lookup(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "octocat", creds.Username)
	assert.Equal(t, "ghp_config", creds.Token)

	creds, err = ConfigSource{}.Lookup(context.Background())
	require.NoError(t, err)
	assert.False(t, creds.Complete())
}
