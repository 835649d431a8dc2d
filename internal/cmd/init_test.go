package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"relpub/pkg/config"
)

func TestInit_CreatesConfig(t *testing.T) {
	home := isolate(t)
	path := filepath.Join(home, ".relpub", "config.yaml")

	stdout, _, err := executeCommand(t, "", "init")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Configuration file created at: "+path)

	cfg, err := config.LoadConfigFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultHost, cfg.GitHub.Host)
	assert.Equal(t, "main", cfg.Release.Target)
	assert.Empty(t, cfg.GitHub.Token)
}

func TestInit_ExplicitPath(t *testing.T) {
	home := isolate(t)
	path := filepath.Join(home, "elsewhere", "relpub.yaml")

	_, _, err := executeCommand(t, "", "--config", path, "init")
	require.NoError(t, err)

	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestInit_ExistingConfig(t *testing.T) {
	tests := []struct {
		name        string
		stdin       string
		args        []string
		overwritten bool
	}{
		{name: "declined", stdin: "n\n", args: []string{"init"}, overwritten: false},
		{name: "no answer", stdin: "", args: []string{"init"}, overwritten: false},
		{name: "confirmed", stdin: "y\n", args: []string{"init"}, overwritten: true},
		{name: "forced", stdin: "", args: []string{"init", "--force"}, overwritten: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			home := isolate(t)
			path := writeFile(t, home, ".relpub/config.yaml", "github:\n  token: keep-me\n")

			stdout, _, err := executeCommand(t, tt.stdin, tt.args...)
			require.NoError(t, err)

			cfg, err := config.LoadConfigFromPath(path)
			require.NoError(t, err)

			if tt.overwritten {
				assert.Empty(t, cfg.GitHub.Token)
				assert.Contains(t, stdout, "Configuration file created")
			} else {
				assert.Equal(t, "keep-me", cfg.GitHub.Token)
				assert.Contains(t, stdout, "Configuration initialization cancelled.")
			}
		})
	}
}
