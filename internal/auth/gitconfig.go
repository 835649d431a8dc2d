package auth

import (
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/ini.v1"
)

// DefaultGitConfigPath returns ~/.gitconfig, or "" if the home directory is unknown
func DefaultGitConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(homeDir, ".gitconfig")
}

// GitHubUserFromGitConfig returns the [github] user value of a git config
// file, or "" when the file or the key is absent
func GitHubUserFromGitConfig(path string) string {
	cfg, err := ini.LoadSources(ini.LoadOptions{
		Loose:                   true,
		Insensitive:             true,
		IgnoreInlineComment:     true,
		SkipUnrecognizableLines: true,
	}, path)
	if err != nil {
		return ""
	}

	section, err := cfg.GetSection("github")
	if err != nil {
		return ""
	}

	return strings.Trim(strings.TrimSpace(section.Key("user").String()), `"`)
}
