package auth

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// CommandRunner runs an external command with the given stdin and returns its stdout
type CommandRunner interface {
	Run(ctx context.Context, stdin string, name string, args ...string) (string, error)
}

// ExecRunner runs commands with os/exec
type ExecRunner struct{}

// Run implements CommandRunner
func (ExecRunner) Run(ctx context.Context, stdin string, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = strings.NewReader(stdin)
	// never let a helper block on a terminal prompt
	cmd.Env = append(os.Environ(), "GIT_TERMINAL_PROMPT=0")

	out, err := cmd.Output()
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// GitHelperSource asks git's configured credential helper for the
// credentials it stores for https://<Host>
type GitHelperSource struct {
	Host   string
	Runner CommandRunner
}

// NewGitHelperSource creates a git credential helper source for host
func NewGitHelperSource(host string) *GitHelperSource {
	return &GitHelperSource{
		Host:   host,
		Runner: ExecRunner{},
	}
}

// Name implements Source
func (s *GitHelperSource) Name() string { return "git-credential" }

// Lookup implements Source
func (s *GitHelperSource) Lookup(ctx context.Context) (Credentials, error) {
	input := fmt.Sprintf("protocol=https\nhost=%s\n\n", s.Host)

	out, err := s.Runner.Run(ctx, input, "git", "credential", "fill")
	if err != nil {
		return Credentials{}, classifyHelperError(err)
	}

	return parseCredentialOutput(out), nil
}

// parseCredentialOutput parses the key=value lines git credential fill prints
func parseCredentialOutput(out string) Credentials {
	var creds Credentials

	sc := bufio.NewScanner(strings.NewReader(out))
	for sc.Scan() {
		key, value, ok := strings.Cut(sc.Text(), "=")
		if !ok {
			continue
		}
		switch key {
		case "username":
			creds.Username = value
		case "password":
			creds.Token = value
		}
	}

	return creds
}
