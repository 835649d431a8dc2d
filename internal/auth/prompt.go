package auth

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// PromptSource asks for a username and token on the terminal. The token is
// read without echo.
type PromptSource struct {
	In  io.Reader
	Out io.Writer
	Fd  int

	// IsTerminal and ReadPassword default to golang.org/x/term
	IsTerminal   func(fd int) bool
	ReadPassword func(fd int) ([]byte, error)
}

// NewPromptSource creates a prompt source on stdin, writing prompts to stderr
func NewPromptSource() *PromptSource {
	return &PromptSource{
		In:           os.Stdin,
		Out:          os.Stderr,
		Fd:           int(os.Stdin.Fd()),
		IsTerminal:   term.IsTerminal,
		ReadPassword: term.ReadPassword,
	}
}

// Name implements Source
func (s *PromptSource) Name() string { return "prompt" }

// Lookup implements Source
func (s *PromptSource) Lookup(_ context.Context) (Credentials, error) {
	if s.IsTerminal != nil && !s.IsTerminal(s.Fd) {
		return Credentials{}, &Error{
			Type:    ErrorTypePrompt,
			Message: "cannot prompt for credentials: stdin is not a terminal",
		}
	}

	fmt.Fprint(s.Out, "GitHub username (empty for token-only auth): ")
	line, err := bufio.NewReader(s.In).ReadString('\n')
	if err != nil && err != io.EOF {
		return Credentials{}, &Error{
			Type:          ErrorTypePrompt,
			Message:       fmt.Sprintf("failed to read username: %v", err),
			OriginalError: err,
		}
	}

	fmt.Fprint(s.Out, "GitHub token: ")
	token, err := s.ReadPassword(s.Fd)
	fmt.Fprintln(s.Out)
	if err != nil {
		return Credentials{}, &Error{
			Type:          ErrorTypePrompt,
			Message:       fmt.Sprintf("failed to read token: %v", err),
			OriginalError: err,
		}
	}

	return Credentials{
		Username: strings.TrimSpace(line),
		Token:    strings.TrimSpace(string(token)),
	}, nil
}
