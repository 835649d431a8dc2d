package auth

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPrompt(input string, isTerminal bool, token string, tokenErr error) (*PromptSource, *bytes.Buffer) {
	out := &bytes.Buffer{}
	return &PromptSource{
		In:           strings.NewReader(input),
		Out:          out,
		IsTerminal:   func(int) bool { return isTerminal },
		ReadPassword: func(int) ([]byte, error) { return []byte(token), tokenErr },
	}, out
}

func TestPromptSource_Lookup(t *testing.T) {
	src, out := newTestPrompt("octocat\n", true, "ghp_typed\n", nil)

	creds, err := src.Lookup(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "octocat", creds.Username)
	assert.Equal(t, "ghp_typed", creds.Token)
	assert.Contains(t, out.String(), "GitHub username")
	assert.Contains(t, out.String(), "GitHub token:")
	assert.NotContains(t, out.String(), "ghp_typed", "token must not be echoed")
}

func TestPromptSource_TokenOnly(t *testing.T) {
	src, _ := newTestPrompt("\n", true, "ghp_typed", nil)

	creds, err := src.Lookup(context.Background())
	require.NoError(t, err)
	assert.Empty(t, creds.Username)
	assert.True(t, creds.Complete())
}

func TestPromptSource_NotATerminal(t *testing.T) {
	src, out := newTestPrompt("octocat\n", false, "ghp_typed", nil)

	_, err := src.Lookup(context.Background())

	var authErr *Error
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, ErrorTypePrompt, authErr.Type)
	assert.Empty(t, out.String(), "nothing is printed when prompting is impossible")
}

func TestPromptSource_ReadPasswordFails(t *testing.T) {
	src, _ := newTestPrompt("octocat\n", true, "", errors.New("inappropriate ioctl"))

	_, err := src.Lookup(context.Background())

	var authErr *Error
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, ErrorTypePrompt, authErr.Type)
	assert.Contains(t, err.Error(), "failed to read token")
}

func TestNewPromptSource(t *testing.T) {
	src := NewPromptSource()
	assert.Equal(t, "prompt", src.Name())
	assert.NotNil(t, src.IsTerminal)
	assert.NotNil(t, src.ReadPassword)
}
