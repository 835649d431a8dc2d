package auth

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// ErrorType represents different types of credential resolution errors
type ErrorType string

const (
	// ErrorTypeMissingCredentials means no source produced a token
	ErrorTypeMissingCredentials ErrorType = "missing_credentials"

	// ErrorTypeIncompleteCredentials means a username was found but no token
	ErrorTypeIncompleteCredentials ErrorType = "incomplete_credentials"

	// ErrorTypeCredentialHelper means git credential fill could not run
	ErrorTypeCredentialHelper ErrorType = "credential_helper"

	// ErrorTypePrompt means the interactive prompt failed or was unavailable
	ErrorTypePrompt ErrorType = "prompt"
)

// Error represents a structured credential error with troubleshooting guidance.
// Every Error is a configuration error: it is raised before any network call.
type Error struct {
	Type                 ErrorType `json:"type"`
	Message              string    `json:"message"`
	OriginalError        error     `json:"-"`
	TroubleshootingSteps []string  `json:"troubleshooting_steps"`
}

// Error implements the error interface
func (e *Error) Error() string {
	return e.Message
}

// Unwrap returns the original error for error unwrapping
func (e *Error) Unwrap() error {
	return e.OriginalError
}

// GetTroubleshootingMessage returns a formatted troubleshooting message
func (e *Error) GetTroubleshootingMessage() string {
	if len(e.TroubleshootingSteps) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("\nTroubleshooting steps:\n")
	for i, step := range e.TroubleshootingSteps {
		sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, step))
	}
	return sb.String()
}

// IsConfigurationError reports whether err is a credential error
func IsConfigurationError(err error) bool {
	var authErr *Error
	return errors.As(err, &authErr)
}

func missingCredentialsError(tried []string) *Error {
	return &Error{
		Type:    ErrorTypeMissingCredentials,
		Message: fmt.Sprintf("no GitHub credentials found (tried: %s)", strings.Join(tried, ", ")),
		TroubleshootingSteps: []string{
			"Set GITHUB_TOKEN (and optionally GITHUB_USER) in the environment",
			"Or add github.token to ~/.relpub/config.yaml (run 'relpub init')",
			"Or store credentials for https://github.com in a git credential helper",
			"Or pass --prompt to enter a token interactively",
		},
	}
}

func incompleteCredentialsError(username string) *Error {
	return &Error{
		Type:    ErrorTypeIncompleteCredentials,
		Message: fmt.Sprintf("GitHub username %q was found but no token", username),
		TroubleshootingSteps: []string{
			"Provide a personal access token with --token or GITHUB_TOKEN",
			"Run 'relpub auth token' to create a token with the repo scope",
		},
	}
}

// classifyHelperError turns a git credential failure into an Error
func classifyHelperError(err error) *Error {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &Error{
			Type:          ErrorTypeCredentialHelper,
			Message:       fmt.Sprintf("git credential fill failed: %s", strings.TrimSpace(string(exitErr.Stderr))),
			OriginalError: err,
			TroubleshootingSteps: []string{
				"Check 'git config --get credential.helper'",
				"Run 'git credential fill' manually to see the helper output",
			},
		}
	}

	if errors.Is(err, exec.ErrNotFound) {
		return &Error{
			Type:          ErrorTypeCredentialHelper,
			Message:       "git is not installed or not on PATH",
			OriginalError: err,
			TroubleshootingSteps: []string{
				"Install git or provide a token through GITHUB_TOKEN",
			},
		}
	}

	return &Error{
		Type:          ErrorTypeCredentialHelper,
		Message:       fmt.Sprintf("git credential fill failed: %v", err),
		OriginalError: err,
	}
}
