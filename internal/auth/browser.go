package auth

import (
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
)

// BrowserOpener defines the interface for opening URLs in the default browser
type BrowserOpener interface {
	Open(target string) error
}

// DefaultBrowserOpener implements cross-platform browser opening
type DefaultBrowserOpener struct{}

// NewBrowserOpener creates a new browser opener instance
func NewBrowserOpener() *DefaultBrowserOpener {
	return &DefaultBrowserOpener{}
}

// Open opens the specified URL in the default browser
func (b *DefaultBrowserOpener) Open(target string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", target)
	case "linux":
		cmd = exec.Command("xdg-open", target)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", target)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to open browser: %w", err)
	}

	return nil
}

// NewTokenURL returns the page that creates a classic token with the repo
// scope on host, pre-filled with description
func NewTokenURL(host, description string) string {
	q := url.Values{}
	q.Set("scopes", "repo")
	q.Set("description", description)
	return fmt.Sprintf("https://%s/settings/tokens/new?%s", host, q.Encode())
}
