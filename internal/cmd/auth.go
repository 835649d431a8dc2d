package cmd

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"relpub/internal/auth"
)

var (
	tokenNoBrowser   bool
	tokenDescription string
)

// browserOpener is replaced in tests
var browserOpener auth.BrowserOpener = auth.NewBrowserOpener()

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authentication commands",
	Long:  "Commands for checking and creating GitHub credentials",
}

var authTokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Open the GitHub page that creates a personal access token",
	Long: `Open the GitHub page that creates a classic personal access token with the
repo scope. Store the token in GITHUB_TOKEN, in the github.token key of the
relpub config file, or in your git credential helper.`,
	Args: cobra.NoArgs,
	RunE: runAuthToken,
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the GitHub user the resolved credentials belong to",
	Args:  cobra.NoArgs,
	RunE:  runWhoami,
}

func init() {
	authTokenCmd.Flags().BoolVar(&tokenNoBrowser, "no-browser", false, "Print the URL instead of opening a browser")
	authTokenCmd.Flags().StringVar(&tokenDescription, "description", "relpub", "Description pre-filled on the token page")

	authCmd.AddCommand(authTokenCmd)
}

func runAuthToken(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	tokenURL := auth.NewTokenURL(cfg.CredentialHost(), tokenDescription)
	out := cmd.OutOrStdout()

	if tokenNoBrowser {
		fmt.Fprintln(out, tokenURL)
		return nil
	}

	if err := browserOpener.Open(tokenURL); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "⚠️  Could not open a browser: %v\n", err)
		fmt.Fprintf(out, "Open this URL to create a token:\n%s\n", tokenURL)
		return nil
	}

	fmt.Fprintf(out, "🌐 Opened %s\n", tokenURL)
	return nil
}

func runWhoami(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	client, creds, err := newGitHubClient(ctx, cfg)
	if err != nil {
		return err
	}

	info, err := client.TokenInfo(ctx)
	if info == nil {
		return err
	}

	green := color.New(color.FgGreen).SprintFunc()
	fmt.Fprintf(out, "%s Authenticated as %s\n", green("✓"), info.User)
	fmt.Fprintf(out, "  Credentials from: %s\n", creds.Source)
	if len(info.Scopes) > 0 {
		fmt.Fprintf(out, "  Token scopes: %s\n", strings.Join(info.Scopes, ", "))
	}

	return err
}
