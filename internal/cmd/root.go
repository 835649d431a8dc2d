package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"relpub/internal/auth"
	"relpub/pkg/github"
)

var (
	configPath    string
	loggerConfig  Logger
	flagUsername  string
	flagToken     string
	flagPrompt    bool
	flagAPIURL    string
	flagUploadURL string
)

var rootCmd = &cobra.Command{
	Use:   "relpub",
	Short: "A CLI tool to publish GitHub releases and their assets",
	Long: `Relpub publishes GitHub releases from the command line.

It creates or updates the release for a tag, replaces release assets with local
files of the same name, and patches release notes. Every run is idempotent:
re-running the same command converges the release to the same state.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		return loggerConfig.Apply(cmd.ErrOrStderr())
	},
}

// Execute runs the root command and exits non-zero on any error
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		printError(err)
		os.Exit(1)
	}
}

// printError writes err to stderr with troubleshooting guidance where available
func printError(err error) {
	red := color.New(color.FgRed, color.Bold).SprintFunc()
	fmt.Fprintf(os.Stderr, "%s %v\n", red("Error:"), err)

	var authErr *auth.Error
	if errors.As(err, &authErr) {
		fmt.Fprint(os.Stderr, authErr.GetTroubleshootingMessage())
		return
	}

	if github.IsErrorType(err, github.ErrorTypeAuth) || github.IsErrorType(err, github.ErrorTypePermission) {
		fmt.Fprintf(os.Stderr, "\n%s\n", github.GetAuthInstructions())
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "Configuration file (default ~/.relpub/config.yaml, env RELPUB_CONFIG)")
	flags.StringVar(&flagUsername, "username", "", "GitHub login; with a token enables HTTP basic auth")
	flags.StringVar(&flagToken, "token", "", "GitHub personal access token")
	flags.BoolVar(&flagPrompt, "prompt", false, "Prompt for credentials when no other source provides them")
	flags.StringVar(&flagAPIURL, "api-url", "", "GitHub API base URL (GitHub Enterprise: https://host/api/v3/)")
	flags.StringVar(&flagUploadURL, "upload-url", "", "GitHub upload base URL (GitHub Enterprise: https://host/api/uploads/)")
	loggerConfig.AddFlags(flags)

	rootCmd.AddCommand(publishCmd)
	rootCmd.AddCommand(bodyCmd)
	rootCmd.AddCommand(authCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(initCmd)
}
