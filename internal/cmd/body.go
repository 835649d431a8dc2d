package cmd

import (
	"fmt"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"relpub/pkg/github"
)

var (
	bodyText string
	bodyFile string
)

var bodyCmd = &cobra.Command{
	Use:   "body <owner/repo> <tag>",
	Short: "Replace the release notes of an existing release",
	Long: `Replace the body text of the release for a tag. Nothing else about the
release is modified. The release must already exist.

On success the release URL is printed, followed by:

  updated_body_len <characters>

Examples:
  relpub body acme/tool v1.2.0 --body-file CHANGELOG.md
  relpub body acme/tool v1.2.0 --body "Fixes a crash on startup"`,
	Args: cobra.ExactArgs(2),
	RunE: runBody,
}

func init() {
	bodyCmd.Flags().StringVar(&bodyText, "body", "", "Release text")
	bodyCmd.Flags().StringVar(&bodyFile, "body-file", "", "File holding the release text (- for stdin)")
	bodyCmd.MarkFlagsMutuallyExclusive("body", "body-file")
	bodyCmd.MarkFlagsOneRequired("body", "body-file")
}

func runBody(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	repo, err := github.ParseRepository(args[0])
	if err != nil {
		return err
	}
	tag := args[1]

	body, err := readBody(bodyText, bodyFile)
	if err != nil {
		return err
	}
	if body == "" {
		return &github.ValidationError{
			Field:   "body",
			Message: "release text is required: use --body or --body-file",
		}
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	client, _, err := newGitHubClient(ctx, cfg)
	if err != nil {
		return err
	}

	release, err := github.NewBodyUpdater(client).UpdateBody(ctx, repo, tag, body)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, release.HTMLURL)
	fmt.Fprintf(out, "updated_body_len %d\n", utf8.RuneCountInString(release.Body))
	return nil
}
