package cmd

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"relpub/pkg/config"
	"relpub/pkg/github"
)

var (
	publishTarget   string
	publishName     string
	publishBody     string
	publishBodyFile string
	publishManifest string
	publishPrune    bool
	publishDryRun   bool
)

var publishCmd = &cobra.Command{
	Use:   "publish <owner/repo> <tag> <asset>...",
	Short: "Create or update a release and upload its assets",
	Long: `Create or update the GitHub release for a tag and upload local files as assets.

If no release exists for the tag it is created from --target (default main) as a
published, non-prerelease release. If one exists, its name and body are
overwritten in place; the target is never changed.

A remote asset whose name matches a local file is deleted before the file is
uploaded, so every upload replaces the previous one. Other remote assets are
left alone unless --prune is given. All deletions run before any upload.

On success one status line is printed per change followed by the release URL:

  release_created <tag> <id>   or   release_updated <tag> <id>
  asset_deleted <name>
  asset_uploaded <name>
  https://github.com/<owner>/<repo>/releases/tag/<tag>

Release details may also come from a YAML manifest (--manifest); flags given on
the command line override the manifest.

Examples:
  relpub publish acme/tool v1.2.0 dist/tool-linux-amd64 dist/tool-darwin-arm64 --body-file CHANGELOG.md
  relpub publish acme/tool v1.2.0 dist/* --name "Tool 1.2.0" --body "Bug fixes" --target release-1.2
  relpub publish --manifest release.yaml --dry-run
  relpub publish acme/tool nightly dist/* --body "Nightly build" --prune`,
	Args: validatePublishArgs,
	RunE: runPublish,
}

func init() {
	publishCmd.Flags().StringVar(&publishTarget, "target", "", "Branch or commit the tag is created from on release creation (default main)")
	publishCmd.Flags().StringVar(&publishName, "name", "", "Release name (default: the tag)")
	publishCmd.Flags().StringVar(&publishBody, "body", "", "Release text")
	publishCmd.Flags().StringVar(&publishBodyFile, "body-file", "", "File holding the release text (- for stdin)")
	publishCmd.Flags().StringVar(&publishManifest, "manifest", "", "YAML release manifest")
	publishCmd.Flags().BoolVar(&publishPrune, "prune", false, "Delete remote assets that are not among the local files")
	publishCmd.Flags().BoolVar(&publishDryRun, "dry-run", false, "Show planned changes without applying them")
	publishCmd.MarkFlagsMutuallyExclusive("body", "body-file")
}

func validatePublishArgs(_ *cobra.Command, args []string) error {
	if publishManifest != "" {
		if len(args) != 0 {
			return fmt.Errorf("positional arguments cannot be combined with --manifest")
		}
		return nil
	}
	if len(args) < 3 {
		return fmt.Errorf("requires <owner/repo> <tag> and at least one asset, received %d argument(s)", len(args))
	}
	return nil
}

// publishRequest is a fully resolved publish invocation
type publishRequest struct {
	spec   github.ReleaseSpec
	assets []github.LocalAsset
	prune  bool
}

// buildPublishRequest merges the manifest, the flags and the config defaults,
// then validates everything that can be checked without the network
func buildPublishRequest(cmd *cobra.Command, args []string, cfg *config.Config) (*publishRequest, error) {
	var (
		req   publishRequest
		paths []string
	)

	if publishManifest != "" {
		m, err := github.LoadManifestFromFile(publishManifest)
		if err != nil {
			return nil, fmt.Errorf("failed to load manifest: %w", err)
		}
		if req.spec, err = m.ReleaseSpec(); err != nil {
			return nil, err
		}
		req.prune = m.Prune
		paths = m.Assets
	} else {
		repo, err := github.ParseRepository(args[0])
		if err != nil {
			return nil, err
		}
		req.spec = github.ReleaseSpec{
			Repository: repo,
			Tag:        args[1],
		}
		paths = args[2:]
	}

	flags := cmd.Flags()
	if flags.Changed("target") {
		req.spec.TargetRef = publishTarget
	}
	if flags.Changed("name") {
		req.spec.Title = publishName
	}
	if flags.Changed("prune") {
		req.prune = publishPrune
	}
	if flags.Changed("body") || flags.Changed("body-file") {
		body, err := readBody(publishBody, publishBodyFile)
		if err != nil {
			return nil, err
		}
		req.spec.Body = body
	}

	if req.spec.TargetRef == "" {
		req.spec.TargetRef = cfg.Release.Target
	}
	req.spec = req.spec.WithDefaults()

	if err := req.spec.Validate(); err != nil {
		return nil, err
	}

	assets, err := github.ValidateAssets(github.NewLocalAssets(paths))
	if err != nil {
		return nil, err
	}
	req.assets = assets

	return &req, nil
}

func runPublish(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// Local validation runs before credentials are resolved or any request is sent
	req, err := buildPublishRequest(cmd, args, cfg)
	if err != nil {
		return err
	}

	client, _, err := newGitHubClient(ctx, cfg)
	if err != nil {
		return err
	}

	reconciler := github.NewReconciler(client, github.ReconcilerOptions{
		Reporter: newStatusReporter(out),
		Prune:    req.prune,
		Logger:   slog.Default(),
	})

	plan, err := reconciler.Plan(ctx, req.spec, req.assets)
	if err != nil {
		return err
	}

	if publishDryRun {
		displayPlan(out, plan)
		fmt.Fprintf(out, "\n✓ Dry-run completed. No changes were applied.\n")
		return nil
	}

	release, err := reconciler.Apply(ctx, plan)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, release.HTMLURL)
	return nil
}

// displayPlan shows the planned changes in a human-readable format
func displayPlan(w io.Writer, plan *github.ReleasePlan) {
	green := color.New(color.FgGreen).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()

	spec := plan.Spec
	fmt.Fprintf(w, "🔍 Dry-run mode: Showing planned changes for %s@%s\n", spec.Repository, spec.Tag)

	changeCount := 0
	destructiveChanges := 0

	if plan.Release != nil {
		changeCount++
		switch plan.Release.Type {
		case github.ChangeTypeCreate:
			fmt.Fprintf(w, "  %s Release: CREATE %s\n", green("+"), spec.Tag)
			fmt.Fprintf(w, "    - Target: %s\n", spec.TargetRef)
			fmt.Fprintf(w, "    - Name: %s\n", spec.Title)
			fmt.Fprintf(w, "    - Body: %d characters\n", len([]rune(spec.Body)))
		case github.ChangeTypeUpdate:
			before := plan.Release.Before
			fmt.Fprintf(w, "  %s Release: UPDATE %s (id %d)\n", yellow("~"), spec.Tag, before.ID)
			if before.Title != spec.Title {
				fmt.Fprintf(w, "    ~ Name: %q → %q\n", before.Title, spec.Title)
			}
			if before.Body != spec.Body {
				fmt.Fprintf(w, "    ~ Body: %d → %d characters\n", len([]rune(before.Body)), len([]rune(spec.Body)))
			}
			if before.TargetRef != "" && before.TargetRef != spec.TargetRef {
				fmt.Fprintf(w, "    - Target: %s (unchanged on update)\n", before.TargetRef)
			}
		}
	}

	for _, change := range plan.Deletions() {
		changeCount++
		if change.Replaces {
			fmt.Fprintf(w, "  %s Asset: DELETE %s (replaced by upload)\n", yellow("~"), change.Before.Name)
			continue
		}
		destructiveChanges++
		fmt.Fprintf(w, "  %s Asset: DELETE %s (PRUNED)\n", red("⚠️ "), change.Before.Name)
	}

	for _, change := range plan.Uploads() {
		changeCount++
		fmt.Fprintf(w, "  %s Asset: UPLOAD %s (%d bytes)\n", green("+"), change.After.Name, change.After.Size)
	}

	fmt.Fprintf(w, "\nTotal changes: %d", changeCount)
	if destructiveChanges > 0 {
		fmt.Fprintf(w, " (%d potentially destructive)", destructiveChanges)
	}
	fmt.Fprintln(w)
}
