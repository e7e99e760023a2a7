package cmd

import (
	"fmt"

	"github.com/creativeprojects/go-selfupdate"
	"github.com/spf13/cobra"
)

// releaseRepo is the GitHub repository (owner/repo) publishing soma
// binaries. Release builds set it with
// -ldflags "-X soma/cmd.releaseRepo=owner/repo".
var releaseRepo string

// newSelfUpdateCmd creates the Cobra command for the self-update functionality.
func (s *session) newSelfUpdateCmd() *cobra.Command {
	repo := releaseRepo
	cmd := &cobra.Command{
		Use:   "self-update",
		Short: "Update soma to the latest version",
		Long: `Checks for the latest release of soma on GitHub and
updates the current binary if a newer version is found.

The release repository is set at build time or with --repo. Builds without
one cannot self-update.`,
		Annotations: map[string]string{annotationBootstrap: "false"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSelfUpdate(cmd, repo)
		},
	}
	cmd.Flags().StringVar(&repo, "repo", repo, "GitHub repository (owner/repo) to update from")
	return cmd
}

// runSelfUpdate checks the current version against the latest GitHub
// release and updates if necessary.
func runSelfUpdate(cmd *cobra.Command, repo string) error {
	currentVersion := buildVersion
	// Development builds do not follow semantic versioning.
	if currentVersion == "" || currentVersion == "dev" {
		return fmt.Errorf("cannot self-update a development version")
	}
	if repo == "" {
		return fmt.Errorf("no release repository configured, pass --repo owner/repo")
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Current version: %s\n", currentVersion)
	fmt.Fprintln(out, "Checking for updates...")

	updater, err := selfupdate.NewUpdater(selfupdate.Config{})
	if err != nil {
		return fmt.Errorf("failed to create updater: %w", err)
	}

	ctx := cmd.Context()
	latest, found, err := updater.DetectLatest(ctx, selfupdate.ParseSlug(repo))
	if err != nil {
		return fmt.Errorf("error detecting latest version: %w", err)
	}
	if !found {
		return fmt.Errorf("latest release for %s could not be found", repo)
	}

	if !latest.GreaterThan(currentVersion) {
		fmt.Fprintln(out, "Current version is the latest.")
		return nil
	}

	fmt.Fprintf(out, "Found newer version: %s (published at %s)\n", latest.Version(), latest.PublishedAt)
	fmt.Fprintf(out, "Release notes:\n%s\n", latest.ReleaseNotes)

	exe, err := selfupdate.ExecutablePath()
	if err != nil {
		return fmt.Errorf("could not locate executable path: %w", err)
	}

	fmt.Fprintf(out, "Updating %s to version %s...\n", exe, latest.Version())
	if err := updater.UpdateTo(ctx, latest, exe); err != nil {
		return fmt.Errorf("update failed: %w", err)
	}

	fmt.Fprintf(out, "Successfully updated to version %s\n", latest.Version())
	return nil
}
