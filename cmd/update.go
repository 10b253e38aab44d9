package cmd

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/smazurov/rgbnode/internal/updater"
)

// DefaultRepository is the GitHub slug releases are fetched from.
const DefaultRepository = "smazurov/rgbnode"

// CreateUpdateCmd creates the update command.
func CreateUpdateCmd() *cobra.Command {
	var (
		repository string
		prerelease bool
		checkOnly  bool
		rollback   bool
	)

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update the rgbnode binary from GitHub releases",
		Long: `Replaces the running binary with the newest release. ` +
			`A running daemon keeps the old version until it is restarted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			svc, err := updater.NewService(updater.Options{
				Repository: repository,
				Prerelease: prerelease,
				Restart:    func() {},
			})
			if err != nil {
				return err
			}
			if !svc.Enabled() {
				return fmt.Errorf("updates disabled: %s", svc.DisabledReason())
			}
			return runUpdate(ctx, cmd, svc, checkOnly, rollback)
		},
	}

	cmd.Flags().StringVar(&repository, "repository", DefaultRepository, "GitHub repository (owner/name)")
	cmd.Flags().BoolVar(&prerelease, "prerelease", false, "Consider prereleases")
	cmd.Flags().BoolVar(&checkOnly, "check", false, "Only report whether an update is available")
	cmd.Flags().BoolVar(&rollback, "rollback", false, "Restore the binary saved by the last update")
	cmd.MarkFlagsMutuallyExclusive("check", "rollback")
	return cmd
}

func runUpdate(ctx context.Context, cmd *cobra.Command, svc updater.Service, checkOnly, rollback bool) error {
	out := cmd.OutOrStdout()

	if rollback {
		if err := svc.Rollback(ctx); err != nil {
			return err
		}
		fmt.Fprintf(out, "Restored %s\n", svc.Status().BackupVersion)
		return nil
	}

	release, err := svc.Check(ctx)
	if err != nil {
		return err
	}
	if !release.UpdateAvailable {
		fmt.Fprintf(out, "Already up to date (%s)\n", release.CurrentVersion)
		return nil
	}
	fmt.Fprintf(out, "Update available: %s -> %s\n", release.CurrentVersion, release.LatestVersion)
	if checkOnly {
		return nil
	}

	if err := svc.Apply(ctx); err != nil {
		if updater.Code(err) == updater.ErrCodeNoUpdate {
			fmt.Fprintln(out, "Already up to date")
			return nil
		}
		var updateErr *updater.Error
		if errors.As(err, &updateErr) && updateErr.Cause != nil {
			return fmt.Errorf("%s: %w", updateErr.Message, updateErr.Cause)
		}
		return err
	}
	fmt.Fprintf(out, "Updated to %s\n", release.LatestVersion)
	return nil
}
