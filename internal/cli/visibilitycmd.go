package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/orgmig-cli/internal/migrate/visibility"
)

var visibilityApply bool

var syncVisibilityCmd = &cobra.Command{
	Use:   "sync-visibility",
	Short: "Reconcile repository visibility with the source organization",
	Long: `Compares every source repository's visibility with its destination
counterpart. Repositories not yet present on the destination are skipped with
a warning. Without --apply only the differences are printed; with --apply the
destination repositories are patched, throttled to one write per second.`,
	RunE: runSyncVisibility,
}

func init() {
	syncVisibilityCmd.Flags().BoolVar(&visibilityApply, "apply", false, "patch differing repositories")
	rootCmd.AddCommand(syncVisibilityCmd)
}

func runSyncVisibility(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := requireOrgs(cfg, true, true); err != nil {
		return err
	}

	ctx := context.Background()
	src, dst, err := buildClients(ctx, cfg, true, true)
	if err != nil {
		return err
	}

	changes, err := visibility.Sync(ctx, src, dst, cfg.SourceOrg, cfg.DestOrg, visibilityApply)
	if err != nil {
		return err
	}

	if len(changes) == 0 {
		cmd.Println("All repository visibilities match.")
		return nil
	}

	for _, ch := range changes {
		state := "would set"
		if ch.Applied {
			state = "set"
		}
		cmd.Printf("%s: %s %s -> %s\n", ch.Repo, state, ch.Current, ch.Want)
	}
	return nil
}
