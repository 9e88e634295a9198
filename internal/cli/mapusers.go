package cli

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/orgmig-cli/internal/github"
	"github.com/custodia-labs/orgmig-cli/internal/migrate"
)

var mapUsersOutput string

var mapUsersCmd = &cobra.Command{
	Use:   "map-users",
	Short: "Resolve source SSO identities against destination members",
	Long: `Fetches the source organization's SSO external identities and the
destination organization's members, cross-references them by username and
nameId against resolved emails, and reports the classification: resolved
mappings, unresolved identities on either side, and source identities without
a usable login. Resolved pairs are written as a source,dest CSV that later
commands accept as an override file.`,
	RunE: runMapUsers,
}

func init() {
	mapUsersCmd.Flags().StringVarP(&mapUsersOutput, "output", "o", "user-mappings.csv", "output file for resolved pairs")
	rootCmd.AddCommand(mapUsersCmd)
}

func runMapUsers(cmd *cobra.Command, _ []string) error {
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

	identities, err := github.FetchSourceIdentities(ctx, src, cfg.SourceOrg)
	if err != nil {
		return fmt.Errorf("fetch source identities: %w", err)
	}
	members, err := github.FetchDestinationMembers(ctx, dst, cfg.DestOrg)
	if err != nil {
		return fmt.Errorf("fetch destination members: %w", err)
	}

	resolution := migrate.Resolve(identities, members)
	logResolution(resolution)

	err = writeFile(mapUsersOutput, func(f *os.File) error {
		w := csv.NewWriter(f)
		if err := w.Write([]string{"source", "dest"}); err != nil {
			return err
		}
		for _, rm := range resolution.Resolved {
			if err := w.Write([]string{rm.SourceName, rm.DestName}); err != nil {
				return err
			}
		}
		w.Flush()
		return w.Error()
	})
	if err != nil {
		return err
	}

	cmd.Printf("Resolved:            %d\n", len(resolution.Resolved))
	cmd.Printf("Unresolved (source): %d\n", len(resolution.UnresolvedSource))
	cmd.Printf("Unresolved (dest):   %d\n", len(resolution.UnresolvedDest))
	cmd.Printf("Removed (no login):  %d\n", len(resolution.RemovedSource))
	cmd.Printf("Wrote %s\n", mapUsersOutput)
	return nil
}
