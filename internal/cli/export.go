package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/orgmig-cli/internal/config"
	"github.com/custodia-labs/orgmig-cli/internal/github"
	"github.com/custodia-labs/orgmig-cli/internal/migrate"
)

var (
	exportTeamsOutput      string
	exportReposOutput      string
	exportMannequinsOutput string
	exportOverridesPath    string
)

var exportTeamsCmd = &cobra.Command{
	Use:   "export-teams",
	Short: "Export the team-membership mapping file",
	Long: `Lists the source organization's teams with their members, joins each
member against the resolved identity map, and writes the team mapping CSV
(Team, Slug, Role, Source, Destination). Members without a resolution are
dropped with a warning.`,
	RunE: runExportTeams,
}

var exportReposCmd = &cobra.Command{
	Use:   "export-repos",
	Short: "Export the repository-access mapping file",
	Long: `Lists the source organization's direct repository collaborators with
their permissions, joins each collaborator against the resolved identity map,
and writes the repository mapping CSV (Repository, Permission, Source,
Destination). One row per collaborator per repository; the first permission
source discovered wins.`,
	RunE: runExportRepos,
}

var exportMannequinsCmd = &cobra.Command{
	Use:   "export-mannequins",
	Short: "Export the mannequin remap file",
	Long: `Lists the destination organization's mannequins, excludes bot
accounts and mannequins already claimed by a real account, joins the rest
against the resolved identity map, and writes the mannequin mapping CSV
(mannequin-user, mannequin-id, target-user).`,
	RunE: runExportMannequins,
}

func init() {
	exportTeamsCmd.Flags().StringVarP(&exportTeamsOutput, "output", "o", "team-mappings.csv", "output file")
	exportReposCmd.Flags().StringVarP(&exportReposOutput, "output", "o", "repo-mappings.csv", "output file")
	exportMannequinsCmd.Flags().StringVarP(&exportMannequinsOutput, "output", "o", "mannequin-mappings.csv", "output file")

	for _, cmd := range []*cobra.Command{exportTeamsCmd, exportReposCmd, exportMannequinsCmd} {
		cmd.Flags().StringVar(&exportOverridesPath, "overrides", "", "override mapping CSV (source,dest)")
		rootCmd.AddCommand(cmd)
	}
}

func runExportTeams(cmd *cobra.Command, _ []string) error {
	cfg, err := setupExport()
	if err != nil {
		return err
	}

	ctx := context.Background()
	src, dst, err := buildClients(ctx, cfg, true, true)
	if err != nil {
		return err
	}

	mapping, err := resolveLoginMap(ctx, cfg, src, dst)
	if err != nil {
		return err
	}

	records, err := github.FetchTeamMemberships(ctx, src, cfg.SourceOrg)
	if err != nil {
		return fmt.Errorf("fetch team memberships: %w", err)
	}

	rows := migrate.ExportTeamMappings(records, mapping)
	err = writeFile(exportTeamsOutput, func(f *os.File) error {
		return migrate.WriteTeamMappingCSV(f, rows)
	})
	if err != nil {
		return err
	}

	cmd.Printf("Wrote %d team mappings to %s\n", len(rows), exportTeamsOutput)
	return nil
}

func runExportRepos(cmd *cobra.Command, _ []string) error {
	cfg, err := setupExport()
	if err != nil {
		return err
	}

	ctx := context.Background()
	src, dst, err := buildClients(ctx, cfg, true, true)
	if err != nil {
		return err
	}

	mapping, err := resolveLoginMap(ctx, cfg, src, dst)
	if err != nil {
		return err
	}

	records, err := github.FetchRepositoryAccess(ctx, src, cfg.SourceOrg)
	if err != nil {
		return fmt.Errorf("fetch repository access: %w", err)
	}

	rows := migrate.ExportRepoMappings(records, mapping)
	err = writeFile(exportReposOutput, func(f *os.File) error {
		return migrate.WriteRepoMappingCSV(f, rows)
	})
	if err != nil {
		return err
	}

	cmd.Printf("Wrote %d repository mappings to %s\n", len(rows), exportReposOutput)
	return nil
}

func runExportMannequins(cmd *cobra.Command, _ []string) error {
	cfg, err := setupExport()
	if err != nil {
		return err
	}

	ctx := context.Background()
	src, dst, err := buildClients(ctx, cfg, true, true)
	if err != nil {
		return err
	}

	mapping, err := resolveLoginMap(ctx, cfg, src, dst)
	if err != nil {
		return err
	}

	mannequins, err := github.FetchMannequins(ctx, dst, cfg.DestOrg)
	if err != nil {
		return fmt.Errorf("fetch mannequins: %w", err)
	}

	rows := migrate.ExportMannequinMappings(mannequins, mapping)
	err = writeFile(exportMannequinsOutput, func(f *os.File) error {
		return migrate.WriteMannequinMappingCSV(f, rows)
	})
	if err != nil {
		return err
	}

	cmd.Printf("Wrote %d mannequin mappings to %s\n", len(rows), exportMannequinsOutput)
	return nil
}

func setupExport() (*config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if exportOverridesPath != "" {
		cfg.Overrides = exportOverridesPath
	}
	if err := requireOrgs(cfg, true, true); err != nil {
		return nil, err
	}
	return cfg, nil
}
