package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/orgmig-cli/internal/github"
	"github.com/custodia-labs/orgmig-cli/internal/migrate/secrets"
)

var auditSecretsCmd = &cobra.Command{
	Use:   "audit-secrets",
	Short: "Inventory secrets and report what is missing on the destination",
	Long: `Inventories Actions and Dependabot secret names across both
organizations: organization-level secrets, per-repository secrets and
per-environment secrets. Secret values cannot be read through the API, so the
audit reports the names an operator must recreate on the destination.`,
	RunE: runAuditSecrets,
}

func init() {
	rootCmd.AddCommand(auditSecretsCmd)
}

func runAuditSecrets(cmd *cobra.Command, _ []string) error {
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

	srcInv, err := secrets.Collect(ctx, src, cfg.SourceOrg, github.DefaultMaxPages)
	if err != nil {
		return fmt.Errorf("collect source secrets: %w", err)
	}
	dstInv, err := secrets.Collect(ctx, dst, cfg.DestOrg, github.DefaultMaxPages)
	if err != nil {
		return fmt.Errorf("collect destination secrets: %w", err)
	}

	findings := secrets.Diff(srcInv, dstInv)
	if len(findings) == 0 {
		cmd.Println("All source secret names exist on the destination.")
		return nil
	}

	cmd.Printf("%d secrets missing on %s:\n", len(findings), cfg.DestOrg)
	for _, f := range findings {
		if f.Where == "" {
			cmd.Printf("  [%s] %s\n", f.Scope, f.Name)
		} else {
			cmd.Printf("  [%s] %s: %s\n", f.Scope, f.Where, f.Name)
		}
	}
	return nil
}
