// Package cli wires the orgmig commands. Each command file registers itself
// on the root command from its init function.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/orgmig-cli/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

var (
	flagConfig      string
	flagSourceOrg   string
	flagDestOrg     string
	flagSourceToken string
	flagDestToken   string
	flagCaptureDir  string
	flagVerbose     bool
	flagCapture     bool
)

var rootCmd = &cobra.Command{
	Use:   "orgmig",
	Short: "Migrate organization metadata between GitHub organizations",
	Long: `orgmig migrates organization metadata during an org-to-org migration:
it resolves identity mappings between the source organization's SSO identities
and the destination organization's members, exports team-membership,
repository-access and mannequin mapping files, replays those mappings onto the
destination, audits secret inventories, and reconciles repository visibility.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(flagVerbose)
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagConfig, "config", "", "path to orgmig.toml (default ./orgmig.toml)")
	pf.StringVar(&flagSourceOrg, "source-org", "", "source organization name")
	pf.StringVar(&flagDestOrg, "dest-org", "", "destination organization name")
	pf.StringVar(&flagSourceToken, "source-token", "", "source organization token (default $ORGMIG_SOURCE_TOKEN)")
	pf.StringVar(&flagDestToken, "dest-token", "", "destination organization token (default $ORGMIG_DEST_TOKEN)")
	pf.BoolVarP(&flagVerbose, "verbose", "v", false, "enable verbose logging")
	pf.BoolVar(&flagCapture, "capture", false, "write raw API responses to capture files")
	pf.StringVar(&flagCaptureDir, "capture-dir", "", "directory for capture files (default ./capture)")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
