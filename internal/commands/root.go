package commands

import (
	"github.com/spf13/cobra"

	"github.com/cleared-dev/fiscal/internal/buildinfo"
)

// globals holds flags shared by every subcommand.
type globals struct {
	repo     string
	logLevel string
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	g := &globals{}

	rootCmd := &cobra.Command{
		Use:     "fiscal",
		Short:   "Small-business tax, depreciation and period summaries",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&g.repo, "repo", ".", "project directory")
	rootCmd.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "override log.level from fiscal.yaml")

	rootCmd.AddCommand(
		newInitCommand(),
		newClassesCommand(g),
		newAssetCommand(g),
		newSaleCommand(g),
		newPurchaseCommand(g),
		newDividendCommand(g),
		newRemitCommand(g),
		newDepreciateCommand(g),
		newSummaryCommand(g),
		newRerateCommand(g),
		newImportCommand(g),
	)

	return rootCmd
}
