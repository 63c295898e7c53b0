package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the document index",
	Long: `Loads the configured document, splits it into overlapping passages,
embeds them and writes the vector index.

Building is destructive: any previous index is removed first.`,
	Args: cobra.NoArgs,
	RunE: runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, _ []string) error {
	if err := requireServices(); err != nil {
		return err
	}

	report, err := indexService.Build(cmd.Context())
	if err != nil {
		return fmt.Errorf("build failed: %w", err)
	}

	cmd.Printf("Indexed %d passages from %d pages in %d batches (%.1fs)\n",
		report.Passages, report.Pages, report.Batches, report.Elapsed.Seconds())
	return nil
}
