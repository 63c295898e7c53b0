package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show index status",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	if err := requireServices(); err != nil {
		return err
	}

	status, err := indexService.Status(cmd.Context())
	if err != nil {
		return fmt.Errorf("status failed: %w", err)
	}

	if !status.Exists {
		cmd.Printf("No index at %s. Run 'docqa build' first.\n", status.Path)
		return nil
	}

	cmd.Printf("Index:      %s\n", status.Path)
	cmd.Printf("Passages:   %d\n", status.Passages)
	cmd.Printf("Dimensions: %d\n", status.Dimensions)
	if !status.ModifiedAt.IsZero() {
		cmd.Printf("Modified:   %s\n", status.ModifiedAt.Format("2006-01-02 15:04:05"))
	}
	return nil
}
