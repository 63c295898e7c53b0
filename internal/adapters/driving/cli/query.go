package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	queryK    int
	queryJSON bool
)

var queryCmd = &cobra.Command{
	Use:   "query [text]",
	Short: "Find the passages most similar to a text",
	Long: `Performs similarity search over the indexed passages without
generating an answer. Useful for inspecting what the answer pipeline
would be grounded on.`,
	Args: cobra.ExactArgs(1),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().IntVarP(&queryK, "k", "k", 3, "number of passages to return")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	if err := requireServices(); err != nil {
		return err
	}

	results, err := answerService.Query(cmd.Context(), args[0], queryK)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	if queryJSON {
		data, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal results: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(results) == 0 {
		cmd.Println("No passages found.")
		return nil
	}

	for i, sp := range results {
		cmd.Printf("[%d] score=%.3f source=%s start=%d\n", i+1, sp.Score, sp.Source(), sp.StartIndex)
		cmd.Printf("    %s\n", sp.Content)
		if i < len(results)-1 {
			cmd.Println()
		}
	}
	return nil
}
