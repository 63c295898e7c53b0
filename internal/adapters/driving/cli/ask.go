package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

var (
	askType string
	askJSON bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer a question from the indexed document",
	Long: `Answers a single question, grounded in the passages retrieved from
the index. Question types:

  standard   retrieval plus generation, parsed into sections (default)
  numerical  numeric-extraction prompt, raw model output
  query      similarity search only, no generation`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVarP(&askType, "type", "t", "", "question type (standard, numerical, query)")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the full record as JSON")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if err := requireServices(); err != nil {
		return err
	}

	qtype, err := domain.ParseQuestionType(askType)
	if err != nil {
		return err
	}

	rec, err := answerService.Ask(cmd.Context(), args[0], qtype)
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	if askJSON {
		return outputRecordJSON(cmd, rec)
	}
	return outputRecordText(cmd, rec)
}

func outputRecordJSON(cmd *cobra.Command, rec domain.AnswerRecord) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputRecordText(cmd *cobra.Command, rec domain.AnswerRecord) error {
	if !rec.Success() {
		cmd.Printf("Question failed: %s\n", rec.Err)
		return nil
	}

	switch rec.Result.Kind {
	case domain.ParseStructured:
		cmd.Println(rec.Result.Answer)
		if rec.Result.Sources != "" {
			cmd.Println()
			cmd.Printf("Sources: %s\n", rec.Result.Sources)
		}
		if rec.Result.Excerpts != "" {
			cmd.Println()
			cmd.Println(rec.Result.Excerpts)
		}
	default:
		cmd.Println(rec.Result.Raw)
	}
	return nil
}
