package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

var (
	batchType string
	batchJSON bool
	batchFile string
)

var batchCmd = &cobra.Command{
	Use:   "batch [question]...",
	Short: "Answer a batch of questions",
	Long: `Answers up to the configured maximum of questions in one run.
Questions are taken from the arguments, or one per line from a file
with --file. A failing question does not abort the rest; each question
gets exactly one result, in input order.`,
	RunE: runBatch,
}

func init() {
	batchCmd.Flags().StringVarP(&batchType, "type", "t", "", "question type (standard, numerical, query)")
	batchCmd.Flags().BoolVar(&batchJSON, "json", false, "output results as JSON")
	batchCmd.Flags().StringVarP(&batchFile, "file", "f", "", "read questions from a file, one per line")
	rootCmd.AddCommand(batchCmd)
}

func runBatch(cmd *cobra.Command, args []string) error {
	if err := requireServices(); err != nil {
		return err
	}

	qtype, err := domain.ParseQuestionType(batchType)
	if err != nil {
		return err
	}

	questions := args
	if batchFile != "" {
		questions, err = readQuestions(batchFile)
		if err != nil {
			return err
		}
	}

	batch, err := answerService.AskBatch(cmd.Context(), questions, qtype)
	if err != nil {
		return fmt.Errorf("batch failed: %w", err)
	}

	if batchJSON {
		data, err := json.MarshalIndent(batch, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal results: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	answered := 0
	for i, item := range batch {
		cmd.Printf("[%d] %s\n", i+1, item.Question)
		if !item.Success {
			errMsg := item.Err
			if errMsg == "" && item.Record != nil {
				errMsg = item.Record.Err
			}
			cmd.Printf("    FAILED: %s\n", errMsg)
			continue
		}
		answered++
		if err := printBatchAnswer(cmd, item.Record); err != nil {
			return err
		}
	}
	cmd.Printf("\n%d/%d answered\n", answered, len(batch))
	return nil
}

func printBatchAnswer(cmd *cobra.Command, rec *domain.AnswerRecord) error {
	if rec == nil {
		return nil
	}
	switch rec.Result.Kind {
	case domain.ParseStructured:
		cmd.Printf("    %s\n", rec.Result.Answer)
		if rec.Result.Sources != "" {
			cmd.Printf("    Sources: %s\n", rec.Result.Sources)
		}
	default:
		cmd.Printf("    %s\n", rec.Result.Raw)
	}
	return nil
}

// readQuestions loads questions from a file, one per line, skipping
// blank lines.
func readQuestions(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	var questions []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			questions = append(questions, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return questions, nil
}
