package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/docqa/internal/adapters/driving/tui"
	"github.com/custodia-labs/docqa/internal/core/domain"
)

var tuiType string

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Interactive question answering in the terminal",
	Args:  cobra.NoArgs,
	RunE:  runTUI,
}

func init() {
	tuiCmd.Flags().StringVarP(&tuiType, "type", "t", "", "question type (standard, numerical, query)")
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) error {
	if err := requireServices(); err != nil {
		return err
	}

	qtype, err := domain.ParseQuestionType(tuiType)
	if err != nil {
		return err
	}

	model := tui.New(answerService, qtype)
	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("tui failed: %w", err)
	}
	return nil
}
