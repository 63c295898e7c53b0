// Package cli provides the docqa command line interface.
package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docqa/internal/app"
	"github.com/custodia-labs/docqa/internal/config"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
	"github.com/custodia-labs/docqa/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

var (
	flagConfig  string
	flagVerbose bool
)

// Wired services, set by setupApp before a command runs.
var (
	application   *app.App
	indexService  driving.IndexService
	answerService driving.AnswerService
)

var rootCmd = &cobra.Command{
	Use:   "docqa",
	Short: "Question answering over a single document",
	Long: `docqa chunks a document, indexes it in a local vector store and
answers questions grounded in the retrieved passages.

Typical flow:
  docqa build            # index the configured document
  docqa ask "question"   # answer one question
  docqa serve            # expose the pipeline over HTTP`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		logger.SetVerbose(flagVerbose)
		if skipSetup(cmd) {
			return nil
		}
		return setupApp()
	},
	PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
		if application == nil {
			return nil
		}
		err := application.Close()
		application = nil
		return err
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file (default: docqa.toml if present)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable verbose logging")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// ExecuteContext runs the root command with the given context, which
// cancels long-running commands (serve, tui, mcp) on shutdown signals.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// skipSetup reports whether the command runs without wired services.
func skipSetup(cmd *cobra.Command) bool {
	switch cmd.Name() {
	case "version", "help", "completion":
		return true
	}
	return false
}

// setupApp wires services from the configuration, unless a test
// injected them already.
func setupApp() error {
	if indexService != nil && answerService != nil {
		return nil
	}

	cfgPath := flagConfig
	if cfgPath == "" {
		cfgPath = config.DefaultPath()
	}

	a, err := app.New(cfgPath)
	if err != nil {
		return err
	}
	application = a
	indexService = a.Index
	answerService = a.Answers
	return nil
}

// SetServices injects services directly, bypassing config wiring.
// Used by tests.
func SetServices(index driving.IndexService, answers driving.AnswerService) {
	indexService = index
	answerService = answers
}

func requireServices() error {
	if indexService == nil || answerService == nil {
		return errors.New("services not configured")
	}
	return nil
}
