package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docqa/internal/adapters/driving/httpapi"
	"github.com/custodia-labs/docqa/internal/watcher"
)

var (
	serveAddr  string
	serveWatch bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the question answering API over HTTP",
	Long: `Starts the HTTP API. With --watch, the index is rebuilt automatically
whenever the configured document changes on disk.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config, :8000)")
	serveCmd.Flags().BoolVar(&serveWatch, "watch", false, "rebuild the index when the document changes")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if err := requireServices(); err != nil {
		return err
	}

	addr := serveAddr
	watch := serveWatch
	docPath := ""
	if application != nil {
		if addr == "" {
			addr = application.Config.Server.Addr
		}
		watch = watch || application.Config.Server.Watch
		docPath = application.Config.Document.Path
	}
	if addr == "" {
		addr = ":8000"
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	if watch {
		if docPath == "" {
			return errors.New("--watch requires a configured document path")
		}
		w := watcher.New(docPath, func(ctx context.Context) error {
			_, err := indexService.Build(ctx)
			return err
		})
		go w.Run(ctx) //nolint:errcheck
	}

	server := httpapi.New(addr, indexService, answerService)
	return server.Run(ctx)
}
