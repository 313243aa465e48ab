package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jobforge/jobforge/internal/adapters/driven/config/file"
	"github.com/jobforge/jobforge/internal/adapters/driving/httpapi"
)

var (
	serveAddr         string
	serveWatchPrompts bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Starts the HTTP API.

Endpoints live under /api/v1: POST /generate runs the pipeline, the
/system/* probes report health and configuration. The server drains
in-flight requests on SIGINT/SIGTERM.

With --watch-prompts, edits to the prompt files take effect on the
next request without a restart.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from settings)")
	serveCmd.Flags().BoolVar(&serveWatchPrompts, "watch-prompts", false, "reload prompt files when they change on disk")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if generationService == nil {
		return fmt.Errorf("generation not configured: %s", configHints())
	}

	handler, err := httpapi.NewHandler(generationService, fragmentStore, promptStore, settings, log)
	if err != nil {
		return err
	}

	if serveWatchPrompts {
		if promptFiles == nil {
			return fmt.Errorf("prompt files not configured, set prompts_path before using --watch-prompts")
		}
		watcher, err := file.NewPromptWatcher(promptFiles, log)
		if err != nil {
			return fmt.Errorf("prompt watcher: %w", err)
		}
		defer watcher.Close() //nolint:errcheck
	}

	addr := serveAddr
	if addr == "" {
		addr = settings.Server.Addr
	}

	server, err := httpapi.NewServer(addr, handler.Routes(), log)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "API listening on %s\n", addr)
	return server.Run(cmd.Context())
}
