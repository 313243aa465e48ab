package cli

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jobforge/jobforge/internal/adapters/driven/ai/openai"
	"github.com/jobforge/jobforge/internal/adapters/driven/config/file"
	"github.com/jobforge/jobforge/internal/core/ports/driven"
)

var promptsCmd = &cobra.Command{
	Use:   "prompts",
	Short: "Manage prompt templates",
	Long: `The analyzer and writer prompts ship embedded in the binary. To
customise them, seed a prompt directory with 'jobforge prompts init',
edit the files, and point prompts_path in the settings at the directory.`,
}

var promptsInitCmd = &cobra.Command{
	Use:   "init [dir]",
	Short: "Seed a directory with the default prompt files",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runPromptsInit,
}

func init() {
	promptsCmd.AddCommand(promptsInitCmd)
	rootCmd.AddCommand(promptsCmd)
}

func runPromptsInit(cmd *cobra.Command, args []string) error {
	dir := settings.PromptsPath
	if len(args) > 0 {
		dir = args[0]
	}
	if dir == "" {
		dir = file.DefaultPromptDir
	}

	store, err := file.NewPromptStore(dir, openai.DefaultPrompts())
	if err != nil {
		return fmt.Errorf("prompt store: %w", err)
	}

	// The store seeds missing files on first load.
	if _, err := store.Load(driven.PromptAnalyzerSystem); err != nil {
		return fmt.Errorf("seed prompt files: %w", err)
	}

	entries, err := os.ReadDir(store.Dir())
	if err != nil {
		return fmt.Errorf("read prompt dir: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".txt") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	cmd.Printf("Prompt files in %s:\n", store.Dir())
	for _, name := range names {
		cmd.Printf("  %s\n", name)
	}
	cmd.Println()
	cmd.Printf("Set prompts_path = %q in the settings file to use them.\n", store.Dir())
	return nil
}
