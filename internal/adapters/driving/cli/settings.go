package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/jobforge/jobforge/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure the models, stores, and API keys JobForge uses.

Settings live in a TOML file (jobforge.toml by default); environment
variables like OPENAI_API_KEY override the file.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective settings",
	RunE:  runSettingsShow,
}

var settingsInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a settings file with defaults",
	Long:  `Writes the default settings to the settings file for editing. Existing files are not overwritten.`,
	RunE:  runSettingsInit,
}

var settingsKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Configure API keys interactively",
	Long: `Prompts for the OpenAI, HuggingFace, and Langfuse keys and saves them
to the settings file. Keys are read without echo; leave a prompt empty
to keep the current value.`,
	RunE: runSettingsKeys,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsInitCmd)
	settingsCmd.AddCommand(settingsKeysCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsStore == nil {
		return errors.New("settings store not configured")
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Printf("File: %s\n", settingsStore.Path())
	cmd.Println()

	cmd.Println("[Server]")
	cmd.Printf("  Addr: %s\n", settings.Server.Addr)
	cmd.Printf("  Request timeout: %s\n", settings.Server.RequestTimeout)
	cmd.Println()

	cmd.Println("[LLM]")
	cmd.Printf("  Model: %s\n", settings.LLM.Model)
	cmd.Printf("  Temperature: %.1f\n", settings.LLM.Temperature)
	printKeyLine(cmd, settings.LLM.APIKey)
	printStatusLine(cmd, settings.LLM.IsConfigured())
	cmd.Println()

	cmd.Println("[HuggingFace]")
	cmd.Printf("  Embedding model: %s\n", settings.HuggingFace.EmbeddingModel)
	cmd.Printf("  Reranker model: %s\n", settings.HuggingFace.RerankerModel)
	printKeyLine(cmd, settings.HuggingFace.APIKey)
	printStatusLine(cmd, settings.HuggingFace.IsConfigured())
	cmd.Println()

	cmd.Println("[Vector Store]")
	cmd.Printf("  URL: %s\n", settings.Store.URL)
	cmd.Printf("  Collection: %s\n", settings.Store.Collection)
	printStatusLine(cmd, settings.Store.IsConfigured())
	cmd.Println()

	cmd.Println("[Langfuse]")
	if settings.Langfuse.Enabled {
		cmd.Printf("  Enabled: yes\n")
		cmd.Printf("  Host: %s\n", settings.Langfuse.Host)
		printKeyLine(cmd, settings.Langfuse.SecretKey)
	} else {
		cmd.Printf("  Enabled: no\n")
	}
	cmd.Println()

	cmd.Println("[Retrieval]")
	cmd.Printf("  Search limit: %d\n", settings.Retrieval.SearchLimit)
	cmd.Printf("  Score threshold: %.2f\n", settings.Retrieval.ScoreThreshold)
	cmd.Printf("  Rerank top-k: %d\n", settings.Retrieval.RerankTopK)
	cmd.Println()

	cmd.Println("[Ingest]")
	cmd.Printf("  Data dir: %s\n", settings.Ingest.DataDir)
	cmd.Printf("  Ledger: %s\n", settings.Ingest.LedgerPath)
	cmd.Printf("  Chunk size: %d (overlap %d)\n", settings.Ingest.ChunkSize, settings.Ingest.ChunkOverlap)
	cmd.Println()

	if hints := configHints(); hints != "" {
		cmd.Printf("Warning: %s\n", hints)
		cmd.Println("Run 'jobforge settings keys' to set API keys.")
	} else {
		cmd.Println("Configuration is complete.")
	}

	return nil
}

func runSettingsInit(cmd *cobra.Command, _ []string) error {
	if settingsStore == nil {
		return errors.New("settings store not configured")
	}

	if _, err := os.Stat(settingsStore.Path()); err == nil {
		return fmt.Errorf("settings file already exists: %s", settingsStore.Path())
	}

	if err := settingsStore.Save(domain.DefaultAppSettings()); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}

	cmd.Printf("Wrote %s\n", settingsStore.Path())
	cmd.Println("Edit it or run 'jobforge settings keys' to add API keys.")
	return nil
}

func runSettingsKeys(cmd *cobra.Command, _ []string) error {
	if settingsStore == nil {
		return errors.New("settings store not configured")
	}

	updated := settings

	cmd.Print("OpenAI API key: ")
	if key := readPassword(); key != "" {
		updated.LLM.APIKey = key
	}
	cmd.Println()

	cmd.Print("HuggingFace API key: ")
	if key := readPassword(); key != "" {
		updated.HuggingFace.APIKey = key
	}
	cmd.Println()

	cmd.Print("Enable Langfuse tracing? [y/N]: ")
	reader := bufio.NewReader(os.Stdin)
	if strings.EqualFold(readLine(reader), "y") {
		updated.Langfuse.Enabled = true

		cmd.Print("Langfuse public key: ")
		if key := readPassword(); key != "" {
			updated.Langfuse.PublicKey = key
		}
		cmd.Println()

		cmd.Print("Langfuse secret key: ")
		if key := readPassword(); key != "" {
			updated.Langfuse.SecretKey = key
		}
		cmd.Println()
	}

	if err := settingsStore.Save(updated); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	settings = updated

	cmd.Printf("Saved %s\n", settingsStore.Path())
	return nil
}

// Helper functions.

func printKeyLine(cmd *cobra.Command, key string) {
	if key != "" {
		cmd.Printf("  API Key: %s\n", maskAPIKey(key))
	} else {
		cmd.Printf("  API Key: (not set)\n")
	}
}

func printStatusLine(cmd *cobra.Command, configured bool) {
	status := "configured"
	if !configured {
		status = "not configured"
	}
	cmd.Printf("  Status: %s\n", status)
}

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

//nolint:errcheck // CLI helper, error ignored for UX
func readPassword() string {
	// Try to read password without echo
	if term.IsTerminal(int(os.Stdin.Fd())) {
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return string(password)
		}
	}
	// Fallback to regular input
	reader := bufio.NewReader(os.Stdin)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
