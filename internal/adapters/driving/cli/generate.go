package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/jobforge/jobforge/internal/core/domain"
)

var (
	generateType      string
	generateOfferFile string
	generateJSON      bool
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate application content for a job offer",
	Long: `Generates an application email, LinkedIn message, or cover letter
for a job posting, grounded in your ingested documents.

The posting is read from --offer-file, or from stdin when no file is
given:

  jobforge generate --offer-file posting.md --type email
  pbpaste | jobforge generate --type linkedin`,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringVarP(&generateType, "type", "t", "email", "content type: email, linkedin, or letter")
	generateCmd.Flags().StringVarP(&generateOfferFile, "offer-file", "f", "", "file holding the job posting")
	generateCmd.Flags().BoolVar(&generateJSON, "json", false, "output the result as JSON")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	if generationService == nil {
		return fmt.Errorf("generation not configured: %s", configHints())
	}

	contentType, err := domain.ParseContentType(generateType)
	if err != nil {
		return err
	}

	text, err := readOfferText(cmd)
	if err != nil {
		return err
	}

	offer, err := domain.NewJobOffer(text)
	if err != nil {
		return err
	}

	result, err := generationService.Generate(cmd.Context(), offer, contentType)
	if err != nil {
		if errors.Is(err, domain.ErrNoFragments) {
			return fmt.Errorf("%w (run 'jobforge ingest' first)", err)
		}
		return err
	}

	if generateJSON {
		return outputGenerationJSON(cmd, result)
	}

	printGenerationResult(cmd, result)
	return nil
}

// readOfferText reads the posting from the flagged file or stdin.
func readOfferText(cmd *cobra.Command) (string, error) {
	if generateOfferFile != "" {
		data, err := os.ReadFile(generateOfferFile)
		if err != nil {
			return "", fmt.Errorf("read offer file: %w", err)
		}
		return string(data), nil
	}

	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("read offer from stdin: %w", err)
	}
	return string(data), nil
}

func outputGenerationJSON(cmd *cobra.Command, result *domain.GenerationResult) error {
	type sourceOut struct {
		ID     string  `json:"id"`
		Text   string  `json:"text"`
		Source string  `json:"source"`
		Score  float64 `json:"score"`
	}

	sources := make([]sourceOut, 0, len(result.Sources))
	for _, f := range result.Sources {
		score := f.Score
		if f.RerankScore != nil {
			score = *f.RerankScore
		}
		sources = append(sources, sourceOut{
			ID:     f.ID,
			Text:   f.Text,
			Source: f.Source,
			Score:  score,
		})
	}

	out := struct {
		Output     string      `json:"output"`
		OutputType string      `json:"output_type"`
		Sources    []sourceOut `json:"sources"`
		TraceID    string      `json:"trace_id"`
	}{
		Output:     result.Content,
		OutputType: result.ContentType.String(),
		Sources:    sources,
		TraceID:    result.TraceID,
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
