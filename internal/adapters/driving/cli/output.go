package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/jobforge/jobforge/internal/core/domain"
)

// Output styles, shared by the generate and ingest commands.
var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED")) // Purple
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6C7086"))            // Medium gray
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#A6E3A1"))            // Green
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#F9E2AF"))            // Yellow
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#F38BA8"))            // Red
)

// sourceLineLen bounds the fragment text echoed per source line.
const sourceLineLen = 80

// printGenerationResult renders the generated content with its sources.
func printGenerationResult(cmd *cobra.Command, result *domain.GenerationResult) {
	cmd.Println(titleStyle.Render(contentHeading(result.ContentType)))
	cmd.Println()
	cmd.Println(result.Content)
	cmd.Println()

	if len(result.Sources) > 0 {
		cmd.Println(titleStyle.Render("Sources"))
		for i, f := range result.Sources {
			score := f.Score
			if f.RerankScore != nil {
				score = *f.RerankScore
			}
			cmd.Printf("  [%d] %s (%.2f)\n", i+1, f.Source, score)
			cmd.Printf("      %s\n", mutedStyle.Render(firstLine(f.Text, sourceLineLen)))
		}
		cmd.Println()
	}

	if result.TraceID != domain.NoopTraceID {
		cmd.Println(mutedStyle.Render("trace: " + result.TraceID))
	}
}

// printIngestReports renders one line per document plus a summary.
func printIngestReports(cmd *cobra.Command, reports []domain.IngestReport) {
	var ingested, skipped, failed int
	for _, r := range reports {
		switch r.Action {
		case domain.IngestActionIngested:
			ingested++
			cmd.Printf("  %s %s (%d fragments)\n", successStyle.Render("ingested"), r.Source, r.Fragments)
		case domain.IngestActionSkipped:
			skipped++
			cmd.Printf("  %s  %s\n", warnStyle.Render("skipped"), r.Source)
		case domain.IngestActionFailed:
			failed++
			cmd.Printf("  %s   %s: %v\n", errorStyle.Render("failed"), r.Source, r.Err)
		}
	}

	cmd.Println()
	cmd.Printf("Ingested %d, skipped %d, failed %d (%d total)\n",
		ingested, skipped, failed, len(reports))
}

func contentHeading(ct domain.ContentType) string {
	switch ct {
	case domain.ContentTypeEmail:
		return "Application Email"
	case domain.ContentTypeLinkedIn:
		return "LinkedIn Message"
	case domain.ContentTypeLetter:
		return "Cover Letter"
	default:
		return "Generated Content"
	}
}

// firstLine flattens text to its first line, truncated to n runes.
func firstLine(text string, n int) string {
	for i, r := range text {
		if r == '\n' {
			text = text[:i]
			break
		}
	}
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return fmt.Sprintf("%s...", string(runes[:n]))
}
