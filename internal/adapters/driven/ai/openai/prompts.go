package openai

import "github.com/jobforge/jobforge/internal/core/ports/driven"

// DefaultPrompts returns the embedded prompt texts keyed by their
// store names. The file-based prompt store seeds its editable files
// from this map, so users start from the same prompts the adapters
// fall back to.
func DefaultPrompts() map[string]string {
	return map[string]string{
		driven.PromptAnalyzerSystem: defaultAnalyzerSystem,
		driven.PromptAnalyzerTask:   defaultAnalyzerTask,
		driven.PromptEmailSystem:    defaultEmailSystem,
		driven.PromptEmailTask:      defaultEmailTask,
		driven.PromptLinkedInSystem: defaultLinkedInSystem,
		driven.PromptLinkedInTask:   defaultLinkedInTask,
		driven.PromptLetterSystem:   defaultLetterSystem,
		driven.PromptLetterTask:     defaultLetterTask,
	}
}
