package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files, embed them in the binary,
// or fetch them from a remote configuration service.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// Returns the prompt content and any error encountered.
	// If the prompt is not found, implementations should return a sensible default
	// or an error, depending on whether the prompt is required.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	// This is useful when prompts may have been edited on disk.
	Reload()
}

// Well-known prompt names used throughout the application.
// These constants define the contract between prompt consumers and providers.
//
// System prompts carry the persona; task prompts are text/template bodies
// receiving the offer, the analysis, and the assembled context.
const (
	// PromptAnalyzerSystem is the persona for job-offer analysis.
	PromptAnalyzerSystem = "analyzer_system"

	// PromptAnalyzerTask asks for the structured analysis of an offer.
	PromptAnalyzerTask = "analyzer_task"

	// PromptEmailSystem is the persona for application email writing.
	PromptEmailSystem = "email_writer_system"

	// PromptEmailTask asks for a complete application email.
	PromptEmailTask = "email_writer_task"

	// PromptLinkedInSystem is the persona for LinkedIn message writing.
	PromptLinkedInSystem = "linkedin_writer_system"

	// PromptLinkedInTask asks for a LinkedIn direct message.
	PromptLinkedInTask = "linkedin_writer_task"

	// PromptLetterSystem is the persona for cover letter writing.
	PromptLetterSystem = "letter_writer_system"

	// PromptLetterTask asks for a full cover letter.
	PromptLetterTask = "letter_writer_task"
)
