package openai

import (
	"context"
	"fmt"
	"strings"

	"github.com/jobforge/jobforge/internal/core/domain"
	"github.com/jobforge/jobforge/internal/core/ports/driven"
)

// Ensure Writer implements the interface.
var _ driven.ContentWriter = (*Writer)(nil)

// Caps on the analysis fields injected into writer prompts. Prompts stay
// focused on the strongest signals instead of echoing the whole analysis.
const (
	maxPromptMissions   = 5
	maxPromptSkills     = 8
	maxPromptSoftSkills = 5
	maxPromptValues     = 4
)

// writerPrompts binds a content type to its prompt store names and
// embedded defaults.
type writerPrompts struct {
	systemName    string
	taskName      string
	systemDefault string
	taskDefault   string
}

var promptsByType = map[domain.ContentType]writerPrompts{
	domain.ContentTypeEmail: {
		systemName:    driven.PromptEmailSystem,
		taskName:      driven.PromptEmailTask,
		systemDefault: defaultEmailSystem,
		taskDefault:   defaultEmailTask,
	},
	domain.ContentTypeLinkedIn: {
		systemName:    driven.PromptLinkedInSystem,
		taskName:      driven.PromptLinkedInTask,
		systemDefault: defaultLinkedInSystem,
		taskDefault:   defaultLinkedInTask,
	},
	domain.ContentTypeLetter: {
		systemName:    driven.PromptLetterSystem,
		taskName:      driven.PromptLetterTask,
		systemDefault: defaultLetterSystem,
		taskDefault:   defaultLetterTask,
	},
}

// writerTaskData feeds the writer task templates.
type writerTaskData struct {
	Offer    string
	Analysis string
	Context  string
}

// Writer generates one kind of application content using the OpenAI chat
// API. Create one writer per content type, sharing a single client.
type Writer struct {
	client      *Client
	prompts     driven.PromptStore
	contentType domain.ContentType
	names       writerPrompts
}

// NewWriter creates a content writer for the given content type. The
// prompt store is optional; without it the embedded default prompts are
// used.
func NewWriter(client *Client, prompts driven.PromptStore, contentType domain.ContentType) (*Writer, error) {
	if client == nil {
		return nil, fmt.Errorf("openai: client is required")
	}
	names, ok := promptsByType[contentType]
	if !ok {
		return nil, fmt.Errorf("openai: no prompts for content type %q", contentType.String())
	}
	return &Writer{
		client:      client,
		prompts:     prompts,
		contentType: contentType,
		names:       names,
	}, nil
}

// Write produces the application content from the offer, its analysis,
// and the assembled knowledge-base context.
func (w *Writer) Write(ctx context.Context, offer domain.JobOffer, analysis domain.JobAnalysis, ragContext string) (string, error) {
	system := loadPrompt(w.prompts, w.names.systemName, w.names.systemDefault)
	taskTemplate := loadPrompt(w.prompts, w.names.taskName, w.names.taskDefault)

	task, err := renderTemplate(w.names.taskName, taskTemplate, writerTaskData{
		Offer:    offer.Text(),
		Analysis: analysisBlock(analysis),
		Context:  ragContext,
	})
	if err != nil {
		return "", err
	}

	content, err := w.client.Complete(ctx, system, task)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrGenerationFailed, err)
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return "", fmt.Errorf("%w: model returned empty %s", domain.ErrGenerationFailed, w.contentType.String())
	}
	return content, nil
}

// ContentType returns the content type this writer produces.
func (w *Writer) ContentType() domain.ContentType {
	return w.contentType
}

// analysisBlock renders the analysis as the labelled block the task
// prompts expect, capping each enumeration.
func analysisBlock(a domain.JobAnalysis) string {
	var b strings.Builder

	fmt.Fprintf(&b, "COMPANY: %s\n", orUnknown(a.Company))
	fmt.Fprintf(&b, "POSITION: %s\n", a.Position)
	fmt.Fprintf(&b, "SECTOR: %s\n", orUnknown(a.Sector))
	fmt.Fprintf(&b, "\nSUMMARY: %s\n", a.Summary)

	if len(a.Missions) > 0 {
		fmt.Fprintf(&b, "\nMISSIONS: %s\n", joinCapped(a.Missions, maxPromptMissions))
	}
	if len(a.KeySkills) > 0 {
		fmt.Fprintf(&b, "\nKEY SKILLS: %s\n", joinCapped(a.KeySkills, maxPromptSkills))
	}
	if len(a.SoftSkills) > 0 {
		fmt.Fprintf(&b, "\nSOFT SKILLS: %s\n", joinCapped(a.SoftSkills, maxPromptSoftSkills))
	}
	if len(a.Values) > 0 {
		fmt.Fprintf(&b, "\nCOMPANY VALUES: %s\n", joinCapped(a.Values, maxPromptValues))
	}
	if a.RecruiterTone != "" {
		fmt.Fprintf(&b, "\nRECRUITER TONE: %s\n", a.RecruiterTone)
	}

	return strings.TrimRight(b.String(), "\n")
}

func orUnknown(s string) string {
	if s == "" {
		return "not specified"
	}
	return s
}

func joinCapped(items []string, limit int) string {
	if len(items) > limit {
		items = items[:limit]
	}
	return strings.Join(items, ", ")
}

// --- Embedded default prompts ---

const defaultEmailSystem = `You are an expert application-email writer. You write short,
direct, personalised emails that make a recruiter want to open the attached CV.
You only use facts from the candidate context provided; you never invent
experience, numbers, or names.`

const defaultEmailTask = `Write a complete application email for the offer below.

Follow every rule in the writing rules sections of the context. Ground every
claim about the candidate in the CANDIDATE CONTEXT. Include a subject line.

OFFER ANALYSIS:
{{.Analysis}}

CANDIDATE CONTEXT:
{{.Context}}

JOB OFFER:
{{.Offer}}

Return only the email, starting with the subject line.`

const defaultLinkedInSystem = `You are an expert at LinkedIn outreach. You write brief,
warm, professional direct messages that start conversations with recruiters.
You only use facts from the candidate context provided; you never invent
experience or names.`

const defaultLinkedInTask = `Write a LinkedIn direct message to the recruiter for the
offer below.

Keep it under 120 words, no subject line, no signature block. Follow every
rule in the writing rules sections of the context. Ground every claim about
the candidate in the CANDIDATE CONTEXT.

OFFER ANALYSIS:
{{.Analysis}}

CANDIDATE CONTEXT:
{{.Context}}

JOB OFFER:
{{.Offer}}

Return only the message.`

const defaultLetterSystem = `You are an expert cover-letter writer. You write structured,
convincing letters that connect the candidate's track record to the offer.
You only use facts from the candidate context provided; you never invent
experience, numbers, or names.`

const defaultLetterTask = `Write a complete cover letter for the offer below.

Follow every rule in the writing rules sections of the context. Ground every
claim about the candidate in the CANDIDATE CONTEXT. Address the company when
it is known, and close with the signature from the context when present.

OFFER ANALYSIS:
{{.Analysis}}

CANDIDATE CONTEXT:
{{.Context}}

JOB OFFER:
{{.Offer}}

Return only the letter.`
