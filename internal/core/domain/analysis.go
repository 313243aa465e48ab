package domain

import "fmt"

// JobAnalysis holds the structured insights extracted from a job offer.
// It drives both retrieval (search query synthesis) and generation
// (the writer receives it alongside the assembled context).
type JobAnalysis struct {
	// Summary is a short recap of the posting.
	Summary string

	// Position is the job title being applied for.
	Position string

	// Company is the hiring company name, if stated.
	Company string

	// KeySkills are the technical skills the posting asks for,
	// ordered by importance.
	KeySkills []string

	// Missions are the main responsibilities of the role.
	Missions []string

	// Sector is the business sector or industry.
	Sector string

	// SoftSkills are the behavioural traits the posting asks for.
	SoftSkills []string

	// Values are the company values detected in the posting.
	Values []string

	// RecruiterTone describes the register of the posting
	// (e.g. "formal", "casual"), used to mirror tone in the output.
	RecruiterTone string

	// ContentType names the output type this analysis was produced for
	// ("email", "linkedin", "letter").
	ContentType string
}

// Validate checks the analysis carries the minimum fields downstream
// stages depend on.
func (a JobAnalysis) Validate() error {
	if a.Summary == "" {
		return fmt.Errorf("%w: analysis summary is empty", ErrAnalysisFailed)
	}
	if a.Position == "" {
		return fmt.Errorf("%w: analysis position is empty", ErrAnalysisFailed)
	}
	return nil
}

// TopSkills returns at most n key skills, preserving order.
func (a JobAnalysis) TopSkills(n int) []string {
	if n <= 0 || len(a.KeySkills) == 0 {
		return nil
	}
	if len(a.KeySkills) <= n {
		return a.KeySkills
	}
	return a.KeySkills[:n]
}
