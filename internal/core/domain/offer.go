package domain

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// MinOfferLength is the minimum number of characters a job offer must
// contain to be analysable. Anything shorter is almost certainly a paste
// error rather than a real posting.
const MinOfferLength = 50

// JobOffer is the raw job posting text a generation run starts from.
// The zero value is invalid; use NewJobOffer to construct one.
type JobOffer struct {
	text string
}

// NewJobOffer validates and wraps raw job posting text.
// Leading and trailing whitespace is trimmed before validation.
func NewJobOffer(text string) (JobOffer, error) {
	trimmed := strings.TrimSpace(text)
	if utf8.RuneCountInString(trimmed) < MinOfferLength {
		return JobOffer{}, fmt.Errorf("%w: need at least %d characters, got %d (%w)",
			ErrOfferTooShort, MinOfferLength, utf8.RuneCountInString(trimmed), ErrInvalidInput)
	}
	return JobOffer{text: trimmed}, nil
}

// Text returns the full offer text.
func (o JobOffer) Text() string {
	return o.text
}

// Excerpt returns the first n runes of the offer text.
// Used for trace payloads where the full posting would be noise.
func (o JobOffer) Excerpt(n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(o.text)
	if len(runes) <= n {
		return o.text
	}
	return string(runes[:n])
}

// IsZero reports whether the offer was never constructed via NewJobOffer.
func (o JobOffer) IsZero() bool {
	return o.text == ""
}

// ContentType identifies the kind of application content to generate.
type ContentType string

// Supported content types.
const (
	// ContentTypeEmail is a short application email to a recruiter.
	ContentTypeEmail ContentType = "email"

	// ContentTypeLinkedIn is a LinkedIn direct message (hard length limits).
	ContentTypeLinkedIn ContentType = "linkedin"

	// ContentTypeLetter is a full cover letter.
	ContentTypeLetter ContentType = "letter"
)

// ParseContentType converts user input into a ContentType.
// Matching is case-insensitive and trims whitespace.
func ParseContentType(s string) (ContentType, error) {
	ct := ContentType(strings.ToLower(strings.TrimSpace(s)))
	if !ct.IsValid() {
		return "", fmt.Errorf("%w: %q (%w)", ErrUnknownContentType, s, ErrInvalidInput)
	}
	return ct, nil
}

// IsValid returns true if the content type is recognised.
func (c ContentType) IsValid() bool {
	switch c {
	case ContentTypeEmail, ContentTypeLinkedIn, ContentTypeLetter:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (c ContentType) String() string {
	return string(c)
}

// RulesetName returns the ruleset type that carries the writing rules
// for this content type ("email", "linkedin", "letter").
func (c ContentType) RulesetName() string {
	return string(c)
}

// AllContentTypes returns every supported content type.
func AllContentTypes() []ContentType {
	return []ContentType{ContentTypeEmail, ContentTypeLinkedIn, ContentTypeLetter}
}
