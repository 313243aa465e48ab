package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrInvalidInput indicates malformed or invalid caller input.
	// Requests failing this way are rejected before any external call.
	ErrInvalidInput = errors.New("invalid input")

	// ErrOfferTooShort indicates the job offer text is below the minimum length.
	ErrOfferTooShort = errors.New("job offer text too short")

	// ErrUnknownContentType indicates the requested output type is not supported.
	ErrUnknownContentType = errors.New("unknown content type")

	// ErrNoFragments indicates the fragment store returned nothing relevant.
	// This is a business outcome, not an infrastructure failure: the knowledge
	// base is empty or no fragment cleared the similarity threshold.
	ErrNoFragments = errors.New("no relevant fragments found")

	// ErrAnalysisFailed indicates the job offer analysis stage failed.
	ErrAnalysisFailed = errors.New("job offer analysis failed")

	// ErrGenerationFailed indicates the writing stage produced no usable content.
	ErrGenerationFailed = errors.New("content generation failed")

	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrStoreUnavailable indicates the fragment store is not reachable or
	// not initialised. Retrieval and ingestion are disabled without it.
	ErrStoreUnavailable = errors.New("fragment store unavailable")
)
