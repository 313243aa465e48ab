// Package domain defines the core business entities for Jobforge.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - JobOffer: The raw job posting a generation run starts from
//   - JobAnalysis: Structured insights extracted from an offer
//   - Fragment: A retrievable unit of profile or rule content
//   - TraceContext: Correlation handle for observability
//   - GenerationResult: The outcome of a generation run
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
