// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// GenerationService runs the retrieval-augmented generation pipeline;
// IngestService loads the knowledge base. Query synthesis and context
// assembly are plain functions and types in this package so the
// pipeline stages stay independently testable.
//
// Services are pure Go with no CGO dependencies.
package services
