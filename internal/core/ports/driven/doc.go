// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for generation to function:
//
//   - FragmentStore: Vector retrieval and persistence of knowledge fragments
//   - EmbeddingService: Generates vector embeddings for texts and queries
//   - Reranker: Cross-encoder relevance scoring of retrieval candidates
//   - Analyzer: Structured job-offer analysis
//   - ContentWriter: Generates one content type (email, LinkedIn, letter)
//   - SettingsStore: Application configuration
//
// # Optional Interfaces
//
// These degrade gracefully:
//
//   - Tracer: Observability. The no-op implementation is always safe to use;
//     a failing backend must never fail a generation run.
//   - IngestLedger: Incremental ingestion state. Without it every run
//     re-ingests all documents.
//   - PromptStore: Prompt template overrides. Without it embedded defaults
//     are used.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
