package driven

import "context"

// EmbeddingService generates vector embeddings from text.
//
// Note: This is separate from FragmentStore which stores and searches
// vectors. EmbeddingService generates vectors; FragmentStore stores them.
//
// Implementations may include:
//   - Hugging Face Inference API (intfloat/multilingual-e5-base, BGE models)
//   - Local models via inference servers
type EmbeddingService interface {
	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts efficiently.
	// This is more efficient than calling Embed in a loop for large batches.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding vector size (e.g., 384, 768, 1024).
	// This is determined by the model and must match the store's collection.
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight test request.
	// This is used at startup to verify connectivity before serving requests.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
