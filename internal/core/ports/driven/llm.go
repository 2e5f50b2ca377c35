package driven

import "context"

// Generator produces text from a single-shot prompt. No conversation
// state is retained between calls, no retries, no streaming.
type Generator interface {
	// Generate returns the model's raw text for the prompt.
	Generate(ctx context.Context, prompt string) (string, error)

	// ModelName returns the name of the generation model being used.
	ModelName() string

	// Close releases resources.
	Close() error
}
