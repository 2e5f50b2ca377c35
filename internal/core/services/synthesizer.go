package services

import (
	"context"
	"fmt"

	"github.com/membox-labs/membox-cli/internal/core/ports/driven"
)

// answerInstruction is the fixed synthesis preamble. The model answers
// only from the supplied context and lists its sources at the end.
const answerInstruction = `You are an AI knowledge assistant that answers technical questions based only on the provided context, which comes from company chat, ticket, document and repository systems.
Synthesize a clear, single answer. DO NOT mention the confidence score.
Always summarize the sources used at the end of your answer.`

// Synthesizer combines fused context with a question into one
// generation request. No retries, no streaming: this is always the
// last step, so nothing downstream depends on partial success.
type Synthesizer struct {
	generator driven.Generator
}

// NewSynthesizer creates a new answer synthesizer.
func NewSynthesizer(generator driven.Generator) *Synthesizer {
	return &Synthesizer{generator: generator}
}

// Synthesize returns the model's answer for the question given the
// rendered context string.
func (s *Synthesizer) Synthesize(ctx context.Context, question, contextString string) (string, error) {
	prompt := BuildPrompt(question, contextString)
	text, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("generate answer: %w", err)
	}
	return text, nil
}

// BuildPrompt renders the single-shot generation request.
func BuildPrompt(question, contextString string) string {
	return fmt.Sprintf("%s\n\nCONTEXT:\n%s\n\nQuestion: %s\n", answerInstruction, contextString, question)
}
