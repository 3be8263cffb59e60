package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/ashureev/studyguide/internal/llm"
)

// Synthesizer merges several specialist answers into one.
type Synthesizer struct {
	gen llm.Generator
}

// NewSynthesizer creates a synthesizer backed by gen.
func NewSynthesizer(gen llm.Generator) *Synthesizer {
	return &Synthesizer{gen: gen}
}

// Synthesize returns a single response unmodified and merges several with
// one hosted call. When that call fails the responses are concatenated under
// per-domain headers and returned together with a KindSynthesis error, so the
// text is always usable.
func (s *Synthesizer) Synthesize(ctx context.Context, question string, responses []SpecialistResponse) (string, error) {
	switch len(responses) {
	case 0:
		return "", &Error{Kind: KindInvalidInput, Err: fmt.Errorf("no responses to synthesize")}
	case 1:
		return responses[0].Text, nil
	}

	text, err := s.gen.Generate(ctx, llm.Request{
		System: synthesisSystemPrompt,
		Prompt: synthesisPrompt(question, responses),
	})
	if err != nil {
		return Concatenate(responses), &Error{Kind: KindSynthesis, Err: err}
	}
	return text, nil
}

// Concatenate renders each response under a "## <Label> Perspective" header,
// in input order.
func Concatenate(responses []SpecialistResponse) string {
	parts := make([]string, 0, len(responses))
	for _, r := range responses {
		parts = append(parts, fmt.Sprintf("## %s Perspective\n\n%s", r.label(), r.Text))
	}
	return strings.Join(parts, "\n\n")
}

func synthesisPrompt(question string, responses []SpecialistResponse) string {
	var b strings.Builder
	b.WriteString("A learner asked the following question:\n\n")
	b.WriteString(question)
	b.WriteString("\n\nSeveral specialists answered it from their own domain:\n\n")
	b.WriteString(Concatenate(responses))
	b.WriteString("\n\nSynthesize these answers into a single coherent, well-organized response to the question.")
	return b.String()
}

func (r SpecialistResponse) label() string {
	if r.Label != "" {
		return r.Label
	}
	return r.Domain.Label()
}
