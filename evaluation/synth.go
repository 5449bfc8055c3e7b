package evaluation

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/maastricht-university/interview-coach/failure"
	"github.com/maastricht-university/interview-coach/logging"
)

// Generator sends a prompt to a model constrained to schema and returns the
// raw text it produced.
type Generator interface {
	Generate(ctx context.Context, prompt string, schema map[string]any) (string, error)
}

type Synthesizer struct {
	gen         Generator
	maxAttempts int
	log         logrus.FieldLogger
}

// NewSynthesizer returns a Synthesizer that asks again, up to maxAttempts
// times in total, when the model output does not decode or validate.
func NewSynthesizer(gen Generator, maxAttempts int, log logrus.FieldLogger) *Synthesizer {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Synthesizer{gen: gen, maxAttempts: maxAttempts, log: logging.Component(log, "evaluation")}
}

// Synthesize returns a validated report or an error; never a partial report.
// Generator failures are Synthesis errors, bad output is a Schema error.
func (s *Synthesizer) Synthesize(ctx context.Context, in Input) (*Report, error) {
	if s.gen == nil {
		return nil, failure.Wrapf(failure.Synthesis, "no generator configured")
	}
	prompt := BuildPrompt(in)

	var lastErr error
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		raw, err := s.gen.Generate(ctx, prompt, ReportSchema)
		if err != nil {
			return nil, failure.Wrap(failure.Synthesis, err)
		}

		r, err := Decode(raw)
		if err == nil {
			r.Evaluation.ImprovementTips = compactTips(r.Evaluation.ImprovementTips)
			err = Validate(r)
		}
		if err == nil {
			return r, nil
		}
		lastErr = err
		s.log.WithError(err).WithField("attempt", attempt).Warn("model output rejected")
	}
	return nil, failure.Wrap(failure.Schema, lastErr)
}

func compactTips(tips []string) []string {
	out := make([]string, 0, len(tips))
	for _, t := range tips {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}
