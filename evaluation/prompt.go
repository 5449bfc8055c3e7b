package evaluation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Input is everything the model sees about one answer. Emotion is the
// interview descriptor of the dominant emotion, not the raw label.
type Input struct {
	Question   string
	Domain     string
	Experience string
	Transcript string
	Emotion    string
	Posture    json.RawMessage
	Facial     json.RawMessage
}

const notAvailable = "not available"

// BuildPrompt renders the single evaluation prompt for in.
func BuildPrompt(in Input) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are coaching a candidate for a %s role at %s experience level.\n",
		orDefault(in.Domain, "general"), orDefault(in.Experience, "unspecified"))
	fmt.Fprintf(&b, "Interview question: %q\n", orDefault(in.Question, notAvailable))
	fmt.Fprintf(&b, "Candidate's transcribed answer: %q\n\n", in.Transcript)

	b.WriteString("Non-verbal signals captured while answering:\n")
	fmt.Fprintf(&b, "- Vocal tone (from the transcript): %s\n", orDefault(in.Emotion, notAvailable))
	fmt.Fprintf(&b, "- Facial expression telemetry: %s\n", telemetry(in.Facial))
	fmt.Fprintf(&b, "- Posture telemetry: %s\n\n", telemetry(in.Posture))

	b.WriteString(`Evaluate the answer and fill in every field:
1. evaluation.ratings: score clarity, relevance and completeness each as an integer from 1 to 5, with a one-sentence justification.
2. evaluation.toneAnalysis: compare the vocal tone above with the facial expression telemetry and say whether they agree.
3. evaluation.strengths: the strongest aspect of the answer's content.
4. evaluation.improvementTips: at most 5 specific, actionable tips, most important first.
5. evaluation.suggestedAnswer: a stronger version of the answer in the candidate's voice.
6. holisticFeedback.insight: one insight that combines the verbal answer with the posture and facial signals.
7. holisticFeedback.strength: the single strongest non-verbal behaviour.
8. holisticFeedback.improvementTip: the single non-verbal change with the highest impact.
If a telemetry source is not available, say so instead of inventing observations.

Respond with only a JSON object of this exact shape, with no prose before or after it and no markdown code fences:
`)
	b.WriteString(schemaExample)
	return b.String()
}

const schemaExample = `{
  "evaluation": {
    "ratings": {
      "clarity": {"score": 1, "justification": ""},
      "relevance": {"score": 1, "justification": ""},
      "completeness": {"score": 1, "justification": ""}
    },
    "toneAnalysis": "",
    "strengths": "",
    "improvementTips": [""],
    "suggestedAnswer": ""
  },
  "holisticFeedback": {
    "insight": "",
    "strength": "",
    "improvementTip": ""
  }
}
`

func telemetry(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return notAvailable
	}
	var compact bytes.Buffer
	if err := json.Compact(&compact, raw); err != nil {
		return notAvailable
	}
	return compact.String()
}

func orDefault(s, def string) string {
	if s = strings.TrimSpace(s); s == "" {
		return def
	}
	return s
}
