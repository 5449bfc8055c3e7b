package orchestrator

import (
	"encoding/json"
	"io"

	"github.com/maastricht-university/interview-coach/evaluation"
)

// Submission is one recorded answer. It belongs to a single request.
type Submission struct {
	RequestID  string
	Audio      io.Reader
	AudioHint  string // upload filename or content type
	Question   string
	Domain     string
	Experience string
	Posture    json.RawMessage // optional, passed through untouched
	Facial     json.RawMessage // optional, passed through untouched
}

type State string

const (
	StateStart        State = "START"
	StateMaterialized State = "MATERIALIZED"
	StateNormalized   State = "NORMALIZED"
	StateTranscribed  State = "TRANSCRIBED"
	StateNoSpeech     State = "NO_SPEECH"
	StateClassified   State = "CLASSIFIED"
	StateSynthesized  State = "SYNTHESIZED"
	StateDone         State = "DONE"
	StateFailed       State = "FAILED"
)

type Telemetry struct {
	Data json.RawMessage `json:"data"`
}

type EmotionScores struct {
	Data map[string]float64 `json:"data"`
}

// Answer is the response body when speech was detected.
type Answer struct {
	Transcription          string                      `json:"transcription"`
	PostureAnalysis        Telemetry                   `json:"postureAnalysis"`
	EmotionAnalysis        Telemetry                   `json:"emotionAnalysis"`
	DominantEmotion        string                      `json:"dominantEmotion"`
	TextualEmotionAnalysis EmotionScores               `json:"textualEmotionAnalysis"`
	Evaluation             evaluation.Evaluation       `json:"evaluation"`
	HolisticFeedback       evaluation.HolisticFeedback `json:"holisticFeedback"`
	Question               string                      `json:"question"`
}

const NoSpeechMessage = "No speech detected."

// NoSpeech is the response body when the transcript came back empty.
type NoSpeech struct {
	SkipEvaluation bool   `json:"skipEvaluation"`
	Message        string `json:"message"`
}

// Result holds exactly one of NoSpeech or Answer.
type Result struct {
	State    State
	NoSpeech *NoSpeech
	Answer   *Answer
}

// Body is the value to serialize as the response.
func (r *Result) Body() any {
	if r.NoSpeech != nil {
		return r.NoSpeech
	}
	return r.Answer
}
