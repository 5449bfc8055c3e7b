package transcribe

import (
	"context"
	"errors"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/maastricht-university/interview-coach/clients"
	"github.com/maastricht-university/interview-coach/failure"
)

// OpenAIWhisper sends the wav to an OpenAI-compatible transcription endpoint.
type OpenAIWhisper struct {
	cli      *goopenai.Client
	model    string
	language string
}

func NewOpenAIWhisper(apiKey, baseURL, model, language string) (*OpenAIWhisper, error) {
	if apiKey == "" {
		return nil, errors.New("openai whisper: missing API key")
	}
	cfg := goopenai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if model == "" {
		model = goopenai.Whisper1
	}
	return &OpenAIWhisper{cli: goopenai.NewClientWithConfig(cfg), model: model, language: language}, nil
}

func (o *OpenAIWhisper) Transcribe(ctx context.Context, wavPath string) (string, error) {
	resp, err := o.cli.CreateTranscription(ctx, goopenai.AudioRequest{
		Model:    o.model,
		FilePath: wavPath,
		Language: o.language,
		Format:   goopenai.AudioResponseFormatJSON,
	})
	if err != nil {
		return "", failure.Wrap(failure.Transcription, err)
	}
	return Clean(resp.Text), nil
}

// Service uses a self-hosted speech-to-text service exposing /transcribe.
type Service struct {
	http *clients.HTTP
	url  string
}

func NewService(h *clients.HTTP, url string) *Service {
	return &Service{http: h, url: url}
}

func (s *Service) Transcribe(ctx context.Context, wavPath string) (string, error) {
	resp, err := s.http.ASR(ctx, s.url, wavPath)
	if err != nil {
		return "", failure.Wrap(failure.Transcription, err)
	}
	return Clean(resp.Transcript()), nil
}
