package clients

import (
	"context"
	"errors"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"
)

const evaluatorInstructions = "You are an experienced interview coach. Reply with a single JSON object that matches the provided schema."

type OpenAIGeneratorConfig struct {
	APIKey          string
	BaseURL         string
	Model           string
	MaxOutputTokens int
}

// OpenAIGenerator asks a Responses API model for strict JSON output.
type OpenAIGenerator struct {
	client          *openai.Client
	model           string
	maxOutputTokens int
}

func NewOpenAIGenerator(cfg OpenAIGeneratorConfig) (*OpenAIGenerator, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("openai: missing API key (set evaluation.api_key or OPENAI_API_KEY)")
	}
	if cfg.Model == "" {
		return nil, errors.New("openai: model is empty")
	}
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey), option.WithMaxRetries(2)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	client := openai.NewClient(opts...)
	return &OpenAIGenerator{client: &client, model: cfg.Model, maxOutputTokens: cfg.MaxOutputTokens}, nil
}

func (g *OpenAIGenerator) Generate(ctx context.Context, prompt string, schema map[string]any) (string, error) {
	format := responses.ResponseFormatTextConfigUnionParam{
		OfJSONSchema: &responses.ResponseFormatTextJSONSchemaConfigParam{
			Name:        "InterviewEvaluation",
			Schema:      schema,
			Strict:      openai.Bool(true),
			Description: openai.String("Structured interview answer evaluation"),
			Type:        "json_schema",
		},
	}

	params := responses.ResponseNewParams{
		Model:        g.model,
		Instructions: openai.String(evaluatorInstructions),
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: []responses.ResponseInputItemUnionParam{
				responses.ResponseInputItemParamOfMessage(prompt, responses.EasyInputMessageRoleUser),
			},
		},
		Text: responses.ResponseTextConfigParam{
			Format: format,
		},
	}
	if g.maxOutputTokens > 0 {
		params.MaxOutputTokens = openai.Int(int64(g.maxOutputTokens))
	}

	resp, err := g.client.Responses.New(ctx, params)
	if err != nil {
		return "", err
	}
	return resp.OutputText(), nil
}
