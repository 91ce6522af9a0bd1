package inference

import (
	"cmp"
	"context"
	"fmt"

	"github.com/openai/openai-go/v3"
	"google.golang.org/genai"
)

type GeminiInferencer struct {
	client *genai.Client
	apiKey string
	model  string
}

// NewGeminiInferencer creates an inferencer backed by the Gemini API.
func NewGeminiInferencer(ctx context.Context, apiKey string, model string) (*GeminiInferencer, error) {
	if model == "" {
		model = "gemini-2.5-flash"
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	return &GeminiInferencer{
		client: client,
		apiKey: apiKey,
		model:  model,
	}, nil
}

func (o *GeminiInferencer) Name() string  { return "gemini" }
func (o *GeminiInferencer) Model() string { return o.model }

// Infer maps the OpenAI-style params onto a Gemini generate call. Only the
// model, token limit and temperature carry over; replies are always JSON.
func (o *GeminiInferencer) Infer(ctx context.Context, params *openai.ChatCompletionNewParams, system, user string) (string, error) {
	if params == nil {
		params = new(openai.ChatCompletionNewParams)
	}
	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
		ResponseMIMEType:  "application/json",
		MaxOutputTokens:   int32(cmp.Or(params.MaxCompletionTokens.Value, 4096)),
	}
	if t := params.Temperature.Value; t > 0 {
		config.Temperature = genai.Ptr(float32(t))
	}

	result, err := o.client.Models.GenerateContent(
		ctx,
		cmp.Or(params.Model, o.model),
		genai.Text(user),
		config,
	)
	if err != nil {
		return "", fmt.Errorf("gemini inference error: %w", err)
	}

	return result.Text(), nil
}

// Verify checks that the result carries a JSON object.
func (o *GeminiInferencer) Verify(ctx context.Context, result string) (bool, error) {
	return verifyJSON(result)
}
