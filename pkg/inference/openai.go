package inference

import (
	"cmp"
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// LocalBaseURL is where an OpenAI-compatible server (LM Studio, llama.cpp) listens by default.
const LocalBaseURL = "http://localhost:1234/v1"

// OpenAIInferencer implements Inferencer against OpenAI or any
// OpenAI-compatible chat completions API.
type OpenAIInferencer struct {
	client  *openai.Client
	name    string
	apiKey  string
	baseURL string
	model   string

	maxTokens int64
}

// NewOpenAIInferencer creates a new inferencer instance using OpenAI client.
func NewOpenAIInferencer(apiKey string, model string) *OpenAIInferencer {
	return newCompatible("openai", "", apiKey, model, 4096*4)
}

func newCompatible(name, baseURL, apiKey, model string, maxTokens int64) *OpenAIInferencer {
	o := &OpenAIInferencer{
		name:      name,
		apiKey:    apiKey,
		model:     model,
		maxTokens: maxTokens,
	}
	o.ChangeBaseURL(baseURL)
	return o
}

func (o *OpenAIInferencer) ChangeBaseURL(baseURL string) {
	opts := []option.RequestOption{option.WithAPIKey(o.apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	client := openai.NewClient(opts...)
	o.client = &client
	o.baseURL = baseURL
}

func (o *OpenAIInferencer) SetModel(model string) {
	o.model = model
}

func (o *OpenAIInferencer) Name() string  { return o.name }
func (o *OpenAIInferencer) Model() string { return o.model }

// Infer sends the prompts to the chat completion endpoint and returns the
// first choice. Zero-valued params fall back to the inferencer defaults.
func (o *OpenAIInferencer) Infer(ctx context.Context, params *openai.ChatCompletionNewParams, system, user string) (string, error) {
	var p openai.ChatCompletionNewParams
	if params != nil {
		p = *params
	}
	p.Model = cmp.Or(p.Model, o.model)
	p.Messages = []openai.ChatCompletionMessageParamUnion{
		{
			OfSystem: &openai.ChatCompletionSystemMessageParam{
				Role: "system",
				Content: openai.ChatCompletionSystemMessageParamContentUnion{
					OfString: openai.String(system),
				},
			},
		},
		{
			OfUser: &openai.ChatCompletionUserMessageParam{
				Role: "user",
				Content: openai.ChatCompletionUserMessageParamContentUnion{
					OfString: openai.String(user),
				},
			},
		},
	}

	p.MaxCompletionTokens = openai.Int(cmp.Or(p.MaxCompletionTokens.Value, o.maxTokens))
	p.Temperature = openai.Float(cmp.Or(p.Temperature.Value, 0.3))
	p.TopP = openai.Float(cmp.Or(p.TopP.Value, 1.0))

	resp, err := o.client.Chat.Completions.New(ctx, p)
	if err != nil {
		return "", fmt.Errorf("%s inference error: %w", o.name, err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no choices returned")
	}
	if resp.Choices[0].Message.Content == "" {
		return "", errors.New("empty completion content")
	}

	return resp.Choices[0].Message.Content, nil
}

// Verify checks that the result carries a JSON object.
func (o *OpenAIInferencer) Verify(ctx context.Context, result string) (bool, error) {
	return verifyJSON(result)
}
