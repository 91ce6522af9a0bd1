package insights

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/openai/openai-go/v3"

	"insights/pkg/inference"
	"insights/pkg/schema"
	"insights/pkg/utils"
)

// Analyzer turns a product URL into product attributes. It is the only place
// product knowledge comes from; everything else in the app presents its answer.
type Analyzer interface {
	Process(ctx context.Context, url string) (schema.Analysis, error)
}

// LLMAnalyzer asks an inference provider about the product behind a URL. It
// sends only the URL; the product page itself is never fetched.
type LLMAnalyzer struct {
	inf inference.Inferencer

	// StructuredOutputs attaches the JSON schema response format. Providers
	// without json_schema support should turn it off.
	StructuredOutputs bool
	MaxTokens         int64
}

func NewLLMAnalyzer(inf inference.Inferencer) *LLMAnalyzer {
	return &LLMAnalyzer{
		inf:               inf,
		StructuredOutputs: true,
		MaxTokens:         2048,
	}
}

func (a *LLMAnalyzer) Process(ctx context.Context, url string) (schema.Analysis, error) {
	user := "Product URL: " + url

	if log.GetLevel() <= log.DebugLevel {
		if tokens, err := utils.NumTokens(analyzePrompt + user); err == nil {
			log.Debug("analysing product", "url", url, "tokens", tokens)
		}
	}

	params := &openai.ChatCompletionNewParams{
		MaxCompletionTokens: openai.Int(a.MaxTokens),
	}
	if a.StructuredOutputs {
		params.ResponseFormat = schema.StructuredOutputsResponseFormat()
	}

	out, err := a.inf.Infer(ctx, params, analyzePrompt, user)
	if err != nil {
		return schema.Analysis{}, fmt.Errorf("analyse %s: %w", url, err)
	}

	result, err := a.parse(ctx, out)
	if err != nil {
		log.Debug("unparseable model output", "url", url, "output", utils.LimitStr(out, 500))
		return schema.Analysis{}, fmt.Errorf("analyse %s: %w", url, err)
	}
	if log.GetLevel() <= log.DebugLevel {
		log.Debug("parsed analysis", "url", url, "result", utils.PrettyJSON(result))
	}
	return result, nil
}

// parse decodes the model reply, asking the model once to repair it when it
// is not valid JSON.
func (a *LLMAnalyzer) parse(ctx context.Context, out string) (schema.Analysis, error) {
	if ok, err := a.inf.Verify(ctx, out); !ok {
		return schema.Analysis{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	var result schema.Analysis
	cleaned := utils.CleanJSON(out)
	if err := json.Unmarshal([]byte(cleaned), &result); err != nil {
		log.Warn("model returned invalid JSON, asking for a fix", "error", err)
		fixed, ferr := a.inf.Infer(ctx, nil, fixJSONPrompt, cleaned)
		if ferr != nil {
			return schema.Analysis{}, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		result = schema.Analysis{}
		if err := json.Unmarshal([]byte(utils.CleanJSON(fixed)), &result); err != nil {
			return schema.Analysis{}, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
	}

	if err := result.Validate(); err != nil {
		return schema.Analysis{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return result, nil
}
