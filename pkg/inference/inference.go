package inference

import (
	"context"
	"errors"
	"strings"

	"github.com/openai/openai-go/v3"
)

// Inferencer runs a single system+user completion against a model provider.
type Inferencer interface {
	Infer(ctx context.Context, params *openai.ChatCompletionNewParams, system, user string) (string, error)
	Verify(ctx context.Context, result string) (bool, error)
}

var (
	ErrEmptyResult = errors.New("empty result")
	ErrNotJSON     = errors.New("result is not a JSON object")
)

// verifyJSON accepts a reply that holds something shaped like a JSON object.
// Syntax is left to the caller, which may ask the model for a repair.
func verifyJSON(result string) (bool, error) {
	result = strings.TrimSpace(result)
	if result == "" {
		return false, ErrEmptyResult
	}
	start, end := strings.Index(result, "{"), strings.LastIndex(result, "}")
	if start == -1 || end < start {
		return false, ErrNotJSON
	}
	return true, nil
}
