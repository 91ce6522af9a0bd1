package inference

// NewGrokInferencer targets xAI's OpenAI-compatible API.
func NewGrokInferencer(apiKey string, model string) *OpenAIInferencer {
	if model == "" {
		model = "grok-4-fast-reasoning"
	}
	return newCompatible("grok", "https://api.x.ai/v1", apiKey, model, 4096)
}
