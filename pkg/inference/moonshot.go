package inference

// NewMoonshotInferencer targets Moonshot AI's OpenAI-compatible API.
func NewMoonshotInferencer(apiKey string, model string) *OpenAIInferencer {
	if model == "" {
		model = "kimi-k2-5"
	}
	return newCompatible("moonshot", "https://api.moonshot.ai/v1", apiKey, model, 4096)
}
