package inference

// NewKimiInferencer targets the Kimi (Moonshot AI) coding endpoint.
func NewKimiInferencer(apiKey string, model string) *OpenAIInferencer {
	if model == "" {
		model = "kimi-for-coding"
	}
	return newCompatible("kimi", "https://api.kimi.com/coding/v1", apiKey, model, 4096)
}
