package ai

import (
	"fmt"
	"os"

	"github.com/Anajrajeev/AutoScrum/pkg/domain/ai"
)

func NewProvider(providerName string, modelName string) (ai.Provider, error) {
	switch providerName {
	case "ollama", "":
		return NewOllamaProvider(modelName), nil
	case "mock":
		return &MockProvider{Model: modelName}, nil
	case "openai":
		apiKey := os.Getenv("OPENAI_API_KEY")
		return NewOpenAIProvider(modelName, apiKey), nil
	case "anthropic":
		apiKey := os.Getenv("ANTHROPIC_API_KEY")
		return NewAnthropicProvider(modelName, apiKey), nil
	default:
		return nil, fmt.Errorf("unsupported AI provider: %s", providerName)
	}
}

// GetDefaultProvider returns a provider based on environment variables or
// workspace config defaults.
func GetDefaultProvider(providerName, modelName string) (ai.Provider, error) {
	envProvider := os.Getenv("AUTOSCRUM_AI_PROVIDER")
	envModel := os.Getenv("AUTOSCRUM_AI_MODEL")

	if envProvider != "" {
		providerName = envProvider
	}
	if envModel != "" {
		modelName = envModel
	}

	return NewProvider(providerName, modelName)
}
