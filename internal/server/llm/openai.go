package llm

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"

	"github.com/dkrylov/medvault/internal/common"
	sc "github.com/dkrylov/medvault/internal/server/config"
)

type OpenAICompleter struct {
	client *openai.Client
	model  string
}

func NewOpenAICompleter(cfg *sc.Config) *OpenAICompleter {
	return &OpenAICompleter{
		client: openai.NewClient(cfg.OpenAIAPIKey),
		model:  cfg.OpenAIModel,
	}
}

func (c *OpenAICompleter) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("%w: chat completion: %v", common.ErrorExternalService, err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: chat completion returned no choices", common.ErrorExternalService)
	}

	return resp.Choices[0].Message.Content, nil
}
