// Package ai generates narrative summaries of investigation results with
// the OpenAI chat API. The narrator is optional: without an API key the
// dashboard simply renders the raw insights.
package ai

import (
	"context"
	"os"
	"strings"

	"github.com/myrjola/finsight/internal/errors"
	"github.com/sashabaranov/go-openai"
)

type Client struct {
	client  *openai.Client
	enabled bool
}

func NewClient() Client {
	apiKey := os.Getenv("OPENAI_API_KEY")
	return Client{
		client:  openai.NewClient(apiKey),
		enabled: apiKey != "",
	}
}

// Enabled reports whether an API key was configured.
func (c *Client) Enabled() bool {
	return c.enabled
}

const MaxTokens = 4096

const narratorPrompt = `You are a personal finance analyst. Summarize the
given findings about the user's spending in two or three plain sentences.
Be concrete about amounts and categories. Do not give investment advice.`

// Narrate turns a list of findings into a short narrative summary.
func (c *Client) Narrate(ctx context.Context, findings []string) (string, error) {
	completion, err := c.SyncCompletion(ctx, []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: narratorPrompt},
		{Role: openai.ChatMessageRoleUser, Content: strings.Join(findings, "\n")},
	})
	if err != nil {
		return "", errors.Wrap(err, "narrate findings")
	}
	if len(completion.Choices) == 0 {
		return "", errors.New("completion returned no choices")
	}
	return completion.Choices[0].Message.Content, nil
}

func (c *Client) SyncCompletion(
	ctx context.Context,
	messages []openai.ChatCompletionMessage,
) (openai.ChatCompletionResponse, error) {
	completion, err := c.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{ //nolint:exhaustruct // this is better for readability
			Model:     openai.GPT3Dot5Turbo1106,
			MaxTokens: MaxTokens,
			Messages:  messages,
		},
	)
	if err != nil {
		return openai.ChatCompletionResponse{}, errors.Wrap(err, "create chat completion")
	}
	return completion, nil
}

func (c *Client) StreamCompletion(
	ctx context.Context,
	messages []openai.ChatCompletionMessage,
) (*openai.ChatCompletionStream, error) {
	completion, err := c.client.CreateChatCompletionStream(
		ctx,
		openai.ChatCompletionRequest{ //nolint:exhaustruct // this is better for readability
			Model:    openai.GPT3Dot5Turbo,
			Messages: messages,
		},
	)
	if err != nil {
		return nil, errors.Wrap(err, "create chat completion stream")
	}
	return completion, nil
}
