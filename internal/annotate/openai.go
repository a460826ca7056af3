package annotate

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/krizmartin/profile-matcher/internal/report"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const defaultOpenAIModel = openai.ChatModelGPT4_1Mini

// OpenAIProvider summarizes report entries through the OpenAI chat API.
type OpenAIProvider struct {
	client *openai.Client
	model  openai.ChatModel
}

func NewOpenAIProvider(apiKey, model string) (*OpenAIProvider, error) {
	if apiKey == "" {
		return nil, errors.New("OpenAI API key is required")
	}
	m := defaultOpenAIModel
	if model != "" {
		m = openai.ChatModel(model)
	}
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &OpenAIProvider{
		client: &client,
		model:  m,
	}, nil
}

func (p *OpenAIProvider) Name() string {
	return string(p.model)
}

func (p *OpenAIProvider) Summarize(ctx context.Context, entry report.Entry) (string, error) {
	resp, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: p.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			{
				OfSystem: &openai.ChatCompletionSystemMessageParam{
					Content: openai.ChatCompletionSystemMessageParamContentUnion{
						OfString: openai.String(summaryPrompt),
					},
				},
			},
			{
				OfUser: &openai.ChatCompletionUserMessageParam{
					Content: openai.ChatCompletionUserMessageParamContentUnion{
						OfString: openai.String(buildEvidence(entry)),
					},
				},
			},
		},
		MaxTokens: openai.Int(summaryMaxTokens),
	})
	if err != nil {
		return "", fmt.Errorf("OpenAI API error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no response from OpenAI")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
