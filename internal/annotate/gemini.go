package annotate

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/krizmartin/profile-matcher/internal/report"
	"google.golang.org/genai"
)

const defaultGeminiModel = "gemini-2.5-flash"

// GeminiProvider summarizes report entries through the Gemini API.
type GeminiProvider struct {
	client *genai.Client
	model  string
}

func NewGeminiProvider(ctx context.Context, apiKey, model string) (*GeminiProvider, error) {
	if apiKey == "" {
		return nil, errors.New("gemini API key is required")
	}
	if model == "" {
		model = defaultGeminiModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiProvider{
		client: client,
		model:  model,
	}, nil
}

func (p *GeminiProvider) Name() string {
	return p.model
}

func (p *GeminiProvider) Summarize(ctx context.Context, entry report.Entry) (string, error) {
	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: summaryPrompt + "\n\n" + buildEvidence(entry)},
			},
		},
	}

	result, err := p.client.Models.GenerateContent(ctx, p.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("gemini API error: %w", err)
	}

	content := strings.TrimSpace(result.Text())
	if content == "" {
		return "", errors.New("no response from Gemini")
	}
	return content, nil
}
