package provider

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const defaultGeminiModel = "gemini-1.5-flash"

// TextGenerator produces text for a prompt.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeminiRewriter rewrites outreach emails with a Gemini model.
type GeminiRewriter struct {
	client    *genai.Client
	generator TextGenerator
}

// NewGeminiRewriter opens a Gemini client for model using apiKey.
func NewGeminiRewriter(ctx context.Context, apiKey, model string) (*GeminiRewriter, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("gemini api key must not be empty")
	}
	if strings.TrimSpace(model) == "" {
		model = defaultGeminiModel
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	gm := client.GenerativeModel(model)
	gm.SetTemperature(0.4)
	return &GeminiRewriter{client: client, generator: geminiModel{model: gm}}, nil
}

// NewRewriterWithGenerator builds a rewriter around any text generator.
func NewRewriterWithGenerator(generator TextGenerator) *GeminiRewriter {
	return &GeminiRewriter{generator: generator}
}

// Rewrite returns content rewritten according to instructions. The subject is
// passed along as context only.
func (r *GeminiRewriter) Rewrite(ctx context.Context, subject, content, instructions string) (string, error) {
	prompt := strings.Join([]string{
		"Rewrite the following B2B outreach email body.",
		"Keep it under 180 words, keep the greeting and signature, and return only the email body.",
		"Instructions: " + strings.TrimSpace(instructions),
		"Subject: " + subject,
		"Body:",
		content,
	}, "\n")

	text, err := r.generator.Generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("gemini rewrite: %w", err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", errors.New("gemini rewrite: empty response")
	}
	return text, nil
}

// Close releases the underlying client.
func (r *GeminiRewriter) Close() error {
	if r.client == nil {
		return nil
	}
	return r.client.Close()
}

type geminiModel struct {
	model *genai.GenerativeModel
}

func (m geminiModel) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := m.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", err
	}
	var b strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				b.WriteString(string(text))
			}
		}
		if b.Len() > 0 {
			break
		}
	}
	return b.String(), nil
}
