package provider

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type generatorStub struct {
	prompt string
	text   string
	err    error
}

func (g *generatorStub) Generate(_ context.Context, prompt string) (string, error) {
	g.prompt = prompt
	return g.text, g.err
}

func TestGeminiRewriter_Rewrite(t *testing.T) {
	stub := &generatorStub{text: "  Hi Jane,\nshort and sweet.\n"}
	rewriter := NewRewriterWithGenerator(stub)

	got, err := rewriter.Rewrite(context.Background(), "Quick intro", "Hi Jane, long body", "make it shorter")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Hi Jane,\nshort and sweet." {
		t.Fatalf("unexpected rewrite: %q", got)
	}
	if !strings.Contains(stub.prompt, "Instructions: make it shorter") || !strings.Contains(stub.prompt, "Hi Jane, long body") {
		t.Fatalf("prompt missing content: %q", stub.prompt)
	}
	if err := rewriter.Close(); err != nil {
		t.Fatalf("close without client: %v", err)
	}
}

func TestGeminiRewriter_Errors(t *testing.T) {
	tests := map[string]*generatorStub{
		"generator error": {err: errors.New("quota exceeded")},
		"empty response":  {text: "   "},
	}
	for name, stub := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := NewRewriterWithGenerator(stub).Rewrite(context.Background(), "s", "c", "p"); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestNewGeminiRewriter_RequiresKey(t *testing.T) {
	if _, err := NewGeminiRewriter(context.Background(), " ", ""); err == nil {
		t.Fatalf("expected error for empty api key")
	}
}
