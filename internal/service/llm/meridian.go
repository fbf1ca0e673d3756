package llm

import (
	"context"
	"fmt"
	"strings"

	llmprovider "github.com/haowjy/meridian-llm-go"
)

// ProviderGenerator adapts a meridian-llm-go provider (Anthropic,
// OpenRouter) to TextGenerator.
type ProviderGenerator struct {
	provider llmprovider.Provider
}

// NewProviderGenerator wraps provider
func NewProviderGenerator(provider llmprovider.Provider) *ProviderGenerator {
	return &ProviderGenerator{provider: provider}
}

// Generate sends the prompt as a single user message and joins the text blocks
func (g *ProviderGenerator) Generate(ctx context.Context, model, prompt string) (string, error) {
	text := prompt
	req := &llmprovider.GenerateRequest{
		Messages: []llmprovider.Message{
			{
				Role: "user",
				Blocks: []*llmprovider.Block{
					{BlockType: "text", Sequence: 0, TextContent: &text},
				},
			},
		},
		Model: model,
	}

	resp, err := g.provider.GenerateResponse(ctx, req)
	if err != nil {
		return "", fmt.Errorf("%s generate failed: %w", g.provider.Name().String(), err)
	}

	var out strings.Builder
	for _, block := range resp.Blocks {
		if block.BlockType == "text" && block.TextContent != nil {
			out.WriteString(*block.TextContent)
		}
	}
	return out.String(), nil
}
