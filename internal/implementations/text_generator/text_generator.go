package textgenerator

import (
	"context"
	"fmt"
	e "medbot/internal/core/domain/errors"
	"medbot/internal/core/domain/textgen"
	"medbot/internal/core/domain/user"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const MAX_TOKENS = 256

const instructions = "Give a warm, short and human-like response (two sentences at most, plain text) to:\n"

type Anthropic struct {
	client *anthropic.Client
	model  string
}

func NewAnthropic(apiKey string, model string, opts ...option.RequestOption) *Anthropic {
	client := anthropic.NewClient(append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)...)
	return &Anthropic{client: &client, model: model}
}

func (g *Anthropic) Generate(ctx context.Context, request textgen.Request) (string, error) {
	response, err := g.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(g.model),
		MaxTokens: MAX_TOKENS,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(instructions + request.Prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic messages call failed: %w", err)
	}

	var text strings.Builder
	for _, block := range response.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	return strings.TrimSpace(text.String()), nil
}

type allowList struct {
	allowed map[user.ID]struct{}
	inner   textgen.Generator
}

// WithAllowList restricts inner to the listed owners. An empty list allows everyone.
func WithAllowList(allowed []int64, inner textgen.Generator) textgen.Generator {
	if inner == nil {
		panic(e.NewNilArgumentError("inner"))
	}
	if len(allowed) == 0 {
		return inner
	}
	set := make(map[user.ID]struct{}, len(allowed))
	for _, id := range allowed {
		set[user.ID(id)] = struct{}{}
	}
	return &allowList{allowed: set, inner: inner}
}

func (g *allowList) Generate(ctx context.Context, request textgen.Request) (string, error) {
	if _, ok := g.allowed[request.OwnerID]; !ok {
		return "", textgen.ErrNotAllowed
	}
	return g.inner.Generate(ctx, request)
}

// Disabled is used when no API key is configured.
type Disabled struct{}

func (Disabled) Generate(ctx context.Context, request textgen.Request) (string, error) {
	return "", textgen.ErrNotAllowed
}
