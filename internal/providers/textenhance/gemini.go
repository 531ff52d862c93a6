package textenhance

import (
	"context"
	"errors"
	"strings"
	"time"

	"google.golang.org/genai"
)

const (
	geminiDefaultModel   = "gemini-2.5-flash"
	geminiDefaultTimeout = 20 * time.Second
	geminiTemperature    = 0.7
	geminiTopP           = 0.95
)

// Generator produces text for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GenAIGenerator calls the Gemini API through the genai SDK.
type GenAIGenerator struct {
	client *genai.Client
	model  string
}

func NewGenAIGenerator(ctx context.Context, apiKey, model string) (*GenAIGenerator, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}
	model = strings.TrimSpace(model)
	if model == "" {
		model = geminiDefaultModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}
	return &GenAIGenerator{client: client, model: model}, nil
}

func (g *GenAIGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model,
		[]*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)},
		&genai.GenerateContentConfig{
			Temperature: genai.Ptr[float32](geminiTemperature),
			TopP:        genai.Ptr[float32](geminiTopP),
		},
	)
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}

type GeminiOptions struct {
	Generator  Generator
	Timeout    time.Duration
	Fallback   Enhancer
	OnFallback func(reason string, err error)
}

// GeminiEnhancer rewrites descriptions with Gemini and defers to Fallback on any
// failure.
type GeminiEnhancer struct {
	gen        Generator
	timeout    time.Duration
	fallback   Enhancer
	onFallback func(reason string, err error)
}

func NewGeminiEnhancer(opts GeminiOptions) (*GeminiEnhancer, error) {
	if opts.Generator == nil {
		return nil, errors.New("gemini generator is required")
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = geminiDefaultTimeout
	}
	fallback := opts.Fallback
	if fallback == nil {
		fallback = NewPassthroughEnhancer()
	}
	return &GeminiEnhancer{gen: opts.Generator, timeout: timeout, fallback: fallback, onFallback: opts.OnFallback}, nil
}

func (g *GeminiEnhancer) Enhance(ctx context.Context, req Request) (*Result, error) {
	if strings.TrimSpace(req.Title) == "" && strings.TrimSpace(req.Description) == "" {
		return g.useFallback(ctx, req, "empty_draft", nil)
	}
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	text, err := g.gen.Generate(ctx, buildPrompt(req))
	if err != nil {
		return g.useFallback(ctx, req, "generate", err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return g.useFallback(ctx, req, "empty_response", nil)
	}
	return &Result{Text: text, Enhanced: true, Provider: geminiProviderName}, nil
}

func (g *GeminiEnhancer) useFallback(ctx context.Context, req Request, reason string, cause error) (*Result, error) {
	if g.onFallback != nil {
		g.onFallback(reason, cause)
	}
	res, err := g.fallback.Enhance(context.WithoutCancel(ctx), req)
	if err != nil || res == nil {
		res = &Result{Text: req.Description, Provider: passthroughProviderName}
	}
	res.FallbackReason = reason
	return res, nil
}

var _ Enhancer = (*GeminiEnhancer)(nil)
