package textenhance

import (
	"context"
	"strings"
)

const (
	geminiProviderName      = "gemini"
	passthroughProviderName = "passthrough"
)

// Request is a listing draft to improve.
type Request struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Result is the improved text. Enhanced is false when Text is the untouched draft.
type Result struct {
	Text           string `json:"text"`
	Enhanced       bool   `json:"enhanced"`
	Provider       string `json:"provider"`
	FallbackReason string `json:"fallback_reason,omitempty"`
}

// Enhancer improves listing descriptions. Implementations never lose the draft: on
// failure they return it unchanged.
type Enhancer interface {
	Enhance(ctx context.Context, req Request) (*Result, error)
}

// PassthroughEnhancer returns the draft as is.
type PassthroughEnhancer struct{}

func NewPassthroughEnhancer() *PassthroughEnhancer {
	return &PassthroughEnhancer{}
}

func (PassthroughEnhancer) Enhance(_ context.Context, req Request) (*Result, error) {
	return &Result{Text: req.Description, Provider: passthroughProviderName}, nil
}

var _ Enhancer = (*PassthroughEnhancer)(nil)

func buildPrompt(req Request) string {
	var b strings.Builder
	b.WriteString("Melhore a seguinte descrição de serviço para um marketplace de profissionais locais.\n")
	b.WriteString("Torne-a mais profissional, detalhada e atraente para clientes, destacando os benefícios.\n\n")
	b.WriteString("Título do Serviço: ")
	b.WriteString(strings.TrimSpace(req.Title))
	b.WriteString("\nDescrição Básica: ")
	b.WriteString(strings.TrimSpace(req.Description))
	b.WriteString("\n\nRetorne apenas o texto melhorado, sem introduções ou explicações.")
	return b.String()
}
