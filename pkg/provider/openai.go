package provider

import (
	"context"
	"net/http"
)

// openaiTransport speaks to the OpenAI API directly.
type openaiTransport struct {
	cfg    Config
	client *http.Client
}

func newOpenAI(cfg Config) *openaiTransport {
	return &openaiTransport{cfg: cfg, client: &http.Client{}}
}

func (t *openaiTransport) Name() string {
	return string(KindOpenAI)
}

func (t *openaiTransport) Model() string {
	return t.cfg.Model
}

func (t *openaiTransport) Invoke(ctx context.Context, req Request) (string, error) {
	header := http.Header{}
	header.Set("Authorization", "Bearer "+t.cfg.APIKey)

	return completion(ctx, t.client, t.cfg.BaseURL, header, chatRequest{
		Model:       t.cfg.Model,
		Messages:    buildMessages(req),
		MaxTokens:   resolveMaxTokens(t.cfg, req),
		Temperature: t.cfg.Temperature,
	})
}
