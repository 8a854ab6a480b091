package provider

import (
	"context"
	"net/http"
)

// Gateway authentication headers.
const (
	headerGatewayAPIKey     = "x-portkey-api-key"
	headerGatewayVirtualKey = "x-portkey-virtual-key"
)

// gatewayTransport speaks to a Portkey-style model gateway using the
// OpenAI-compatible chat completions surface.
type gatewayTransport struct {
	cfg    Config
	client *http.Client
}

func newGateway(cfg Config) *gatewayTransport {
	return &gatewayTransport{cfg: cfg, client: &http.Client{}}
}

func (t *gatewayTransport) Name() string {
	return string(KindGateway)
}

func (t *gatewayTransport) Model() string {
	return t.cfg.Model
}

func (t *gatewayTransport) Invoke(ctx context.Context, req Request) (string, error) {
	header := http.Header{}
	header.Set(headerGatewayAPIKey, t.cfg.APIKey)
	if t.cfg.VirtualKey != "" {
		header.Set(headerGatewayVirtualKey, t.cfg.VirtualKey)
	}

	return completion(ctx, t.client, t.cfg.BaseURL, header, chatRequest{
		Model:       t.cfg.Model,
		Messages:    buildMessages(req),
		MaxTokens:   resolveMaxTokens(t.cfg, req),
		Temperature: t.cfg.Temperature,
	})
}
