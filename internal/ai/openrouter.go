package ai

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	appErr "github.com/xxxsen/resumatch/internal/pkg/errors"
)

const defaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"

type openrouterConfig struct {
	APIKey      string `json:"api_key"`
	BaseURL     string `json:"base_url"`
	HTTPReferer string `json:"http_referer"`
	XTitle      string `json:"x_title"`
}

type openrouterProvider struct {
	apiKey      string
	baseURL     string
	httpReferer string
	xTitle      string
	client      *http.Client
}

func (p *openrouterProvider) Name() string {
	return "openrouter"
}

func (p *openrouterProvider) Generate(ctx context.Context, model string, prompt string) (string, error) {
	if p.apiKey == "" {
		return "", fmt.Errorf("%w: openrouter api_key is empty", appErr.ErrUnavailable)
	}
	headers := map[string]string{"Authorization": "Bearer " + p.apiKey}
	if p.httpReferer != "" {
		headers["HTTP-Referer"] = p.httpReferer
	}
	if p.xTitle != "" {
		headers["X-Title"] = p.xTitle
	}
	reqBody := chatRequest{
		Model:    model,
		Messages: []chatMsg{{Role: "user", Content: prompt}},
	}
	return doChat(ctx, p.client, "openrouter", strings.TrimRight(p.baseURL, "/")+"/chat/completions", reqBody, headers)
}

func createOpenRouterFactory(args interface{}) (IProvider, error) {
	cfg := &openrouterConfig{}
	if err := decodeConfig(args, cfg); err != nil {
		return nil, err
	}
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = defaultOpenRouterBaseURL
	}
	return &openrouterProvider{
		apiKey:      strings.TrimSpace(cfg.APIKey),
		baseURL:     baseURL,
		httpReferer: strings.TrimSpace(cfg.HTTPReferer),
		xTitle:      strings.TrimSpace(cfg.XTitle),
		client:      http.DefaultClient,
	}, nil
}

func init() {
	Register("openrouter", createOpenRouterFactory)
}
