// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package generator

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

// Claude API constants.
const (
	DefaultClaudeTextModel = "claude-haiku-4-5-20251001"
	defaultClaudeBaseURL   = "https://api.anthropic.com/v1"
	claudeAPIVersion       = "2023-06-01"
	claudeMaxTokens        = 2048
)

// Claude talks to the Anthropic messages API. It only produces text.
type Claude struct {
	apiKey  string
	model   string
	baseURL string
	hc      *http.Client
}

// NewClaude creates a Claude generator.
func NewClaude(apiKey, model, baseURL string, hc *http.Client) *Claude {
	if model == "" {
		model = DefaultClaudeTextModel
	}
	if baseURL == "" {
		baseURL = defaultClaudeBaseURL
	}
	if hc == nil {
		hc = &http.Client{Timeout: httpTimeout}
	}
	return &Claude{apiKey: apiKey, model: model, baseURL: strings.TrimRight(baseURL, "/"), hc: hc}
}

type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type claudeRequest struct {
	Model     string          `json:"model"`
	MaxTokens int             `json:"max_tokens"`
	Messages  []claudeMessage `json:"messages"`
}

type claudeResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

func (c *Claude) Name() string { return ProviderClaude }

func (c *Claude) GenerateText(ctx context.Context, prompt string) (string, error) {
	body := claudeRequest{
		Model:     c.model,
		MaxTokens: claudeMaxTokens,
		Messages:  []claudeMessage{{Role: "user", Content: prompt}},
	}
	headers := map[string]string{
		"x-api-key":         c.apiKey,
		"anthropic-version": claudeAPIVersion,
	}
	var resp claudeResponse
	if err := postJSON(ctx, c.hc, c.baseURL+"/messages", headers, body, &resp); err != nil {
		return "", fmt.Errorf("claude: %w", err)
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if strings.TrimSpace(sb.String()) == "" {
		return "", ErrEmptyResponse
	}
	return sb.String(), nil
}

func (c *Claude) GenerateImage(context.Context, string, AspectRatio) (string, error) {
	return "", ErrNotSupported
}
