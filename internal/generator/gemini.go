// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package generator

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// Default Gemini models.
const (
	DefaultGeminiTextModel  = "gemini-2.5-flash"
	DefaultGeminiImageModel = "gemini-2.5-flash-image"
	defaultGeminiBaseURL    = "https://generativelanguage.googleapis.com/v1beta"
)

// Gemini talks to the Gemini generateContent REST API.
type Gemini struct {
	apiKey     string
	textModel  string
	imageModel string
	baseURL    string
	hc         *http.Client
}

// NewGemini creates a Gemini generator.
func NewGemini(apiKey, textModel, imageModel, baseURL string, hc *http.Client) *Gemini {
	if textModel == "" {
		textModel = DefaultGeminiTextModel
	}
	if imageModel == "" {
		imageModel = DefaultGeminiImageModel
	}
	if baseURL == "" {
		baseURL = defaultGeminiBaseURL
	}
	if hc == nil {
		hc = &http.Client{Timeout: httpTimeout}
	}
	return &Gemini{
		apiKey:     apiKey,
		textModel:  textModel,
		imageModel: imageModel,
		baseURL:    strings.TrimRight(baseURL, "/"),
		hc:         hc,
	}
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inlineData,omitempty"`
}

type geminiInlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents         []geminiContent  `json:"contents"`
	GenerationConfig *geminiGenConfig `json:"generationConfig,omitempty"`
}

type geminiGenConfig struct {
	ImageConfig *geminiImageConfig `json:"imageConfig,omitempty"`
}

type geminiImageConfig struct {
	AspectRatio string `json:"aspectRatio,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

func (g *Gemini) Name() string { return ProviderGemini }

func (g *Gemini) call(ctx context.Context, model string, body geminiRequest) ([]geminiPart, error) {
	endpoint := g.baseURL + "/models/" + url.PathEscape(model) + ":generateContent"
	var resp geminiResponse
	err := postJSON(ctx, g.hc, endpoint, map[string]string{"x-goog-api-key": g.apiKey}, body, &resp)
	if err != nil {
		return nil, fmt.Errorf("gemini: %w", err)
	}
	if len(resp.Candidates) == 0 {
		return nil, ErrEmptyResponse
	}
	return resp.Candidates[0].Content.Parts, nil
}

func (g *Gemini) GenerateText(ctx context.Context, prompt string) (string, error) {
	parts, err := g.call(ctx, g.textModel, geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
	})
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	for _, p := range parts {
		sb.WriteString(p.Text)
	}
	if strings.TrimSpace(sb.String()) == "" {
		return "", ErrEmptyResponse
	}
	return sb.String(), nil
}

// GenerateImage returns the first inline image part as a data URL.
func (g *Gemini) GenerateImage(ctx context.Context, prompt string, aspect AspectRatio) (string, error) {
	parts, err := g.call(ctx, g.imageModel, geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
		GenerationConfig: &geminiGenConfig{
			ImageConfig: &geminiImageConfig{AspectRatio: string(aspect)},
		},
	})
	if err != nil {
		return "", err
	}
	for _, p := range parts {
		if p.InlineData == nil || p.InlineData.Data == "" {
			continue
		}
		mime := p.InlineData.MimeType
		if mime == "" {
			mime = "image/png"
		}
		return "data:" + mime + ";base64," + p.InlineData.Data, nil
	}
	return "", fmt.Errorf("gemini: no image content found in response: %w", ErrEmptyResponse)
}
