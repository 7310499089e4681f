// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package generator

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// Default OpenAI models.
const (
	DefaultOpenAITextModel  = "gpt-4o-mini"
	DefaultOpenAIImageModel = "gpt-image-1"
)

// OpenAI talks to the OpenAI API or any compatible endpoint.
type OpenAI struct {
	client     openai.Client
	textModel  string
	imageModel string
}

// NewOpenAI creates an OpenAI generator. An empty baseURL uses the public API.
func NewOpenAI(apiKey, textModel, imageModel, baseURL string, hc *http.Client) *OpenAI {
	if textModel == "" {
		textModel = DefaultOpenAITextModel
	}
	if imageModel == "" {
		imageModel = DefaultOpenAIImageModel
	}
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(1),
	}
	if hc != nil {
		opts = append(opts, option.WithHTTPClient(hc))
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(strings.TrimRight(baseURL, "/")+"/"))
	}
	return &OpenAI{
		client:     openai.NewClient(opts...),
		textModel:  textModel,
		imageModel: imageModel,
	}
}

func (o *OpenAI) Name() string { return ProviderOpenAI }

func (o *OpenAI) GenerateText(ctx context.Context, prompt string) (string, error) {
	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(o.textModel),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
	})
	if err != nil {
		return "", fmt.Errorf("openai chat: %w", err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", ErrEmptyResponse
	}
	return resp.Choices[0].Message.Content, nil
}

func (o *OpenAI) GenerateImage(ctx context.Context, prompt string, aspect AspectRatio) (string, error) {
	params := openai.ImageGenerateParams{
		Prompt: prompt,
		Model:  openai.ImageModel(o.imageModel),
		N:      openai.Int(1),
		Size:   openai.ImageGenerateParamsSize(o.imageSize(aspect)),
	}
	// gpt-image models always answer with base64 and reject the parameter.
	if !strings.HasPrefix(o.imageModel, "gpt-image") {
		params.ResponseFormat = openai.ImageGenerateParamsResponseFormat("b64_json")
	}

	resp, err := o.client.Images.Generate(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai image: %w", err)
	}
	if len(resp.Data) == 0 || resp.Data[0].B64JSON == "" {
		return "", ErrEmptyResponse
	}
	return "data:image/png;base64," + resp.Data[0].B64JSON, nil
}

// imageSize maps an aspect ratio onto the sizes the model accepts.
func (o *OpenAI) imageSize(aspect AspectRatio) string {
	dalle := strings.HasPrefix(o.imageModel, "dall-e")
	switch aspect {
	case AspectLandscape, AspectClassic:
		if dalle {
			return "1792x1024"
		}
		return "1536x1024"
	case AspectPortrait:
		if dalle {
			return "1024x1792"
		}
		return "1024x1536"
	default:
		return "1024x1024"
	}
}
