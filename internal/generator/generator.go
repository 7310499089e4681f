// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package generator produces draft text and images for admin forms. Results
// only ever fill form fields; nothing is stored until the form is saved.
package generator

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Provider names accepted by New.
const (
	ProviderNone   = "none"
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
	ProviderClaude = "claude"
)

// AspectRatio is a width:height hint for images.
type AspectRatio string

// Supported aspect ratios.
const (
	AspectSquare    AspectRatio = "1:1"
	AspectLandscape AspectRatio = "16:9"
	AspectPortrait  AspectRatio = "9:16"
	AspectClassic   AspectRatio = "4:3"
)

// Error is a generator error.
type Error string

func (e Error) Error() string {
	return string(e)
}

const (
	// ErrNotConfigured is returned when no provider is set up.
	ErrNotConfigured Error = "content generation is not configured"

	// ErrNotSupported is returned by providers that cannot make images.
	ErrNotSupported Error = "the provider cannot generate images"

	// ErrEmptyResponse is returned when the provider answered without content.
	ErrEmptyResponse Error = "the provider returned no content"

	// ErrRateLimited is returned when too many calls were made.
	ErrRateLimited Error = "too many generation requests, try again in a minute"
)

// Generator produces text and images from prompts. GenerateImage returns a
// displayable reference, normally a data URL.
type Generator interface {
	Name() string
	GenerateText(ctx context.Context, prompt string) (string, error)
	GenerateImage(ctx context.Context, prompt string, aspect AspectRatio) (string, error)
}

// Kind selects which capability a Request uses.
type Kind string

// Request kinds.
const (
	KindText  Kind = "text"
	KindImage Kind = "image"
)

// Request is one generation call.
type Request struct {
	Kind   Kind
	Prompt string
	Aspect AspectRatio
}

// Result is the checked outcome of a Request: either Text or Image is set,
// or Err is.
type Result struct {
	Kind  Kind
	Text  string
	Image string
	Err   error
}

// OK reports success.
func (r Result) OK() bool { return r.Err == nil }

// Message is the user-facing text for a failed result.
func (r Result) Message() string {
	if r.Err == nil {
		return ""
	}
	var ge Error
	if errors.As(r.Err, &ge) && ge != ErrEmptyResponse {
		return string(ge)
	}
	if r.Kind == KindImage {
		return "Failed to generate image. Please check your API key and try again."
	}
	return "Failed to generate content. Please check your API key and try again."
}

// Run performs req on g.
func Run(ctx context.Context, g Generator, req Request) Result {
	res := Result{Kind: req.Kind}
	switch req.Kind {
	case KindImage:
		aspect := req.Aspect
		if aspect == "" {
			aspect = AspectLandscape
		}
		res.Image, res.Err = g.GenerateImage(ctx, req.Prompt, aspect)
	case KindText:
		res.Text, res.Err = g.GenerateText(ctx, req.Prompt)
	default:
		res.Err = fmt.Errorf("unknown generation kind %q", req.Kind)
	}
	return res
}

// Config selects and configures a provider.
type Config struct {
	Provider      string
	APIKey        string
	TextModel     string
	ImageModel    string
	BaseURL       string
	RatePerMinute int
	HTTPClient    *http.Client
}

const httpTimeout = 120 * time.Second

// New builds the generator for cfg. Provider "none" or "" yields Disabled.
// The result is wrapped in a rate limiter when RatePerMinute is positive.
func New(cfg Config) (Generator, error) {
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: httpTimeout}
	}

	var g Generator
	switch cfg.Provider {
	case "", ProviderNone:
		return Disabled{}, nil
	case ProviderOpenAI:
		g = NewOpenAI(cfg.APIKey, cfg.TextModel, cfg.ImageModel, cfg.BaseURL, hc)
	case ProviderGemini:
		g = NewGemini(cfg.APIKey, cfg.TextModel, cfg.ImageModel, cfg.BaseURL, hc)
	case ProviderClaude:
		g = NewClaude(cfg.APIKey, cfg.TextModel, cfg.BaseURL, hc)
	default:
		return nil, fmt.Errorf("unknown content generation provider %q", cfg.Provider)
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%s: %w: missing API key", cfg.Provider, ErrNotConfigured)
	}
	if cfg.RatePerMinute > 0 {
		g = NewLimited(g, cfg.RatePerMinute)
	}
	return g, nil
}

// Disabled is used when no provider is configured.
type Disabled struct{}

func (Disabled) Name() string { return ProviderNone }

func (Disabled) GenerateText(context.Context, string) (string, error) {
	return "", ErrNotConfigured
}

func (Disabled) GenerateImage(context.Context, string, AspectRatio) (string, error) {
	return "", ErrNotConfigured
}
