// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package generator

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"github.com/olegiv/charity-cms/internal/imaging"
	"github.com/olegiv/charity-cms/internal/logging"
)

// Limited caps the call rate of a generator. Calls over the limit fail fast
// with ErrRateLimited instead of queueing behind a slow provider.
type Limited struct {
	Generator
	limiter *rate.Limiter
}

// NewLimited allows perMinute calls per minute with a burst of perMinute.
func NewLimited(g Generator, perMinute int) *Limited {
	if perMinute < 1 {
		perMinute = 1
	}
	return &Limited{
		Generator: g,
		limiter:   rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), perMinute),
	}
}

func (l *Limited) GenerateText(ctx context.Context, prompt string) (string, error) {
	if !l.limiter.Allow() {
		return "", ErrRateLimited
	}
	return l.Generator.GenerateText(ctx, prompt)
}

func (l *Limited) GenerateImage(ctx context.Context, prompt string, aspect AspectRatio) (string, error) {
	if !l.limiter.Allow() {
		return "", ErrRateLimited
	}
	return l.Generator.GenerateImage(ctx, prompt, aspect)
}

// Compact re-encodes generated images so they fit in the content document.
type Compact struct {
	Generator
	Options imaging.Options
}

// NewCompact wraps g with the default options for generated images.
func NewCompact(g Generator) *Compact {
	return &Compact{Generator: g, Options: imaging.GeneratedOptions()}
}

func (c *Compact) GenerateImage(ctx context.Context, prompt string, aspect AspectRatio) (string, error) {
	ref, err := c.Generator.GenerateImage(ctx, prompt, aspect)
	if err != nil {
		return "", err
	}
	res, err := imaging.ProcessDataURL(ref, c.Options)
	if err != nil {
		return "", err
	}
	return res.DataURL(), nil
}

// Outcome labels reported to an Observer.
const (
	OutcomeOK          = "ok"
	OutcomeError       = "error"
	OutcomeRateLimited = "rate_limited"
)

// ObserveFunc receives one call per generation.
type ObserveFunc func(provider, kind, outcome string, seconds float64)

// Observed logs and reports every call of a generator.
type Observed struct {
	Generator
	Logger  *slog.Logger
	Observe ObserveFunc
	now     func() time.Time
}

// NewObserved wraps g. Either logger or observe may be nil.
func NewObserved(g Generator, logger *slog.Logger, observe ObserveFunc) *Observed {
	if logger == nil {
		logger = slog.Default()
	}
	return &Observed{Generator: g, Logger: logger, Observe: observe, now: time.Now}
}

func (o *Observed) GenerateText(ctx context.Context, prompt string) (string, error) {
	start := o.now()
	text, err := o.Generator.GenerateText(ctx, prompt)
	o.report(ctx, KindText, start, err)
	return text, err
}

func (o *Observed) GenerateImage(ctx context.Context, prompt string, aspect AspectRatio) (string, error) {
	start := o.now()
	ref, err := o.Generator.GenerateImage(ctx, prompt, aspect)
	o.report(ctx, KindImage, start, err)
	return ref, err
}

func (o *Observed) report(ctx context.Context, kind Kind, start time.Time, err error) {
	elapsed := o.now().Sub(start)
	outcome := OutcomeOK
	switch {
	case errors.Is(err, ErrRateLimited):
		outcome = OutcomeRateLimited
	case err != nil:
		outcome = OutcomeError
	}
	if o.Observe != nil {
		o.Observe(o.Name(), string(kind), outcome, elapsed.Seconds())
	}

	attrs := []any{
		"category", logging.CategoryGenerator,
		"provider", o.Name(),
		"kind", string(kind),
		"duration", elapsed,
	}
	if err != nil {
		o.Logger.WarnContext(ctx, "content generation failed", append(attrs, "error", err)...)
		return
	}
	o.Logger.InfoContext(ctx, "content generated", attrs...)
}
