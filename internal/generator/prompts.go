// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package generator

import (
	"fmt"
	"strings"
)

// Missing form input. The messages are shown to the editor as they are.
const (
	ErrNeedTitleAndCategory Error = "Please enter a Title and Category first."
	ErrNeedTitle            Error = "Please enter a Title first."
	ErrNeedImageTitle       Error = "Please enter a Title first to generate an image."
)

// Organization describes the charity in prompts.
const (
	Organization = "Jati Welfare Foundation"
	Region       = "rural Odisha"
)

// ProgramDescription builds the request for a program description.
func ProgramDescription(title, category string) (Request, error) {
	title, category = strings.TrimSpace(title), strings.TrimSpace(category)
	if title == "" || category == "" {
		return Request{}, ErrNeedTitleAndCategory
	}
	prompt := fmt.Sprintf("Write a detailed description for a charity program titled %q in the category of %q.\n"+
		"Focus on how it helps beneficiaries in %s. Write about 150-200 words.", title, category, Region)
	return Request{Kind: KindText, Prompt: prompt}, nil
}

// BlogPost builds the request for a blog post body.
func BlogPost(title string) (Request, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return Request{}, ErrNeedTitle
	}
	prompt := fmt.Sprintf("Write a heartwarming blog post for %s (a charity in Odisha) with the title: %q.\n"+
		"Keep it engaging and under 400 words.", Organization, title)
	return Request{Kind: KindText, Prompt: prompt}, nil
}

// BlogImage builds the request for a blog header image.
func BlogImage(title, excerpt string) (Request, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return Request{}, ErrNeedImageTitle
	}
	context := strings.TrimSpace(excerpt)
	if context == "" {
		context = "Helping the community"
	}
	prompt := fmt.Sprintf("A realistic, high-quality, inspiring blog post header image for a charitable trust in India. "+
		"Topic: %q. Context: %s.", title, context)
	return Request{Kind: KindImage, Prompt: prompt, Aspect: AspectLandscape}, nil
}
