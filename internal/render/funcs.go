// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package render

import (
	"html/template"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/olegiv/charity-cms/internal/util"
)

// amountPrinter groups digits the way Indian donors read amounts.
var amountPrinter = message.NewPrinter(language.MustParse("en-IN"))

// dateLayouts are the date shapes stored in records, most specific first.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.000Z07:00",
	"2006-01-02",
}

func parseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatDate renders a stored date as "Jan 2, 2006"; unknown shapes pass through.
func FormatDate(s string) string {
	if t, ok := parseDate(s); ok {
		return t.Format("Jan 2, 2006")
	}
	return s
}

// FormatAmount renders a rupee amount, dropping paise when whole.
func FormatAmount(v float64) string {
	if v == math.Trunc(v) {
		return "₹" + amountPrinter.Sprintf("%d", int64(v))
	}
	return "₹" + amountPrinter.Sprintf("%.2f", v)
}

// Truncate shortens s to n runes with an ellipsis.
func Truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:n])) + "…"
}

// ImageSrc admits the image references records may hold: http(s) URLs,
// site-relative paths and inline image data URLs. Anything else yields "".
func ImageSrc(s string) template.URL {
	switch {
	case strings.HasPrefix(s, "https://"), strings.HasPrefix(s, "http://"):
		return template.URL(s)
	case strings.HasPrefix(s, "/") && !strings.HasPrefix(s, "//"):
		return template.URL(s)
	case util.IsDataURL(s) && strings.HasPrefix(s, "data:image/"):
		return template.URL(s)
	}
	return ""
}

func (r *Renderer) templateFuncs() template.FuncMap {
	return template.FuncMap{
		"formatDate": FormatDate,
		"month": func(s string) string {
			if t, ok := parseDate(s); ok {
				return t.Format("Jan")
			}
			return ""
		},
		"day": func(s string) string {
			if t, ok := parseDate(s); ok {
				return t.Format("2")
			}
			return ""
		},
		"amount":   FormatAmount,
		"truncate": Truncate,
		"imgsrc":   ImageSrc,
		"markdown": func(s string) template.HTML {
			return r.markdown.HTML(s)
		},
		"number": func(n int) string {
			return amountPrinter.Sprintf("%d", n)
		},
		"hasPrefix": strings.HasPrefix,
		"active": func(current, prefix string) bool {
			if prefix == "/" || prefix == "/admin" {
				return current == prefix
			}
			return current == prefix || strings.HasPrefix(current, prefix+"/")
		},
		"add": func(a, b int) int {
			return a + b
		},
	}
}
