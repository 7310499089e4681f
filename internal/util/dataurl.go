// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package util

import (
	"encoding/base64"
	"errors"
	"strings"
)

// ErrNotDataURL is returned for strings that are not base64 data URLs.
var ErrNotDataURL = errors.New("not a base64 data URL")

// DataURL encodes data as data:<mime>;base64,<payload>.
func DataURL(mimeType string, data []byte) string {
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// IsDataURL reports whether s is an inline data URL.
func IsDataURL(s string) bool {
	return strings.HasPrefix(s, "data:")
}

// ParseDataURL returns the MIME type and decoded payload of a base64 data URL.
func ParseDataURL(s string) (mimeType string, data []byte, err error) {
	rest, ok := strings.CutPrefix(s, "data:")
	if !ok {
		return "", nil, ErrNotDataURL
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, ErrNotDataURL
	}
	mimeType, ok = strings.CutSuffix(meta, ";base64")
	if !ok {
		return "", nil, ErrNotDataURL
	}
	if mimeType == "" {
		mimeType = "text/plain"
	}
	data, err = base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, errors.Join(ErrNotDataURL, err)
	}
	return mimeType, data, nil
}
