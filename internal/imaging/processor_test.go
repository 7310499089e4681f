// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package imaging

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"

	"github.com/olegiv/charity-cms/internal/util"
)

// createTestImage creates a simple test image with the given dimensions.
func createTestImage(width, height int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
	return buf.Bytes()
}

func encodeJPEG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		t.Fatalf("jpeg.Encode: %v", err)
	}
	return buf.Bytes()
}

func TestProcess_ResizesLargeImage(t *testing.T) {
	data := encodeJPEG(t, createTestImage(2000, 1000))

	res, err := Process(bytes.NewReader(data), GeneratedOptions())
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if res.Width != 1280 || res.Height != 640 {
		t.Errorf("size = %dx%d, want 1280x640", res.Width, res.Height)
	}
	if res.MimeType != MimeTypeJPEG {
		t.Errorf("MimeType = %q", res.MimeType)
	}
}

func TestProcess_KeepsSmallImage(t *testing.T) {
	data := encodePNG(t, createTestImage(64, 48))

	res, err := Process(bytes.NewReader(data), UploadOptions())
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if res.Width != 64 || res.Height != 48 {
		t.Errorf("size = %dx%d, want 64x48", res.Width, res.Height)
	}
	if res.MimeType != MimeTypePNG {
		t.Errorf("MimeType = %q, want png kept", res.MimeType)
	}
}

func TestProcess_GIFBecomesJPEG(t *testing.T) {
	var buf bytes.Buffer
	pal := image.NewPaletted(image.Rect(0, 0, 10, 10), color.Palette{color.Black, color.White})
	if err := gif.Encode(&buf, pal, nil); err != nil {
		t.Fatalf("gif.Encode: %v", err)
	}
	res, err := Process(&buf, UploadOptions())
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if res.MimeType != MimeTypeJPEG {
		t.Errorf("MimeType = %q, want jpeg", res.MimeType)
	}
}

func TestProcess_TooLarge(t *testing.T) {
	data := encodePNG(t, createTestImage(64, 64))
	_, err := Process(bytes.NewReader(data), Options{MaxBytes: int64(len(data) - 1)})
	if !errors.Is(err, ErrTooLarge) {
		t.Errorf("error = %v, want ErrTooLarge", err)
	}
}

func TestProcess_Unsupported(t *testing.T) {
	inputs := map[string][]byte{
		"text": []byte("%PDF-1.4 not an image"),
		"tiff": {0x49, 0x49, 0x2A, 0x00, 0x08, 0x00, 0x00, 0x00},
	}
	for name, data := range inputs {
		t.Run(name, func(t *testing.T) {
			if _, err := Process(bytes.NewReader(data), UploadOptions()); !errors.Is(err, ErrUnsupportedFormat) {
				t.Errorf("error = %v, want ErrUnsupportedFormat", err)
			}
		})
	}
}

func TestProcessDataURL(t *testing.T) {
	u := util.DataURL(MimeTypePNG, encodePNG(t, createTestImage(1600, 1600)))

	res, err := ProcessDataURL(u, GeneratedOptions())
	if err != nil {
		t.Fatalf("ProcessDataURL: %v", err)
	}
	if res.Width != 1280 || res.Height != 1280 {
		t.Errorf("size = %dx%d, want 1280x1280", res.Width, res.Height)
	}
	if !strings.HasPrefix(res.DataURL(), "data:image/png;base64,") {
		t.Errorf("DataURL prefix = %q", res.DataURL()[:30])
	}

	if _, err := ProcessDataURL("https://example.org/x.png", GeneratedOptions()); !errors.Is(err, util.ErrNotDataURL) {
		t.Errorf("error = %v, want ErrNotDataURL", err)
	}
}

func TestApplyOrientation(t *testing.T) {
	img := createTestImage(40, 20)
	tests := []struct {
		orientation int
		w, h        int
	}{
		{1, 40, 20},
		{2, 40, 20},
		{3, 40, 20},
		{4, 40, 20},
		{5, 20, 40},
		{6, 20, 40},
		{7, 20, 40},
		{8, 20, 40},
	}
	for _, tt := range tests {
		b := applyOrientation(img, tt.orientation).Bounds()
		if b.Dx() != tt.w || b.Dy() != tt.h {
			t.Errorf("orientation %d: %dx%d, want %dx%d", tt.orientation, b.Dx(), b.Dy(), tt.w, tt.h)
		}
	}
}

func TestIsImageMimeType(t *testing.T) {
	tests := []struct {
		mimeType string
		want     bool
	}{
		{MimeTypeJPEG, true},
		{MimeTypePNG, true},
		{MimeTypeGIF, true},
		{MimeTypeWebP, true},
		{"application/pdf", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsImageMimeType(tt.mimeType); got != tt.want {
			t.Errorf("IsImageMimeType(%q) = %v, want %v", tt.mimeType, got, tt.want)
		}
	}
}
