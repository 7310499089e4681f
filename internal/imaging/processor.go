// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package imaging turns uploaded and generated images into compact inline
// data URLs suitable for storing in the content document.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/rwcarlsen/goexif/exif"
	_ "golang.org/x/image/webp" // WebP decoder

	"github.com/olegiv/charity-cms/internal/util"
)

// Limits applied to admin uploads.
const (
	MaxUploadBytes   = 500_000
	MaxGeneratedSize = 20 << 20
	DefaultMaxSide   = 1280
	DefaultQuality   = 82
)

// MIME types produced or accepted.
const (
	MimeTypeJPEG = "image/jpeg"
	MimeTypePNG  = "image/png"
	MimeTypeGIF  = "image/gif"
	MimeTypeWebP = "image/webp"
)

var (
	// ErrTooLarge is returned when the input exceeds Options.MaxBytes.
	ErrTooLarge = errors.New("image is too large")
	// ErrUnsupportedFormat is returned for anything but JPEG, PNG, GIF and WebP.
	ErrUnsupportedFormat = errors.New("unsupported image format")
)

// Options controls processing.
type Options struct {
	MaxBytes int64 // input size limit, 0 disables it
	MaxSide  int   // longest edge after resizing
	Quality  int   // JPEG quality
}

// UploadOptions returns the limits used for admin uploads.
func UploadOptions() Options {
	return Options{MaxBytes: MaxUploadBytes, MaxSide: DefaultMaxSide, Quality: DefaultQuality}
}

// GeneratedOptions returns the limits used for generated images.
func GeneratedOptions() Options {
	return Options{MaxBytes: MaxGeneratedSize, MaxSide: DefaultMaxSide, Quality: DefaultQuality}
}

// Result is a processed image.
type Result struct {
	Width    int
	Height   int
	MimeType string
	Data     []byte
}

// DataURL returns the image as an inline data URL.
func (r Result) DataURL() string {
	return util.DataURL(r.MimeType, r.Data)
}

// Process decodes r, applies EXIF orientation, fits it into MaxSide and
// re-encodes it. PNG input stays PNG so transparency survives; everything
// else becomes JPEG.
func Process(r io.Reader, opts Options) (Result, error) {
	if opts.MaxSide <= 0 {
		opts.MaxSide = DefaultMaxSide
	}
	if opts.Quality <= 0 {
		opts.Quality = DefaultQuality
	}

	src := r
	if opts.MaxBytes > 0 {
		src = io.LimitReader(r, opts.MaxBytes+1)
	}
	data, err := io.ReadAll(src)
	if err != nil {
		return Result{}, fmt.Errorf("reading image: %w", err)
	}
	if opts.MaxBytes > 0 && int64(len(data)) > opts.MaxBytes {
		return Result{}, fmt.Errorf("%w: limit is %d bytes", ErrTooLarge, opts.MaxBytes)
	}

	format := detectFormat(data)
	if format == "" {
		return Result{}, ErrUnsupportedFormat
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return Result{}, fmt.Errorf("decoding image: %w", err)
	}
	if format == "jpeg" {
		img = applyOrientation(img, readExifOrientation(bytes.NewReader(data)))
	}

	b := img.Bounds()
	if b.Dx() > opts.MaxSide || b.Dy() > opts.MaxSide {
		img = imaging.Fit(img, opts.MaxSide, opts.MaxSide, imaging.Lanczos)
	}

	out, mimeType, err := encode(img, format, opts.Quality)
	if err != nil {
		return Result{}, fmt.Errorf("encoding image: %w", err)
	}
	b = img.Bounds()
	return Result{Width: b.Dx(), Height: b.Dy(), MimeType: mimeType, Data: out}, nil
}

// ProcessDataURL runs Process over the payload of a data URL.
func ProcessDataURL(dataURL string, opts Options) (Result, error) {
	_, data, err := util.ParseDataURL(dataURL)
	if err != nil {
		return Result{}, err
	}
	return Process(bytes.NewReader(data), opts)
}

// readExifOrientation returns 1 (normal) when no orientation tag is found.
func readExifOrientation(r io.Reader) int {
	x, err := exif.Decode(r)
	if err != nil {
		return 1
	}
	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 1
	}
	orientation, err := tag.Int(0)
	if err != nil {
		return 1
	}
	return orientation
}

// applyOrientation undoes EXIF orientation values 2 through 8.
func applyOrientation(img image.Image, orientation int) image.Image {
	switch orientation {
	case 2:
		return imaging.FlipH(img)
	case 3:
		return imaging.Rotate180(img)
	case 4:
		return imaging.FlipV(img)
	case 5:
		return imaging.FlipH(imaging.Rotate270(img))
	case 6:
		return imaging.Rotate270(img)
	case 7:
		return imaging.FlipH(imaging.Rotate90(img))
	case 8:
		return imaging.Rotate90(img)
	default:
		return img
	}
}

func encode(img image.Image, format string, quality int) ([]byte, string, error) {
	var buf bytes.Buffer
	if format == "png" {
		if err := png.Encode(&buf, img); err != nil {
			return nil, "", err
		}
		return buf.Bytes(), MimeTypePNG, nil
	}
	// No pure Go WebP encoder; GIF animation is not kept.
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), MimeTypeJPEG, nil
}

// detectFormat sniffs the format from raw bytes.
func detectFormat(data []byte) string {
	contentType := http.DetectContentType(data)
	// TIFF is rejected (CVE-2023-36308 in disintegration/imaging).
	switch {
	case strings.Contains(contentType, "tiff"):
		return ""
	case strings.Contains(contentType, "jpeg"):
		return "jpeg"
	case strings.Contains(contentType, "png"):
		return "png"
	case strings.Contains(contentType, "gif"):
		return "gif"
	case strings.Contains(contentType, "webp"):
		return "webp"
	default:
		return ""
	}
}

// IsImageMimeType reports whether mimeType is one of the accepted inputs.
func IsImageMimeType(mimeType string) bool {
	switch mimeType {
	case MimeTypeJPEG, MimeTypePNG, MimeTypeGIF, MimeTypeWebP:
		return true
	}
	return false
}
