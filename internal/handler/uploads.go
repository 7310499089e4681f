// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/olegiv/charity-cms/internal/editor"
	"github.com/olegiv/charity-cms/internal/imaging"
	"github.com/olegiv/charity-cms/internal/model"
	"github.com/olegiv/charity-cms/internal/util"
)

const (
	// maxRecordBody bounds admin form posts, uploads included.
	maxRecordBody = 10 << 20
	maxFormMemory = 2 << 20

	// Suffixes of the companion inputs rendered next to image and file fields.
	uploadSuffix = "File"
	clearSuffix  = "Clear"
)

// parseRecordForm parses url-encoded and multipart admin forms.
func parseRecordForm(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRecordBody)
	if strings.HasPrefix(r.Header.Get(HeaderContentType), "multipart/form-data") {
		return r.ParseMultipartForm(maxFormMemory)
	}
	return r.ParseForm()
}

// applyUploads folds uploaded files into the submitted values. An image
// upload becomes an inline data URL; a document upload becomes an upload
// marker carrying the file name. Problems are reported per field.
func applyUploads(r *http.Request, fields []editor.Field) (url.Values, map[string]string) {
	values := make(url.Values, len(r.PostForm))
	for k, v := range r.PostForm {
		values[k] = append([]string(nil), v...)
	}
	errs := map[string]string{}

	for _, f := range fields {
		if f.Kind != editor.KindImage && f.Kind != editor.KindFile {
			continue
		}
		if r.PostForm.Get(f.Name+clearSuffix) != "" {
			values.Set(f.Name, "")
		}
		fh := uploadedFile(r, f.Name+uploadSuffix)
		if fh == nil {
			continue
		}
		var (
			value string
			err   error
		)
		if f.Kind == editor.KindImage {
			value, err = imageUpload(fh)
		} else {
			value, err = documentUpload(fh)
		}
		if err != nil {
			errs[f.Name] = err.Error()
			continue
		}
		values.Set(f.Name, value)
	}
	return values, errs
}

func uploadedFile(r *http.Request, name string) *multipart.FileHeader {
	if r.MultipartForm == nil {
		return nil
	}
	files := r.MultipartForm.File[name]
	if len(files) == 0 || files[0].Size == 0 {
		return nil
	}
	return files[0]
}

// uploadError is shown to the editor as the field message.
type uploadError string

func (e uploadError) Error() string { return string(e) }

const (
	errImageTooLarge  uploadError = "File is too large for this demo (max 500KB). Please use a smaller image or a URL."
	errImageFormat    uploadError = "Unsupported image. Use JPEG, PNG, GIF or WebP."
	errDocumentFormat uploadError = "Only PDF documents can be uploaded."
	errUploadRead     uploadError = "The file could not be read. Please try again."
)

func imageUpload(fh *multipart.FileHeader) (string, error) {
	if fh.Size > imaging.MaxUploadBytes {
		return "", errImageTooLarge
	}
	f, err := fh.Open()
	if err != nil {
		slog.Warn("failed to open upload", "filename", fh.Filename, "error", err)
		return "", errUploadRead
	}
	defer func() { _ = f.Close() }()

	res, err := imaging.Process(f, imaging.UploadOptions())
	switch {
	case errors.Is(err, imaging.ErrTooLarge):
		return "", errImageTooLarge
	case errors.Is(err, imaging.ErrUnsupportedFormat):
		return "", errImageFormat
	case err != nil:
		slog.Warn("failed to process image upload", "filename", fh.Filename, "error", err)
		return "", errImageFormat
	}
	return res.DataURL(), nil
}

// documentUpload records the file name only. Report files are not stored.
func documentUpload(fh *multipart.FileHeader) (string, error) {
	name, err := util.SanitizeFilename(fh.Filename)
	if err != nil {
		return "", errUploadRead
	}
	if !strings.EqualFold(filepath.Ext(name), ".pdf") {
		return "", errDocumentFormat
	}
	return fmt.Sprintf("%s%s", model.UploadMarkerPrefix, name), nil
}
