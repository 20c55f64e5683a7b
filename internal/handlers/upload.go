// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"nextping/internal/storage"
)

// maxUploadSize caps image uploads at 5 MB.
const maxUploadSize = 5 << 20

// allowedImageTypes maps accepted sniffed content types to file extensions.
var allowedImageTypes = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
}

// Upload groups the media upload HTTP handlers.
type Upload struct {
	storage *storage.Client
}

// NewUpload creates a new Upload handler group. storage may be nil when
// object storage is unconfigured; handlers then return 503.
func NewUpload(st *storage.Client) *Upload {
	return &Upload{storage: st}
}

// Image accepts a multipart image upload, stores it in R2, and returns
// the public URL plus the object key. The content type is sniffed from
// the bytes, never trusted from the request.
func (h *Upload) Image(w http.ResponseWriter, r *http.Request) {
	if h.storage == nil {
		respondError(w, http.StatusServiceUnavailable, "object storage not configured")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize+4096)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		respondError(w, http.StatusBadRequest, "file too large or malformed upload (max 5 MB)")
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		respondError(w, http.StatusBadRequest, "reading upload failed")
		return
	}
	if len(data) == 0 {
		respondError(w, http.StatusBadRequest, "empty file")
		return
	}

	contentType := http.DetectContentType(data)
	ext, ok := allowedImageTypes[contentType]
	if !ok {
		respondError(w, http.StatusBadRequest, "only jpeg, png and webp images are allowed")
		return
	}

	now := time.Now().UTC()
	key := fmt.Sprintf("uploads/%04d/%02d/%s.%s", now.Year(), now.Month(), uuid.NewString(), ext)

	if err := h.storage.Upload(r.Context(), key, contentType, bytes.NewReader(data), int64(len(data))); err != nil {
		respondServiceError(w, err)
		return
	}

	// Presigned fallback for buckets without a public domain.
	presigned, err := h.storage.PresignedURL(r.Context(), key, 24*time.Hour)
	if err != nil {
		presigned = ""
	}

	respondData(w, http.StatusCreated, map[string]any{
		"url":       h.storage.FileURL(key),
		"key":       key,
		"presigned": presigned,
	})
}

// Delete removes an uploaded object by key. Only keys under uploads/ are
// deletable through the API; covers are managed by the generation pipeline.
func (h *Upload) Delete(w http.ResponseWriter, r *http.Request) {
	if h.storage == nil {
		respondError(w, http.StatusServiceUnavailable, "object storage not configured")
		return
	}

	var req struct {
		Key string `json:"key"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	key := strings.TrimSpace(req.Key)
	if !strings.HasPrefix(key, "uploads/") || strings.Contains(key, "..") {
		respondError(w, http.StatusBadRequest, "invalid object key")
		return
	}

	if err := h.storage.Delete(r.Context(), key); err != nil {
		respondServiceError(w, err)
		return
	}
	respondData(w, http.StatusOK, nil)
}
