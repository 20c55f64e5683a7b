// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package cover produces and stores cover images for generated articles.
// An image model renders a 16:9 illustration for the topic, the bytes are
// uploaded to object storage, and the public URL is returned for the
// post's coverImage field.
package cover

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
)

// Generator renders a cover image for a topic. Implemented by ai.Client.
type Generator interface {
	GenerateCoverImage(ctx context.Context, topic string) (data []byte, contentType string, err error)
	SupportsImages() bool
}

// Uploader stores an object and resolves its public URL. Implemented by
// storage.Client.
type Uploader interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader, size int64) error
	FileURL(key string) string
}

// Error wraps a cover pipeline failure with the stage that failed.
type Error struct {
	Stage string // "generate" or "upload"
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("cover %s: %v", e.Stage, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Attacher generates cover images and uploads them to object storage.
type Attacher struct {
	gen Generator
	up  Uploader
	now func() time.Time
}

// NewAttacher creates an Attacher. Either dependency may be nil when the
// corresponding service is unconfigured; Enabled reports whether the full
// pipeline is available.
func NewAttacher(gen Generator, up Uploader) *Attacher {
	return &Attacher{gen: gen, up: up, now: time.Now}
}

// Enabled reports whether cover generation can run: both an image-capable
// model and object storage must be configured.
func (a *Attacher) Enabled() bool {
	return a.gen != nil && a.up != nil && a.gen.SupportsImages()
}

// Attach generates a cover image for the topic, uploads it, and returns
// the public URL. Keys are date-partitioned so the bucket stays browsable.
func (a *Attacher) Attach(ctx context.Context, topic string) (string, error) {
	if !a.Enabled() {
		return "", &Error{Stage: "generate", Err: fmt.Errorf("cover pipeline not configured")}
	}

	data, contentType, err := a.gen.GenerateCoverImage(ctx, topic)
	if err != nil {
		return "", &Error{Stage: "generate", Err: err}
	}

	key := a.key(contentType)
	if err := a.up.Upload(ctx, key, contentType, bytes.NewReader(data), int64(len(data))); err != nil {
		return "", &Error{Stage: "upload", Err: err}
	}

	return a.up.FileURL(key), nil
}

// key builds a covers/YYYY/MM/<uuid>.<ext> object key.
func (a *Attacher) key(contentType string) string {
	ext := "png"
	switch contentType {
	case "image/jpeg":
		ext = "jpg"
	case "image/webp":
		ext = "webp"
	}
	now := a.now().UTC()
	return fmt.Sprintf("covers/%04d/%02d/%s.%s", now.Year(), now.Month(), uuid.NewString(), ext)
}
