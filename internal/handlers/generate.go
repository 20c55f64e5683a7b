// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"nextping/internal/middleware"
	"nextping/internal/models"
	"nextping/internal/scheduler"
)

// Generate groups the article generation HTTP handlers.
type Generate struct {
	runner *scheduler.Runner
	gen    scheduler.Generator
	posts  scheduler.PostCreator
	covers scheduler.CoverAttacher
}

// NewGenerate creates a new Generate handler group. covers may be nil.
func NewGenerate(runner *scheduler.Runner, gen scheduler.Generator, posts scheduler.PostCreator, covers scheduler.CoverAttacher) *Generate {
	return &Generate{runner: runner, gen: gen, posts: posts, covers: covers}
}

// RunScheduler triggers one queue-driven generation cycle. An empty queue
// is a success with a message, not an error.
func (h *Generate) RunScheduler(w http.ResponseWriter, r *http.Request) {
	result, err := h.runner.Run(r.Context())
	if errors.Is(err, scheduler.ErrNoPendingTopics) {
		respondJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"data":    nil,
			"message": "no pending topics",
		})
		return
	}
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondData(w, http.StatusOK, result)
}

// OnDemand generates and publishes an article for an arbitrary topic
// string, bypassing the topic queue. The post is owned by the caller.
func (h *Generate) OnDemand(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Topic string `json:"topic"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	topic := strings.TrimSpace(req.Topic)
	if msg := validateTopic(topic); msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}

	result, err := h.gen.Generate(r.Context(), topic)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	post := &models.Post{
		Title:    topic,
		Content:  result.Content,
		Excerpt:  result.Excerpt,
		Category: models.CategoryAI,
		AuthorID: middleware.SessionFromCtx(r.Context()).UserID,
		Tags:     result.Tags,
		Status:   models.PostStatusPublished,
		SEO: models.SEO{
			MetaTitle:       result.MetaTitle,
			MetaDescription: result.MetaDescription,
			Keywords:        strings.Join(result.Keywords, ", "),
		},
	}

	if h.covers != nil && h.covers.Enabled() {
		url, err := h.covers.Attach(r.Context(), topic)
		if err != nil {
			slog.Warn("cover generation failed for on-demand article",
				"topic", topic, "error", err)
		} else {
			post.CoverImage = url
		}
	}

	created, err := h.posts.Create(post)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondData(w, http.StatusCreated, created)
}
