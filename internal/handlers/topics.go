// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"nextping/internal/models"
	"nextping/internal/store"
)

// Topics groups the topic queue HTTP handlers.
type Topics struct {
	topics *store.TopicStore
}

// NewTopics creates a new Topics handler group.
func NewTopics(topics *store.TopicStore) *Topics {
	return &Topics{topics: topics}
}

// List serves topics, optionally filtered by ?status=.
func (h *Topics) List(w http.ResponseWriter, r *http.Request) {
	status := models.TopicStatus(r.URL.Query().Get("status"))
	switch status {
	case "", models.TopicStatusPending, models.TopicStatusClaimed, models.TopicStatusUsed:
	default:
		respondError(w, http.StatusBadRequest, "unknown topic status")
		return
	}

	topics, err := h.topics.List(status)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if topics == nil {
		topics = []models.Topic{}
	}
	respondData(w, http.StatusOK, topics)
}

// Create queues a topic name for future generation.
func (h *Topics) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if msg := validateTopic(req.Name); msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}

	topic, err := h.topics.Create(strings.TrimSpace(req.Name))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondData(w, http.StatusCreated, topic)
}

// Delete removes a topic from the queue.
func (h *Topics) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid topic id")
		return
	}

	if err := h.topics.Delete(id); err != nil {
		respondServiceError(w, err)
		return
	}
	respondData(w, http.StatusOK, nil)
}
