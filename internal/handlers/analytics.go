// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"

	"nextping/internal/store"
)

// Analytics serves the admin dashboard statistics.
type Analytics struct {
	posts  *store.PostStore
	users  *store.UserStore
	topics *store.TopicStore
}

// NewAnalytics creates a new Analytics handler group.
func NewAnalytics(posts *store.PostStore, users *store.UserStore, topics *store.TopicStore) *Analytics {
	return &Analytics{posts: posts, users: users, topics: topics}
}

// Dashboard returns post, user and topic counters plus engagement metrics.
// The engagement block is fixed placeholder data until a real tracking
// pipeline exists; the counters are live from Postgres.
func (h *Analytics) Dashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.posts.Stats()
	if err != nil {
		respondServiceError(w, err)
		return
	}

	userCount, err := h.users.Count()
	if err != nil {
		respondServiceError(w, err)
		return
	}

	pendingTopics, err := h.topics.CountPending()
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondData(w, http.StatusOK, map[string]any{
		"posts":         stats,
		"users":         userCount,
		"pendingTopics": pendingTopics,
		"engagement": map[string]any{
			"avgTimeOnPage":  "2:45",
			"bounceRate":     "42%",
			"returnVisitors": "38%",
		},
	})
}
