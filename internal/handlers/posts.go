// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"nextping/internal/cache"
	"nextping/internal/markdown"
	"nextping/internal/middleware"
	"nextping/internal/models"
	"nextping/internal/store"
)

const (
	defaultPageSize  = 10
	maxPageSize      = 100
	featuredPageSize = 5
	relatedCount     = 3
)

// Posts groups all blog post HTTP handlers.
type Posts struct {
	posts     *store.PostStore
	respCache *cache.ResponseCache
}

// NewPosts creates a new Posts handler group. respCache may be nil; list
// endpoints then always hit the database.
func NewPosts(posts *store.PostStore, respCache *cache.ResponseCache) *Posts {
	return &Posts{posts: posts, respCache: respCache}
}

// postRequest is the JSON body for create and update.
type postRequest struct {
	Title         string            `json:"title"`
	Content       string            `json:"content"`
	ContentFormat string            `json:"contentFormat"` // "html" (default) or "markdown"
	Excerpt       string            `json:"excerpt"`
	CoverImage    string            `json:"coverImage"`
	Category      models.Category   `json:"category"`
	Tags          []string          `json:"tags"`
	Status        models.PostStatus `json:"status"`
	Featured      bool              `json:"featured"`
	SEO           models.SEO        `json:"seo"`
}

// pagination is the listing metadata block.
type pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

func listParams(r *http.Request) (page, limit int) {
	page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return page, limit
}

// serveCached writes a cached response if present, otherwise builds the
// payload, caches the rendered bytes, and writes them.
func (h *Posts) serveCached(w http.ResponseWriter, r *http.Request, build func() (any, error)) {
	key := cache.RequestKey(r.URL.Path, r.URL.RawQuery)

	if h.respCache != nil {
		if body, ok := h.respCache.Get(r.Context(), key); ok {
			w.Header().Set("Content-Type", "application/json")
			w.Write(body)
			return
		}
	}

	payload, err := build()
	if err != nil {
		respondServiceError(w, err)
		return
	}

	body, err := json.Marshal(payload)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if h.respCache != nil {
		h.respCache.Set(r.Context(), key, body)
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(body)
}

// invalidate clears the response cache after any post mutation.
func (h *Posts) invalidate(r *http.Request) {
	if h.respCache != nil {
		h.respCache.InvalidateAll(r.Context())
	}
}

// List serves published posts with filtering and pagination.
func (h *Posts) List(w http.ResponseWriter, r *http.Request) {
	h.serveCached(w, r, func() (any, error) {
		page, limit := listParams(r)
		q := r.URL.Query()

		filter := store.PostFilter{
			Status:   models.PostStatusPublished,
			Category: models.Category(q.Get("category")),
			Tag:      q.Get("tag"),
			Search:   strings.TrimSpace(q.Get("search")),
			Sort:     q.Get("sort"),
			Asc:      q.Get("order") == "asc",
			Page:     page,
			Limit:    limit,
		}

		posts, total, err := h.posts.List(filter)
		if err != nil {
			return nil, err
		}
		if posts == nil {
			posts = []models.Post{}
		}

		return map[string]any{
			"success": true,
			"data":    posts,
			"pagination": pagination{
				Page:  page,
				Limit: limit,
				Total: total,
				Pages: (total + limit - 1) / limit,
			},
		}, nil
	})
}

// Featured serves the featured published posts.
func (h *Posts) Featured(w http.ResponseWriter, r *http.Request) {
	h.serveCached(w, r, func() (any, error) {
		featured := true
		posts, _, err := h.posts.List(store.PostFilter{
			Status:   models.PostStatusPublished,
			Featured: &featured,
			Limit:    featuredPageSize,
		})
		if err != nil {
			return nil, err
		}
		if posts == nil {
			posts = []models.Post{}
		}
		return map[string]any{"success": true, "data": posts}, nil
	})
}

// Categories serves the list of categories with published-post counts.
func (h *Posts) Categories(w http.ResponseWriter, r *http.Request) {
	h.serveCached(w, r, func() (any, error) {
		counts, err := h.posts.CategoryCounts()
		if err != nil {
			return nil, err
		}

		type categoryCount struct {
			Name  models.Category `json:"name"`
			Count int             `json:"count"`
		}
		out := make([]categoryCount, 0, len(models.Categories))
		for _, c := range models.Categories {
			out = append(out, categoryCount{Name: c, Count: counts[c]})
		}
		return map[string]any{"success": true, "data": out}, nil
	})
}

// BySlug serves a single published post, bumps its view counter, and
// includes up to three related posts. Never cached: every read counts.
func (h *Posts) BySlug(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	post, err := h.posts.FindBySlug(slug, true)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if post == nil {
		respondError(w, http.StatusNotFound, "post not found")
		return
	}

	if err := h.posts.IncrementViews(post.ID); err != nil {
		// A lost view increment is not worth failing the read.
		slog.Warn("view increment failed", "post_id", post.ID, "error", err)
	} else {
		post.Views++
	}

	related, err := h.posts.Related(post, relatedCount)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if related == nil {
		related = []models.Post{}
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    post,
		"related": related,
	})
}

// fromRequest validates a postRequest and converts it into a model,
// running Markdown conversion when requested.
func fromRequest(req *postRequest) (*models.Post, string) {
	if msg := validatePost(req.Title, req.Content, req.Excerpt, req.Tags); msg != "" {
		return nil, msg
	}
	if msg := validateSEO(req.SEO.MetaTitle, req.SEO.MetaDescription, req.SEO.Keywords); msg != "" {
		return nil, msg
	}
	if req.Category != "" && !req.Category.Valid() {
		return nil, "Unknown category."
	}
	switch req.Status {
	case "", models.PostStatusDraft, models.PostStatusPublished, models.PostStatusScheduled:
	default:
		return nil, "Unknown status."
	}

	content := req.Content
	if req.ContentFormat == "markdown" {
		html, err := markdown.ToHTML(content)
		if err != nil {
			return nil, "Markdown conversion failed."
		}
		content = html
	}

	return &models.Post{
		Title:      strings.TrimSpace(req.Title),
		Content:    content,
		Excerpt:    strings.TrimSpace(req.Excerpt),
		CoverImage: req.CoverImage,
		Category:   req.Category,
		Tags:       req.Tags,
		Status:     req.Status,
		Featured:   req.Featured,
		SEO:        req.SEO,
	}, ""
}

// Create adds a new post owned by the authenticated user.
func (h *Posts) Create(w http.ResponseWriter, r *http.Request) {
	var req postRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	post, msg := fromRequest(&req)
	if msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}
	post.AuthorID = middleware.SessionFromCtx(r.Context()).UserID

	created, err := h.posts.Create(post)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	h.invalidate(r)
	respondData(w, http.StatusCreated, created)
}

// loadOwned fetches a post by the id URL param and enforces the
// author-or-admin ownership rule. Writes the error response itself and
// returns nil when the caller should stop.
func (h *Posts) loadOwned(w http.ResponseWriter, r *http.Request) *models.Post {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid post id")
		return nil
	}

	post, err := h.posts.FindByID(id)
	if err != nil {
		respondServiceError(w, err)
		return nil
	}
	if post == nil {
		respondError(w, http.StatusNotFound, "post not found")
		return nil
	}

	sess := middleware.SessionFromCtx(r.Context())
	if post.AuthorID != sess.UserID && sess.Role != "admin" {
		respondError(w, http.StatusForbidden, "not your post")
		return nil
	}
	return post
}

// Update replaces an existing post's editable fields.
func (h *Posts) Update(w http.ResponseWriter, r *http.Request) {
	existing := h.loadOwned(w, r)
	if existing == nil {
		return
	}

	var req postRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	post, msg := fromRequest(&req)
	if msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}
	post.ID = existing.ID

	updated, err := h.posts.Update(post)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	h.invalidate(r)
	respondData(w, http.StatusOK, updated)
}

// Delete removes a post.
func (h *Posts) Delete(w http.ResponseWriter, r *http.Request) {
	existing := h.loadOwned(w, r)
	if existing == nil {
		return
	}

	if err := h.posts.Delete(existing.ID); err != nil {
		respondServiceError(w, err)
		return
	}

	h.invalidate(r)
	respondData(w, http.StatusOK, nil)
}

// AdminList serves all posts regardless of status, drafts included.
func (h *Posts) AdminList(w http.ResponseWriter, r *http.Request) {
	page, limit := listParams(r)
	q := r.URL.Query()

	posts, total, err := h.posts.List(store.PostFilter{
		Status:   models.PostStatus(q.Get("status")),
		Category: models.Category(q.Get("category")),
		Search:   strings.TrimSpace(q.Get("search")),
		Sort:     q.Get("sort"),
		Asc:      q.Get("order") == "asc",
		Page:     page,
		Limit:    limit,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if posts == nil {
		posts = []models.Post{}
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    posts,
		"pagination": pagination{
			Page:  page,
			Limit: limit,
			Total: total,
			Pages: (total + limit - 1) / limit,
		},
	})
}

// SetFeatured toggles the featured flag on a post (admin only).
func (h *Posts) SetFeatured(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid post id")
		return
	}

	var req struct {
		Featured bool `json:"featured"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.posts.SetFeatured(id, req.Featured); err != nil {
		respondServiceError(w, err)
		return
	}

	h.invalidate(r)
	respondData(w, http.StatusOK, nil)
}
