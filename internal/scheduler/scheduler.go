// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package scheduler drives automated article generation. Each run claims
// the oldest pending topic, generates an article for it, persists the
// article as a published post, and marks the topic used. A failed run
// releases the claim so the topic stays in the queue.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"nextping/internal/ai"
	"nextping/internal/models"
)

// ErrNoPendingTopics signals that the queue is empty. Callers treat it as
// a normal outcome, not a failure.
var ErrNoPendingTopics = errors.New("scheduler: no pending topics")

// claimTTL is how long a claim may sit before the reaper considers the
// run dead and releases the topic.
const claimTTL = 30 * time.Minute

// TopicQueue is the claim lifecycle the scheduler needs from the topic store.
type TopicQueue interface {
	ClaimNext() (*models.Topic, error)
	MarkUsed(id uuid.UUID) error
	Release(id uuid.UUID) error
	ReleaseAbandoned(cutoff time.Time) (int, error)
}

// PostCreator persists generated articles. Implemented by store.PostStore.
type PostCreator interface {
	Create(p *models.Post) (*models.Post, error)
}

// Generator produces article content for a topic. Implemented by ai.Client.
type Generator interface {
	Generate(ctx context.Context, topic string) (*ai.Result, error)
}

// CoverAttacher optionally produces a cover image URL for a topic.
type CoverAttacher interface {
	Enabled() bool
	Attach(ctx context.Context, topic string) (string, error)
}

// RunResult reports what a successful run produced.
type RunResult struct {
	Topic *models.Topic `json:"topic"`
	Post  *models.Post  `json:"post"`
}

// Runner executes generation runs against the topic queue.
type Runner struct {
	topics   TopicQueue
	posts    PostCreator
	gen      Generator
	covers   CoverAttacher
	authorID uuid.UUID
}

// NewRunner creates a Runner. authorID is the system account that owns
// generated posts. covers may be nil when no image pipeline is configured.
func NewRunner(topics TopicQueue, posts PostCreator, gen Generator, covers CoverAttacher, authorID uuid.UUID) *Runner {
	return &Runner{
		topics:   topics,
		posts:    posts,
		gen:      gen,
		covers:   covers,
		authorID: authorID,
	}
}

// Run executes one generation cycle: claim, generate, persist, mark used.
// Returns ErrNoPendingTopics when the queue is empty. On generation or
// persistence failure the claim is released and the error returned.
// Claims abandoned by a crashed run are swept back to pending first, so a
// dead claim can only stall its topic for claimTTL.
func (r *Runner) Run(ctx context.Context) (*RunResult, error) {
	if n, err := r.topics.ReleaseAbandoned(time.Now().Add(-claimTTL)); err != nil {
		slog.Error("release abandoned claims failed", "error", err)
	} else if n > 0 {
		slog.Warn("released abandoned topic claims", "count", n)
	}

	topic, err := r.topics.ClaimNext()
	if err != nil {
		return nil, fmt.Errorf("claim topic: %w", err)
	}
	if topic == nil {
		return nil, ErrNoPendingTopics
	}

	slog.Info("generation run started", "topic", topic.Name, "topic_id", topic.ID)

	result, err := r.gen.Generate(ctx, topic.Name)
	if err != nil {
		r.release(topic)
		return nil, fmt.Errorf("generate article for %q: %w", topic.Name, err)
	}

	post := &models.Post{
		Title:    topic.Name,
		Content:  result.Content,
		Excerpt:  result.Excerpt,
		Category: models.CategoryAI,
		AuthorID: r.authorID,
		Tags:     result.Tags,
		Status:   models.PostStatusPublished,
		SEO: models.SEO{
			MetaTitle:       result.MetaTitle,
			MetaDescription: result.MetaDescription,
			Keywords:        strings.Join(result.Keywords, ", "),
		},
	}

	// Cover generation is best-effort: the article publishes without a
	// cover if the image pipeline fails.
	if r.covers != nil && r.covers.Enabled() {
		url, err := r.covers.Attach(ctx, topic.Name)
		if err != nil {
			slog.Warn("cover generation failed, publishing without cover",
				"topic", topic.Name, "error", err)
		} else {
			post.CoverImage = url
		}
	}

	created, err := r.posts.Create(post)
	if err != nil {
		r.release(topic)
		return nil, fmt.Errorf("persist article for %q: %w", topic.Name, err)
	}

	// The article is persisted; a MarkUsed failure must not undo that.
	// Worst case the topic is generated again and a duplicate draft needs
	// manual cleanup, which beats losing the published article.
	if err := r.topics.MarkUsed(topic.ID); err != nil {
		slog.Error("mark topic used failed after persist",
			"topic_id", topic.ID, "post_id", created.ID, "error", err)
	}

	slog.Info("generation run finished",
		"topic", topic.Name, "post_id", created.ID, "slug", created.Slug)

	return &RunResult{Topic: topic, Post: created}, nil
}

func (r *Runner) release(topic *models.Topic) {
	if err := r.topics.Release(topic.ID); err != nil {
		slog.Error("release claimed topic failed", "topic_id", topic.ID, "error", err)
	}
}
