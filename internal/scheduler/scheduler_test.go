// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"nextping/internal/ai"
	"nextping/internal/models"
)

type fakeQueue struct {
	next     *models.Topic
	claimErr error

	usedIDs     []uuid.UUID
	releasedIDs []uuid.UUID
	markUsedErr error
}

func (q *fakeQueue) ClaimNext() (*models.Topic, error) {
	if q.claimErr != nil {
		return nil, q.claimErr
	}
	t := q.next
	q.next = nil
	return t, nil
}

func (q *fakeQueue) MarkUsed(id uuid.UUID) error {
	q.usedIDs = append(q.usedIDs, id)
	return q.markUsedErr
}

func (q *fakeQueue) Release(id uuid.UUID) error {
	q.releasedIDs = append(q.releasedIDs, id)
	return nil
}

func (q *fakeQueue) ReleaseAbandoned(cutoff time.Time) (int, error) {
	return 0, nil
}

type fakePosts struct {
	created   *models.Post
	createErr error
}

func (p *fakePosts) Create(post *models.Post) (*models.Post, error) {
	if p.createErr != nil {
		return nil, p.createErr
	}
	out := *post
	out.ID = uuid.New()
	out.Slug = "generated-slug"
	p.created = &out
	return &out, nil
}

type fakeGen struct {
	result   *ai.Result
	err      error
	gotTopic string
}

func (g *fakeGen) Generate(ctx context.Context, topic string) (*ai.Result, error) {
	g.gotTopic = topic
	return g.result, g.err
}

type fakeCovers struct {
	enabled bool
	url     string
	err     error
	called  bool
}

func (c *fakeCovers) Enabled() bool { return c.enabled }

func (c *fakeCovers) Attach(ctx context.Context, topic string) (string, error) {
	c.called = true
	return c.url, c.err
}

func pendingTopic(name string) *models.Topic {
	return &models.Topic{
		ID:     uuid.New(),
		Name:   name,
		Status: models.TopicStatusPending,
	}
}

func goodResult() *ai.Result {
	return &ai.Result{
		Excerpt:         "An excerpt.",
		Content:         "<h2>Section</h2><p>Body.</p>",
		Tags:            []string{"go", "http"},
		MetaTitle:       "Meta Title",
		MetaDescription: "Meta description.",
		Keywords:        []string{"go", "web", "api"},
	}
}

func TestRunHappyPath(t *testing.T) {
	topic := pendingTopic("Graceful Shutdown in Go")
	queue := &fakeQueue{next: topic}
	posts := &fakePosts{}
	gen := &fakeGen{result: goodResult()}
	authorID := uuid.New()

	r := NewRunner(queue, posts, gen, nil, authorID)
	res, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if gen.gotTopic != topic.Name {
		t.Errorf("generator got topic %q, want %q", gen.gotTopic, topic.Name)
	}

	p := posts.created
	if p == nil {
		t.Fatal("expected a persisted post")
	}
	if p.Title != topic.Name {
		t.Errorf("post title: got %q, want topic name", p.Title)
	}
	if p.Status != models.PostStatusPublished {
		t.Errorf("post status: got %q, want Published", p.Status)
	}
	if p.Category != models.CategoryAI {
		t.Errorf("post category: got %q, want AI", p.Category)
	}
	if p.AuthorID != authorID {
		t.Errorf("post author: got %s, want %s", p.AuthorID, authorID)
	}
	if p.SEO.Keywords != "go, web, api" {
		t.Errorf("keywords: got %q", p.SEO.Keywords)
	}

	if len(queue.usedIDs) != 1 || queue.usedIDs[0] != topic.ID {
		t.Errorf("expected topic marked used, got %v", queue.usedIDs)
	}
	if len(queue.releasedIDs) != 0 {
		t.Errorf("no release expected on success, got %v", queue.releasedIDs)
	}
	if res.Post.ID != p.ID || res.Topic.ID != topic.ID {
		t.Error("result must report the claimed topic and created post")
	}
}

func TestRunEmptyQueue(t *testing.T) {
	r := NewRunner(&fakeQueue{}, &fakePosts{}, &fakeGen{}, nil, uuid.New())

	_, err := r.Run(context.Background())
	if !errors.Is(err, ErrNoPendingTopics) {
		t.Errorf("expected ErrNoPendingTopics, got %v", err)
	}
}

func TestRunGenerateFailureReleasesClaim(t *testing.T) {
	topic := pendingTopic("Doomed Topic")
	queue := &fakeQueue{next: topic}
	genErr := &ai.Error{Kind: ai.KindRateLimited, Message: "throttled"}

	r := NewRunner(queue, &fakePosts{}, &fakeGen{err: genErr}, nil, uuid.New())
	_, err := r.Run(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, genErr) {
		t.Errorf("expected wrapped generation error, got %v", err)
	}

	if len(queue.releasedIDs) != 1 || queue.releasedIDs[0] != topic.ID {
		t.Errorf("failed run must release the claim, got %v", queue.releasedIDs)
	}
	if len(queue.usedIDs) != 0 {
		t.Errorf("failed run must not mark used, got %v", queue.usedIDs)
	}
}

func TestRunPersistFailureReleasesClaim(t *testing.T) {
	topic := pendingTopic("Unpersistable")
	queue := &fakeQueue{next: topic}
	posts := &fakePosts{createErr: errors.New("disk full")}

	r := NewRunner(queue, posts, &fakeGen{result: goodResult()}, nil, uuid.New())
	_, err := r.Run(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}

	if len(queue.releasedIDs) != 1 {
		t.Errorf("persist failure must release the claim, got %v", queue.releasedIDs)
	}
	if len(queue.usedIDs) != 0 {
		t.Errorf("persist failure must not mark used, got %v", queue.usedIDs)
	}
}

func TestRunAttachesCover(t *testing.T) {
	queue := &fakeQueue{next: pendingTopic("Covered Topic")}
	posts := &fakePosts{}
	covers := &fakeCovers{enabled: true, url: "https://cdn.nextping.blog/covers/2026/03/x.png"}

	r := NewRunner(queue, posts, &fakeGen{result: goodResult()}, covers, uuid.New())
	if _, err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if !covers.called {
		t.Error("expected cover attacher to be called")
	}
	if posts.created.CoverImage != covers.url {
		t.Errorf("cover image: got %q, want %q", posts.created.CoverImage, covers.url)
	}
}

func TestRunCoverFailureIsNotFatal(t *testing.T) {
	topic := pendingTopic("Coverless Topic")
	queue := &fakeQueue{next: topic}
	posts := &fakePosts{}
	covers := &fakeCovers{enabled: true, err: errors.New("image model down")}

	r := NewRunner(queue, posts, &fakeGen{result: goodResult()}, covers, uuid.New())
	res, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run must succeed without cover: %v", err)
	}

	if res.Post.CoverImage != "" {
		t.Errorf("expected empty cover image, got %q", res.Post.CoverImage)
	}
	if len(queue.usedIDs) != 1 {
		t.Error("topic must still be marked used")
	}
}

func TestRunDisabledCoversSkipped(t *testing.T) {
	queue := &fakeQueue{next: pendingTopic("Plain Topic")}
	posts := &fakePosts{}
	covers := &fakeCovers{enabled: false}

	r := NewRunner(queue, posts, &fakeGen{result: goodResult()}, covers, uuid.New())
	if _, err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if covers.called {
		t.Error("disabled cover pipeline must not be called")
	}
}

func TestRunMarkUsedFailureStillSucceeds(t *testing.T) {
	queue := &fakeQueue{next: pendingTopic("Sticky Topic"), markUsedErr: errors.New("db hiccup")}
	posts := &fakePosts{}

	r := NewRunner(queue, posts, &fakeGen{result: goodResult()}, nil, uuid.New())
	res, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Post == nil {
		t.Error("persisted article must be reported even if mark-used fails")
	}
}
