// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"

	"nextping/internal/models"
)

// testAuthor creates a throwaway user to own test posts.
func testAuthor(t *testing.T, db *sql.DB) *models.User {
	t.Helper()
	email := "author-" + uuid.NewString()[:8] + "@store-test.local"
	user, err := NewUserStore(db).Create("Post Author", email, "pass", models.RoleUser)
	if err != nil {
		t.Fatalf("create test author: %v", err)
	}
	t.Cleanup(func() { cleanUsers(t, db, email) })
	return user
}

func draftPost(author *models.User, title string) *models.Post {
	return &models.Post{
		Title:    title,
		// 399 body words plus the heading: 400 words total.
		Content:  "<h2>Intro</h2><p>" + strings.Repeat("word ", 399) + "</p>",
		Excerpt:  "A short excerpt.",
		Category: models.CategoryProgramming,
		AuthorID: author.ID,
		Tags:     []string{"go", "testing"},
		Status:   models.PostStatusDraft,
	}
}

func TestPostStoreCreateDerivesFields(t *testing.T) {
	db := testDB(t)
	s := NewPostStore(db)
	author := testAuthor(t, db)

	t.Cleanup(func() { cleanPosts(t, db, "derived-fields-post") })

	p, err := s.Create(draftPost(author, "Derived Fields Post!"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if p.Slug != "derived-fields-post" {
		t.Errorf("slug: got %q, want %q", p.Slug, "derived-fields-post")
	}
	// 400 words at 200 wpm.
	if p.ReadTime != "2 min read" {
		t.Errorf("read time: got %q, want %q", p.ReadTime, "2 min read")
	}
	if p.PublishedAt != nil {
		t.Error("draft must not have a publish date")
	}
	if p.Views != 0 {
		t.Errorf("views: got %d, want 0", p.Views)
	}
	if len(p.Tags) != 2 || p.Tags[0] != "go" {
		t.Errorf("tags: got %v", p.Tags)
	}
}

func TestPostStoreSlugLengthCap(t *testing.T) {
	db := testDB(t)
	s := NewPostStore(db)
	author := testAuthor(t, db)

	t.Cleanup(func() { cleanPosts(t, db, "longtitle-") })

	title := "Longtitle " + strings.TrimSpace(strings.Repeat("verylongword ", 12))
	p, err := s.Create(draftPost(author, title))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if len(p.Slug) > maxSlugLength {
		t.Errorf("slug length: got %d, want <= %d (%q)", len(p.Slug), maxSlugLength, p.Slug)
	}
	if strings.HasSuffix(p.Slug, "-") || !strings.HasSuffix(p.Slug, "verylongword") {
		t.Errorf("slug should end on a whole word: %q", p.Slug)
	}
}

func TestPostStoreSlugCollision(t *testing.T) {
	db := testDB(t)
	s := NewPostStore(db)
	author := testAuthor(t, db)

	t.Cleanup(func() { cleanPosts(t, db, "collision-title") })

	first, err := s.Create(draftPost(author, "Collision Title"))
	if err != nil {
		t.Fatalf("Create first: %v", err)
	}
	second, err := s.Create(draftPost(author, "Collision Title"))
	if err != nil {
		t.Fatalf("Create second: %v", err)
	}

	if first.Slug == second.Slug {
		t.Errorf("expected distinct slugs, both got %q", first.Slug)
	}
	if !strings.HasPrefix(second.Slug, "collision-title-") {
		t.Errorf("second slug should carry a suffix, got %q", second.Slug)
	}
}

func TestPostStoreFindBySlugPublishedOnly(t *testing.T) {
	db := testDB(t)
	s := NewPostStore(db)
	author := testAuthor(t, db)

	t.Cleanup(func() { cleanPosts(t, db, "hidden-draft") })

	if _, err := s.Create(draftPost(author, "Hidden Draft")); err != nil {
		t.Fatalf("Create: %v", err)
	}

	// Drafts are invisible on the public path.
	p, err := s.FindBySlug("hidden-draft", true)
	if err != nil {
		t.Fatalf("FindBySlug published-only: %v", err)
	}
	if p != nil {
		t.Error("draft should not be found with publishedOnly=true")
	}

	// But visible when the caller may see drafts.
	p, err = s.FindBySlug("hidden-draft", false)
	if err != nil {
		t.Fatalf("FindBySlug: %v", err)
	}
	if p == nil {
		t.Fatal("expected draft to be found with publishedOnly=false")
	}
}

func TestPostStorePublishTransition(t *testing.T) {
	db := testDB(t)
	s := NewPostStore(db)
	author := testAuthor(t, db)

	t.Cleanup(func() { cleanPosts(t, db, "publish-me") })

	p, err := s.Create(draftPost(author, "Publish Me"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	p.Status = models.PostStatusPublished
	published, err := s.Update(p)
	if err != nil {
		t.Fatalf("Update to published: %v", err)
	}
	if published.PublishedAt == nil {
		t.Fatal("publishing must stamp publish_date")
	}
	if published.Slug != p.Slug {
		t.Errorf("slug must stay stable, got %q want %q", published.Slug, p.Slug)
	}

	// A second update must not move the original publish date.
	published.Title = "Publish Me (edited)"
	edited, err := s.Update(published)
	if err != nil {
		t.Fatalf("Update after publish: %v", err)
	}
	if edited.PublishedAt == nil || !edited.PublishedAt.Equal(*published.PublishedAt) {
		t.Error("publish_date must not change on later edits")
	}
}

func TestPostStoreUpdateNotFound(t *testing.T) {
	db := testDB(t)
	s := NewPostStore(db)
	author := testAuthor(t, db)

	p := draftPost(author, "Ghost")
	p.ID = uuid.New()
	if _, err := s.Update(p); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := s.Delete(uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete: expected ErrNotFound, got %v", err)
	}
}

func TestPostStoreIncrementViews(t *testing.T) {
	db := testDB(t)
	s := NewPostStore(db)
	author := testAuthor(t, db)

	t.Cleanup(func() { cleanPosts(t, db, "view-counter") })

	p, err := s.Create(draftPost(author, "View Counter"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	for i := 0; i < 3; i++ {
		if err := s.IncrementViews(p.ID); err != nil {
			t.Fatalf("IncrementViews: %v", err)
		}
	}

	reloaded, err := s.FindByID(p.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if reloaded.Views != 3 {
		t.Errorf("views: got %d, want 3", reloaded.Views)
	}
}

func TestPostStoreListFilters(t *testing.T) {
	db := testDB(t)
	s := NewPostStore(db)
	author := testAuthor(t, db)

	t.Cleanup(func() { cleanPosts(t, db, "filter-") })

	mk := func(title string, cat models.Category, tags []string, status models.PostStatus) {
		p := draftPost(author, title)
		p.Category = cat
		p.Tags = tags
		p.Status = status
		if _, err := s.Create(p); err != nil {
			t.Fatalf("Create %q: %v", title, err)
		}
	}
	mk("Filter Alpha", models.CategoryAI, []string{"llm"}, models.PostStatusPublished)
	mk("Filter Beta", models.CategoryAI, []string{"llm", "agents"}, models.PostStatusPublished)
	mk("Filter Gamma", models.CategoryDevOps, []string{"docker"}, models.PostStatusDraft)

	// Author scoping keeps this test hermetic against concurrent data.
	base := PostFilter{AuthorID: author.ID, Limit: 50}

	f := base
	f.Status = models.PostStatusPublished
	f.Category = models.CategoryAI
	posts, total, err := s.List(f)
	if err != nil {
		t.Fatalf("List by category: %v", err)
	}
	if total != 2 || len(posts) != 2 {
		t.Errorf("category filter: got %d posts (total %d), want 2", len(posts), total)
	}

	f = base
	f.Tag = "agents"
	posts, _, err = s.List(f)
	if err != nil {
		t.Fatalf("List by tag: %v", err)
	}
	if len(posts) != 1 || posts[0].Title != "Filter Beta" {
		t.Errorf("tag filter: got %v", posts)
	}

	f = base
	f.Search = "gamma"
	posts, _, err = s.List(f)
	if err != nil {
		t.Fatalf("List by search: %v", err)
	}
	if len(posts) != 1 || posts[0].Title != "Filter Gamma" {
		t.Errorf("search filter: got %v", posts)
	}

	// Search must also match terms that appear only in the body.
	bodyOnly := draftPost(author, "Filter Delta")
	bodyOnly.Content = "<h2>Setup</h2><p>Deploying kubracadabra clusters end to end.</p>"
	if _, err := s.Create(bodyOnly); err != nil {
		t.Fatalf("Create body-only post: %v", err)
	}
	f = base
	f.Search = "kubracadabra"
	posts, _, err = s.List(f)
	if err != nil {
		t.Fatalf("List by content search: %v", err)
	}
	if len(posts) != 1 || posts[0].Title != "Filter Delta" {
		t.Errorf("content search: got %v", posts)
	}

	// Pagination: total is the full match count, not the page size.
	f = base
	f.Limit = 2
	f.Page = 2
	posts, total, err = s.List(f)
	if err != nil {
		t.Fatalf("List page 2: %v", err)
	}
	if total != 4 {
		t.Errorf("paginated total: got %d, want 4", total)
	}
	if len(posts) != 2 {
		t.Errorf("page 2 size: got %d, want 2", len(posts))
	}
}

func TestPostStoreRelated(t *testing.T) {
	db := testDB(t)
	s := NewPostStore(db)
	author := testAuthor(t, db)

	t.Cleanup(func() { cleanPosts(t, db, "related-") })

	mk := func(title string, cat models.Category, tags []string) *models.Post {
		p := draftPost(author, title)
		p.Category = cat
		p.Tags = tags
		p.Status = models.PostStatusPublished
		created, err := s.Create(p)
		if err != nil {
			t.Fatalf("Create %q: %v", title, err)
		}
		return created
	}

	anchor := mk("Related Anchor", models.CategoryBackend, []string{"postgres"})
	sameCat := mk("Related Same Category", models.CategoryBackend, []string{"redis"})
	sharedTag := mk("Related Shared Tag", models.CategoryFrontend, []string{"postgres", "sql"})
	mk("Related Unrelated", models.CategoryCareer, []string{"resume"})

	related, err := s.Related(anchor, 5)
	if err != nil {
		t.Fatalf("Related: %v", err)
	}

	got := map[string]bool{}
	for _, r := range related {
		if r.ID == anchor.ID {
			t.Error("related must exclude the post itself")
		}
		got[r.Title] = true
	}
	if !got[sameCat.Title] {
		t.Error("expected same-category post in related")
	}
	if !got[sharedTag.Title] {
		t.Error("expected shared-tag post in related")
	}
	if got["Related Unrelated"] {
		t.Error("unrelated post must not appear")
	}
}
