// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// PostStatus represents the publishing state of a blog post.
type PostStatus string

const (
	PostStatusDraft     PostStatus = "Draft"
	PostStatusPublished PostStatus = "Published"
	PostStatusScheduled PostStatus = "Scheduled"
)

// Category is the fixed set of blog categories.
type Category string

const (
	CategoryTechnology     Category = "Technology"
	CategoryProgramming    Category = "Programming"
	CategoryWebDevelopment Category = "Web Development"
	CategoryDesign         Category = "Design"
	CategoryBusiness       Category = "Business"
	CategoryAI             Category = "AI"
	CategoryBackend        Category = "Backend"
	CategoryFrontend       Category = "Frontend"
	CategoryDevOps         Category = "DevOps"
	CategoryCareer         Category = "Career"
	CategoryOther          Category = "Other"
)

// Categories lists every valid category, in display order.
var Categories = []Category{
	CategoryTechnology, CategoryProgramming, CategoryWebDevelopment,
	CategoryDesign, CategoryBusiness, CategoryAI, CategoryBackend,
	CategoryFrontend, CategoryDevOps, CategoryCareer, CategoryOther,
}

// Valid returns true if c is one of the known categories.
func (c Category) Valid() bool {
	for _, v := range Categories {
		if c == v {
			return true
		}
	}
	return false
}

// SEO holds the search metadata block attached to every post.
type SEO struct {
	MetaTitle       string `json:"metaTitle"`
	MetaDescription string `json:"metaDescription"`
	Keywords        string `json:"keywords"`
}

// Post represents a blog article. Content is semantic HTML, either written
// by an author or produced by the generation pipeline. Slug and ReadTime
// are derived fields computed by the store on create/update.
type Post struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Content     string     `json:"content"`
	Excerpt     string     `json:"excerpt"`
	CoverImage  string     `json:"coverImage"`
	Category    Category   `json:"category"`
	AuthorID    uuid.UUID  `json:"authorId"`
	Tags        []string   `json:"tags"`
	Status      PostStatus `json:"status"`
	Featured    bool       `json:"featured"`
	ReadTime    string     `json:"readTime"`
	Views       int        `json:"views"`
	PublishedAt *time.Time `json:"publishDate,omitempty"`
	SEO         SEO        `json:"seo"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// IsPublished returns true if the post is in published status.
func (p *Post) IsPublished() bool {
	return p.Status == PostStatusPublished
}
