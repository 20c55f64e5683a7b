package handlers

import (
	"strings"
	"unicode/utf8"
)

// Validation limits for post fields, matching what the frontend enforces.
const (
	maxTitleLen    = 100
	maxExcerptLen  = 200
	maxContentLen  = 100_000
	maxMetaTitle   = 100
	maxMetaDesc    = 160
	maxKeywordsLen = 200
	maxTagCount    = 10
	maxTagLen      = 30
	maxTopicLen    = 200
)

// validatePost checks post fields and returns the first error found.
func validatePost(title, content, excerpt string, tags []string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return "Title is required."
	}
	if utf8.RuneCountInString(title) > maxTitleLen {
		return "Title is too long (max 100 characters)."
	}
	if strings.TrimSpace(content) == "" {
		return "Content is required."
	}
	if utf8.RuneCountInString(content) > maxContentLen {
		return "Content is too long (max 100,000 characters)."
	}
	if utf8.RuneCountInString(excerpt) > maxExcerptLen {
		return "Excerpt is too long (max 200 characters)."
	}
	if len(tags) > maxTagCount {
		return "Too many tags (max 10)."
	}
	for _, tag := range tags {
		if utf8.RuneCountInString(tag) > maxTagLen {
			return "Tag is too long (max 30 characters)."
		}
	}
	return ""
}

// validateSEO checks the optional SEO metadata block.
func validateSEO(metaTitle, metaDesc, keywords string) string {
	if utf8.RuneCountInString(metaTitle) > maxMetaTitle {
		return "Meta title is too long (max 100 characters)."
	}
	if utf8.RuneCountInString(metaDesc) > maxMetaDesc {
		return "Meta description is too long (max 160 characters)."
	}
	if utf8.RuneCountInString(keywords) > maxKeywordsLen {
		return "Keywords are too long (max 200 characters)."
	}
	return ""
}

// validateTopic checks a topic name submission.
func validateTopic(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "Topic name is required."
	}
	if utf8.RuneCountInString(name) > maxTopicLen {
		return "Topic name is too long (max 200 characters)."
	}
	return ""
}
