package handlers

import (
	"strings"
	"testing"
)

func TestValidatePost(t *testing.T) {
	tests := []struct {
		name    string
		title   string
		content string
		excerpt string
		tags    []string
		wantOK  bool
	}{
		{"valid", "A Title", "<p>body</p>", "short", []string{"go"}, true},
		{"empty title", "", "<p>body</p>", "", nil, false},
		{"whitespace title", "   ", "<p>body</p>", "", nil, false},
		{"title too long", strings.Repeat("x", 101), "<p>body</p>", "", nil, false},
		{"empty content", "Title", "", "", nil, false},
		{"excerpt too long", "Title", "<p>body</p>", strings.Repeat("x", 201), nil, false},
		{"too many tags", "Title", "<p>body</p>", "", make([]string, 11), false},
		{"tag too long", "Title", "<p>body</p>", "", []string{strings.Repeat("x", 31)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := validatePost(tt.title, tt.content, tt.excerpt, tt.tags)
			if (msg == "") != tt.wantOK {
				t.Errorf("validatePost: got %q, wantOK=%v", msg, tt.wantOK)
			}
		})
	}
}

func TestValidateSEO(t *testing.T) {
	if msg := validateSEO("t", "d", "k"); msg != "" {
		t.Errorf("valid SEO rejected: %q", msg)
	}
	if msg := validateSEO(strings.Repeat("x", 101), "", ""); msg == "" {
		t.Error("expected meta title length error")
	}
	if msg := validateSEO("", strings.Repeat("x", 161), ""); msg == "" {
		t.Error("expected meta description length error")
	}
	if msg := validateSEO("", "", strings.Repeat("x", 201)); msg == "" {
		t.Error("expected keywords length error")
	}
}

func TestValidateTopic(t *testing.T) {
	if msg := validateTopic("Observability on a Budget"); msg != "" {
		t.Errorf("valid topic rejected: %q", msg)
	}
	if msg := validateTopic("  "); msg == "" {
		t.Error("expected error for blank topic")
	}
	if msg := validateTopic(strings.Repeat("x", 201)); msg == "" {
		t.Error("expected error for oversized topic")
	}
}
