package htmltext

import (
	"strings"
	"testing"
)

func TestWordCountStripsMarkup(t *testing.T) {
	html := "<h1>Title Here</h1><p>One two <strong>three</strong> four.</p>"
	if got := WordCount(html); got != 6 {
		t.Errorf("WordCount: got %d, want 6", got)
	}
}

func TestWordCountAdjacentBlocks(t *testing.T) {
	// No whitespace between elements: the heading's last word and the
	// paragraph's first word must not fuse into one.
	html := "<h2>Getting Started</h2><p>Install the binary first.</p><h2>Usage</h2><p>Run it.</p>"
	if got := WordCount(html); got != 9 {
		t.Errorf("WordCount: got %d, want 9", got)
	}
}

func TestWordCountEmpty(t *testing.T) {
	if got := WordCount(""); got != 0 {
		t.Errorf("WordCount(\"\"): got %d, want 0", got)
	}
}

func TestHeadingCount(t *testing.T) {
	html := "<h1>Main</h1><h2>Sub</h2><h2>Other</h2><p>body</p>"
	if got := HeadingCount(html, "h1"); got != 1 {
		t.Errorf("HeadingCount h1: got %d, want 1", got)
	}
	if got := HeadingCount(html, "h2"); got != 2 {
		t.Errorf("HeadingCount h2: got %d, want 2", got)
	}
	if got := HeadingCount("<p>no headings</p>", "h1"); got != 0 {
		t.Errorf("HeadingCount none: got %d, want 0", got)
	}
}

func TestReadTimeRoundsUp(t *testing.T) {
	cases := []struct {
		words int
		want  string
	}{
		{1, "1 min read"},
		{200, "1 min read"},
		{201, "2 min read"},
		{1000, "5 min read"},
		{0, "1 min read"},
	}

	for _, c := range cases {
		html := "<p>" + strings.TrimSpace(strings.Repeat("word ", c.words)) + "</p>"
		if got := ReadTime(html); got != c.want {
			t.Errorf("ReadTime(%d words): got %q, want %q", c.words, got, c.want)
		}
	}
}
