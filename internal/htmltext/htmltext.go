// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package htmltext inspects HTML article bodies: word counts for read-time
// estimates and heading counts for structural validation of generated
// content.
package htmltext

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// wordsPerMinute is the assumed reading speed for read-time estimates.
const wordsPerMinute = 200

// WordCount returns the number of whitespace-separated words in the text
// content of the given HTML. Markup is stripped first; if the input does
// not parse as HTML it is counted as plain text.
func WordCount(src string) int {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(src))
	if err != nil {
		return len(strings.Fields(src))
	}
	// Collect text nodes individually. doc.Text() concatenates adjacent
	// elements without a separator, fusing the last word of one block with
	// the first word of the next.
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, root := range doc.Nodes {
		walk(root)
	}
	return len(strings.Fields(b.String()))
}

// HeadingCount returns how many elements matching the given heading
// selector (e.g. "h1") appear in the HTML.
func HeadingCount(html, selector string) int {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return 0
	}
	return doc.Find(selector).Length()
}

// ReadTime estimates reading time for an HTML body at 200 words per
// minute, rounded up, as a display string like "5 min read". Even empty
// content reads as one minute.
func ReadTime(html string) string {
	words := WordCount(html)
	minutes := (words + wordsPerMinute - 1) / wordsPerMinute
	if minutes < 1 {
		minutes = 1
	}
	return fmt.Sprintf("%d min read", minutes)
}
