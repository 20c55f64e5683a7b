// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package ai

import "fmt"

// systemPrompt fixes the model's role for every article generation.
const systemPrompt = "You are an expert blog writer and SEO specialist."

// promptTemplate is the deterministic instruction sent for each topic. It
// demands a bare JSON object so the response can be parsed strictly; any
// deviation is treated as malformed output, never repaired.
const promptTemplate = `Write a 100%% original, high-quality, SEO-optimized blog post for the title:

"%s"

Respond with a single JSON object and NOTHING else — no markdown fences, no commentary. The object must have exactly these six keys:

{
  "excerpt": "1-2 sentence plain-text hook for the reader (max 200 characters)",
  "content": "the full post as clean, semantic HTML5",
  "tags": ["5-10 short relevant tags"],
  "metaTitle": "plain text, max 60 characters",
  "metaDescription": "plain text, max 160 characters",
  "keywords": ["primary and secondary keywords"]
}

Rules for "content":
- Use <h1> exactly once, then <h2>/<h3> for structure
- Use <p>, <ul>, <ol>, <strong>, <em>, <blockquote>, <a>, <code>, <table> where appropriate
- Add FAQ sections, examples, and tips as needed
- Minimum length: 800-1200 words
- Friendly, informative, professional tone`

// buildPrompt fills the instruction template for one topic.
func buildPrompt(topic string) string {
	return fmt.Sprintf(promptTemplate, topic)
}

// coverPrompt describes the 16:9 cover illustration requested for a post.
func coverPrompt(topic string) string {
	return fmt.Sprintf(
		"A wide 16:9 editorial blog cover illustration for an article titled %q. "+
			"Modern, clean, minimal style with soft colors. No text in the image.",
		topic,
	)
}
