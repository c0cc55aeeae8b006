package utils

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var fenceLangPattern = regexp.MustCompile(`^[a-zA-Z]*\s*$`)

// CleanMarkdown strips conversational filler and outer markdown code blocks.
// It ensures the output is pure Markdown ready for rendering.
func CleanMarkdown(input string) string {
	cleaned := strings.TrimSpace(input)

	if strings.HasPrefix(cleaned, "```") && strings.HasSuffix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```")
		cleaned = strings.TrimSuffix(cleaned, "```")
		// Drop a fence language tag like "markdown" or "json".
		if idx := strings.Index(cleaned, "\n"); idx != -1 && fenceLangPattern.MatchString(cleaned[:idx]) {
			cleaned = cleaned[idx+1:]
		}
		cleaned = strings.TrimSpace(cleaned)
	}

	return cleaned
}

var htmlRenderer = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
)

// RenderMarkdownHTML converts a Markdown document to HTML. Tables render via
// the GFM extension.
func RenderMarkdownHTML(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := htmlRenderer.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("markdown rendering failed: %w", err)
	}
	return buf.String(), nil
}
