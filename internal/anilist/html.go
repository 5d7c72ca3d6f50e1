package anilist

import (
	"encoding/json"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
)

// maxBodyMessage caps how much of an unexpected response body ends up in an error.
const maxBodyMessage = 200

// bodyMessage extracts a human-readable message from a failed response body.
// GraphQL error payloads yield their first message; HTML pages (CDN error
// pages, maintenance notices) are reduced to their text.
func bodyMessage(body []byte, contentType string) string {
	var payload graphQLResponse
	if err := json.Unmarshal(body, &payload); err == nil && len(payload.Errors) > 0 {
		return firstMessage(payload.Errors)
	}

	text := string(body)
	if strings.Contains(contentType, "html") || strings.HasPrefix(strings.TrimSpace(text), "<") {
		text = stripHTML(text)
	}
	return truncate(strings.TrimSpace(collapseWhitespace(text)), maxBodyMessage)
}

// stripHTML removes markup and returns visible text, skipping scripts and styles.
func stripHTML(s string) string {
	if s == "" {
		return ""
	}

	doc, err := html.Parse(strings.NewReader(s))
	if err != nil {
		return collapseWhitespace(html.UnescapeString(htmlTagRegex.ReplaceAllString(s, " ")))
	}

	var buf strings.Builder
	extractText(doc, &buf)
	return strings.TrimSpace(collapseWhitespace(buf.String()))
}

func extractText(n *html.Node, buf *strings.Builder) {
	if n.Type == html.ElementNode {
		switch n.Data {
		case "script", "style":
			return
		}
	}
	if n.Type == html.TextNode {
		buf.WriteString(n.Data)
		buf.WriteString(" ")
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		extractText(c, buf)
	}
}

var (
	htmlTagRegex    = regexp.MustCompile(`<[^>]*>`)
	whitespaceRegex = regexp.MustCompile(`\s+`)
)

func collapseWhitespace(s string) string {
	return whitespaceRegex.ReplaceAllString(s, " ")
}

// truncate shortens s to at most n runes, marking the cut with an ellipsis.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "…"
}
