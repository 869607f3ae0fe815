package render

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	urlPattern   = regexp.MustCompile(`^https?://`)
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// Linkify post-processes a rendered fragment: item values that look like
// URLs or email addresses become anchors, and any item container that now
// holds a link is marked clickable as a whole card.
func Linkify(fragment string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return "", fmt.Errorf("parse fragment: %w", err)
	}

	doc.Find(".item-value").Each(func(_ int, sel *goquery.Selection) {
		if sel.Children().Length() > 0 {
			// Level rows and already-linked values stay as they are.
			return
		}
		text := strings.TrimSpace(sel.Text())
		href := ""
		switch {
		case urlPattern.MatchString(text):
			href = text
		case emailPattern.MatchString(text):
			href = "mailto:" + text
		}
		if href == "" {
			return
		}
		sel.Empty()
		anchor := fmt.Sprintf(
			`<a href="%s" target="_blank" rel="noopener noreferrer">%s</a>`,
			href, text,
		)
		sel.AppendHtml(anchor)
	})

	doc.Find(".section-item-container").Each(func(_ int, sel *goquery.Selection) {
		link := sel.Find(".item-value a").First()
		if link.Length() == 0 {
			return
		}
		if href, ok := link.Attr("href"); ok {
			sel.SetAttr("data-card-href", href)
			sel.AddClass("clickable-card")
		}
	})

	out, err := doc.Find("body").Html()
	if err != nil {
		return "", fmt.Errorf("serialize fragment: %w", err)
	}
	return out, nil
}
