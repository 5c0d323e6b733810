// Package details fetches and extracts structured fields from event
// detail pages.
package details

import (
	"bytes"
	"fmt"
	"html"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonesrussell/poliswatch/internal/domain"
	"github.com/jonesrussell/poliswatch/internal/timeparse"
)

// Selectors configures where extraction looks for each detail field.
// Fields are extracted independently; a selector that matches nothing
// leaves its field empty.
type Selectors struct {
	Subtitle         string
	Body             string
	Sender           string
	PublishedDisplay string
	PublishedTime    string
}

// DefaultSelectors returns selectors matching the polisen.se event page
// layout.
func DefaultSelectors() Selectors {
	return Selectors{
		Subtitle:         "p.preamble, .introduction p",
		Body:             "div.editorial-html, div.text-body, article .body",
		Sender:           ".article-meta .author, .byline",
		PublishedDisplay: ".article-meta time, time.published",
		PublishedTime:    "time[datetime]",
	}
}

// Extractor extracts detail fields from a fetched detail page.
type Extractor interface {
	Extract(pageURL string, body []byte) (domain.DetailFields, error)
}

// HTMLExtractor implements Extractor using goquery.
type HTMLExtractor struct {
	selectors Selectors
}

// NewHTMLExtractor creates an extractor with the given selectors.
func NewHTMLExtractor(selectors Selectors) *HTMLExtractor {
	return &HTMLExtractor{selectors: selectors}
}

// Extract parses the page and pulls each configured field best effort.
// Only an unreadable document is an error; absent fields are not.
func (e *HTMLExtractor) Extract(pageURL string, body []byte) (domain.DetailFields, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return domain.DetailFields{}, fmt.Errorf("parse detail page %s: %w", pageURL, err)
	}

	fields := domain.DetailFields{
		Subtitle:         extractText(doc, e.selectors.Subtitle),
		Body:             extractBody(doc, e.selectors.Body),
		Sender:           extractText(doc, e.selectors.Sender),
		PublishedDisplay: extractText(doc, e.selectors.PublishedDisplay),
	}
	fields.PublishedAt = extractPublishedTime(doc, e.selectors.PublishedTime)

	return fields, nil
}

// extractText returns the trimmed text of the first selector match.
func extractText(doc *goquery.Document, sel string) string {
	if sel == "" {
		return ""
	}

	return strings.TrimSpace(doc.Find(sel).First().Text())
}

// extractBody returns the flattened inner HTML of the first selector match.
func extractBody(doc *goquery.Document, sel string) string {
	if sel == "" {
		return ""
	}

	fragment, err := doc.Find(sel).First().Html()
	if err != nil || fragment == "" {
		return ""
	}

	return FlattenHTML(fragment)
}

// extractPublishedTime parses the datetime attribute of the first match.
func extractPublishedTime(doc *goquery.Document, sel string) *time.Time {
	if sel == "" {
		return nil
	}

	attr, ok := doc.Find(sel).First().Attr("datetime")
	if !ok {
		return nil
	}

	attr = strings.TrimSpace(attr)
	if attr == "" {
		return nil
	}

	for _, layout := range []string{time.RFC3339, timeparse.FeedLayout} {
		if ts, err := time.Parse(layout, attr); err == nil {
			return &ts
		}
	}

	return nil
}

var (
	brPattern        = regexp.MustCompile(`(?i)<br\s*/?>`)
	paragraphPattern = regexp.MustCompile(`(?i)</?p(\s[^>]*)?>`)
	tagPattern       = regexp.MustCompile(`<[^>]+>`)
	newlineRuns      = regexp.MustCompile(`\n{3,}`)
)

// FlattenHTML reduces an HTML fragment to readable text. Line breaks
// become newlines, paragraph boundaries become blank lines, remaining
// tags are dropped, entities are unescaped, and runs of three or more
// newlines collapse to two.
func FlattenHTML(fragment string) string {
	text := brPattern.ReplaceAllString(fragment, "\n")
	text = paragraphPattern.ReplaceAllString(text, "\n\n")
	text = tagPattern.ReplaceAllString(text, "")
	text = html.UnescapeString(text)
	text = newlineRuns.ReplaceAllString(text, "\n\n")

	return strings.TrimSpace(text)
}
