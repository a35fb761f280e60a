package library

import (
	"bytes"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	readability "github.com/go-shiori/go-readability"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// DocumentRecord is the catalog entry for one imported document. ID is
// immutable once created. Progress may regress across sessions when the
// reader navigates backward; that is intended.
type DocumentRecord struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Author     string    `json:"author"`
	CoverURL   string    `json:"cover_url,omitempty"`
	Content    []byte    `json:"content"`
	Format     Format    `json:"format"`
	Progress   int       `json:"progress"`
	LastOpened time.Time `json:"last_opened"`
	AddedAt    time.Time `json:"added_at"`
}

// Metadata carries the display fields supplied at import time. Empty fields
// are defaulted by sniffing the content where the format allows it.
type Metadata struct {
	Title    string
	Author   string
	CoverURL string
}

// Format identifies the accepted document formats.
type Format string

const (
	FormatEPUB     Format = "epub"
	FormatPDF      Format = "pdf"
	FormatHTML     Format = "html"
	FormatMarkdown Format = "markdown"
)

var (
	zipMagic = []byte{'P', 'K', 0x03, 0x04}
	pdfMagic = []byte("%PDF-")
)

// DetectFormat classifies content by magic bytes, falling back to HTML tag
// sniffing and finally UTF-8 text. Unrecognized content returns ok=false.
func DetectFormat(content []byte) (Format, bool) {
	if len(content) == 0 {
		return "", false
	}
	if bytes.HasPrefix(content, zipMagic) {
		return FormatEPUB, true
	}
	if bytes.HasPrefix(content, pdfMagic) {
		return FormatPDF, true
	}
	if looksLikeHTML(content) {
		return FormatHTML, true
	}
	if utf8.Valid(content) {
		return FormatMarkdown, true
	}
	return "", false
}

// looksLikeHTML checks the leading bytes for an HTML document marker.
func looksLikeHTML(content []byte) bool {
	head := content
	if len(head) > 1024 {
		head = head[:1024]
	}
	lower := strings.ToLower(string(head))
	return strings.Contains(lower, "<!doctype html") || strings.Contains(lower, "<html")
}

// sniffMetadata fills empty Title/Author fields from the content itself.
// HTML goes through readability; Markdown takes its first level-1 heading.
// Sniffing failures leave the fields empty rather than failing the import.
func sniffMetadata(content []byte, format Format, meta Metadata) Metadata {
	if meta.Title != "" && meta.Author != "" {
		return meta
	}

	switch format {
	case FormatHTML:
		pageURL, _ := url.Parse("file:///imported")
		article, err := readability.FromReader(bytes.NewReader(content), pageURL)
		if err != nil {
			return meta
		}
		if meta.Title == "" {
			meta.Title = strings.TrimSpace(article.Title)
		}
		if meta.Author == "" {
			meta.Author = strings.TrimSpace(article.Byline)
		}
	case FormatMarkdown:
		if meta.Title == "" {
			meta.Title = firstHeading(content)
		}
	}
	return meta
}

// firstHeading returns the text of the first level-1 heading in a Markdown
// document, or empty if there is none.
func firstHeading(source []byte) string {
	doc := goldmark.New().Parser().Parse(text.NewReader(source))

	var title string
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		h, ok := n.(*ast.Heading)
		if !ok || h.Level != 1 {
			return ast.WalkContinue, nil
		}
		var buf bytes.Buffer
		for c := h.FirstChild(); c != nil; c = c.NextSibling() {
			if t, ok := c.(*ast.Text); ok {
				buf.Write(t.Segment.Value(source))
			}
		}
		title = strings.TrimSpace(buf.String())
		return ast.WalkStop, nil
	})
	return title
}
