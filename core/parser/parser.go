// ABOUTME: Record parser turns listing and item pages into structured story records
// ABOUTME: Uses goquery selectors and explicit length checks instead of positional guessing

package parser

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"newhackers-api/core/domain"
	"newhackers-api/core/errors"
)

// DefaultPageSize is the number of stories on a full listing page.
const DefaultPageSize = 30

const (
	pageListing = "listing"
	pageItem    = "item"
)

var (
	scorePattern    = regexp.MustCompile(`(\d+)\s+points?`)
	commentsPattern = regexp.MustCompile(`(\d+)\s+comments?`)
)

// Parser extracts records from upstream HTML documents.
type Parser struct {
	pageSize int
}

// Option configures a Parser.
type Option func(*Parser)

// WithPageSize overrides the expected number of stories per listing page.
func WithPageSize(n int) Option {
	return func(p *Parser) {
		if n > 0 {
			p.pageSize = n
		}
	}
}

// NewParser creates a parser expecting DefaultPageSize stories per page.
func NewParser(opts ...Option) *Parser {
	p := &Parser{pageSize: DefaultPageSize}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// PageSize returns the expected number of stories per listing page.
func (p *Parser) PageSize() int {
	return p.pageSize
}

func newDocument(page, html string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, &errors.ParseError{Page: page, Message: fmt.Sprintf("invalid document: %v", err)}
	}
	return doc, nil
}

// titleCells returns the title cells of a page. Rank cells share the class
// but carry a valign attribute.
func titleCells(doc *goquery.Document) *goquery.Selection {
	return doc.Find("td.title").FilterFunction(func(_ int, s *goquery.Selection) bool {
		_, hasValign := s.Attr("valign")
		return !hasValign
	})
}

// parseStory builds a record from a title cell and the metadata cell in the
// row right below it.
func parseStory(page string, cell *goquery.Selection, now time.Time) (domain.StoryRecord, error) {
	var story domain.StoryRecord

	anchor := cell.Find("a").First()
	if anchor.Length() == 0 {
		return story, &errors.ParseError{Page: page, Message: "title cell without a link"}
	}
	story.Title = strings.TrimSpace(anchor.Text())
	story.Link, _ = anchor.Attr("href")

	meta := cell.Closest("tr").Next().Find("td.subtext")
	if meta.Length() != 1 {
		return story, &errors.ParseError{
			Page:    page,
			Message: fmt.Sprintf("no metadata row for %q", story.Title),
		}
	}

	if err := parseMetadata(page, &story, meta, now); err != nil {
		return story, err
	}
	return story, nil
}

func parseMetadata(page string, story *domain.StoryRecord, meta *goquery.Selection, now time.Time) error {
	text := normalizeSpace(meta.Text())

	postedAt, err := ResolveRelativeTime(text, now)
	if err != nil {
		return &errors.ParseError{Page: page, Message: fmt.Sprintf("%q: %v", story.Title, err)}
	}
	story.PostedAt = postedAt

	// Job postings only show the time.
	if !strings.Contains(text, "point") {
		return nil
	}

	m := scorePattern.FindStringSubmatch(text)
	if m == nil {
		return &errors.ParseError{Page: page, Message: fmt.Sprintf("no score for %q", story.Title)}
	}
	score, _ := strconv.Atoi(m[1])
	story.Score = &score

	author := strings.TrimSpace(meta.Find(`a[href^="user?id="]`).First().Text())
	if author == "" {
		author = strings.TrimSpace(meta.Find("a").First().Text())
	}
	if author == "" {
		return &errors.ParseError{Page: page, Message: fmt.Sprintf("no author for %q", story.Title)}
	}
	story.Author = &author

	count := commentsCount(meta)
	story.CommentsCount = &count
	return nil
}

// commentsCount reads the comments link, the last item link of the
// metadata cell.
func commentsCount(meta *goquery.Selection) int {
	text := normalizeSpace(meta.Find(`a[href^="item?id="]`).Last().Text())
	if text == "discuss" {
		return 0
	}
	if m := commentsPattern.FindStringSubmatch(text); m != nil {
		n, _ := strconv.Atoi(m[1])
		return n
	}
	return domain.CommentsCountUnknown
}

// queryParam returns a query parameter of a relative link such as "x?fnid=abc".
func queryParam(href, name string) string {
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return u.Query().Get(name)
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
