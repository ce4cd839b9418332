package parser

import (
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"newhackers-api/core/domain"
	"newhackers-api/core/errors"
)

// ParseItemPage parses a single story and its comments.
func (p *Parser) ParseItemPage(html string, now time.Time) (*domain.ItemDetail, error) {
	doc, err := newDocument(pageItem, html)
	if err != nil {
		return nil, err
	}

	titles := titleCells(doc)
	if titles.Length() != 1 {
		return nil, &errors.ParseError{
			Page:    pageItem,
			Message: fmt.Sprintf("expected one title cell, found %d", titles.Length()),
		}
	}
	if n := doc.Find("td.subtext").Length(); n != 1 {
		return nil, &errors.ParseError{
			Page:    pageItem,
			Message: fmt.Sprintf("expected one metadata cell, found %d", n),
		}
	}

	story, err := parseStory(pageItem, titles, now)
	if err != nil {
		return nil, err
	}

	comments, err := parseComments(doc, now)
	if err != nil {
		return nil, err
	}

	detail := &domain.ItemDetail{StoryRecord: story, Comments: comments}
	if !detail.HasConsistentComments() {
		return nil, &errors.ParseError{
			Page:    pageItem,
			Message: fmt.Sprintf("story reports %d comments, page has %d", *story.CommentsCount, len(comments)),
		}
	}
	return detail, nil
}

func parseComments(doc *goquery.Document, now time.Time) ([]domain.CommentRecord, error) {
	// The domain label next to the title is also a comhead.
	heads := doc.Find("span.comhead").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return s.Closest("td.title").Length() == 0
	})
	bodies := doc.Find("span.comment")
	if heads.Length() != bodies.Length() {
		return nil, &errors.ParseError{
			Page:    pageItem,
			Message: fmt.Sprintf("found %d comment heads but %d bodies", heads.Length(), bodies.Length()),
		}
	}

	comments := make([]domain.CommentRecord, 0, heads.Length())
	for i := 0; i < heads.Length(); i++ {
		head := heads.Eq(i)
		text := normalizeSpace(head.Text())
		if text == "" {
			continue
		}

		author := strings.TrimSpace(head.Find(`a[href^="user?id="]`).First().Text())
		postedAt, err := ResolveRelativeTime(text, now)
		if author == "" || err != nil {
			continue
		}

		link := ""
		if href, ok := head.Find(`a[href^="item?id="]`).First().Attr("href"); ok {
			link = queryParam(href, "id")
		}
		if link == "" {
			return nil, &errors.ParseError{
				Page:    pageItem,
				Message: fmt.Sprintf("comment by %s has no link", author),
			}
		}

		comments = append(comments, domain.CommentRecord{
			Author:   author,
			Body:     commentBody(bodies.Eq(i)),
			Link:     link,
			PostedAt: postedAt,
		})
	}
	return comments, nil
}

func commentBody(s *goquery.Selection) string {
	body := s.Clone()
	body.Find(`a[href^="reply"]`).Remove()
	return strings.TrimSpace(body.Text())
}
