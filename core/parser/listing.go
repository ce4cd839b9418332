package parser

import (
	"fmt"
	"time"

	"github.com/PuerkitoBio/goquery"

	"newhackers-api/core/domain"
	"newhackers-api/core/errors"
)

// ParseListingPage parses a page of stories. The last title cell holds the
// link to the next page and its fnid becomes StoryPage.More.
func (p *Parser) ParseListingPage(html string, now time.Time) (*domain.StoryPage, error) {
	doc, err := newDocument(pageListing, html)
	if err != nil {
		return nil, err
	}

	titles := titleCells(doc)
	if titles.Length() < 2 {
		return nil, &errors.ParseError{
			Page:    pageListing,
			Message: fmt.Sprintf("expected stories and a navigation link, found %d title cells", titles.Length()),
		}
	}

	storyTitles := titles.Slice(0, titles.Length()-1)
	more, err := moreCursor(titles.Last())
	if err != nil {
		return nil, err
	}

	if n := doc.Find("td.subtext").Length(); n != storyTitles.Length() {
		return nil, &errors.ParseError{
			Page:    pageListing,
			Message: fmt.Sprintf("found %d titles but %d metadata cells", storyTitles.Length(), n),
		}
	}

	stories := make([]domain.StoryRecord, 0, storyTitles.Length())
	var parseErr error
	storyTitles.EachWithBreak(func(_ int, cell *goquery.Selection) bool {
		story, err := parseStory(pageListing, cell, now)
		if err != nil {
			parseErr = err
			return false
		}
		stories = append(stories, story)
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}

	if len(stories) != p.pageSize {
		return nil, &errors.ParseError{
			Page:    pageListing,
			Message: fmt.Sprintf("expected %d stories, found %d", p.pageSize, len(stories)),
		}
	}

	return &domain.StoryPage{Stories: stories, More: &more}, nil
}

func moreCursor(cell *goquery.Selection) (string, error) {
	href, ok := cell.Find("a").First().Attr("href")
	if !ok {
		return "", &errors.ParseError{Page: pageListing, Message: "navigation cell without a link"}
	}
	fnid := queryParam(href, "fnid")
	if fnid == "" {
		return "", &errors.ParseError{
			Page:    pageListing,
			Message: fmt.Sprintf("navigation link %q has no fnid", href),
		}
	}
	return fnid, nil
}
