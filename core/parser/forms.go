package parser

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// FindVoteLink returns the href of the vote arrow for itemID in the given
// direction ("up" or "down").
func FindVoteLink(html, itemID, direction string) (string, bool) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", false
	}
	href, ok := doc.Find(fmt.Sprintf(`a[id="%s_%s"]`, direction, itemID)).First().Attr("href")
	if !ok || href == "" {
		return "", false
	}
	return href, true
}

// FindLoginFnid returns the hidden form id of the login page.
func FindLoginFnid(html string) (string, bool) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", false
	}
	fnid, ok := doc.Find(`input[name="fnid"]`).First().Attr("value")
	if !ok || fnid == "" {
		return "", false
	}
	return fnid, true
}
