package stories

import (
	"regexp"

	"newhackers-api/core/domain"
	"newhackers-api/core/errors"
)

// Page identifiers with a fixed upstream path.
const (
	FrontPage = "frontpage"
	AskPage   = "ask"
)

var (
	cursorPattern = regexp.MustCompile(`^[A-Za-z0-9_-]*$`)
	itemPattern   = regexp.MustCompile(`^[0-9]+$`)
)

// PageResolver maps public page and item identifiers to upstream resources.
type PageResolver interface {
	Listing(pageID string) (domain.Resource, error)
	Item(itemID string) (domain.Resource, error)
}

// DefaultResolver maps identifiers the way the upstream site names its pages:
// the front page, the ask page and "x?fnid=<cursor>" for every later page.
type DefaultResolver struct{}

// Listing resolves a page id. Empty and FrontPage both mean the front page.
func (DefaultResolver) Listing(pageID string) (domain.Resource, error) {
	if !cursorPattern.MatchString(pageID) {
		return domain.Resource{}, &errors.ValidationError{
			Field:   "page",
			Message: "must only contain letters, digits, '-' and '_'",
		}
	}

	var path string
	switch pageID {
	case "", FrontPage:
		pageID, path = "", ""
	case AskPage:
		path = "ask"
	default:
		path = "x?fnid=" + pageID
	}

	return domain.Resource{
		Key:  domain.PagesPrefix + pageID,
		Path: path,
		Kind: domain.KindListing,
	}, nil
}

// Item resolves a numeric item id.
func (DefaultResolver) Item(itemID string) (domain.Resource, error) {
	if !itemPattern.MatchString(itemID) {
		return domain.Resource{}, &errors.ValidationError{
			Field:   "item_id",
			Message: "must be a decimal number",
		}
	}

	return domain.Resource{
		Key:  domain.CommentsPrefix + itemID,
		Path: "item?id=" + itemID,
		Kind: domain.KindItem,
	}, nil
}
