package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFindVoteLink(t *testing.T) {
	html := loadFixture(t, "comments.html")

	link, ok := FindVoteLink(html, "4705841", "up")
	assert.True(t, ok)
	assert.Equal(t, "vote?for=4705841&dir=up&whence=%69%74%65%6d%3f%69%64%3d%34%37%30%35%30%36%37", link)

	_, ok = FindVoteLink(html, "4705841", "down")
	assert.False(t, ok, "down arrows are empty spans")

	_, ok = FindVoteLink(html, "1", "up")
	assert.False(t, ok)
}

func TestFindVoteLink_ListingPage(t *testing.T) {
	link, ok := FindVoteLink(loadFixture(t, "front_page.html"), "4698446", "up")
	assert.True(t, ok)
	assert.Equal(t, "vote?for=4698446&dir=up&whence=%2f%78%3f", link)
}

func TestFindLoginFnid(t *testing.T) {
	html := `<html><body><form method=post action="y"><input type=hidden name="fnid" value="Ab3dE"><input type=text name="u"></form></body></html>`

	fnid, ok := FindLoginFnid(html)
	assert.True(t, ok)
	assert.Equal(t, "Ab3dE", fnid)

	_, ok = FindLoginFnid("<html><body>Unknown.</body></html>")
	assert.False(t, ok)
}
