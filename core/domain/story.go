// ABOUTME: Story domain models represent records scraped from listing and item pages
// ABOUTME: Optional fields are pointers so that job postings serialize them as null

package domain

import "time"

// CommentsCountUnknown marks a story whose page shows a comments link
// but no count that could be parsed.
const CommentsCountUnknown = -1

// StoryRecord is a single submission as shown on a listing page.
type StoryRecord struct {
	// Title is the submission headline
	Title string `json:"title"`

	// Link is either an external URL or a relative "item?id=N" reference
	Link string `json:"link"`

	// Author is nil for job postings
	Author *string `json:"author"`

	// Score is nil for job postings
	Score *int `json:"score"`

	// CommentsCount is 0 for a confirmed zero, CommentsCountUnknown when
	// the count could not be parsed and nil for job postings
	CommentsCount *int `json:"comments_count"`

	// PostedAt is resolved from a relative phrase at parse time
	PostedAt time.Time `json:"posted_at"`
}

// IsJob reports whether the record was classified as a job posting.
func (s *StoryRecord) IsJob() bool {
	return s.Score == nil
}

// StoryPage is one page of a story listing.
type StoryPage struct {
	Stories []StoryRecord `json:"stories"`

	// More is the cursor of the next page, nil for single-item pages
	More *string `json:"more"`
}

// CommentRecord is a single, non-deleted comment.
type CommentRecord struct {
	Author   string    `json:"author"`
	Body     string    `json:"body"`
	Link     string    `json:"link"`
	PostedAt time.Time `json:"posted_at"`
}

// ItemDetail is a story together with the comments on its page.
type ItemDetail struct {
	StoryRecord
	Comments []CommentRecord `json:"comments"`
}

// HasConsistentComments checks the comment count invariant. A known,
// non-negative count must match the number of parsed comments.
func (d *ItemDetail) HasConsistentComments() bool {
	if d.CommentsCount == nil || *d.CommentsCount == CommentsCountUnknown {
		return true
	}
	return *d.CommentsCount == len(d.Comments)
}
