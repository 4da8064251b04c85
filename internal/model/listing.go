// Package model defines the core domain types shared across the scraper.
package model

import "time"

// Listing is a single apartment post pulled from a listing feed.
type Listing struct {
	Created     time.Time
	ID          string
	Subreddit   string
	Title       string
	Body        string
	Author      string
	Flair       string
	URL         string
	Score       int
	NumComments int
	IsSelf      bool
}

// FullText returns the searchable text of the listing: the title alone for
// link posts, title plus body for self posts with body text.
func (l Listing) FullText() string {
	if l.Body == "" {
		return l.Title
	}
	return l.Title + " " + l.Body
}
