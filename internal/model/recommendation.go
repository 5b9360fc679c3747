package model

import "time"

// Recommendation is one shelf entry.
//
// Seq is the store-assigned insertion sequence. It orders the feed
// (newest first) and is what pagination cursors point at, so it is kept
// out of the JSON form.
type Recommendation struct {
	Seq        int64     `json:"-"          db:"seq"`
	ID         string    `json:"id"         db:"id"`
	Title      string    `json:"title"      db:"title"`
	Genre      string    `json:"genre"      db:"genre"`
	Link       string    `json:"link"       db:"link"`
	Blurb      string    `json:"blurb"      db:"blurb"`
	OwnerID    string    `json:"ownerId"    db:"owner_id"`
	IsFeatured bool      `json:"isFeatured" db:"is_featured"`
	CreatedAt  time.Time `json:"createdAt"  db:"created_at"`
}

// RecommendationWithAuthor is the read-side shape: the record plus its
// owner's directory entry. Author is nil when the owner no longer resolves.
type RecommendationWithAuthor struct {
	Recommendation
	Author *User `json:"author"`
}

// Page is one slice of a paginated listing.
//
// Cursor is opaque to callers; pass it back unchanged to get the next page.
// Once IsDone is true, calling again with Cursor yields an empty page.
type Page[T any] struct {
	Items  []T    `json:"page"`
	Cursor string `json:"continueCursor"`
	IsDone bool   `json:"isDone"`
}
