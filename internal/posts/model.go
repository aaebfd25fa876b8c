package posts

import (
	"time"

	"github.com/google/uuid"
)

// PlaceholderCover is rendered for posts without a cover image.
const PlaceholderCover = "/images/post-placeholder.svg"

type Post struct {
	ID            uuid.UUID  `json:"id"`
	Title         string     `json:"title"`
	Slug          string     `json:"slug"`
	Excerpt       string     `json:"excerpt"`
	Content       string     `json:"content"`
	CoverImageURL *string    `json:"cover_image_url"`
	Tags          []string   `json:"tags"`
	IsPublished   bool       `json:"is_published"`
	AuthorID      *uuid.UUID `json:"author_id"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func (p *Post) Cover() string {
	if p.CoverImageURL == nil || *p.CoverImageURL == "" {
		return PlaceholderCover
	}
	return *p.CoverImageURL
}

// Draft is a validated, normalized post payload ready for the store.
type Draft struct {
	Title         string
	Slug          string
	Excerpt       string
	Content       string
	CoverImageURL *string
	Tags          []string
	IsPublished   bool
}

// Revision describes an applied update.
type Revision struct {
	PreviousSlug string
	WasPublished bool
	Post         *Post
}

type ListParams struct {
	Limit         int
	Offset        int
	Search        string
	Tag           string
	PublishedOnly bool
	ExcludeSlug   string
}

type ListResult struct {
	Posts  []*Post `json:"data"`
	Total  int64   `json:"total"`
	Limit  int     `json:"limit"`
	Offset int     `json:"offset"`
}
