package events

import (
	"time"

	"github.com/google/uuid"
	"github.com/jeremyjsx/creativelab/internal/routes"
)

const (
	TypeRoutesInvalidated = "routes.invalidated"
	TypePostPublished     = "post.published"
)

type RoutesInvalidated struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Routes    []string  `json:"routes"`
}

func NewRoutesInvalidated(rs []routes.Route) RoutesInvalidated {
	return RoutesInvalidated{
		Type:      TypeRoutesInvalidated,
		Timestamp: time.Now().UTC(),
		Routes:    routes.Strings(rs),
	}
}

type PostPublishedPayload struct {
	PostID  uuid.UUID `json:"post_id"`
	Slug    string    `json:"slug"`
	Title   string    `json:"title"`
	Excerpt string    `json:"excerpt"`
	URL     string    `json:"url"`
}

type PostPublished struct {
	Type      string               `json:"type"`
	Timestamp time.Time            `json:"timestamp"`
	Payload   PostPublishedPayload `json:"payload"`
}

// NewPostPublished builds the event; siteURL is prefixed to the post route.
func NewPostPublished(postID uuid.UUID, slug, title, excerpt, siteURL string) PostPublished {
	return PostPublished{
		Type:      TypePostPublished,
		Timestamp: time.Now().UTC(),
		Payload: PostPublishedPayload{
			PostID:  postID,
			Slug:    slug,
			Title:   title,
			Excerpt: excerpt,
			URL:     siteURL + string(routes.Post(slug)),
		},
	}
}
