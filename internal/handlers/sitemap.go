package handlers

import (
	"context"
	"encoding/xml"
	"net/http"
	"strings"
	"time"

	"github.com/jeremyjsx/creativelab/internal/routes"
)

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	Xmlns   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

// Sitemap lists the landing page, the blog index and every published post.
func (h *PostsHandler) Sitemap(siteURL string) http.HandlerFunc {
	base := strings.TrimRight(siteURL, "/")
	return func(w http.ResponseWriter, r *http.Request) {
		h.serveCached(w, r, routes.Sitemap, "", "application/xml", func(ctx context.Context) ([]byte, error) {
			published, err := h.svc.GetPublishedPosts(ctx, 0)
			if err != nil {
				return nil, err
			}
			today := time.Now().UTC().Format(time.DateOnly)
			set := urlSet{
				Xmlns: "http://www.sitemaps.org/schemas/sitemap/0.9",
				URLs: []sitemapURL{
					{Loc: base + "/", LastMod: today},
					{Loc: base + string(routes.Blog), LastMod: today},
				},
			}
			for _, p := range published {
				set.URLs = append(set.URLs, sitemapURL{
					Loc:     base + string(routes.Post(p.Slug)),
					LastMod: p.UpdatedAt.UTC().Format(time.DateOnly),
				})
			}
			body, err := xml.MarshalIndent(set, "", "  ")
			if err != nil {
				return nil, err
			}
			return append([]byte(xml.Header), body...), nil
		})
	}
}
