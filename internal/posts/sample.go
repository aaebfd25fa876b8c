package posts

import (
	"time"

	"github.com/google/uuid"
)

// SamplePosts is the fixed dataset served when the backing store is
// unconfigured or unreachable.
func SamplePosts() []*Post {
	cover := PlaceholderCover
	sample := func(id, title, slug, excerpt, content string, created, updated string) *Post {
		c := cover
		return &Post{
			ID:            uuid.MustParse(id),
			Title:         title,
			Slug:          slug,
			Excerpt:       excerpt,
			Content:       content,
			CoverImageURL: &c,
			Tags:          []string{},
			IsPublished:   true,
			CreatedAt:     mustTime(created),
			UpdatedAt:     mustTime(updated),
		}
	}
	return []*Post{
		sample(
			"6f1c2a4e-0b7d-4f43-9a11-1d2f0c3b5e01",
			"Pattern libraries documented in Storybook",
			"storybook-pattern-library",
			"Every hero, feature grid, and blog card ships with docs so marketing teams can remix without engineers.",
			`<p>Storybook entries demonstrate marketing-ready layouts. We combine lucide icons, shadcn/ui cards, and Tailwind CSS 4 theming.</p>`,
			"2024-04-22T00:00:00Z", "2024-04-22T00:00:00Z",
		),
		sample(
			"6f1c2a4e-0b7d-4f43-9a11-1d2f0c3b5e02",
			"Supabase-powered editorial workflow",
			"supabase-editorial-workflow",
			"Draft, edit, and publish stories with role-based access, image uploads, and ISR revalidation in under a minute.",
			`<p>The admin dashboard authenticates through Supabase middleware. Posts revalidate the listing, detail route, and sitemap, ensuring SEO freshness.</p>`,
			"2024-03-15T00:00:00Z", "2024-03-15T00:00:00Z",
		),
		sample(
			"6f1c2a4e-0b7d-4f43-9a11-1d2f0c3b5e03",
			"How we ship CreativeDev.Lab launches in days",
			"creative-launch-sprint",
			"A field guide to building conversion-focused marketing sites using Next.js App Router, Supabase, and shadcn/ui.",
			`<p>We start with a conversion brief, wire Storybook-driven components, and publish via Supabase-backed CMS workflows. Every block is statically generated for performance.</p><h2>Tooling stack</h2><ul><li>Next.js App Router + ISR</li><li>Supabase Auth, Postgres, Storage</li><li>Drizzle ORM for schema safety</li><li>shadcn/ui for accessible components</li></ul>`,
			"2024-02-01T00:00:00Z", "2024-02-02T00:00:00Z",
		),
	}
}

func mustTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}
