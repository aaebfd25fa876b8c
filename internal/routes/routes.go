package routes

// Route is a logical public route whose rendered output may be cached.
type Route string

const (
	Blog       Route = "/blog"
	Sitemap    Route = "/sitemap.xml"
	Admin      Route = "/admin"
	AdminUsers Route = "/admin/users"
)

func Post(slug string) Route {
	return Route("/blog/" + slug)
}

func Strings(rs []Route) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = string(r)
	}
	return out
}

func FromStrings(ss []string) []Route {
	out := make([]Route, len(ss))
	for i, s := range ss {
		out[i] = Route(s)
	}
	return out
}
