package router

import "strings"

// LoginPath is where protected transitions are sent without a credential
const LoginPath = "/login"

// Route is one navigable page. Fields are fixed when the table is built.
type Route struct {
	Name         string
	Path         string
	Title        string
	RequiresAuth bool
}

// DefaultRoutes returns the platform's page table
func DefaultRoutes() []Route {
	return []Route{
		{Name: "Home", Path: "/", Title: "Home"},
		{Name: "Novels", Path: "/novels", Title: "Novel square"},
		{Name: "Novel", Path: "/novels/:id", Title: "Novel"},
		{Name: "Chapter", Path: "/novels/:id/chapter/:chapterId", Title: "Chapter"},
		{Name: "Login", Path: LoginPath, Title: "Sign in"},
		{Name: "Register", Path: "/register", Title: "Create account"},
		{Name: "UserProfile", Path: "/profile", Title: "Profile", RequiresAuth: true},
		{Name: "WriteCenter", Path: "/write", Title: "Writing center", RequiresAuth: true},
		{Name: "NovelEditor", Path: "/write/editor/:id", Title: "Editor", RequiresAuth: true},
		{Name: "ChapterManager", Path: "/write/chapters/:id", Title: "Chapters", RequiresAuth: true},
		{Name: "NovelSettings", Path: "/write/settings/:id", Title: "Settings", RequiresAuth: true},
		{Name: "NovelOutline", Path: "/write/outline/:id", Title: "Outline", RequiresAuth: true},
		{Name: "NovelStats", Path: "/write/stats/:id", Title: "Stats", RequiresAuth: true},
		{Name: "Library", Path: "/library", Title: "Library"},
		{Name: "Ranking", Path: "/ranking", Title: "Ranking"},
	}
}

// Location is a resolved navigation target
type Location struct {
	Path   string
	Route  Route
	Params map[string]string
	// Matched is false when no route in the table fits Path
	Matched bool
}

// Table matches paths against a fixed list of routes
type Table struct {
	routes []Route
}

// NewTable copies routes into a table. The first route that fits a path wins.
func NewTable(routes []Route) *Table {
	return &Table{routes: append([]Route(nil), routes...)}
}

// Routes returns a copy of the table's routes
func (t *Table) Routes() []Route {
	return append([]Route(nil), t.routes...)
}

// Resolve finds the route for path. Unknown paths resolve to an
// unmatched location that does not require auth.
func (t *Table) Resolve(path string) Location {
	path = normalize(path)
	for _, route := range t.routes {
		if params, ok := match(route.Path, path); ok {
			return Location{Path: path, Route: route, Params: params, Matched: true}
		}
	}
	return Location{
		Path:  path,
		Route: Route{Name: "NotFound", Path: path, Title: "Not found"},
	}
}

func normalize(path string) string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	path = "/" + strings.Trim(path, "/")
	return path
}

// match compares segment by segment; ":name" segments capture one value
func match(pattern, path string) (map[string]string, bool) {
	want := splitPath(pattern)
	got := splitPath(path)
	if len(want) != len(got) {
		return nil, false
	}

	params := map[string]string{}
	for i, seg := range want {
		if strings.HasPrefix(seg, ":") {
			if got[i] == "" {
				return nil, false
			}
			params[seg[1:]] = got[i]
			continue
		}
		if seg != got[i] {
			return nil, false
		}
	}
	return params, true
}

func splitPath(path string) []string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}
