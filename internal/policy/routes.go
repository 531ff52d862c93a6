package policy

import (
	"strings"

	"localserv/internal/domain"
)

// Route binds a path pattern to its requirement. Segments written as {name} match
// any single non-empty segment.
type Route struct {
	Pattern     string
	Requirement Requirement
}

// Routes is the page table of the marketplace.
var Routes = []Route{
	{Pattern: "/", Requirement: Public()},
	{Pattern: "/auth", Requirement: RedirectIfAuthed(HomePath, false)},
	{Pattern: "/service/{id}", Requirement: Public()},
	{Pattern: "/plans", Requirement: Public()},
	{Pattern: "/create", Requirement: RequiresAuth()},
	{Pattern: "/dashboard", Requirement: RequiresAuth()},
	{Pattern: "/profile", Requirement: RequiresAuth()},
	{Pattern: "/admin/login", Requirement: RedirectIfAuthed(AdminHomePath, true)},
	{Pattern: "/admin", Requirement: RequiresAdmin()},
	{Pattern: "/admin/services", Requirement: RequiresAdmin()},
	{Pattern: "/admin/users", Requirement: RequiresAdmin()},
	{Pattern: "/admin/reports", Requirement: RequiresAdmin()},
	{Pattern: "/admin/monetization", Requirement: RequiresAdmin()},
}

// Match finds the route for path and extracts its parameters.
func Match(path string) (Route, map[string]string, bool) {
	segs := splitPath(path)
	for _, rt := range Routes {
		if params, ok := matchPattern(splitPath(rt.Pattern), segs); ok {
			return rt, params, true
		}
	}
	return Route{}, nil, false
}

// Guard evaluates the route table for path. Unknown paths go home.
func Guard(actor domain.ActorState, path string) Decision {
	rt, _, ok := Match(path)
	if !ok {
		return RedirectTo(HomePath)
	}
	return GuardRoute(actor, rt.Requirement)
}

// RequirementFor returns the requirement registered for pattern.
func RequirementFor(pattern string) (Requirement, bool) {
	for _, rt := range Routes {
		if rt.Pattern == pattern {
			return rt.Requirement, true
		}
	}
	return Requirement{}, false
}

func matchPattern(pattern, segs []string) (map[string]string, bool) {
	if len(pattern) != len(segs) {
		return nil, false
	}
	var params map[string]string
	for i, p := range pattern {
		if strings.HasPrefix(p, "{") && strings.HasSuffix(p, "}") {
			if segs[i] == "" {
				return nil, false
			}
			if params == nil {
				params = make(map[string]string)
			}
			params[p[1:len(p)-1]] = segs[i]
			continue
		}
		if p != segs[i] {
			return nil, false
		}
	}
	return params, true
}

func splitPath(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}
