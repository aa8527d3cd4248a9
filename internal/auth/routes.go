package auth

import "strings"

// RouteSet is the allow-list of routes reachable without a token. Anything
// not listed requires a verified bearer token; an unknown path is protected
// rather than open.
type RouteSet struct {
	public []routePattern
}

type routePattern struct {
	method   string
	segments []string
}

func NewRouteSet(public ...string) *RouteSet {
	set := &RouteSet{}
	for _, composite := range public {
		method, path, found := strings.Cut(composite, ":")
		if !found {
			continue
		}
		set.public = append(set.public, routePattern{
			method:   method,
			segments: splitPath(path),
		})
	}
	return set
}

func splitPath(path string) []string {
	return strings.Split(strings.Trim(path, "/"), "/")
}

func (rp routePattern) matches(method string, segments []string) bool {
	if rp.method != method || len(rp.segments) != len(segments) {
		return false
	}
	for i, segment := range rp.segments {
		if strings.HasPrefix(segment, ":") {
			continue
		}
		if segment != segments[i] {
			return false
		}
	}
	return true
}

// IsPublic reports whether the method and path pair may skip verification.
func (rs *RouteSet) IsPublic(method string, path string) bool {
	segments := splitPath(path)
	for _, pattern := range rs.public {
		if pattern.matches(method, segments) {
			return true
		}
	}
	return false
}
