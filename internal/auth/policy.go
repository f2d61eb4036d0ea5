package auth

import "strings"

// RoutePolicy decides whether a request path may be served without a session.
type RoutePolicy struct {
	// PublicPrefixes match a path root and everything beneath it.
	PublicPrefixes []string
	// PublicPaths match exactly.
	PublicPaths []string
}

// DefaultRoutePolicy allows the auth API, the login and registration pages,
// the site root and the public video listing.
func DefaultRoutePolicy() RoutePolicy {
	return RoutePolicy{
		PublicPrefixes: []string{"/api/auth", "/login", "/register", "/api/videos"},
		PublicPaths:    []string{"/"},
	}
}

// IsPublic reports whether path is reachable without a session.
func (p RoutePolicy) IsPublic(path string) bool {
	for _, exact := range p.PublicPaths {
		if path == exact {
			return true
		}
	}
	for _, prefix := range p.PublicPrefixes {
		if hasPathPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// IsAuthorized reports whether a request for path may proceed. Public paths
// are always allowed; everything else requires verified claims.
func (p RoutePolicy) IsAuthorized(path string, claims *Claims) bool {
	if p.IsPublic(path) {
		return true
	}
	return claims != nil
}

func hasPathPrefix(path, prefix string) bool {
	if !strings.HasPrefix(path, prefix) {
		return false
	}
	if len(path) == len(prefix) || strings.HasSuffix(prefix, "/") {
		return true
	}
	return path[len(prefix)] == '/'
}
