package obs

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RouteLabel returns the chi route pattern matched for r. Middleware mounted with Use
// runs before routing, so call it after the next handler has returned. Unmatched
// requests get fallback.
func RouteLabel(r *http.Request, fallback string) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if pattern := rc.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return fallback
}

// BranchParam returns the {branch} path parameter of the matched route, if any.
func BranchParam(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		return rc.URLParam("branch")
	}
	return ""
}
