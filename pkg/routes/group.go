// Package routes declares HTTP routes as data and registers them on a ServeMux.
package routes

import "net/http"

// Group represents a collection of routes under a common URL prefix.
// Groups can contain child groups for hierarchical route organization.
type Group struct {
	Prefix      string
	Description string
	Routes      []Route
	Children    []Group
}

// Route represents an HTTP route with method, pattern, and handler.
// Middleware wraps only this route, applied outermost first.
type Route struct {
	Method     string
	Pattern    string
	Handler    http.HandlerFunc
	Middleware []func(http.Handler) http.Handler
}

// Register mounts every route of groups on mux beneath basePath.
func Register(mux *http.ServeMux, basePath string, groups ...Group) {
	for _, group := range groups {
		registerGroup(mux, basePath, group)
	}
}

func registerGroup(mux *http.ServeMux, parentPrefix string, group Group) {
	fullPrefix := parentPrefix + group.Prefix
	for _, route := range group.Routes {
		var handler http.Handler = route.Handler
		for i := len(route.Middleware) - 1; i >= 0; i-- {
			handler = route.Middleware[i](handler)
		}
		mux.Handle(route.Method+" "+fullPrefix+route.Pattern, handler)
	}
	for _, child := range group.Children {
		registerGroup(mux, fullPrefix, child)
	}
}

// With returns a copy of g whose routes, children included, run mw before
// their own middleware.
func (g Group) With(mw ...func(http.Handler) http.Handler) Group {
	out := g
	out.Routes = make([]Route, len(g.Routes))
	for i, r := range g.Routes {
		r.Middleware = append(append([]func(http.Handler) http.Handler{}, mw...), r.Middleware...)
		out.Routes[i] = r
	}
	out.Children = make([]Group, len(g.Children))
	for i, c := range g.Children {
		out.Children[i] = c.With(mw...)
	}
	return out
}
