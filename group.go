package typeroute

import "log/slog"

// Group is a collection of routes under a shared prefix with shared
// middleware and tags. The prefix participates in path-segment inference,
// so a group mounted at "/orgs/{org}" makes "org" a path parameter for
// every route it registers.
type Group struct {
	router     *Router
	prefix     string
	middleware []Middleware
	tags       []string
}

// GroupOption configures a Group.
type GroupOption func(*Group)

// WithGroupTags adds default tags to all routes registered on the group.
func WithGroupTags(tags ...string) GroupOption {
	return func(g *Group) {
		g.tags = append(g.tags, tags...)
	}
}

// WithGroupMiddleware adds middleware to the group.
func WithGroupMiddleware(mw ...Middleware) GroupOption {
	return func(g *Group) {
		g.middleware = append(g.middleware, mw...)
	}
}

// Group creates a new route group with the given prefix and options.
func (r *Router) Group(prefix string, opts ...GroupOption) *Group {
	g := &Group{
		router: r,
		prefix: prefix,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Registrar implementation for Group.

func (g *Group) addRoute(ri routeInfo) {
	ri.tags = append(append([]string(nil), g.tags...), ri.tags...)
	g.router.addRoute(ri)
}

func (g *Group) fullPattern(pattern string) string { return g.prefix + pattern }
func (g *Group) routeMiddleware() []Middleware     { return g.middleware }
func (g *Group) routeLogger() *slog.Logger         { return g.router.logger }
