package typeroute

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// Router is the central type: it owns the route registry, the document
// cache, and the underlying mux. It implements http.Handler.
//
// The registry is mutable during a bounded registration phase and read-only
// afterwards: Seal makes the transition explicit, and every successful
// registration bumps a version counter that invalidates the cached OpenAPI
// document.
type Router struct {
	mux        *http.ServeMux
	middleware []Middleware

	mu     sync.Mutex
	routes []routeInfo
	byKey  map[routeKey]int
	sealed bool

	version   atomic.Int64
	specCache atomic.Pointer[cachedSpec]

	title   string
	apiVer  string
	desc    string
	logger  *slog.Logger
	servers []Server
}

type routeKey struct {
	method  string
	pattern string
}

// Server is an OpenAPI server entry.
type Server struct {
	URL         string `json:"url"`
	Description string `json:"description,omitempty"`
}

// RouterOption configures a Router.
type RouterOption func(*Router)

// WithTitle sets the API title (used in the OpenAPI document).
func WithTitle(title string) RouterOption {
	return func(r *Router) {
		r.title = title
	}
}

// WithVersion sets the API version (used in the OpenAPI document).
func WithVersion(version string) RouterOption {
	return func(r *Router) {
		r.apiVer = version
	}
}

// WithAPIDescription sets the API description (used in the OpenAPI document).
func WithAPIDescription(desc string) RouterOption {
	return func(r *Router) {
		r.desc = desc
	}
}

// WithServers sets the OpenAPI servers array.
func WithServers(servers ...Server) RouterOption {
	return func(r *Router) {
		r.servers = servers
	}
}

// WithLogger sets the logger used for recovered per-request errors.
// Defaults to slog.Default().
func WithLogger(logger *slog.Logger) RouterOption {
	return func(r *Router) {
		r.logger = logger
	}
}

// New creates a new Router with the given options.
func New(opts ...RouterOption) *Router {
	r := &Router{
		mux:    http.NewServeMux(),
		byKey:  make(map[routeKey]int),
		title:  "API",
		apiVer: "0.1.0",
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	return r
}

// Use adds middleware to the router. Middleware is applied in the order added.
func (r *Router) Use(mw ...Middleware) {
	r.middleware = append(r.middleware, mw...)
}

// ServeHTTP implements http.Handler.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	handler := http.Handler(r.mux)
	for i := len(r.middleware) - 1; i >= 0; i-- {
		handler = r.middleware[i](handler)
	}
	handler.ServeHTTP(w, req)
}

// ListenAndServe starts an HTTP server on the given address. It blocks
// until the context is cancelled, then shuts down gracefully.
func (r *Router) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// Seal transitions the registry to read-only. Subsequent registrations
// panic with a *RegistrationError. Call it once every route is registered
// so the first document build is guaranteed to see the complete registry.
func (r *Router) Seal() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sealed = true
}

// Routes returns read-only specs for every registered route, in
// registration order.
func (r *Router) Routes() []RouteSpec {
	r.mu.Lock()
	defer r.mu.Unlock()

	specs := make([]RouteSpec, len(r.routes))
	for i := range r.routes {
		specs[i] = r.routes[i].spec()
	}
	return specs
}

// Route looks up the spec for a (method, pattern) pair.
func (r *Router) Route(method, pattern string) (RouteSpec, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i, ok := r.byKey[routeKey{method: method, pattern: pattern}]
	if !ok {
		return RouteSpec{}, false
	}
	return r.routes[i].spec(), true
}

// addRoute registers a routeInfo with the router's mux and stores it for
// document generation. It panics with a *RegistrationError on a duplicate
// (method, pattern) or a sealed registry, leaving the registry unchanged.
func (r *Router) addRoute(ri routeInfo) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sealed {
		panic(&RegistrationError{Method: ri.method, Pattern: ri.pattern, Reason: "registry is sealed"})
	}

	key := routeKey{method: ri.method, pattern: ri.pattern}
	if _, exists := r.byKey[key]; exists {
		panic(&RegistrationError{Method: ri.method, Pattern: ri.pattern, Reason: "duplicate route"})
	}

	r.mux.Handle(ri.method+" "+ri.pattern, ri.handler)
	r.byKey[key] = len(r.routes)
	r.routes = append(r.routes, ri)
	r.version.Add(1)
}

// Registrar implementation for Router.

func (r *Router) fullPattern(pattern string) string { return pattern }
func (r *Router) routeMiddleware() []Middleware     { return nil }
func (r *Router) routeLogger() *slog.Logger         { return r.logger }
