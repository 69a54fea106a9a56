package typeroute

import (
	"encoding/json"
	"html/template"
	"io"
	"net/http"

	"gopkg.in/yaml.v3"
)

// DocsOption configures the documentation endpoints.
type DocsOption func(*docsConfig)

type docsConfig struct {
	title    string
	specPath string
	docsPath string
}

// WithDocsTitle sets the page title for the docs UI.
func WithDocsTitle(title string) DocsOption {
	return func(c *docsConfig) {
		c.title = title
	}
}

// WithSpecPath sets the path serving the JSON document (default /openapi.json).
func WithSpecPath(path string) DocsOption {
	return func(c *docsConfig) {
		c.specPath = path
	}
}

// WithDocsPath sets the path serving the docs UI (default /docs).
func WithDocsPath(path string) DocsOption {
	return func(c *docsConfig) {
		c.docsPath = path
	}
}

// Docs returns middleware that serves the OpenAPI document and a static
// documentation UI ahead of normal dispatch. GET on the spec path returns
// the cached document as JSON; GET on the docs path returns an HTML shell
// pointing at the spec path; every other request passes through unchanged.
//
// Add it after all routes are registered (or Seal the registry first) so
// the first document build reflects the complete registry.
func (r *Router) Docs(opts ...DocsOption) Middleware {
	cfg := &docsConfig{
		title:    r.title,
		specPath: "/openapi.json",
		docsPath: "/docs",
	}
	for _, opt := range opts {
		opt(cfg)
	}

	tmpl := template.Must(template.New("docs").Parse(docsHTML))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if req.Method == http.MethodGet && req.URL.Path == cfg.specPath {
				w.Header().Set("Content-Type", "application/json")
				//nolint:errcheck,errchkjson // best-effort after WriteHeader
				json.NewEncoder(w).Encode(r.Spec())
				return
			}
			if req.Method == http.MethodGet && req.URL.Path == cfg.docsPath {
				w.Header().Set("Content-Type", "text/html; charset=utf-8")
				//nolint:errcheck // best-effort template render
				tmpl.Execute(w, cfg)
				return
			}
			next.ServeHTTP(w, req)
		})
	}
}

// ServeSpec registers a GET handler at the given path that serves the
// OpenAPI document as JSON, for hosts that prefer mux mounting over the
// Docs middleware.
func (r *Router) ServeSpec(pattern string) {
	r.mux.HandleFunc("GET "+pattern, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		//nolint:errcheck,errchkjson // best-effort after WriteHeader
		json.NewEncoder(w).Encode(r.Spec())
	})
}

// ServeSpecYAML registers a GET handler at the given path that serves the
// OpenAPI document as YAML.
func (r *Router) ServeSpecYAML(pattern string) {
	r.mux.HandleFunc("GET "+pattern, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		//nolint:errcheck // best-effort after WriteHeader
		yaml.NewEncoder(w).Encode(r.Spec())
	})
}

// ServeDocs registers a GET handler at the given path that serves the
// documentation UI.
func (r *Router) ServeDocs(path string, opts ...DocsOption) {
	cfg := &docsConfig{
		title:    r.title,
		specPath: "/openapi.json",
		docsPath: path,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	tmpl := template.Must(template.New("docs").Parse(docsHTML))

	r.mux.HandleFunc("GET "+path, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		//nolint:errcheck // best-effort template render
		tmpl.Execute(w, cfg)
	})
}

// WriteSpec writes the OpenAPI document as indented JSON to w.
func (r *Router) WriteSpec(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r.Spec())
}

// WriteSpecYAML writes the OpenAPI document as YAML to w.
func (r *Router) WriteSpecYAML(w io.Writer) error {
	return yaml.NewEncoder(w).Encode(r.Spec())
}

const docsHTML = `<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>{{.Title}}</title>
  <link rel="stylesheet" href="https://unpkg.com/@stoplight/elements/styles.min.css">
  <script src="https://unpkg.com/@stoplight/elements/web-components.min.js"></script>
</head>
<body>
  <elements-api
    apiDescriptionUrl="{{.SpecPath}}"
    router="hash"
    layout="sidebar"
  />
</body>
</html>`

// Title returns the docs config title (used in the template).
func (c *docsConfig) Title() string { return c.title }

// SpecPath returns the docs config spec path (used in the template).
func (c *docsConfig) SpecPath() string { return c.specPath }
