package typeroute

import (
	"net/http"
	"reflect"
)

// routeInfo holds metadata for a registered route, used for both request
// dispatch and OpenAPI document generation. It is populated once at
// registration and never mutated afterwards.
type routeInfo struct {
	method  string
	pattern string

	summary     string
	desc        string
	tags        []string
	status      int
	deprecated  bool
	operationID string

	params   []paramSpec
	respType reflect.Type

	handler http.Handler
}

// ParamSpec is the public, read-only description of a bound parameter.
type ParamSpec struct {
	Name     string
	In       Source
	Type     reflect.Type
	Required bool
	Default  any
}

// RouteSpec is the public, read-only description of a registered route.
type RouteSpec struct {
	Method   string
	Pattern  string
	Summary  string
	Tags     []string
	Params   []ParamSpec
	Response reflect.Type
}

func (ri *routeInfo) spec() RouteSpec {
	rs := RouteSpec{
		Method:   ri.method,
		Pattern:  ri.pattern,
		Summary:  ri.summary,
		Tags:     append([]string(nil), ri.tags...),
		Response: ri.respType,
	}
	for i := range ri.params {
		p := &ri.params[i]
		rs.Params = append(rs.Params, ParamSpec{
			Name:     p.name,
			In:       p.source,
			Type:     p.typ,
			Required: p.required,
			Default:  p.def,
		})
	}
	return rs
}

// RouteOption configures a route at registration time.
type RouteOption func(*routeInfo)

// WithStatus sets the default HTTP status code for the response.
func WithStatus(code int) RouteOption {
	return func(ri *routeInfo) {
		ri.status = code
	}
}

// WithSummary sets the OpenAPI summary for the route.
func WithSummary(s string) RouteOption {
	return func(ri *routeInfo) {
		ri.summary = s
	}
}

// WithDescription sets the OpenAPI description for the route.
func WithDescription(d string) RouteOption {
	return func(ri *routeInfo) {
		ri.desc = d
	}
}

// WithTags adds OpenAPI tags to the route.
func WithTags(tags ...string) RouteOption {
	return func(ri *routeInfo) {
		ri.tags = append(ri.tags, tags...)
	}
}

// WithDeprecated marks the route as deprecated in the OpenAPI document.
func WithDeprecated() RouteOption {
	return func(ri *routeInfo) {
		ri.deprecated = true
	}
}

// WithOperationID sets a custom OpenAPI operationId.
func WithOperationID(id string) RouteOption {
	return func(ri *routeInfo) {
		ri.operationID = id
	}
}
