package typeroute

import (
	"net/http"
	"reflect"
	"strconv"
	"strings"
)

// OpenAPISpec is the top-level OpenAPI 3.1 document. A built document is
// immutable: rebuilds publish a brand-new value, never mutate one in place.
type OpenAPISpec struct {
	OpenAPI    string              `json:"openapi"`
	Info       OpenAPIInfo         `json:"info"`
	Servers    []Server            `json:"servers,omitempty"`
	Paths      map[string]PathItem `json:"paths"`
	Components *Components         `json:"components,omitempty"`
}

// OpenAPIInfo holds API metadata.
type OpenAPIInfo struct {
	Title       string `json:"title"`
	Version     string `json:"version"`
	Description string `json:"description,omitempty"`
}

// Components holds the deduplicated schema table referenced from path items.
type Components struct {
	Schemas map[string]JSONSchema `json:"schemas,omitempty"`
}

// PathItem maps HTTP methods to operations.
type PathItem map[string]Operation

// Operation describes a single API operation on a path.
type Operation struct {
	Summary     string        `json:"summary,omitempty"`
	Description string        `json:"description,omitempty"`
	Tags        []string      `json:"tags,omitempty"`
	OperationID string        `json:"operationId,omitempty"`
	Parameters  []Parameter   `json:"parameters,omitempty"`
	RequestBody *RequestBody  `json:"requestBody,omitempty"`
	Responses   OperationResp `json:"responses"`
	Deprecated  bool          `json:"deprecated,omitempty"`
}

// Parameter describes a single operation parameter.
type Parameter struct {
	Name        string     `json:"name"`
	In          string     `json:"in"`
	Description string     `json:"description,omitempty"`
	Required    bool       `json:"required,omitempty"`
	Schema      JSONSchema `json:"schema"`
}

// RequestBody describes the request body.
type RequestBody struct {
	Required bool                `json:"required"`
	Content  map[string]MediaObj `json:"content"`
}

// MediaObj is a media type object with an optional schema.
type MediaObj struct {
	Schema *JSONSchema `json:"schema,omitempty"`
}

// OperationResp maps HTTP status codes to response objects.
type OperationResp map[string]ResponseObj

// ResponseObj describes a single response.
type ResponseObj struct {
	Description string              `json:"description"`
	Content     map[string]MediaObj `json:"content,omitempty"`
}

// cachedSpec tags a built document with the registry version it reflects.
type cachedSpec struct {
	spec    *OpenAPISpec
	version int64
}

const validationErrorSchema = "HTTPValidationError"

// Spec returns the OpenAPI document for the current registry. The last
// built document is cached against the registry version: a call only
// rebuilds when a registration happened since, and a rebuild publishes a
// complete new document atomically. Concurrent callers may duplicate a
// build but always observe a fully-built document.
func (r *Router) Spec() *OpenAPISpec {
	v := r.version.Load()
	if c := r.specCache.Load(); c != nil && c.version == v {
		return c.spec
	}

	spec := r.buildSpec()
	r.specCache.Store(&cachedSpec{spec: spec, version: v})
	return spec
}

func (r *Router) buildSpec() *OpenAPISpec {
	r.mu.Lock()
	routes := make([]routeInfo, len(r.routes))
	copy(routes, r.routes)
	r.mu.Unlock()

	spec := &OpenAPISpec{
		OpenAPI: "3.1.0",
		Info: OpenAPIInfo{
			Title:       r.title,
			Version:     r.apiVer,
			Description: r.desc,
		},
		Servers: r.servers,
		Paths:   make(map[string]PathItem),
	}

	reg := newSchemaRegistry()

	for i := range routes {
		ri := &routes[i]
		path := openAPIPath(ri.pattern)
		method := strings.ToLower(ri.method)

		if spec.Paths[path] == nil {
			spec.Paths[path] = make(PathItem)
		}
		spec.Paths[path][method] = buildOperation(ri, reg)
	}

	if len(reg.defs) > 0 {
		spec.Components = &Components{Schemas: reg.defs}
	}

	return spec
}

// buildOperation creates an Operation from a routeInfo, compiling its
// parameter and response types through the shared schema registry.
func buildOperation(ri *routeInfo, reg *schemaRegistry) Operation {
	op := Operation{
		Summary:     ri.summary,
		Description: ri.desc,
		Tags:        ri.tags,
		OperationID: ri.operationID,
		Deprecated:  ri.deprecated,
		Responses:   make(OperationResp),
	}

	for i := range ri.params {
		p := &ri.params[i]
		if p.source == SourceBody {
			schema := reg.typeToSchema(p.typ)
			op.RequestBody = &RequestBody{
				Required: p.required,
				Content: map[string]MediaObj{
					"application/json": {Schema: &schema},
				},
			}
			continue
		}

		param := Parameter{
			Name:     p.name,
			In:       string(p.source),
			Required: p.required,
			Schema:   reg.typeToSchema(p.typ),
		}
		if p.def != nil {
			param.Schema.Default = p.def
		}
		op.Parameters = append(op.Parameters, param)
	}

	status := ri.status
	if status == 0 {
		status = http.StatusOK
	}

	if ri.respType == nil {
		// Raw routes document their status with no declared content.
		op.Responses[strconv.Itoa(status)] = ResponseObj{Description: "Successful Response"}
	} else if ri.respType == reflect.TypeFor[Void]() {
		if status == http.StatusOK {
			status = http.StatusNoContent
		}
		op.Responses[strconv.Itoa(status)] = ResponseObj{Description: "No Content"}
	} else {
		schema := reg.typeToSchema(ri.respType)
		op.Responses[strconv.Itoa(status)] = ResponseObj{
			Description: "Successful Response",
			Content: map[string]MediaObj{
				"application/json": {Schema: &schema},
			},
		}
	}

	if len(ri.params) > 0 {
		op.Responses["422"] = ResponseObj{
			Description: "Validation Error",
			Content: map[string]MediaObj{
				"application/json": {
					Schema: &JSONSchema{Ref: "#/components/schemas/" + validationErrorSchema},
				},
			},
		}
		registerValidationSchemas(reg)
	}

	return op
}

// registerValidationSchemas adds the 422 wire-format schemas to the
// component table once per document build.
func registerValidationSchemas(reg *schemaRegistry) {
	if _, ok := reg.defs[validationErrorSchema]; ok {
		return
	}
	reg.defs["ValidationError"] = JSONSchema{
		Type: "object",
		Properties: map[string]JSONSchema{
			"loc": {
				Type:  "array",
				Items: &JSONSchema{AnyOf: []JSONSchema{{Type: "string"}, {Type: "integer"}}},
			},
			"msg":  {Type: "string"},
			"type": {Type: "string"},
		},
		Required: []string{"loc", "msg", "type"},
	}
	reg.defs[validationErrorSchema] = JSONSchema{
		Type: "object",
		Properties: map[string]JSONSchema{
			"detail": {
				Type:  "array",
				Items: &JSONSchema{Ref: "#/components/schemas/ValidationError"},
			},
		},
		Required: []string{"detail"},
	}
}

// openAPIPath converts a Go 1.22 mux pattern like "/users/{id}" to an
// OpenAPI path, stripping wildcard ellipses.
func openAPIPath(pattern string) string {
	return strings.ReplaceAll(pattern, "...", "")
}
