package typeroute

import "reflect"

// Test-only exports for internal functions.
var (
	WireName        = wireName
	PathSegments    = pathSegments
	GenOperationID  = operationID
	CheckSchemaType = checkSchemaType
)

// TestParam is an exported view of paramSpec for external tests.
type TestParam struct {
	Name     string
	Source   Source
	Type     reflect.Type
	Required bool
	Default  any
	Wrapped  bool
}

// BuildParamSpecs runs registration-time parameter analysis for tests.
func BuildParamSpecs(t reflect.Type, pattern string) ([]TestParam, error) {
	specs, err := buildParams(t, pattern)
	if err != nil {
		return nil, err
	}
	out := make([]TestParam, len(specs))
	for i, s := range specs {
		out[i] = TestParam{
			Name:     s.name,
			Source:   s.source,
			Type:     s.typ,
			Required: s.required,
			Default:  s.def,
			Wrapped:  s.wrapped,
		}
	}
	return out, nil
}

// CoerceString exposes string coercion; it returns the FieldError kind on
// failure.
func CoerceString(s string, t reflect.Type) (any, string, error) {
	v, kind, err := coerceString(s, t)
	if err != nil {
		return nil, kind, err
	}
	return v.Interface(), kind, nil
}

// TestSchemaRegistry wraps schemaRegistry for external tests.
type TestSchemaRegistry struct {
	reg  *schemaRegistry
	Defs map[string]JSONSchema
}

// NewSchemaRegistry creates a TestSchemaRegistry for testing.
func NewSchemaRegistry() *TestSchemaRegistry {
	r := newSchemaRegistry()
	return &TestSchemaRegistry{reg: r, Defs: r.defs}
}

// TypeToSchema delegates to the internal registry.
func (t *TestSchemaRegistry) TypeToSchema(typ reflect.Type) JSONSchema {
	return t.reg.typeToSchema(typ)
}
