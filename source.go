package typeroute

import (
	"fmt"
	"reflect"
	"strings"
	"time"
)

// Source identifies where a request parameter's raw value comes from.
type Source string

// Parameter sources, matching the OpenAPI "in" values plus the request body.
const (
	SourcePath   Source = "path"
	SourceQuery  Source = "query"
	SourceHeader Source = "header"
	SourceBody   Source = "body"
)

// Body marks a request field as bound from the JSON request body.
// At most one Body field is allowed per request type.
type Body[T any] struct{ Value T }

// Path marks a request field as bound from a path template segment.
type Path[T any] struct{ Value T }

// Query marks a request field as bound from a query-string entry.
type Query[T any] struct{ Value T }

// Header marks a request field as bound from a request header.
type Header[T any] struct{ Value T }

func (Body[T]) paramSource() Source   { return SourceBody }
func (Path[T]) paramSource() Source   { return SourcePath }
func (Query[T]) paramSource() Source  { return SourceQuery }
func (Header[T]) paramSource() Source { return SourceHeader }

// sourced is implemented by the wrapper types above. A wrapper fixes the
// parameter source explicitly; unwrapped fields are inferred from the
// path template (see buildParams).
type sourced interface{ paramSource() Source }

var sourcedType = reflect.TypeFor[sourced]()

// paramSpec is the registration-time description of one request field.
// Binding and document generation are pure traversals over these specs —
// the handler signature is never re-inspected after registration.
type paramSpec struct {
	index    int    // field index in the request struct
	name     string // wire name
	source   Source
	typ      reflect.Type // declared value type, wrapper removed
	wrapped  bool
	required bool
	def      any // parsed default value, nil if none
}

// buildParams analyzes a request struct type against a path template and
// produces the ordered parameter specs. Source inference: a wrapper type
// fixes the source; an unwrapped field whose wire name matches a template
// segment is a path parameter; everything else is a query parameter.
func buildParams(t reflect.Type, pattern string) ([]paramSpec, error) {
	if t == reflect.TypeFor[Void]() {
		return nil, nil
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("request type %s is not a struct", t)
	}

	segments := pathSegments(pattern)
	var specs []paramSpec
	bodySeen := false

	for i := range t.NumField() {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}

		name := wireName(f)
		if name == "-" {
			continue
		}

		spec := paramSpec{index: i, name: name, typ: f.Type}

		if f.Type.Implements(sourcedType) {
			spec.wrapped = true
			spec.source = reflect.Zero(f.Type).Interface().(sourced).paramSource()
			spec.typ = f.Type.Field(0).Type
		} else if segments[name] {
			spec.source = SourcePath
		} else {
			spec.source = SourceQuery
		}

		if spec.source == SourceBody {
			if bodySeen {
				return nil, fmt.Errorf("multiple body parameters (%s)", f.Name)
			}
			bodySeen = true
			if err := checkSchemaType(spec.typ, nil); err != nil {
				return nil, err
			}
			spec.required = spec.typ.Kind() != reflect.Pointer
			specs = append(specs, spec)
			continue
		}

		if err := checkParamType(spec.typ); err != nil {
			return nil, fmt.Errorf("parameter %q: %w", name, err)
		}
		if spec.source == SourcePath && spec.typ.Kind() == reflect.Slice && spec.typ.Elem().Kind() != reflect.Uint8 {
			return nil, fmt.Errorf("parameter %q: path parameters cannot be slices", name)
		}

		if tag, ok := f.Tag.Lookup("default"); ok {
			v, _, err := coerceString(tag, spec.typ)
			if err != nil {
				return nil, fmt.Errorf("parameter %q: invalid default %q: %w", name, tag, err)
			}
			spec.def = v.Interface()
		}

		// Path parameters are always required; others are required unless
		// they carry a default or are declared optional via a pointer.
		spec.required = spec.source == SourcePath ||
			(spec.def == nil && spec.typ.Kind() != reflect.Pointer)

		specs = append(specs, spec)
	}

	return specs, nil
}

// checkParamType rejects types that cannot be decoded from a single
// string value (or, for query and header parameters, a list of them).
func checkParamType(t reflect.Type) error {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() == reflect.Slice && t.Elem().Kind() != reflect.Uint8 {
		t = t.Elem()
	}
	if t == reflect.TypeFor[time.Time]() || t == reflect.TypeFor[time.Duration]() {
		return nil
	}
	//exhaustive:ignore
	switch t.Kind() {
	case reflect.String, reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return nil
	default:
		return fmt.Errorf("type %s cannot be decoded from a string value", t)
	}
}

// pathSegments extracts the {name} template segments from a route pattern.
// Wildcard segments like {name...} count under their plain name.
func pathSegments(pattern string) map[string]bool {
	segments := make(map[string]bool)
	rest := pattern
	for {
		_, after, ok := strings.Cut(rest, "{")
		if !ok {
			return segments
		}
		name, after, ok := strings.Cut(after, "}")
		if !ok {
			return segments
		}
		segments[strings.TrimSuffix(name, "...")] = true
		rest = after
	}
}

// wireName returns the wire name for a struct field: the json tag name if
// present, the name tag otherwise, else the lower-cased field name.
func wireName(f reflect.StructField) string {
	if tag := f.Tag.Get("json"); tag != "" {
		name, _, _ := strings.Cut(tag, ",")
		if name != "" {
			return name
		}
	}
	if tag := f.Tag.Get("name"); tag != "" {
		return tag
	}
	return strings.ToLower(f.Name)
}

// jsonFieldName returns the JSON field name for a struct field within a
// body schema.
func jsonFieldName(f reflect.StructField) string {
	tag := f.Tag.Get("json")
	if tag == "" {
		return f.Name
	}
	name, _, _ := strings.Cut(tag, ",")
	if name == "" {
		return f.Name
	}
	return name
}
