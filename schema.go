package typeroute

import (
	"fmt"
	"reflect"
	"strings"
)

// JSONSchema represents a JSON Schema object (subset for OpenAPI 3.1).
type JSONSchema struct {
	Type        string                `json:"type,omitempty"`
	Format      string                `json:"format,omitempty"`
	Properties  map[string]JSONSchema `json:"properties,omitempty"`
	Items       *JSONSchema           `json:"items,omitempty"`
	Required    []string              `json:"required,omitempty"`
	Description string                `json:"description,omitempty"`
	Default     any                   `json:"default,omitempty"`
	Ref         string                `json:"$ref,omitempty"`
	AnyOf       []JSONSchema          `json:"anyOf,omitempty"`

	// ContentEncoding marks base64 binary strings.
	ContentEncoding string `json:"contentEncoding,omitempty"`

	// AdditionalProperties holds the value schema for map types.
	AdditionalProperties *JSONSchema `json:"additionalProperties,omitempty"`
}

// schemaRegistry compiles types into JSON Schema fragments for one document
// build. Each named struct type is compiled at most once into the shared
// defs table and referenced by $ref at every use site, which keeps
// self-referential and mutually-recursive types finite.
type schemaRegistry struct {
	defs    map[string]JSONSchema
	visited map[reflect.Type]bool
	claimed map[string]reflect.Type // schema name -> type that owns it
}

func newSchemaRegistry() *schemaRegistry {
	return &schemaRegistry{
		defs:    make(map[string]JSONSchema),
		visited: make(map[reflect.Type]bool),
		claimed: make(map[string]reflect.Type),
	}
}

// typeToSchema converts a type to a JSONSchema. Named struct types become
// component references; everything else is inlined.
func (reg *schemaRegistry) typeToSchema(t reflect.Type) JSONSchema {
	if t.Kind() == reflect.Pointer {
		inner := reg.typeToSchema(t.Elem())
		return JSONSchema{AnyOf: []JSONSchema{inner, {Type: "null"}}}
	}

	switch t {
	case timeType:
		return JSONSchema{Type: "string", Format: "date-time"}
	case durationType:
		return JSONSchema{Type: "string", Format: "duration"}
	case reflect.TypeFor[Void]():
		return JSONSchema{}
	}

	if t.Kind() == reflect.Struct && t.Name() != "" {
		name := reg.schemaName(t)
		if !reg.visited[t] {
			reg.visited[t] = true
			reg.defs[name] = reg.structToSchema(t)
		}
		return JSONSchema{Ref: "#/components/schemas/" + name}
	}

	//exhaustive:ignore
	switch t.Kind() {
	case reflect.String:
		return JSONSchema{Type: "string"}
	case reflect.Bool:
		return JSONSchema{Type: "boolean"}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return JSONSchema{Type: "integer"}
	case reflect.Float32, reflect.Float64:
		return JSONSchema{Type: "number"}
	case reflect.Slice, reflect.Array:
		if t.Kind() == reflect.Slice && t.Elem().Kind() == reflect.Uint8 {
			return JSONSchema{Type: "string", ContentEncoding: "base64"}
		}
		items := reg.typeToSchema(t.Elem())
		return JSONSchema{Type: "array", Items: &items}
	case reflect.Map:
		if t.Key().Kind() != reflect.String {
			return JSONSchema{Type: "object"}
		}
		val := reg.typeToSchema(t.Elem())
		return JSONSchema{Type: "object", AdditionalProperties: &val}
	case reflect.Struct:
		return reg.structToSchema(t)
	case reflect.Interface:
		return JSONSchema{}
	default:
		return JSONSchema{}
	}
}

// structToSchema converts a struct type to an object schema. The required
// list holds fields that carry no default and are not optional pointers.
func (reg *schemaRegistry) structToSchema(t reflect.Type) JSONSchema {
	schema := JSONSchema{
		Type:       "object",
		Properties: make(map[string]JSONSchema),
	}

	for i := range t.NumField() {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name := jsonFieldName(f)
		if name == "-" {
			continue
		}

		prop := reg.typeToSchema(f.Type)

		if doc := f.Tag.Get("doc"); doc != "" {
			prop.Description = doc
		}

		if tag, ok := f.Tag.Lookup("default"); ok {
			if v, _, err := coerceString(tag, f.Type); err == nil {
				prop.Default = v.Interface()
			}
		} else if f.Type.Kind() != reflect.Pointer {
			schema.Required = append(schema.Required, name)
		}

		schema.Properties[name] = prop
	}

	return schema
}

// schemaName returns the stable component name for a named struct type.
// When two distinct types share a short name, the later one falls back to
// its package-qualified name.
func (reg *schemaRegistry) schemaName(t reflect.Type) string {
	name := sanitizeSchemaName(t.Name())
	if owner, ok := reg.claimed[name]; ok && owner != t {
		name = sanitizeSchemaName(t.String())
	}
	reg.claimed[name] = t
	return name
}

func sanitizeSchemaName(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '.', r == '_', r == '-':
			return r
		default:
			return '_'
		}
	}, name)
}

// checkSchemaType verifies at registration time that a declared type can be
// represented as a JSON Schema and that every default tag parses as its
// field's type. Violations surface as a *SchemaError before the route is
// ever served.
func checkSchemaType(t reflect.Type, visited map[reflect.Type]bool) error {
	if t == nil {
		return nil
	}
	if visited == nil {
		visited = make(map[reflect.Type]bool)
	}
	if visited[t] {
		return nil
	}
	visited[t] = true

	switch t {
	case timeType, durationType:
		return nil
	}

	//exhaustive:ignore
	switch t.Kind() {
	case reflect.Pointer, reflect.Slice, reflect.Array:
		return checkSchemaType(t.Elem(), visited)
	case reflect.Map:
		if t.Key().Kind() != reflect.String {
			return &SchemaError{Type: t, Reason: "map keys must be strings"}
		}
		return checkSchemaType(t.Elem(), visited)
	case reflect.Interface:
		if t.NumMethod() > 0 {
			return &SchemaError{Type: t, Reason: "non-empty interfaces are not representable"}
		}
		return nil
	case reflect.String, reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return nil
	case reflect.Struct:
		for i := range t.NumField() {
			f := t.Field(i)
			// encoding/json inlines embedded fields; our field-by-field
			// decode treats every property as named. An exported embedded
			// field with an explicit json tag is named for encoding/json
			// too, so only that form is representable.
			if f.Anonymous {
				if name, _, _ := strings.Cut(f.Tag.Get("json"), ","); name == "" || !f.IsExported() {
					return &SchemaError{
						Type:   t,
						Reason: fmt.Sprintf("embedded field %s needs an explicit json name", f.Name),
					}
				}
			}
			if !f.IsExported() || jsonFieldName(f) == "-" {
				continue
			}
			if tag, ok := f.Tag.Lookup("default"); ok {
				if _, _, err := coerceString(tag, f.Type); err != nil {
					return &SchemaError{
						Type:   t,
						Reason: fmt.Sprintf("field %s: default %q does not parse as %s", f.Name, tag, f.Type),
					}
				}
			}
			if err := checkSchemaType(f.Type, visited); err != nil {
				return err
			}
		}
		return nil
	default:
		return &SchemaError{Type: t, Reason: fmt.Sprintf("unsupported kind %s", t.Kind())}
	}
}
