package typeroute

import (
	"encoding/base64"
	"encoding/json"
	"io"
	"math"
	"net/http"
	"net/url"
	"reflect"
	"sort"
	"strconv"
	"time"
)

var (
	timeType     = reflect.TypeFor[time.Time]()
	durationType = reflect.TypeFor[time.Duration]()
)

// bindRequest populates a new Req from the incoming request, driven entirely
// by the parameter specs computed at registration. It never stops at the
// first failure: every failing field contributes one FieldError, in
// declaration order, recursing into body structs in field order. The
// returned error is reserved for transport failures reading the body.
func bindRequest[Req any](r *http.Request, params []paramSpec) (*Req, ValidationErrors, error) {
	req := new(Req)
	if len(params) == 0 {
		return req, nil, nil
	}

	rv := reflect.ValueOf(req).Elem()
	var errs ValidationErrors
	var query url.Values

	for i := range params {
		p := &params[i]
		target := rv.Field(p.index)
		if p.wrapped {
			target = target.Field(0)
		}

		switch p.source {
		case SourceBody:
			raw, err := io.ReadAll(r.Body)
			if err != nil {
				return nil, nil, err
			}
			if len(raw) == 0 {
				if p.required {
					errs = append(errs, FieldError{Loc: []any{"body"}, Msg: "Field required", Type: KindMissing})
				}
				continue
			}
			var v any
			if err := json.Unmarshal(raw, &v); err != nil {
				errs = append(errs, FieldError{Loc: []any{"body"}, Msg: "Invalid JSON", Type: KindJSONInvalid})
				continue
			}
			before := len(errs)
			val := decodeValue(v, p.typ, []any{"body"}, &errs)
			if len(errs) == before {
				target.Set(val)
			}

		case SourcePath:
			raw := r.PathValue(p.name)
			bindScalar(target, p, raw, raw != "", &errs)

		case SourceQuery:
			if query == nil {
				query = r.URL.Query()
			}
			vals, ok := query[p.name]
			if p.typ.Kind() == reflect.Slice && p.typ.Elem().Kind() != reflect.Uint8 {
				bindRepeated(target, p, vals, &errs)
				continue
			}
			var raw string
			if ok && len(vals) > 0 {
				raw = vals[0]
			}
			bindScalar(target, p, raw, ok, &errs)

		case SourceHeader:
			if p.typ.Kind() == reflect.Slice && p.typ.Elem().Kind() != reflect.Uint8 {
				bindRepeated(target, p, r.Header.Values(p.name), &errs)
				continue
			}
			raw := r.Header.Get(p.name)
			bindScalar(target, p, raw, raw != "", &errs)
		}
	}

	if len(errs) > 0 {
		return nil, errs, nil
	}
	return req, nil, nil
}

// bindScalar coerces a single raw string into the target field, applying
// the default when the value is absent and recording a missing error when
// it is absent and required.
func bindScalar(target reflect.Value, p *paramSpec, raw string, present bool, errs *ValidationErrors) {
	if !present {
		switch {
		case p.def != nil:
			target.Set(defaultValue(p))
		case p.required:
			*errs = append(*errs, FieldError{
				Loc:  []any{string(p.source), p.name},
				Msg:  "Field required",
				Type: KindMissing,
			})
		}
		return
	}

	v, kind, err := coerceString(raw, p.typ)
	if err != nil {
		*errs = append(*errs, FieldError{
			Loc:  []any{string(p.source), p.name},
			Msg:  coerceMessage(kind),
			Type: kind,
		})
		return
	}
	target.Set(v)
}

// bindRepeated binds a []T query parameter from its repeated values.
func bindRepeated(target reflect.Value, p *paramSpec, vals []string, errs *ValidationErrors) {
	if len(vals) == 0 {
		switch {
		case p.def != nil:
			target.Set(defaultValue(p))
		case p.required:
			*errs = append(*errs, FieldError{
				Loc:  []any{string(p.source), p.name},
				Msg:  "Field required",
				Type: KindMissing,
			})
		}
		return
	}

	out := reflect.MakeSlice(p.typ, len(vals), len(vals))
	ok := true
	for i, raw := range vals {
		v, kind, err := coerceString(raw, p.typ.Elem())
		if err != nil {
			*errs = append(*errs, FieldError{
				Loc:  []any{string(p.source), p.name, i},
				Msg:  coerceMessage(kind),
				Type: kind,
			})
			ok = false
			continue
		}
		out.Index(i).Set(v)
	}
	if ok {
		target.Set(out)
	}
}

// defaultValue returns the parsed default for a parameter. Pointer defaults
// are copied per bind so a handler mutating the pointee cannot leak state
// into later requests.
func defaultValue(p *paramSpec) reflect.Value {
	v := reflect.ValueOf(p.def)
	if p.typ.Kind() == reflect.Pointer {
		c := reflect.New(p.typ.Elem())
		c.Elem().Set(v.Elem())
		return c
	}
	return v
}

// decodeValue decodes a JSON-decoded generic value into the declared type,
// appending one FieldError per failing field. It always returns a value of
// type t; on failure the value is the zero value and errs has grown.
func decodeValue(raw any, t reflect.Type, loc []any, errs *ValidationErrors) reflect.Value {
	switch t {
	case timeType:
		s, ok := raw.(string)
		if !ok {
			return fail(t, loc, errs, KindStringType)
		}
		ts, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return fail(t, loc, errs, KindTimeParsing)
		}
		return reflect.ValueOf(ts)
	case durationType:
		s, ok := raw.(string)
		if !ok {
			return fail(t, loc, errs, KindStringType)
		}
		d, err := time.ParseDuration(s)
		if err != nil {
			return fail(t, loc, errs, KindDurationParsing)
		}
		return reflect.ValueOf(d)
	}

	//exhaustive:ignore
	switch t.Kind() {
	case reflect.Pointer:
		if raw == nil {
			return reflect.Zero(t)
		}
		ev := decodeValue(raw, t.Elem(), loc, errs)
		p := reflect.New(t.Elem())
		p.Elem().Set(ev)
		return p

	case reflect.String:
		s, ok := raw.(string)
		if !ok {
			return fail(t, loc, errs, KindStringType)
		}
		v := reflect.New(t).Elem()
		v.SetString(s)
		return v

	case reflect.Bool:
		b, ok := raw.(bool)
		if !ok {
			return fail(t, loc, errs, KindBoolType)
		}
		v := reflect.New(t).Elem()
		v.SetBool(b)
		return v

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		f, ok := raw.(float64)
		if !ok || math.Trunc(f) != f {
			return fail(t, loc, errs, KindIntType)
		}
		v := reflect.New(t).Elem()
		if v.OverflowInt(int64(f)) {
			return fail(t, loc, errs, KindIntType)
		}
		v.SetInt(int64(f))
		return v

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		f, ok := raw.(float64)
		if !ok || math.Trunc(f) != f || f < 0 {
			return fail(t, loc, errs, KindIntType)
		}
		v := reflect.New(t).Elem()
		if v.OverflowUint(uint64(f)) {
			return fail(t, loc, errs, KindIntType)
		}
		v.SetUint(uint64(f))
		return v

	case reflect.Float32, reflect.Float64:
		f, ok := raw.(float64)
		if !ok {
			return fail(t, loc, errs, KindFloatType)
		}
		v := reflect.New(t).Elem()
		v.SetFloat(f)
		return v

	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			s, ok := raw.(string)
			if !ok {
				return fail(t, loc, errs, KindStringType)
			}
			b, err := base64.StdEncoding.DecodeString(s)
			if err != nil {
				return fail(t, loc, errs, KindBytesParsing)
			}
			return reflect.ValueOf(b).Convert(t)
		}
		arr, ok := raw.([]any)
		if !ok {
			return fail(t, loc, errs, KindListType)
		}
		out := reflect.MakeSlice(t, len(arr), len(arr))
		for i, el := range arr {
			out.Index(i).Set(decodeValue(el, t.Elem(), appendLoc(loc, i), errs))
		}
		return out

	case reflect.Map:
		m, ok := raw.(map[string]any)
		if !ok || t.Key().Kind() != reflect.String {
			return fail(t, loc, errs, KindObjectType)
		}
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := reflect.MakeMapWithSize(t, len(m))
		for _, k := range keys {
			out.SetMapIndex(reflect.ValueOf(k).Convert(t.Key()),
				decodeValue(m[k], t.Elem(), appendLoc(loc, k), errs))
		}
		return out

	case reflect.Struct:
		return decodeStruct(raw, t, loc, errs)

	case reflect.Interface:
		if raw == nil {
			return reflect.Zero(t)
		}
		return reflect.ValueOf(raw)

	default:
		return fail(t, loc, errs, KindObjectType)
	}
}

// decodeStruct decodes a JSON object into a struct type, field by field in
// declared order. A missing key falls back to the field's default tag; a
// missing required field records a "missing" error rather than a decode
// error.
func decodeStruct(raw any, t reflect.Type, loc []any, errs *ValidationErrors) reflect.Value {
	out := reflect.New(t).Elem()
	m, ok := raw.(map[string]any)
	if !ok {
		*errs = append(*errs, FieldError{Loc: loc, Msg: coerceMessage(KindObjectType), Type: KindObjectType})
		return out
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

		if v, ok := m[name]; ok {
			out.Field(i).Set(decodeValue(v, f.Type, appendLoc(loc, name), errs))
			continue
		}

		if tag, ok := f.Tag.Lookup("default"); ok {
			// Default tags are validated at registration; a parse failure
			// here means the type was never registered through a route.
			if v, _, err := coerceString(tag, f.Type); err == nil {
				out.Field(i).Set(v)
			}
			continue
		}

		if f.Type.Kind() != reflect.Pointer {
			*errs = append(*errs, FieldError{
				Loc:  appendLoc(loc, name),
				Msg:  "Field required",
				Type: KindMissing,
			})
		}
	}

	return out
}

// coerceString decodes a single string literal into the given type. It is
// used for path, query, and header values and for default tags. The second
// return value is the FieldError kind on failure.
func coerceString(s string, t reflect.Type) (reflect.Value, string, error) {
	if t.Kind() == reflect.Pointer {
		ev, kind, err := coerceString(s, t.Elem())
		if err != nil {
			return reflect.Value{}, kind, err
		}
		p := reflect.New(t.Elem())
		p.Elem().Set(ev)
		return p, "", nil
	}

	switch t {
	case timeType:
		ts, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return reflect.Value{}, KindTimeParsing, err
		}
		return reflect.ValueOf(ts), "", nil
	case durationType:
		d, err := time.ParseDuration(s)
		if err != nil {
			return reflect.Value{}, KindDurationParsing, err
		}
		return reflect.ValueOf(d), "", nil
	}

	v := reflect.New(t).Elem()

	//exhaustive:ignore
	switch t.Kind() {
	case reflect.String:
		v.SetString(s)
	case reflect.Bool:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return reflect.Value{}, KindBoolParsing, err
		}
		v.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(s, 10, t.Bits())
		if err != nil {
			return reflect.Value{}, KindIntParsing, err
		}
		v.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(s, 10, t.Bits())
		if err != nil {
			return reflect.Value{}, KindIntParsing, err
		}
		v.SetUint(n)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(s, t.Bits())
		if err != nil {
			return reflect.Value{}, KindFloatParsing, err
		}
		v.SetFloat(f)
	case reflect.Slice:
		if t.Elem().Kind() != reflect.Uint8 {
			return reflect.Value{}, KindListType, errUnsupported(t)
		}
		b, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return reflect.Value{}, KindBytesParsing, err
		}
		return reflect.ValueOf(b).Convert(t), "", nil
	default:
		return reflect.Value{}, KindObjectType, errUnsupported(t)
	}

	return v, "", nil
}

func errUnsupported(t reflect.Type) error {
	return &SchemaError{Type: t, Reason: "cannot decode from a string value"}
}

// fail records a FieldError and returns the zero value of t.
func fail(t reflect.Type, loc []any, errs *ValidationErrors, kind string) reflect.Value {
	*errs = append(*errs, FieldError{Loc: loc, Msg: coerceMessage(kind), Type: kind})
	return reflect.Zero(t)
}

// coerceMessage maps a FieldError kind to its human-readable message.
func coerceMessage(kind string) string {
	switch kind {
	case KindMissing:
		return "Field required"
	case KindStringType:
		return "Input should be a valid string"
	case KindBoolType, KindBoolParsing:
		return "Input should be a valid boolean"
	case KindIntType, KindIntParsing:
		return "Input should be a valid integer"
	case KindFloatType, KindFloatParsing:
		return "Input should be a valid number"
	case KindListType:
		return "Input should be a valid list"
	case KindObjectType:
		return "Input should be a valid object"
	case KindTimeParsing:
		return "Input should be a valid RFC 3339 datetime"
	case KindDurationParsing:
		return "Input should be a valid duration"
	case KindBytesParsing:
		return "Input should be valid base64"
	case KindJSONInvalid:
		return "Invalid JSON"
	default:
		return "Invalid input"
	}
}

// appendLoc extends a loc path without sharing backing arrays between
// sibling error paths.
func appendLoc(loc []any, seg any) []any {
	out := make([]any, len(loc)+1)
	copy(out, loc)
	out[len(loc)] = seg
	return out
}
