package typeroute

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
)

// RegistrationError reports a route misconfiguration: a duplicate
// (method, pattern), more than one body parameter, or registration after
// Seal. It is raised by panic at registration time — misconfiguration is
// fatal to startup, never deferred to request time.
type RegistrationError struct {
	Method  string
	Pattern string
	Reason  string
}

func (e *RegistrationError) Error() string {
	return fmt.Sprintf("register %s %s: %s", e.Method, e.Pattern, e.Reason)
}

// SchemaError reports a declared type that cannot be represented as a
// JSON Schema, or a default tag that does not parse as its field's type.
// Like RegistrationError it surfaces at registration time via panic.
type SchemaError struct {
	Type   reflect.Type
	Reason string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema for %s: %s", e.Type, e.Reason)
}

// FieldError describes a single binding failure. Loc is the path to the
// failing value: the parameter source first, then field names and slice
// indexes, e.g. ["body", "items", 0, "price"].
type FieldError struct {
	Loc  []any  `json:"loc"`
	Msg  string `json:"msg"`
	Type string `json:"type"`
}

// FieldError kinds.
const (
	KindMissing         = "missing"
	KindJSONInvalid     = "json_invalid"
	KindStringType      = "string_type"
	KindBoolType        = "bool_type"
	KindIntType         = "int_type"
	KindFloatType       = "float_type"
	KindListType        = "list_type"
	KindObjectType      = "object_type"
	KindIntParsing      = "int_parsing"
	KindFloatParsing    = "float_parsing"
	KindBoolParsing     = "bool_parsing"
	KindTimeParsing     = "time_parsing"
	KindDurationParsing = "duration_parsing"
	KindBytesParsing    = "bytes_parsing"
)

// ValidationErrors is the aggregated result of a failed bind: one entry per
// failing field, in traversal order. It maps to a 422 response with body
// {"detail": [...]}.
type ValidationErrors []FieldError

func (ve ValidationErrors) Error() string {
	locs := make([]string, len(ve))
	for i, fe := range ve {
		parts := make([]string, len(fe.Loc))
		for j, seg := range fe.Loc {
			parts[j] = fmt.Sprint(seg)
		}
		locs[i] = strings.Join(parts, ".")
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(locs, ", "))
}

// StatusCode returns 422 Unprocessable Entity.
func (ValidationErrors) StatusCode() int { return http.StatusUnprocessableEntity }

// StatusCoder is implemented by errors or responses that carry an HTTP
// status code.
type StatusCoder interface {
	StatusCode() int
}

// HTTPError is an error with an HTTP status code, for handlers to return
// typed failures.
type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string { return e.Message }

// StatusCode returns the HTTP status code.
func (e *HTTPError) StatusCode() int { return e.Status }

// Error returns an error with the given HTTP status code and message.
func Error(status int, message string) error {
	return &HTTPError{Status: status, Message: message}
}

// Errorf returns a formatted error with the given HTTP status code.
func Errorf(status int, format string, args ...any) error {
	return &HTTPError{Status: status, Message: fmt.Sprintf(format, args...)}
}

// ErrorStatus extracts the HTTP status code from an error. Returns
// http.StatusInternalServerError if the error does not implement StatusCoder.
func ErrorStatus(err error) int {
	var sc StatusCoder
	if errors.As(err, &sc) {
		return sc.StatusCode()
	}
	return http.StatusInternalServerError
}
