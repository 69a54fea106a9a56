package typeroute

import (
	"log/slog"
	"net/http"
	"reflect"
	"strings"
)

// Registrar is the interface accepted by the registration functions.
// Both *Router and *Group implement it.
type Registrar interface {
	addRoute(ri routeInfo)
	fullPattern(pattern string) string
	routeMiddleware() []Middleware
	routeLogger() *slog.Logger
}

// register is the internal generic registration function. All signature
// analysis happens here, once: the request type becomes an ordered list of
// parameter specs and the response type is recorded for the document
// builder. Request-time binding is a pure traversal over those specs.
// Misconfiguration panics with *RegistrationError or *SchemaError.
func register[Req, Resp any](reg Registrar, method, pattern string, h Handler[Req, Resp], opts ...RouteOption) {
	ri := routeInfo{
		method:   method,
		pattern:  reg.fullPattern(pattern),
		respType: reflect.TypeFor[Resp](),
	}

	params, err := buildParams(reflect.TypeFor[Req](), ri.pattern)
	if err != nil {
		panic(registrationErr(ri.method, ri.pattern, err))
	}
	ri.params = params

	if err := checkSchemaType(ri.respType, nil); err != nil {
		panic(err)
	}

	for _, opt := range opts {
		opt(&ri)
	}

	// Void response defaults to 204, everything else to 200.
	if ri.status == 0 {
		if ri.respType == reflect.TypeFor[Void]() {
			ri.status = http.StatusNoContent
		} else {
			ri.status = http.StatusOK
		}
	}
	if ri.operationID == "" {
		ri.operationID = operationID(ri.method, ri.pattern)
	}

	ri.handler = buildHandler(h, &ri, reg.routeLogger())

	routeMW := reg.routeMiddleware()
	for i := len(routeMW) - 1; i >= 0; i-- {
		ri.handler = routeMW[i](ri.handler)
	}

	reg.addRoute(ri)
}

func registrationErr(method, pattern string, err error) error {
	var se *SchemaError
	if ok := asSchemaError(err, &se); ok {
		return se
	}
	return &RegistrationError{Method: method, Pattern: pattern, Reason: err.Error()}
}

// buildHandler wraps a typed Handler into an http.Handler. Binding failures
// are terminal for the request: they become a 422 response and the handler
// is never invoked.
func buildHandler[Req, Resp any](h Handler[Req, Resp], ri *routeInfo, logger *slog.Logger) http.Handler {
	method, pattern, status := ri.method, ri.pattern, ri.status
	params := ri.params

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req, verrs, err := bindRequest[Req](r, params)
		if err != nil {
			// Body read failure: the client went away or sent a broken
			// stream before binding produced anything.
			logger.LogAttrs(r.Context(), slog.LevelWarn, "body read failed",
				slog.String("method", method),
				slog.String("route", pattern),
				slog.String("error", err.Error()),
			)
			writeError(w, Error(http.StatusBadRequest, "could not read request body"))
			return
		}
		if len(verrs) > 0 {
			logger.LogAttrs(r.Context(), slog.LevelInfo, "request validation failed",
				slog.String("method", method),
				slog.String("route", pattern),
				slog.String("fields", verrs.Error()),
			)
			writeValidationErrors(w, verrs)
			return
		}

		// Run self-validation if the request type implements it.
		if sv, ok := any(req).(SelfValidator); ok {
			if verrs := sv.Validate(); len(verrs) > 0 {
				writeValidationErrors(w, verrs)
				return
			}
		}

		resp, err := h(r.Context(), req)
		if err != nil {
			if ErrorStatus(err) >= http.StatusInternalServerError {
				logger.LogAttrs(r.Context(), slog.LevelError, "handler error",
					slog.String("method", method),
					slog.String("route", pattern),
					slog.String("error", err.Error()),
				)
			}
			writeError(w, err)
			return
		}

		if _, ok := any(resp).(*Void); ok || resp == nil {
			w.WriteHeader(status)
			return
		}

		encodeResponse(w, resp, status, logger)
	})
}

// Get registers a GET handler.
func Get[Req, Resp any](reg Registrar, pattern string, h Handler[Req, Resp], opts ...RouteOption) {
	register(reg, http.MethodGet, pattern, h, opts...)
}

// Post registers a POST handler.
func Post[Req, Resp any](reg Registrar, pattern string, h Handler[Req, Resp], opts ...RouteOption) {
	register(reg, http.MethodPost, pattern, h, opts...)
}

// Put registers a PUT handler.
func Put[Req, Resp any](reg Registrar, pattern string, h Handler[Req, Resp], opts ...RouteOption) {
	register(reg, http.MethodPut, pattern, h, opts...)
}

// Patch registers a PATCH handler.
func Patch[Req, Resp any](reg Registrar, pattern string, h Handler[Req, Resp], opts ...RouteOption) {
	register(reg, http.MethodPatch, pattern, h, opts...)
}

// Delete registers a DELETE handler.
func Delete[Req, Resp any](reg Registrar, pattern string, h Handler[Req, Resp], opts ...RouteOption) {
	register(reg, http.MethodDelete, pattern, h, opts...)
}

// Raw registers a raw http.Handler with manual OperationInfo for the
// OpenAPI document.
func Raw(reg Registrar, method, pattern string, h RawHandler, info OperationInfo) {
	ri := routeInfo{
		method:  method,
		pattern: reg.fullPattern(pattern),
		summary: info.Summary,
		desc:    info.Description,
		tags:    info.Tags,
		status:  info.Status,
		handler: http.HandlerFunc(h),
	}
	if ri.status == 0 {
		ri.status = http.StatusOK
	}
	if ri.operationID == "" {
		ri.operationID = operationID(ri.method, ri.pattern)
	}

	routeMW := reg.routeMiddleware()
	for i := len(routeMW) - 1; i >= 0; i-- {
		ri.handler = routeMW[i](ri.handler)
	}

	reg.addRoute(ri)
}

// operationID derives a default operationId like "get_items_id" from the
// method and pattern.
func operationID(method, pattern string) string {
	var b strings.Builder
	b.WriteString(strings.ToLower(method))
	for seg := range strings.SplitSeq(pattern, "/") {
		seg = strings.TrimSuffix(strings.TrimPrefix(seg, "{"), "}")
		seg = strings.TrimSuffix(seg, "...")
		if seg == "" {
			continue
		}
		b.WriteByte('_')
		b.WriteString(seg)
	}
	return b.String()
}
