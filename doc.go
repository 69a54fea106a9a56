// Package typeroute is a typed-routing layer over net/http. Handler types
// are the source of truth: request parameters, bodies, and responses are
// all expressed as Go types, and the package derives binding, validation,
// and an OpenAPI 3.1 document from them automatically.
//
// The core handler signature removes http.ResponseWriter and *http.Request:
//
//	type Handler[Req, Resp any] func(ctx context.Context, req *Req) (*Resp, error)
//
// Routes are registered with package-level generic functions:
//
//	r := typeroute.New(typeroute.WithTitle("Items API"), typeroute.WithVersion("1.0.0"))
//	typeroute.Get[ListReq, ListResp](r, "/items/", listItems)
//	typeroute.Post[CreateReq, Item](r, "/items/", createItem)
//
// A request field's type decides where its value comes from. The wrapper
// types Body, Path, Query, and Header fix the source explicitly; an
// unwrapped field whose name matches a {segment} of the path template is a
// path parameter, and everything else is a query parameter:
//
//	type CreateReq struct {
//	    Org  string              // matches {org} in the pattern -> path
//	    Body typeroute.Body[Item]
//	}
//
// Binding never stops at the first failure: every failing field produces
// one entry in a 422 response shaped as
//
//	{"detail": [{"loc": ["body", "price"], "msg": "Field required", "type": "missing"}]}
//
// Struct fields may carry `default:"..."` tags; defaulted fields are
// optional and their defaults appear in the generated schema. The OpenAPI
// document deduplicates every named struct into components/schemas and is
// cached until the next registration:
//
//	r.Use(r.Docs()) // serves /openapi.json and /docs
package typeroute
