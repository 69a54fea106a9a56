package typeroute

import (
	"context"
	"net/http"
)

// Void is used as a type parameter when a request carries no parameters
// or a response has no body (results in 204 No Content).
type Void struct{}

// Handler is the core typed handler signature. The framework owns binding
// and serialization — handlers never see http.ResponseWriter or *http.Request.
type Handler[Req, Resp any] func(ctx context.Context, req *Req) (*Resp, error)

// RawHandler is an escape hatch for anything that needs direct access to the
// underlying http primitives. Raw routes still appear in the OpenAPI document
// via OperationInfo.
type RawHandler func(w http.ResponseWriter, r *http.Request)

// OperationInfo supplies OpenAPI metadata for a Raw route, since nothing can
// be derived from its signature.
type OperationInfo struct {
	Summary     string
	Description string
	Tags        []string
	Status      int
}
