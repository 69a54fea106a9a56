// Package apitest provides typed test helpers for the typeroute framework.
package apitest

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nhumrich/typeroute"
)

// Client wraps an httptest.Server for convenient API testing.
type Client struct {
	Server *httptest.Server
}

// NewClient creates a test client from a router.
func NewClient(t testing.TB, r *typeroute.Router) *Client {
	t.Helper()
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return &Client{Server: srv}
}

// Response holds a decoded API response. Body is non-nil only for 2xx
// responses with a JSON body; Detail holds the field errors of a 422.
type Response[T any] struct {
	Status int
	Header http.Header
	Body   *T
	Detail []typeroute.FieldError
	Raw    []byte
}

// Get sends a typed GET request.
func Get[Resp any](t testing.TB, c *Client, path string) *Response[Resp] {
	t.Helper()
	return do[Resp](t, c, http.MethodGet, path, nil)
}

// Post sends a typed POST request with a JSON body.
func Post[Req, Resp any](t testing.TB, c *Client, path string, body *Req) *Response[Resp] {
	t.Helper()
	return do[Resp](t, c, http.MethodPost, path, body)
}

// Put sends a typed PUT request with a JSON body.
func Put[Req, Resp any](t testing.TB, c *Client, path string, body *Req) *Response[Resp] {
	t.Helper()
	return do[Resp](t, c, http.MethodPut, path, body)
}

// Delete sends a typed DELETE request.
func Delete[Resp any](t testing.TB, c *Client, path string) *Response[Resp] {
	t.Helper()
	return do[Resp](t, c, http.MethodDelete, path, nil)
}

func do[Resp any](t testing.TB, c *Client, method, path string, body any) *Response[Resp] {
	t.Helper()

	var reqBody io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("apitest: marshal request body: %v", err)
		}
		reqBody = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(context.Background(), method, c.Server.URL+path, reqBody)
	if err != nil {
		t.Fatalf("apitest: build request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("apitest: %s %s: %v", method, path, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("apitest: read response body: %v", err)
	}

	out := &Response[Resp]{
		Status: resp.StatusCode,
		Header: resp.Header,
		Raw:    raw,
	}

	switch {
	case resp.StatusCode == http.StatusUnprocessableEntity:
		var detail struct {
			Detail []typeroute.FieldError `json:"detail"`
		}
		if err := json.Unmarshal(raw, &detail); err != nil {
			t.Fatalf("apitest: decode 422 detail: %v", err)
		}
		out.Detail = detail.Detail
	case resp.StatusCode < 300 && len(raw) > 0:
		out.Body = new(Resp)
		if err := json.Unmarshal(raw, out.Body); err != nil {
			t.Fatalf("apitest: decode response body: %v", err)
		}
	}

	return out
}
