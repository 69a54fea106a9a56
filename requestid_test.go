package typeroute_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhumrich/typeroute"
)

func TestRequestID_generated(t *testing.T) {
	t.Parallel()

	r := typeroute.New()
	r.Use(typeroute.RequestID())
	typeroute.Get(r, "/ping", noop)

	srv := httptest.NewServer(r)
	defer srv.Close()

	res, err := http.Get(srv.URL + "/ping") //nolint:noctx
	require.NoError(t, err)
	require.NoError(t, res.Body.Close())

	id := res.Header.Get("X-Request-ID")
	require.NotEmpty(t, id)
	_, err = uuid.Parse(id)
	assert.NoError(t, err, "generated IDs are UUIDs")
}

func TestRequestID_propagated(t *testing.T) {
	t.Parallel()

	r := typeroute.New()
	r.Use(typeroute.RequestID())
	typeroute.Get(r, "/ping", noop)

	srv := httptest.NewServer(r)
	defer srv.Close()

	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, srv.URL+"/ping", nil)
	require.NoError(t, err)
	req.Header.Set("X-Request-ID", "client-id")

	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	require.NoError(t, res.Body.Close())

	assert.Equal(t, "client-id", res.Header.Get("X-Request-ID"))
}

func TestRequestID_visible_downstream(t *testing.T) {
	t.Parallel()

	var seen string
	capture := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			seen = typeroute.GetRequestID(req)
			next.ServeHTTP(w, req)
		})
	}

	r := typeroute.New()
	r.Use(typeroute.RequestID(), capture)
	typeroute.Get(r, "/ping", noop)

	srv := httptest.NewServer(r)
	defer srv.Close()

	res, err := http.Get(srv.URL + "/ping") //nolint:noctx
	require.NoError(t, err)
	require.NoError(t, res.Body.Close())

	require.NotEmpty(t, seen)
	assert.Equal(t, res.Header.Get("X-Request-ID"), seen)
}

func TestRequestID_custom_config(t *testing.T) {
	t.Parallel()

	r := typeroute.New()
	r.Use(typeroute.RequestID(typeroute.RequestIDConfig{
		Header:    "X-Trace-ID",
		Generator: func() string { return "fixed" },
	}))
	typeroute.Get(r, "/ping", noop)

	srv := httptest.NewServer(r)
	defer srv.Close()

	res, err := http.Get(srv.URL + "/ping") //nolint:noctx
	require.NoError(t, err)
	require.NoError(t, res.Body.Close())

	assert.Equal(t, "fixed", res.Header.Get("X-Trace-ID"))
}
