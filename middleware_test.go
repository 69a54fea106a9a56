package typeroute_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhumrich/typeroute"
)

func TestRecovery(t *testing.T) {
	t.Parallel()

	r := typeroute.New()
	r.Use(typeroute.Recovery())
	typeroute.Get(r, "/panic", func(_ context.Context, _ *typeroute.Void) (*typeroute.Void, error) {
		panic("boom")
	})

	srv := httptest.NewServer(r)
	defer srv.Close()

	res, err := http.Get(srv.URL + "/panic") //nolint:noctx
	require.NoError(t, err)
	defer func() { require.NoError(t, res.Body.Close()) }()

	assert.Equal(t, http.StatusInternalServerError, res.StatusCode)
}

func TestUse_middleware_order(t *testing.T) {
	t.Parallel()

	var order []string
	mw := func(name string) typeroute.Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	r := typeroute.New()
	r.Use(mw("first"), mw("second"))
	typeroute.Get(r, "/ping", noop)

	srv := httptest.NewServer(r)
	defer srv.Close()

	res, err := http.Get(srv.URL + "/ping") //nolint:noctx
	require.NoError(t, err)
	require.NoError(t, res.Body.Close())

	assert.Equal(t, []string{"first", "second"}, order)
}
