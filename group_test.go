package typeroute_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhumrich/typeroute"
)

func TestGroup_prefix_and_tags(t *testing.T) {
	t.Parallel()

	type repo struct {
		Org  string `json:"org"`
		Name string `json:"name"`
	}
	type getRepoReq struct {
		Org  string // from group prefix {org}
		Repo string // from route pattern {repo}
	}

	r := typeroute.New()
	g := r.Group("/orgs/{org}", typeroute.WithGroupTags("orgs"))
	typeroute.Get(g, "/repos/{repo}", func(_ context.Context, req *getRepoReq) (*repo, error) {
		return &repo{Org: req.Org, Name: req.Repo}, nil
	}, typeroute.WithTags("repos"))

	srv := httptest.NewServer(r)
	defer srv.Close()

	res, err := http.Get(srv.URL + "/orgs/acme/repos/widget") //nolint:noctx
	require.NoError(t, err)
	defer func() { require.NoError(t, res.Body.Close()) }()

	assert.Equal(t, http.StatusOK, res.StatusCode)
	var got repo
	require.NoError(t, json.NewDecoder(res.Body).Decode(&got))
	assert.Equal(t, repo{Org: "acme", Name: "widget"}, got)

	rs, ok := r.Route(http.MethodGet, "/orgs/{org}/repos/{repo}")
	require.True(t, ok)
	assert.Equal(t, []string{"orgs", "repos"}, rs.Tags)

	// Both segments were inferred as path parameters.
	require.Len(t, rs.Params, 2)
	assert.Equal(t, typeroute.SourcePath, rs.Params[0].In)
	assert.Equal(t, typeroute.SourcePath, rs.Params[1].In)
}

func TestGroup_middleware(t *testing.T) {
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
	g := r.Group("/v1", typeroute.WithGroupMiddleware(mw("a"), mw("b")))
	typeroute.Get(g, "/ping", noop)

	srv := httptest.NewServer(r)
	defer srv.Close()

	res, err := http.Get(srv.URL + "/v1/ping") //nolint:noctx
	require.NoError(t, err)
	require.NoError(t, res.Body.Close())

	assert.Equal(t, []string{"a", "b"}, order)
}
