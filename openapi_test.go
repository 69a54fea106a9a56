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

func TestSpec_document_shape(t *testing.T) {
	t.Parallel()

	r := typeroute.New(
		typeroute.WithTitle("Items API"),
		typeroute.WithVersion("1.0.0"),
		typeroute.WithAPIDescription("Test API"),
	)
	typeroute.Post(r, "/items/", echoItem, typeroute.WithTags("items"))

	spec := r.Spec()

	assert.Equal(t, "3.1.0", spec.OpenAPI)
	assert.Equal(t, "Items API", spec.Info.Title)
	assert.Equal(t, "1.0.0", spec.Info.Version)

	op, ok := spec.Paths["/items/"]["post"]
	require.True(t, ok)
	assert.Equal(t, []string{"items"}, op.Tags)
	assert.Equal(t, "post_items", op.OperationID)

	require.NotNil(t, op.RequestBody)
	require.True(t, op.RequestBody.Required)
	media, ok := op.RequestBody.Content["application/json"]
	require.True(t, ok)
	require.NotNil(t, media.Schema)
	assert.Equal(t, "#/components/schemas/Item", media.Schema.Ref)

	require.NotNil(t, spec.Components)
	item, ok := spec.Components.Schemas["Item"]
	require.True(t, ok)
	assert.Equal(t, float64(0), item.Properties["tax"].Default)
	assert.Equal(t, []string{"name", "price"}, item.Required)

	ok200, found := op.Responses["200"]
	require.True(t, found)
	assert.Equal(t, "#/components/schemas/Item", ok200.Content["application/json"].Schema.Ref)

	v422, found := op.Responses["422"]
	require.True(t, found)
	assert.Equal(t, "#/components/schemas/HTTPValidationError", v422.Content["application/json"].Schema.Ref)
	assert.Contains(t, spec.Components.Schemas, "HTTPValidationError")
	assert.Contains(t, spec.Components.Schemas, "ValidationError")
}

func TestSpec_parameters(t *testing.T) {
	t.Parallel()

	r := typeroute.New()
	typeroute.Get(r, "/orgs/{org}/search", func(_ context.Context, req *searchReq) (*searchResp, error) {
		return &searchResp{}, nil
	})

	spec := r.Spec()
	op := spec.Paths["/orgs/{org}/search"]["get"]
	require.Len(t, op.Parameters, 4)

	byName := map[string]typeroute.Parameter{}
	for _, p := range op.Parameters {
		byName[p.Name] = p
	}

	org := byName["org"]
	assert.Equal(t, "path", org.In)
	assert.True(t, org.Required)
	assert.Equal(t, "string", org.Schema.Type)

	limit := byName["limit"]
	assert.Equal(t, "query", limit.In)
	assert.False(t, limit.Required)
	assert.Equal(t, 10, limit.Schema.Default)

	tag := byName["tag"]
	assert.Equal(t, "query", tag.In)
	assert.Equal(t, "array", tag.Schema.Type)

	auth := byName["Authorization"]
	assert.Equal(t, "header", auth.In)
	assert.True(t, auth.Required)
}

func TestSpec_response_sequence(t *testing.T) {
	t.Parallel()

	r := typeroute.New()
	typeroute.Get(r, "/items/", func(_ context.Context, _ *typeroute.Void) (*[]Item, error) {
		return &[]Item{}, nil
	})

	spec := r.Spec()
	op := spec.Paths["/items/"]["get"]
	schema := op.Responses["200"].Content["application/json"].Schema
	require.NotNil(t, schema)
	assert.Equal(t, "array", schema.Type)
	require.NotNil(t, schema.Items)
	assert.Equal(t, "#/components/schemas/Item", schema.Items.Ref)
}

func TestSpec_cached_until_registration(t *testing.T) {
	t.Parallel()

	r := typeroute.New()
	typeroute.Get(r, "/one", noop)

	first := r.Spec()
	assert.Same(t, first, r.Spec(), "unchanged registry must return the cached document")
	assert.Contains(t, first.Paths, "/one")
	assert.NotContains(t, first.Paths, "/two")

	typeroute.Get(r, "/two", noop)

	second := r.Spec()
	assert.NotSame(t, first, second)
	assert.Contains(t, second.Paths, "/two")

	// The earlier document is immutable: still without the new route.
	assert.NotContains(t, first.Paths, "/two")
}

func TestSpec_concurrent_reads(t *testing.T) {
	t.Parallel()

	r := typeroute.New()
	typeroute.Post(r, "/items/", echoItem)
	r.Seal()

	done := make(chan *typeroute.OpenAPISpec, 8)
	for range 8 {
		go func() {
			done <- r.Spec()
		}()
	}
	for range 8 {
		spec := <-done
		require.NotNil(t, spec)
		assert.Contains(t, spec.Paths, "/items/")
	}
}

func TestServeSpec_endpoints(t *testing.T) {
	t.Parallel()

	r := typeroute.New(typeroute.WithTitle("Items API"))
	typeroute.Post(r, "/items/", echoItem)
	r.ServeSpec("/openapi.json")
	r.ServeSpecYAML("/openapi.yaml")

	srv := httptest.NewServer(r)
	defer srv.Close()

	res, err := http.Get(srv.URL + "/openapi.json") //nolint:noctx
	require.NoError(t, err)
	defer func() { require.NoError(t, res.Body.Close()) }()

	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "application/json", res.Header.Get("Content-Type"))

	var doc map[string]any
	require.NoError(t, json.NewDecoder(res.Body).Decode(&doc))
	assert.Equal(t, "3.1.0", doc["openapi"])

	yres, err := http.Get(srv.URL + "/openapi.yaml") //nolint:noctx
	require.NoError(t, err)
	defer func() { require.NoError(t, yres.Body.Close()) }()
	assert.Equal(t, http.StatusOK, yres.StatusCode)
	assert.Equal(t, "application/yaml", yres.Header.Get("Content-Type"))
}
