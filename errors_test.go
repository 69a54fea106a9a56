package typeroute_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhumrich/typeroute"
)

func TestHTTPError(t *testing.T) {
	t.Parallel()

	err := typeroute.Error(http.StatusNotFound, "item not found")
	assert.Equal(t, "item not found", err.Error())
	assert.Equal(t, http.StatusNotFound, typeroute.ErrorStatus(err))

	err = typeroute.Errorf(http.StatusConflict, "item %q exists", "a")
	assert.Equal(t, `item "a" exists`, err.Error())
	assert.Equal(t, http.StatusConflict, typeroute.ErrorStatus(err))
}

func TestErrorStatus_plain_error(t *testing.T) {
	t.Parallel()

	assert.Equal(t, http.StatusInternalServerError, typeroute.ErrorStatus(errors.New("boom")))
}

func TestValidationErrors_error_string(t *testing.T) {
	t.Parallel()

	verrs := typeroute.ValidationErrors{
		{Loc: []any{"body", "price"}, Msg: "Field required", Type: "missing"},
		{Loc: []any{"body", "lines", 1, "sku"}, Msg: "Field required", Type: "missing"},
	}
	assert.Equal(t, http.StatusUnprocessableEntity, verrs.StatusCode())
	assert.Equal(t, "validation failed: body.price, body.lines.1.sku", verrs.Error())
}

func TestHandler_error_responses(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		err          error
		expectStatus int
		expectDetail string
	}{
		"typed 404": {
			err:          typeroute.Error(http.StatusNotFound, "item not found"),
			expectStatus: http.StatusNotFound,
			expectDetail: "item not found",
		},
		"plain error hides detail": {
			err:          errors.New("db password is hunter2"),
			expectStatus: http.StatusInternalServerError,
			expectDetail: "Internal Server Error",
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			r := typeroute.New()
			typeroute.Get(r, "/fail", func(_ context.Context, _ *typeroute.Void) (*typeroute.Void, error) {
				return nil, tc.err
			})

			srv := httptest.NewServer(r)
			defer srv.Close()

			res, err := http.Get(srv.URL + "/fail") //nolint:noctx
			require.NoError(t, err)
			defer func() { require.NoError(t, res.Body.Close()) }()

			assert.Equal(t, tc.expectStatus, res.StatusCode)

			var body struct {
				Detail string `json:"detail"`
			}
			require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
			assert.Equal(t, tc.expectDetail, body.Detail)
		})
	}
}

func TestRegistrationError_message(t *testing.T) {
	t.Parallel()

	err := &typeroute.RegistrationError{Method: "GET", Pattern: "/x", Reason: "duplicate route"}
	assert.Equal(t, "register GET /x: duplicate route", err.Error())
}
