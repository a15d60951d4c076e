package netx

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoJSON(t *testing.T) {
	t.Run("sends body and decodes response", func(t *testing.T) {
		var gotMethod, gotCT string
		var gotBody []byte
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotMethod = r.Method
			gotCT = r.Header.Get("Content-Type")
			gotBody, _ = io.ReadAll(r.Body)
			_, _ = w.Write([]byte(`{"n":42}`))
		}))
		defer ts.Close()

		var out struct{ N int }
		err := DoJSON(context.Background(), ts.Client(), http.MethodPost, ts.URL, map[string]string{"a": "b"}, &out)
		require.NoError(t, err)
		assert.Equal(t, http.MethodPost, gotMethod)
		assert.Equal(t, "application/json", gotCT)
		assert.JSONEq(t, `{"a":"b"}`, string(gotBody))
		assert.Equal(t, 42, out.N)
	})

	t.Run("non-2xx -> StatusError", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(`{"error":"Not authorized"}`))
		}))
		defer ts.Close()

		err := DoJSON(context.Background(), nil, http.MethodDelete, ts.URL, nil, nil)
		var se *StatusError
		require.True(t, errors.As(err, &se))
		assert.Equal(t, http.StatusForbidden, se.Code)
		assert.Equal(t, "http 403: Not authorized", se.Error())
	})

	t.Run("malformed body", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`<html>`))
		}))
		defer ts.Close()

		var out map[string]any
		err := DoJSON(context.Background(), nil, http.MethodGet, ts.URL, nil, &out)
		assert.ErrorIs(t, err, ErrMalformedBody)
	})

	t.Run("transport error", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
		url := ts.URL
		ts.Close()

		err := DoJSON(context.Background(), nil, http.MethodGet, url, nil, nil)
		require.Error(t, err)
		var se *StatusError
		assert.False(t, errors.As(err, &se))
	})
}

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, "boom", ErrorMessage([]byte(`{"error":"boom"}`)))
	assert.Equal(t, "plain text", ErrorMessage([]byte(" plain text\n")))
	assert.Equal(t, "", ErrorMessage(nil))
}
