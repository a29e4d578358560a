package transport

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/flowtag/pkg/errors"
)

func TestClientRequest(t *testing.T) {
	var gotMethod, gotPath, gotKey, gotType, gotAgent string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath = r.Method, r.URL.Path
		gotKey = r.Header.Get("X-N8N-API-KEY")
		gotType = r.Header.Get("Content-Type")
		gotAgent = r.Header.Get("User-Agent")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c := New(srv.URL+"/", "k", N8NAuth(), WithUserAgent("flowtag/test"))
	assert.Equal(t, srv.URL, c.BaseURL())

	resp, err := c.Request(context.Background(), http.MethodPut, "api/v1/workflows/1", map[string]string{"name": "x"})
	require.NoError(t, err)

	var out struct{ OK bool }
	require.NoError(t, DecodeResponse(resp, &out))
	assert.True(t, out.OK)

	assert.Equal(t, http.MethodPut, gotMethod)
	assert.Equal(t, "/api/v1/workflows/1", gotPath)
	assert.Equal(t, "k", gotKey)
	assert.Equal(t, "application/json", gotType)
	assert.Equal(t, "flowtag/test", gotAgent)
	assert.JSONEq(t, `{"name":"x"}`, string(gotBody))
}

func TestClientRawBody(t *testing.T) {
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
	}))
	defer srv.Close()

	raw := json.RawMessage(`{"a": 1,  "b":[ ]}`)
	resp, err := New(srv.URL, "", nil).Request(context.Background(), http.MethodPost, "/x", raw)
	require.NoError(t, err)
	_, err = ReadBody(resp)
	require.NoError(t, err)
	assert.Equal(t, string(raw), string(gotBody))
}

func TestDecodeResponseError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "no such workflow", http.StatusNotFound)
	}))
	defer srv.Close()

	resp, err := New(srv.URL, "", nil).Get(context.Background(), "/api/v1/workflows/9")
	require.NoError(t, err)

	err = DecodeResponse(resp, &struct{}{})
	var apiErr *errors.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "GET /api/v1/workflows/9", apiErr.Endpoint)
	assert.True(t, errors.IsNotFound(err))
}

func TestClientTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	c := New(srv.URL, "", nil, WithTimeout(20*time.Millisecond))
	_, err := c.Get(context.Background(), "/slow")
	require.Error(t, err)
	assert.True(t, errors.IsTimeout(err))
}
