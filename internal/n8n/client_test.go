package n8n

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/flowtag/pkg/errors"
)

const fetched = `{
  "id": "wf1",
  "name": "Transcribe calls",
  "active": true,
  "nodes": [{"id": "n1", "type": "n8n-nodes-base.webhook", "parameters": {"path": "x"}}],
  "connections": {"Webhook": {"main": [[{"node": "Next", "type": "main", "index": 0}]]}},
  "settings": {"executionOrder": "v1"},
  "staticData": {"lastId": 4},
  "pinData": {"Webhook": [{"json": {"x": 1}}]},
  "createdAt": "2025-01-01T00:00:00.000Z",
  "updatedAt": "2025-01-02T00:00:00.000Z",
  "versionId": "v-123",
  "tags": [{"id": "t-old", "name": "legacy"}]
}`

func TestWorkflowDecode(t *testing.T) {
	var wf Workflow
	require.NoError(t, json.Unmarshal([]byte(fetched), &wf))

	assert.Equal(t, "wf1", wf.ID)
	assert.Equal(t, "Transcribe calls", wf.Name)
	assert.Equal(t, []string{"t-old"}, wf.TagIDs())

	raw, ok := wf.Field("versionId")
	require.True(t, ok)
	assert.JSONEq(t, `"v-123"`, string(raw))
}

func TestWorkflowNumericID(t *testing.T) {
	var wf Workflow
	require.NoError(t, json.Unmarshal([]byte(`{"id": 42, "tags": null}`), &wf))
	assert.Equal(t, "42", wf.ID)
	assert.Empty(t, wf.TagIDs())
}

func TestUpdatePayload(t *testing.T) {
	var wf Workflow
	require.NoError(t, json.Unmarshal([]byte(fetched), &wf))

	data, err := json.Marshal(wf.UpdatePayload([]string{"t-old", "t-new"}))
	require.NoError(t, err)

	var got map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &got))

	for _, field := range []string{"name", "nodes", "connections", "settings", "staticData"} {
		want, _ := wf.Field(field)
		assert.JSONEq(t, string(want), string(got[field]), field)
	}
	assert.JSONEq(t, `[{"id":"t-old"},{"id":"t-new"}]`, string(got["tags"]))

	assert.NotContains(t, got, "pinData")
	for _, readOnly := range []string{"id", "active", "createdAt", "updatedAt", "versionId"} {
		assert.NotContains(t, got, readOnly)
	}
}

func TestUpdatePayloadDefaults(t *testing.T) {
	var wf Workflow
	require.NoError(t, json.Unmarshal([]byte(`{"id": "x", "name": "bare"}`), &wf))

	data, err := json.Marshal(wf.UpdatePayload(nil))
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"bare","nodes":[],"connections":{},"settings":{},"tags":[]}`, string(data))
}

func TestGetAndUpdateWorkflow(t *testing.T) {
	var putBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "key", r.Header.Get("X-N8N-API-KEY"))
		assert.Equal(t, "/api/v1/workflows/wf1", r.URL.Path)
		switch r.Method {
		case http.MethodGet:
			_, _ = io.WriteString(w, fetched)
		case http.MethodPut:
			putBody, _ = io.ReadAll(r.Body)
			_, _ = io.WriteString(w, fetched)
		}
	}))
	defer srv.Close()

	c := New(srv.URL, "key")
	wf, err := c.GetWorkflow(context.Background(), "wf1")
	require.NoError(t, err)

	require.NoError(t, c.UpdateWorkflow(context.Background(), "wf1", wf.UpdatePayload([]string{"a"})))
	assert.Contains(t, string(putBody), `"tags":[{"id":"a"}]`)
}

func TestUpdateWorkflowPlainTextOK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = io.WriteString(w, "OK")
	}))
	defer srv.Close()

	err := New(srv.URL, "key").UpdateWorkflow(context.Background(), "wf1", map[string]any{"name": "x"})
	assert.NoError(t, err)
}

func TestUpdateWorkflowRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"message":"request/body must NOT have additional properties"}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	err := New(srv.URL, "key").UpdateWorkflow(context.Background(), "wf1", map[string]any{"name": "x"})
	var apiErr *errors.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
}

func TestGetWorkflowStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusAccepted)
		_, _ = io.WriteString(w, `{}`)
	}))
	defer srv.Close()

	_, err := New(srv.URL, "key").GetWorkflow(context.Background(), "wf1")
	var apiErr *errors.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusAccepted, apiErr.StatusCode)
}

func TestListTags(t *testing.T) {
	t.Run("paginated", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Query().Get("cursor") {
			case "":
				_, _ = io.WriteString(w, `{"data":[{"id":"1","name":"a"}],"nextCursor":"p2"}`)
			case "p2":
				_, _ = io.WriteString(w, `{"data":[{"id":"2","name":"b","usageCount":3}],"nextCursor":null}`)
			}
		}))
		defer srv.Close()

		tags, err := New(srv.URL, "key").ListTags(context.Background())
		require.NoError(t, err)
		require.Len(t, tags, 2)
		assert.Equal(t, "b", tags[1].Name)
		require.NotNil(t, tags[1].UsageCount)
		assert.Equal(t, 3, *tags[1].UsageCount)
	})

	t.Run("bare array", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = io.WriteString(w, `[{"id":"1","name":"a"}]`)
		}))
		defer srv.Close()

		tags, err := New(srv.URL, "key").ListTags(context.Background())
		require.NoError(t, err)
		assert.Len(t, tags, 1)
	})
}

func TestTagCRUD(t *testing.T) {
	var calls []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.Method+" "+r.URL.Path)
		switch r.Method {
		case http.MethodPost:
			w.WriteHeader(http.StatusCreated)
			_, _ = io.WriteString(w, `{"id":"new","name":"Production"}`)
		case http.MethodPatch:
			var body map[string]string
			_ = json.NewDecoder(r.Body).Decode(&body)
			_, _ = io.WriteString(w, `{"id":"new","name":"`+body["name"]+`"}`)
		case http.MethodGet:
			_, _ = io.WriteString(w, `{"id":"new","name":"Production"}`)
		case http.MethodDelete:
			w.WriteHeader(http.StatusNoContent)
		}
	}))
	defer srv.Close()

	ctx := context.Background()
	c := New(srv.URL, "key")

	tag, err := c.CreateTag(ctx, "Production")
	require.NoError(t, err)
	assert.Equal(t, "new", tag.ID)

	tag, err = c.RenameTag(ctx, "new", "Prod")
	require.NoError(t, err)
	assert.Equal(t, "Prod", tag.Name)

	_, err = c.GetTag(ctx, "new")
	require.NoError(t, err)

	require.NoError(t, c.DeleteTag(ctx, "new"))

	assert.Equal(t, []string{
		"POST /api/v1/tags",
		"PATCH /api/v1/tags/new",
		"GET /api/v1/tags/new",
		"DELETE /api/v1/tags/new",
	}, calls)
}

func TestGetTagNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"message":"Not Found"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := New(srv.URL, "key").GetTag(context.Background(), "nope")
	assert.True(t, errors.IsNotFound(err))
}
