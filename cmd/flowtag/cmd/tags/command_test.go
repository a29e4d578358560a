package tags_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/flowtag/cmd/flowtag/cmd/tags"
	"github.com/agentstation/flowtag/internal/appcontext"
	"github.com/agentstation/flowtag/internal/config"
	"github.com/agentstation/flowtag/internal/n8n"
	flowerrors "github.com/agentstation/flowtag/pkg/errors"
)

// server is a minimal n8n tag and workflow API.
type server struct {
	mu       sync.Mutex
	tags     []n8n.Tag
	workflow map[string]json.RawMessage
	lastPut  map[string]json.RawMessage
	requests []string
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, r.Method+" "+r.URL.Path)

	if r.Header.Get("X-N8N-API-KEY") != "secret" {
		http.Error(w, `{"message":"unauthorized"}`, http.StatusUnauthorized)
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/api/v1")
	switch {
	case path == "/tags" && r.Method == http.MethodGet:
		writeJSON(w, http.StatusOK, map[string]any{"data": s.tags, "nextCursor": nil})
	case path == "/tags" && r.Method == http.MethodPost:
		var body struct{ Name string }
		_ = json.NewDecoder(r.Body).Decode(&body)
		tag := n8n.Tag{ID: "t-" + body.Name, Name: body.Name}
		s.tags = append(s.tags, tag)
		writeJSON(w, http.StatusCreated, tag)
	case strings.HasPrefix(path, "/tags/"):
		id := strings.TrimPrefix(path, "/tags/")
		for i, tag := range s.tags {
			if tag.ID != id {
				continue
			}
			switch r.Method {
			case http.MethodGet:
				writeJSON(w, http.StatusOK, tag)
			case http.MethodPatch:
				var body struct{ Name string }
				_ = json.NewDecoder(r.Body).Decode(&body)
				s.tags[i].Name = body.Name
				writeJSON(w, http.StatusOK, s.tags[i])
			case http.MethodDelete:
				s.tags = append(s.tags[:i], s.tags[i+1:]...)
				writeJSON(w, http.StatusOK, tag)
			}
			return
		}
		http.Error(w, `{"message":"Not Found"}`, http.StatusNotFound)
	case path == "/workflows/wf-1" && r.Method == http.MethodGet:
		writeJSON(w, http.StatusOK, s.workflow)
	case path == "/workflows/wf-1" && r.Method == http.MethodPut:
		data, _ := io.ReadAll(r.Body)
		s.lastPut = map[string]json.RawMessage{}
		_ = json.Unmarshal(data, &s.lastPut)
		s.workflow["tags"] = s.lastPut["tags"]
		writeJSON(w, http.StatusOK, s.workflow)
	default:
		http.Error(w, `{"message":"Not Found"}`, http.StatusNotFound)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func newServer(t *testing.T) (*server, *appcontext.Mock) {
	t.Helper()
	s := &server{
		tags: []n8n.Tag{{ID: "t-1", Name: "voice-ai"}, {ID: "t-2", Name: "stt"}},
		workflow: map[string]json.RawMessage{
			"id":          json.RawMessage(`"wf-1"`),
			"name":        json.RawMessage(`"Whisper STT"`),
			"nodes":       json.RawMessage(`[]`),
			"connections": json.RawMessage(`{}`),
			"settings":    json.RawMessage(`{}`),
			"tags":        json.RawMessage(`[{"id":"t-manual","name":"manual"}]`),
		},
	}
	srv := httptest.NewServer(s)
	t.Cleanup(srv.Close)

	mock := &appcontext.Mock{
		OutputFormatFunc: func() string { return "json" },
		SettingsFunc: func() *config.Settings {
			return &config.Settings{N8NURL: srv.URL, APIKey: "secret", Backend: config.BackendAPI}
		},
	}
	return s, mock
}

func run(mock *appcontext.Mock, args ...string) (string, error) {
	cmd := tags.NewCommand(mock)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestTagsList(t *testing.T) {
	_, mock := newServer(t)

	out, err := run(mock, "list")
	require.NoError(t, err)

	var got []n8n.Tag
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, []string{"voice-ai", "stt"}, []string{got[0].Name, got[1].Name})
}

func TestTagsCreateRenameDelete(t *testing.T) {
	s, mock := newServer(t)

	out, err := run(mock, "create", "whisper")
	require.NoError(t, err)
	var created n8n.Tag
	require.NoError(t, json.Unmarshal([]byte(out), &created))
	assert.Equal(t, "t-whisper", created.ID)

	_, err = run(mock, "rename", "t-whisper", "asr")
	require.NoError(t, err)

	out, err = run(mock, "get", "t-whisper")
	require.NoError(t, err)
	assert.Contains(t, out, `"asr"`)

	out, err = run(mock, "delete", "t-whisper")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted tag t-whisper")

	s.mu.Lock()
	defer s.mu.Unlock()
	assert.Contains(t, s.requests, "PATCH /api/v1/tags/t-whisper")
	assert.Len(t, s.tags, 2)
}

func TestTagsGetMissing(t *testing.T) {
	_, mock := newServer(t)

	_, err := run(mock, "get", "nope")
	assert.True(t, flowerrors.IsNotFound(err))
}

func TestTagsAttachKeepsExistingTags(t *testing.T) {
	s, mock := newServer(t)

	out, err := run(mock, "attach", "wf-1", "voice-ai", "t-2", "stt")
	require.NoError(t, err)
	assert.Contains(t, out, "now has 3 tags")

	s.mu.Lock()
	defer s.mu.Unlock()
	assert.JSONEq(t, `[{"id":"t-manual"},{"id":"t-1"},{"id":"t-2"}]`, string(s.lastPut["tags"]))
	assert.JSONEq(t, `"Whisper STT"`, string(s.lastPut["name"]))
	_, hasID := s.lastPut["id"]
	assert.False(t, hasID)
}

func TestTagsAttachUnknownTag(t *testing.T) {
	s, mock := newServer(t)

	_, err := run(mock, "attach", "wf-1", "does-not-exist")
	assert.True(t, flowerrors.IsNotFound(err))

	s.mu.Lock()
	defer s.mu.Unlock()
	assert.Nil(t, s.lastPut)
}

func TestTagsRequireAPIKey(t *testing.T) {
	mock := &appcontext.Mock{
		ClientFunc: func(s *config.Settings) (*n8n.Client, error) {
			if err := s.RequireAPI(); err != nil {
				return nil, err
			}
			return n8n.New(s.N8NURL, s.APIKey), nil
		},
		SettingsFunc: func() *config.Settings {
			return &config.Settings{N8NURL: "http://localhost:5678"}
		},
	}

	_, err := run(mock, "list")
	assert.True(t, flowerrors.IsConfigError(err))
}

func TestResolveTags(t *testing.T) {
	all := []n8n.Tag{{ID: "a", Name: "alpha"}, {ID: "b", Name: "beta"}}

	ids, err := tags.ResolveTags(all, []string{"beta", "a", "b"})
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, ids)

	_, err = tags.ResolveTags(all, []string{"gamma"})
	assert.True(t, flowerrors.IsNotFound(err))
}
