package tagger_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

// fakeN8N is an in-memory n8n workflow API.
type fakeN8N struct {
	mu        sync.Mutex
	workflows map[string]map[string]json.RawMessage
	getStatus map[string]int
	putStatus map[string]int
	putReply  map[string]string
	puts      map[string][]map[string]json.RawMessage
}

func newFakeN8N(t *testing.T) (*fakeN8N, *httptest.Server) {
	t.Helper()
	f := &fakeN8N{
		workflows: make(map[string]map[string]json.RawMessage),
		getStatus: make(map[string]int),
		putStatus: make(map[string]int),
		putReply:  make(map[string]string),
		puts:      make(map[string][]map[string]json.RawMessage),
	}
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	return f, srv
}

func (f *fakeN8N) add(t *testing.T, id, doc string) {
	t.Helper()
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(doc), &fields); err != nil {
		t.Fatalf("bad fixture: %v", err)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.workflows[id] = fields
}

func (f *fakeN8N) tags(id string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var tags []struct{ ID string }
	_ = json.Unmarshal(f.workflows[id]["tags"], &tags)
	out := make([]string, len(tags))
	for i, tag := range tags {
		out[i] = tag.ID
	}
	return out
}

func (f *fakeN8N) putsFor(id string) []map[string]json.RawMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.puts[id]
}

func (f *fakeN8N) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	id := strings.TrimPrefix(r.URL.Path, "/api/v1/workflows/")
	wf, ok := f.workflows[id]

	switch r.Method {
	case http.MethodGet:
		if code := f.getStatus[id]; code != 0 {
			http.Error(w, `{"message":"boom"}`, code)
			return
		}
		if !ok {
			http.Error(w, `{"message":"Not Found"}`, http.StatusNotFound)
			return
		}
		_ = json.NewEncoder(w).Encode(wf)
	case http.MethodPut:
		if code := f.putStatus[id]; code != 0 {
			http.Error(w, strings.Repeat("x", 300), code)
			return
		}
		body, _ := io.ReadAll(r.Body)
		var payload map[string]json.RawMessage
		if err := json.Unmarshal(body, &payload); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		for _, readOnly := range []string{"id", "active", "createdAt", "updatedAt", "versionId", "pinData"} {
			if _, present := payload[readOnly]; present {
				http.Error(w, `{"message":"request/body must NOT have additional properties"}`, http.StatusBadRequest)
				return
			}
		}
		f.puts[id] = append(f.puts[id], payload)
		for k, v := range payload {
			wf[k] = v
		}
		if reply, ok := f.putReply[id]; ok {
			_, _ = io.WriteString(w, reply)
			return
		}
		_ = json.NewEncoder(w).Encode(wf)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}
