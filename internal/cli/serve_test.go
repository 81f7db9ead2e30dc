package cli

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
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/comicstrip/pkg/observability"
	"github.com/matzehuels/comicstrip/pkg/pipeline"
)

type recordingHTTPHooks struct {
	mu       sync.Mutex
	statuses []int
}

func (h *recordingHTTPHooks) OnRequest(context.Context, string, string) {}

func (h *recordingHTTPHooks) OnResponse(_ context.Context, _, _ string, status int, _ time.Duration) {
	h.mu.Lock()
	h.statuses = append(h.statuses, status)
	h.mu.Unlock()
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	logger := newLogger(io.Discard, LogInfo)
	runner := pipeline.NewRunner(nil, nil, logger)
	ts := httptest.NewServer(newServer(runner, pipeline.Options{}, t.TempDir(), logger).routes())
	t.Cleanup(ts.Close)
	return ts
}

func post(t *testing.T, url, contentType, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, contentType, strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestServeHealth(t *testing.T) {
	ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}
}

func TestServeCreatePage(t *testing.T) {
	hooks := &recordingHTTPHooks{}
	observability.SetHTTPHooks(hooks)
	t.Cleanup(observability.Reset)

	ts := newTestServer(t)

	resp := post(t, ts.URL+"/api/pages?format=json", "application/json", testStoryboard)
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("status = %d: %s", resp.StatusCode, body)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type = %q", ct)
	}
	if _, err := uuid.Parse(resp.Header.Get("X-Page-ID")); err != nil {
		t.Errorf("X-Page-ID = %q is not a uuid", resp.Header.Get("X-Page-ID"))
	}
	var pg struct {
		Panels []json.RawMessage `json:"panels"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&pg); err != nil {
		t.Fatal(err)
	}
	if len(pg.Panels) != 4 {
		t.Errorf("panels = %d, want 4", len(pg.Panels))
	}

	hooks.mu.Lock()
	defer hooks.mu.Unlock()
	if len(hooks.statuses) != 1 || hooks.statuses[0] != http.StatusOK {
		t.Errorf("hook statuses = %v, want [200]", hooks.statuses)
	}
}

func TestServeYAMLStoryboard(t *testing.T) {
	ts := newTestServer(t)
	body := `
utterances:
  - {start: 0, end: 2, transcript: "Hello!", speaker: 0}
frames:
  - {start: 0, end: 2, image: a.png, width: 300, height: 150}
`
	resp := post(t, ts.URL+"/api/pages?format=svg&style=comic", "application/yaml", body)
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		t.Fatalf("status = %d: %s", resp.StatusCode, b)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/svg+xml" {
		t.Errorf("content type = %q", ct)
	}
	svg, _ := io.ReadAll(resp.Body)
	if !bytes.Contains(svg, []byte("Hello!")) {
		t.Error("caption missing from svg")
	}
}

func TestServeErrors(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name   string
		query  string
		body   string
		status int
		code   string
	}{
		{"unknown format", "?format=gif", testStoryboard, http.StatusBadRequest, "INVALID_FORMAT"},
		{"unknown style", "?style=neon", testStoryboard, http.StatusBadRequest, "INVALID_STYLE"},
		{"malformed body", "", "{", http.StatusBadRequest, "INVALID_INPUT"},
		{"absolute image path", "", strings.Replace(testStoryboard, `"wide.png"`, `"/etc/passwd"`, 1), http.StatusBadRequest, "INVALID_PANEL"},
		{"bad transcript", "", strings.Replace(testStoryboard, `"end": 2,`, `"end": -1,`, 1), http.StatusBadRequest, "INVALID_TRANSCRIPT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := post(t, ts.URL+"/api/pages"+tt.query, "application/json", tt.body)
			if resp.StatusCode != tt.status {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.status)
			}
			var e errorResponse
			if err := json.NewDecoder(resp.Body).Decode(&e); err != nil {
				t.Fatal(err)
			}
			if e.Code != tt.code || e.Message == "" {
				t.Errorf("error = %+v, want code %s", e, tt.code)
			}
		})
	}
}
