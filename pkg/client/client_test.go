package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func newTestClient(t *testing.T, h http.Handler, opts ...Option) (*Client, *[]time.Duration) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := New(srv.URL, opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	var mu sync.Mutex
	var sleeps []time.Duration
	c.sleep = func(_ context.Context, d time.Duration) error {
		mu.Lock()
		sleeps = append(sleeps, d)
		mu.Unlock()
		return nil
	}
	return c, &sleeps
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestNew_InvalidURL(t *testing.T) {
	for _, u := range []string{"", "localhost:8080", "://bad"} {
		if _, err := New(u); err == nil {
			t.Errorf("New(%q): expected error", u)
		}
	}
}

func TestUpload(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/upload" || r.Method != http.MethodPost {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer k" {
			t.Errorf("auth header: got %q", got)
		}
		f, hdr, err := r.FormFile("file")
		if err != nil {
			t.Errorf("form file: %v", err)
			return
		}
		b, _ := io.ReadAll(f)
		if hdr.Filename != "notes.txt" || string(b) != "hello" {
			t.Errorf("got %q / %q", hdr.Filename, b)
		}
		writeJSON(w, http.StatusAccepted, Upload{FileID: "j1", DocumentID: "d1", Filename: "notes.txt", Status: StatusQueued})
	})
	c, _ := newTestClient(t, h, WithAPIKey("k"))

	up, err := c.Upload(context.Background(), "dir/notes.txt", strings.NewReader("hello"))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if up.FileID != "j1" || up.Status != StatusQueued {
		t.Errorf("got %+v", up)
	}
}

func TestUpload_APIErrorMapsToSentinel(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusUnsupportedMediaType, map[string]string{
			"code": "unsupported_format", "message": "unsupported file format",
		})
	})
	c, _ := newTestClient(t, h)

	_, err := c.Upload(context.Background(), "a.exe", strings.NewReader("MZ"))
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusUnsupportedMediaType {
		t.Errorf("expected APIError 415, got %v", err)
	}
}

func TestChat_PicksModeField(t *testing.T) {
	tests := []struct {
		name string
		body map[string]any
		want string
	}{
		{"response", map[string]any{"response": "answer", "mode": "chat"}, "answer"},
		{"summary", map[string]any{"summary": "- point", "mode": "summarize"}, "- point"},
		{"research", map[string]any{"research": "report", "mode": "deep-research"}, "report"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got map[string]any
			h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_ = json.NewDecoder(r.Body).Decode(&got)
				writeJSON(w, http.StatusOK, tt.body)
			})
			c, _ := newTestClient(t, h)

			off := false
			resp, err := c.Chat(context.Background(), ChatRequest{Message: "hi", UseRAG: &off})
			if err != nil {
				t.Fatalf("Chat: %v", err)
			}
			if resp.Text != tt.want {
				t.Errorf("Text: got %q, want %q", resp.Text, tt.want)
			}
			if got["useRag"] != false {
				t.Errorf("useRag=false must be sent, got %v", got["useRag"])
			}
		})
	}
}

func TestChat_GenerationErrorVerbatim(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusBadGateway, map[string]string{
			"code": "generation_failed", "message": "generation failed: model overloaded",
		})
	})
	c, _ := newTestClient(t, h)

	_, err := c.Chat(context.Background(), ChatRequest{Message: "hi"})
	if !errors.Is(err, ErrGenerationFailed) {
		t.Fatalf("expected ErrGenerationFailed, got %v", err)
	}
	if !strings.Contains(err.Error(), "model overloaded") {
		t.Errorf("message lost: %v", err)
	}
}

func TestDeleteDocument(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete || r.URL.Path != "/api/documents/d1" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		w.WriteHeader(http.StatusNoContent)
	})
	c, _ := newTestClient(t, h)

	if err := c.DeleteDocument(context.Background(), "d1"); err != nil {
		t.Fatalf("DeleteDocument: %v", err)
	}
}

func TestDeleteDocument_NotFound(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"code": "document_not_found", "message": "document not found"})
	})
	c, _ := newTestClient(t, h)

	if err := c.DeleteDocument(context.Background(), "nope"); !errors.Is(err, ErrDocumentNotFound) {
		t.Fatalf("expected ErrDocumentNotFound, got %v", err)
	}
}

func TestHealth_Degraded(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusServiceUnavailable, Health{Status: "degraded", Checks: map[string]string{"cache": "error"}})
	})
	c, _ := newTestClient(t, h)

	got, err := c.Health(context.Background())
	if err == nil {
		t.Fatal("expected error for 503")
	}
	if got.Status != "degraded" || got.Checks["cache"] != "error" {
		t.Errorf("body: got %+v", got)
	}
}

// jobSequence serves a scripted sequence of status responses.
type jobSequence struct {
	mu    sync.Mutex
	steps []func(w http.ResponseWriter)
	calls int
}

func (s *jobSequence) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	i := s.calls
	s.calls++
	s.mu.Unlock()
	if i >= len(s.steps) {
		i = len(s.steps) - 1
	}
	s.steps[i](w)
}

func (s *jobSequence) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func status(st string, progress int) func(w http.ResponseWriter) {
	return func(w http.ResponseWriter) {
		writeJSON(w, http.StatusOK, Job{FileID: "j1", Status: st, Progress: progress, Message: st})
	}
}

func serverError(w http.ResponseWriter) {
	writeJSON(w, http.StatusServiceUnavailable, map[string]string{"code": "internal_error", "message": "busy"})
}

func TestWaitForJob_Completes(t *testing.T) {
	seq := &jobSequence{steps: []func(http.ResponseWriter){
		status(StatusQueued, 0), status(StatusEmbedding, 70), status(StatusCompleted, 100),
	}}
	c, sleeps := newTestClient(t, seq)

	j, err := c.WaitForJob(context.Background(), "j1")
	if err != nil {
		t.Fatalf("WaitForJob: %v", err)
	}
	if j.Status != StatusCompleted || j.Progress != 100 {
		t.Errorf("got %+v", j)
	}
	if len(*sleeps) != 2 {
		t.Fatalf("sleeps: got %v", *sleeps)
	}
	for _, d := range *sleeps {
		if d != DefaultPollInterval {
			t.Errorf("poll interval: got %v", d)
		}
	}
}

func TestWaitForJob_Failed(t *testing.T) {
	seq := &jobSequence{steps: []func(http.ResponseWriter){
		status(StatusExtracting, 10),
		func(w http.ResponseWriter) {
			writeJSON(w, http.StatusOK, Job{FileID: "j1", Status: StatusFailed, Message: "Extraction failed (pdf): no text"})
		},
	}}
	c, _ := newTestClient(t, seq)

	j, err := c.WaitForJob(context.Background(), "j1")
	if !errors.Is(err, ErrJobFailed) {
		t.Fatalf("expected ErrJobFailed, got %v", err)
	}
	if !strings.Contains(err.Error(), "no text") || j.Status != StatusFailed {
		t.Errorf("got %v / %+v", err, j)
	}
}

func TestWaitForJob_BacksOffOnTransientErrors(t *testing.T) {
	seq := &jobSequence{steps: []func(http.ResponseWriter){
		serverError, serverError, serverError, serverError, status(StatusCompleted, 100),
	}}
	c, sleeps := newTestClient(t, seq)

	if _, err := c.WaitForJob(context.Background(), "j1"); err != nil {
		t.Fatalf("WaitForJob: %v", err)
	}
	want := []time.Duration{5 * time.Second, 10 * time.Second, 20 * time.Second, 30 * time.Second}
	if len(*sleeps) != len(want) {
		t.Fatalf("sleeps: got %v, want %v", *sleeps, want)
	}
	for i := range want {
		if (*sleeps)[i] != want[i] {
			t.Errorf("sleep[%d]: got %v, want %v", i, (*sleeps)[i], want[i])
		}
	}
}

func TestWaitForJob_NotFoundIsFinal(t *testing.T) {
	seq := &jobSequence{steps: []func(http.ResponseWriter){
		func(w http.ResponseWriter) {
			writeJSON(w, http.StatusNotFound, map[string]string{"code": "job_not_found", "message": "job not found"})
		},
	}}
	c, sleeps := newTestClient(t, seq)

	_, err := c.WaitForJob(context.Background(), "j1")
	if !errors.Is(err, ErrJobNotFound) {
		t.Fatalf("expected ErrJobNotFound, got %v", err)
	}
	if len(*sleeps) != 0 || seq.count() != 1 {
		t.Errorf("404 must not be retried: calls=%d sleeps=%v", seq.count(), *sleeps)
	}
}

func TestWaitForJob_AttemptCap(t *testing.T) {
	seq := &jobSequence{steps: []func(http.ResponseWriter){status(StatusIndexing, 90)}}
	c, _ := newTestClient(t, seq, WithPolling(time.Millisecond, 3))

	j, err := c.WaitForJob(context.Background(), "j1")
	if !errors.Is(err, ErrWaitExhausted) {
		t.Fatalf("expected ErrWaitExhausted, got %v", err)
	}
	if seq.count() != 3 || j.Status != StatusIndexing {
		t.Errorf("calls=%d last=%+v", seq.count(), j)
	}
}

func TestWaitForJob_ContextCanceled(t *testing.T) {
	seq := &jobSequence{steps: []func(http.ResponseWriter){status(StatusQueued, 0)}}
	c, _ := newTestClient(t, seq)
	c.sleep = sleepCtx

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := c.WaitForJob(ctx, "j1"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestObserver_RecordsMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	h := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, DocumentList{TotalChunks: 2})
	})
	c, _ := newTestClient(t, h, WithPrometheus(reg))

	if _, err := c.Documents(context.Background()); err != nil {
		t.Fatalf("Documents: %v", err)
	}
	if got := testutil.ToFloat64(c.obs.metrics.operations.WithLabelValues("documents", "ok")); got != 1 {
		t.Errorf("operations{documents,ok}: got %v", got)
	}
}

func TestObserver_ReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := New("http://localhost", WithPrometheus(reg)); err != nil {
		t.Fatalf("first: %v", err)
	}
	if _, err := New("http://localhost", WithPrometheus(reg)); err != nil {
		t.Fatalf("second client on same registry: %v", err)
	}
}
