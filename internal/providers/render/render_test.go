package render

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"posterforge/internal/domain"
)

var testEvent = domain.ExtractedEvent{
	ID:       "event_1_0",
	Name:     "Holi",
	Date:     "March 14, 2026",
	Day:      "Saturday",
	Type:     domain.EventTypeFestival,
	Colors:   []string{"#E91E63"},
	Keywords: []string{"colors", "spring"},
}

func TestDalleRendererReturnsImageURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req dalleRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Size != "1024x1024" {
			t.Errorf("size = %q, want 1024x1024", req.Size)
		}
		if !strings.Contains(req.Prompt, "colors, spring") {
			t.Errorf("event keywords not forwarded: %q", req.Prompt)
		}
		_, _ = w.Write([]byte(`{"data":[{"url":"https://img.example/poster.png"}]}`))
	}))
	defer server.Close()

	r, err := NewDalleRenderer(DalleOptions{APIKey: "k", BaseURL: server.URL, HTTPClient: server.Client()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	url, err := r.RenderPoster(context.Background(), "festival poster", testEvent)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if url != "https://img.example/poster.png" {
		t.Fatalf("url = %q", url)
	}
}

func TestDalleRendererErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"content policy violation"}}`))
	}))
	defer server.Close()

	r, _ := NewDalleRenderer(DalleOptions{APIKey: "k", BaseURL: server.URL, HTTPClient: server.Client()})
	_, err := r.RenderPoster(context.Background(), "prompt", testEvent)
	var rendErr *RenderError
	if !errors.As(err, &rendErr) {
		t.Fatalf("expected RenderError, got %v", err)
	}
	if !strings.Contains(rendErr.Message, "content policy violation") {
		t.Fatalf("provider message lost: %q", rendErr.Message)
	}
	if errors.Is(err, ErrTimeout) {
		t.Fatalf("status error must not be a timeout")
	}
}

func TestDalleSizeForAspect(t *testing.T) {
	cases := map[string]string{
		"square":    "1024x1024",
		"landscape": "1792x1024",
		"portrait":  "1024x1792",
		"":          "1024x1024",
		"banner":    "1024x1024",
	}
	for aspect, want := range cases {
		if got := dalleSizeForAspect(aspect); got != want {
			t.Errorf("dalleSizeForAspect(%q) = %q, want %q", aspect, got, want)
		}
	}
}

func TestLeonardoRendererPollsUntilComplete(t *testing.T) {
	var polls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			_, _ = w.Write([]byte(`{"sdGenerationJob":{"generationId":"gen-1"}}`))
			return
		}
		if atomic.AddInt32(&polls, 1) < 3 {
			_, _ = w.Write([]byte(`{"generations_by_pk":{"status":"PENDING"}}`))
			return
		}
		_, _ = w.Write([]byte(`{"generations_by_pk":{"status":"COMPLETE","generated_images":[{"url":"https://img.example/leo.png"}]}}`))
	}))
	defer server.Close()

	r, err := NewLeonardoRenderer(LeonardoOptions{
		APIKey:       "k",
		BaseURL:      server.URL,
		PollInterval: time.Millisecond,
		MaxAttempts:  10,
		HTTPClient:   server.Client(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	url, err := r.RenderPoster(context.Background(), "festival poster", testEvent)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if url != "https://img.example/leo.png" {
		t.Fatalf("url = %q", url)
	}
	if got := atomic.LoadInt32(&polls); got != 3 {
		t.Fatalf("polls = %d, want 3", got)
	}
}

func TestLeonardoRendererTimesOutAfterMaxAttempts(t *testing.T) {
	var polls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			_, _ = w.Write([]byte(`{"sdGenerationJob":{"generationId":"gen-2"}}`))
			return
		}
		atomic.AddInt32(&polls, 1)
		_, _ = w.Write([]byte(`{"generations_by_pk":{"status":"PENDING"}}`))
	}))
	defer server.Close()

	r, _ := NewLeonardoRenderer(LeonardoOptions{
		APIKey:       "k",
		BaseURL:      server.URL,
		PollInterval: time.Millisecond,
		MaxAttempts:  4,
		HTTPClient:   server.Client(),
	})
	_, err := r.RenderPoster(context.Background(), "prompt", testEvent)
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
	var rendErr *RenderError
	if !errors.As(err, &rendErr) {
		t.Fatalf("expected RenderError wrapper, got %v", err)
	}
	if got := atomic.LoadInt32(&polls); got != 4 {
		t.Fatalf("polls = %d, want 4", got)
	}
}

func TestLeonardoRendererProviderFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			_, _ = w.Write([]byte(`{"sdGenerationJob":{"generationId":"gen-3"}}`))
			return
		}
		_, _ = w.Write([]byte(`{"generations_by_pk":{"status":"FAILED"}}`))
	}))
	defer server.Close()

	r, _ := NewLeonardoRenderer(LeonardoOptions{
		APIKey:       "k",
		BaseURL:      server.URL,
		PollInterval: time.Millisecond,
		MaxAttempts:  5,
		HTTPClient:   server.Client(),
	})
	_, err := r.RenderPoster(context.Background(), "prompt", testEvent)
	var rendErr *RenderError
	if !errors.As(err, &rendErr) {
		t.Fatalf("expected RenderError, got %v", err)
	}
	if errors.Is(err, ErrTimeout) {
		t.Fatalf("provider failure must not report timeout")
	}
}

func TestLeonardoDimensionsForAspect(t *testing.T) {
	w, h := leonardoDimensionsForAspect("story")
	if w != 512 || h != 912 {
		t.Fatalf("story = %dx%d", w, h)
	}
	w, h = leonardoDimensionsForAspect("unknown")
	if w != 1024 || h != 1024 {
		t.Fatalf("fallback = %dx%d", w, h)
	}
}
