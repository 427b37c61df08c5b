package vision

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"posterforge/internal/domain"
)

func geminiReply(text string) string {
	payload := map[string]any{
		"candidates": []map[string]any{{
			"content": map[string]any{
				"parts": []map[string]any{{"text": text}},
			},
		}},
	}
	raw, _ := json.Marshal(payload)
	return string(raw)
}

const sampleEventsJSON = `{"events":[{"name":"Diwali","date":"November 1, 2026","day":"Sunday","type":"festival","description":"Festival of lights","category":"Religious","importance":"high","colors":["#FF9933","#800080"],"keywords":["diya","rangoli"]},{"name":"Republic Day","date":"January 26, 2026","day":"Monday","type":"holiday","description":"National holiday","category":"National","importance":"high","colors":["#FF9933"],"keywords":["flag"]}]}`

func newTestExtractor(t *testing.T, handler http.HandlerFunc) (*GeminiExtractor, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	ex, err := NewGeminiExtractor(GeminiOptions{
		APIKey:     "test-key",
		BaseURL:    server.URL,
		HTTPClient: server.Client(),
		Now:        func() time.Time { return time.UnixMilli(1700000000000) },
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return ex, server
}

func TestExtractEventsParsesStructuredReply(t *testing.T) {
	ex, _ := newTestExtractor(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-goog-api-key") != "test-key" {
			t.Errorf("missing api key header")
		}
		_, _ = w.Write([]byte(geminiReply(sampleEventsJSON)))
	})
	events, err := ex.ExtractEvents(context.Background(), []byte{0x89, 0x50}, "image/png")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("event count = %d, want 2", len(events))
	}
	if events[0].Name != "Diwali" || events[1].Name != "Republic Day" {
		t.Fatalf("order not preserved: %#v", events)
	}
	if events[0].ID != "event_1700000000000_0" || events[1].ID != "event_1700000000000_1" {
		t.Fatalf("unexpected ids: %q, %q", events[0].ID, events[1].ID)
	}
	if events[0].Type != domain.EventTypeFestival || events[0].Importance != domain.ImportanceHigh {
		t.Fatalf("unexpected normalized fields: %#v", events[0])
	}
}

func TestExtractEventsToleratesSurroundingProse(t *testing.T) {
	reply := "Sure! Here are the events I found:\n\n" + sampleEventsJSON + "\n\nLet me know if you need anything else."
	ex, _ := newTestExtractor(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(geminiReply(reply)))
	})
	events, err := ex.ExtractEvents(context.Background(), []byte{0x01}, "image/png")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("event count = %d, want 2", len(events))
	}
}

func TestExtractEventsRejectsReplyWithoutJSON(t *testing.T) {
	ex, _ := newTestExtractor(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(geminiReply("I could not find any calendar content in this image.")))
	})
	_, err := ex.ExtractEvents(context.Background(), []byte{0x01}, "image/png")
	var extrErr *ExtractionError
	if !errors.As(err, &extrErr) {
		t.Fatalf("expected ExtractionError, got %v", err)
	}
	if !strings.Contains(extrErr.Message, "no valid JSON") {
		t.Fatalf("unexpected message: %q", extrErr.Message)
	}
}

func TestExtractEventsRejectsMissingEventsArray(t *testing.T) {
	ex, _ := newTestExtractor(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(geminiReply(`{"holidays":[]}`)))
	})
	_, err := ex.ExtractEvents(context.Background(), []byte{0x01}, "image/png")
	var extrErr *ExtractionError
	if !errors.As(err, &extrErr) {
		t.Fatalf("expected ExtractionError, got %v", err)
	}
}

func TestExtractEventsNormalizesProviderError(t *testing.T) {
	ex, _ := newTestExtractor(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"quota exhausted"}}`))
	})
	_, err := ex.ExtractEvents(context.Background(), []byte{0x01}, "image/png")
	var extrErr *ExtractionError
	if !errors.As(err, &extrErr) {
		t.Fatalf("expected ExtractionError, got %v", err)
	}
	if !strings.Contains(extrErr.Message, "quota exhausted") {
		t.Fatalf("provider message not preserved: %q", extrErr.Message)
	}
}

func TestExtractEventsDropsInvalidEntries(t *testing.T) {
	mixed := `{"events":[{"name":"Holi","date":"March 14, 2026","day":"Saturday","type":"festival","importance":"high"},{"name":"","type":"festival"},{"name":"Unknown Kind","date":"x","day":"y","type":"party"}]}`
	ex, _ := newTestExtractor(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(geminiReply(mixed)))
	})
	events, err := ex.ExtractEvents(context.Background(), []byte{0x01}, "image/png")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events) != 1 || events[0].Name != "Holi" {
		t.Fatalf("unexpected events: %#v", events)
	}
}

func TestFirstJSONObjectIgnoresBracesInStrings(t *testing.T) {
	text := `note {"events":[{"name":"a {weird} one","date":"d","day":"w","type":"holiday"}]} trailing`
	got := firstJSONObject(text)
	if !strings.HasPrefix(got, `{"events"`) || !strings.HasSuffix(got, `]}`) {
		t.Fatalf("unexpected fragment: %q", got)
	}
	var payload eventsPayload
	if err := json.Unmarshal([]byte(got), &payload); err != nil {
		t.Fatalf("fragment not valid JSON: %v", err)
	}
}
