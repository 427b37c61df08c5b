package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
)

func serveRequestID(t *testing.T, inbound string) (string, string) {
	t.Helper()
	var fromCtx string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fromCtx = RequestIDFromContext(r.Context())
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if inbound != "" {
		req.Header.Set("X-Request-ID", inbound)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec.Header().Get("X-Request-ID"), fromCtx
}

func TestRequestIDGenerated(t *testing.T) {
	header, fromCtx := serveRequestID(t, "")
	if _, err := uuid.Parse(header); err != nil {
		t.Fatalf("header %q is not a uuid: %v", header, err)
	}
	if header != fromCtx {
		t.Fatalf("header %q != context %q", header, fromCtx)
	}
}

func TestRequestIDReusesValidUUID(t *testing.T) {
	want := uuid.NewString()
	header, fromCtx := serveRequestID(t, want)
	if header != want || fromCtx != want {
		t.Fatalf("header %q context %q, want %q", header, fromCtx, want)
	}
}

func TestRequestIDRejectsNonUUID(t *testing.T) {
	header, _ := serveRequestID(t, "not-a-uuid\nwith-log-injection")
	if _, err := uuid.Parse(header); err != nil {
		t.Fatalf("header %q is not a uuid: %v", header, err)
	}
	if header == "not-a-uuid\nwith-log-injection" {
		t.Fatal("inbound junk was echoed back")
	}
}
