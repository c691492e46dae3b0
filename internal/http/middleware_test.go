package http

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRequestLoggerAttachesContextLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	base := slog.New(slog.NewJSONHandler(&buf, nil))

	var sawLogger bool
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawLogger = LoggerFromContext(r.Context()) != nil
		w.WriteHeader(http.StatusNoContent)
	})

	handler := RequestLogger(base)(inner)

	req := httptest.NewRequest(http.MethodGet, "/buildings", nil)
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusNoContent {
		t.Fatalf("expected handler to run, got status %d", recorder.Code)
	}
	if !sawLogger {
		t.Fatal("expected a request scoped logger in the context")
	}

	output := buf.String()
	if !strings.Contains(output, "request started") || !strings.Contains(output, "request completed") {
		t.Fatalf("expected start and completion log lines, got: %s", output)
	}
	if !strings.Contains(output, `"request_id":1`) {
		t.Fatalf("expected a request id attribute, got: %s", output)
	}
}

func TestRequestLoggerCountsRequests(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	base := slog.New(slog.NewJSONHandler(&buf, nil))
	handler := RequestLogger(base)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	for i := 0; i < 2; i++ {
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/users", nil))
	}

	if !strings.Contains(buf.String(), `"request_id":2`) {
		t.Fatalf("expected the second request to carry id 2, got: %s", buf.String())
	}
}
