package httpapi

import (
	"bytes"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]LogLevel{
		"":      LevelOff,
		"off":   LevelOff,
		"error": LevelError,
		"info":  LevelInfo,
		"debug": LevelDebug,
		"weird": LevelInfo, // default
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Fatalf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestRequestLogLevel_Overrides(t *testing.T) {
	r := httptest.NewRequest("GET", "/x?log=debug", nil)
	if got := requestLogLevel(r); got != LevelDebug {
		t.Fatalf("query override failed: %v", got)
	}
	r = httptest.NewRequest("GET", "/x?log=1", nil)
	if got := requestLogLevel(r); got != LevelDebug {
		t.Fatalf("short query override failed: %v", got)
	}
	r = httptest.NewRequest("GET", "/x", nil)
	r.Header.Set("X-Log-Level", "error")
	if got := requestLogLevel(r); got != LevelError {
		t.Fatalf("header override failed: %v", got)
	}
}

func TestLogEnd(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(zerolog.New(&buf))
	defer func() { zlog = nil }()

	r := httptest.NewRequest("POST", "/predict", nil)
	start := time.Now()

	logEnd(r, LevelOff, "predict end", 200, start, nil)
	logEnd(r, LevelError, "predict end", 200, start, nil)
	if buf.Len() != 0 {
		t.Fatalf("unexpected log output %q", buf.String())
	}

	logEnd(r, LevelError, "predict end", 400, start, errors.New("Invalid inputs: x"))
	if out := buf.String(); !strings.Contains(out, `"status":400`) || !strings.Contains(out, `"level":"warn"`) {
		t.Fatalf("missing failure line: %q", out)
	}
	buf.Reset()

	logEnd(r, LevelInfo, "predict end", 200, start, nil)
	if out := buf.String(); !strings.Contains(out, `"message":"predict end"`) || !strings.Contains(out, `"level":"info"`) {
		t.Fatalf("missing success line: %q", out)
	}
}

func TestPredictLogsWithZerologInfo(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(zerolog.New(&buf))
	defer func() { zlog = nil }()

	w := post(NewMux(&mockService{}), "/predict?log=info", predictBody, "application/json")
	if w.Code != 200 {
		t.Fatalf("expected 200 with info logging, got %d", w.Code)
	}
	if !strings.Contains(buf.String(), `"request_id"`) {
		t.Fatalf("expected request id in log line: %q", buf.String())
	}
}
