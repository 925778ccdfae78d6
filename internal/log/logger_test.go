package log

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestJSONLoggerAddsComponent(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: slog.LevelInfo, Format: "json", Component: ComponentExpense, Output: &buf})
	l.InfoContext(context.Background(), "created", FieldExpenseID, "abc")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v (%s)", err, buf.String())
	}
	if entry[FieldComponent] != ComponentExpense || entry[FieldExpenseID] != "abc" {
		t.Fatalf("unexpected entry %v", entry)
	}
}

func TestWithLoggerRoundTrip(t *testing.T) {
	base := New(Config{Level: slog.LevelInfo, Component: ComponentHTTP, Output: io.Discard})
	ctx := WithLogger(context.Background(), base.With(FieldRequestID, "req_1"))
	if got := FromContext(ctx); got.Component() != ComponentHTTP {
		t.Fatalf("component = %q, want %q", got.Component(), ComponentHTTP)
	}
}

func TestFromContextFallsBackToDefault(t *testing.T) {
	if l := FromContext(context.Background()); l == nil || l.Component() != "unknown" {
		t.Fatalf("unexpected fallback logger %+v", l)
	}
}

func TestLogFieldsBuilder(t *testing.T) {
	f := NewFields().WithOperation(OpCreate).WithExpense("id1", 100, "Food", "").WithError(nil)
	if f[FieldOperation] != OpCreate || f[FieldExpenseID] != "id1" {
		t.Fatalf("unexpected fields %v", f)
	}
	if _, ok := f[FieldIdempotencyKey]; ok {
		t.Fatal("empty key must be omitted")
	}
	if _, ok := f[FieldError]; ok {
		t.Fatal("nil error must be omitted")
	}
	if len(f.ToSlice()) != 2*len(f) {
		t.Fatal("ToSlice length mismatch")
	}
}
