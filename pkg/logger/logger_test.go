package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	return out
}

func TestNewWithWriter_ServiceField(t *testing.T) {
	var buf bytes.Buffer
	NewWithWriter("settlement", "info", &buf).Info("ready")

	out := decodeLine(t, &buf)
	assert.Equal(t, "settlement", out["service"])
	assert.Equal(t, "ready", out["msg"])
	assert.NotContains(t, out, "source")
}

func TestNewWithWriter_DebugAddsSource(t *testing.T) {
	var buf bytes.Buffer
	NewWithWriter("settlement", "debug", &buf).Debug("trace me")

	out := decodeLine(t, &buf)
	assert.Contains(t, out, "source")
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), "level %q", in)
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter("settlement", "warn", &buf)
	l.Info("dropped")
	assert.Empty(t, buf.String())

	l.Warn("kept")
	assert.Equal(t, "kept", decodeLine(t, &buf)["msg"])
}

func TestWithContext_RequestFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter("settlement", "info", &buf)

	ctx := WithCorrelationID(context.Background(), "req-123")
	ctx = WithIdentity(ctx, "guest-7", IdentityGuest)
	WithContext(ctx, l).Info("settling")

	out := decodeLine(t, &buf)
	assert.Equal(t, "req-123", out["correlation_id"])
	assert.Equal(t, "guest-7", out["identity"])
	assert.Equal(t, IdentityGuest, out["identity_kind"])
	assert.NotContains(t, out, "trace_id")
	assert.NotContains(t, out, "span_id")
}

func TestWithContext_EmptyContextAddsNothing(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter("settlement", "info", &buf)

	WithContext(context.Background(), l).Info("bare")

	out := decodeLine(t, &buf)
	for _, key := range []string{"correlation_id", "identity", "identity_kind", "trace_id", "span_id"} {
		assert.NotContains(t, out, key)
	}
}

func TestWithContext_SpanIDs(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter("settlement", "info", &buf)

	traceID, err := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	require.NoError(t, err)
	spanID, err := trace.SpanIDFromHex("00f067aa0ba902b7")
	require.NoError(t, err)
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	}))

	WithContext(ctx, l).Info("with span")

	out := decodeLine(t, &buf)
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", out["trace_id"])
	assert.Equal(t, "00f067aa0ba902b7", out["span_id"])
}

func TestContextAccessors(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, CorrelationIDFromContext(ctx))
	id, kind := IdentityFromContext(ctx)
	assert.Empty(t, id)
	assert.Empty(t, kind)
	assert.Same(t, slog.Default(), FromContext(ctx))

	l := slog.New(slog.NewJSONHandler(&bytes.Buffer{}, nil))
	ctx = NewContext(WithIdentity(ctx, "user-1", IdentityUser), l)
	assert.Same(t, l, FromContext(ctx))
	id, kind = IdentityFromContext(ctx)
	assert.Equal(t, "user-1", id)
	assert.Equal(t, IdentityUser, kind)
}
