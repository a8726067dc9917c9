// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CypherCore Contributors

package logging

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

func decode(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry), "not JSON: %s", buf.String())
	return entry
}

func TestSetup_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup("charcore", "1.0.0", "json", &buf)

	logger.Info("character loaded")

	entry := decode(t, &buf)
	assert.Equal(t, "character loaded", entry["msg"])
	assert.Equal(t, "charcore", entry["service"])
	assert.Equal(t, "1.0.0", entry["version"])
	assert.Contains(t, entry, "time")
	assert.Contains(t, entry, "level")
}

func TestSetup_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup("charcore", "1.0.0", "text", &buf)

	logger.Info("character saved")

	assert.Contains(t, buf.String(), "character saved")
	assert.Contains(t, buf.String(), "service=charcore")
}

func TestSetup_DefaultFormatIsJSON(t *testing.T) {
	var buf bytes.Buffer
	Setup("charcore", "1.0.0", "", &buf).Info("x")
	decode(t, &buf)
}

func TestHandler_TraceContext(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup("charcore", "1.0.0", "json", &buf)

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID: traceID,
		SpanID:  spanID,
	}))

	logger.InfoContext(ctx, "traced")

	entry := decode(t, &buf)
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", entry["trace_id"])
	assert.Equal(t, "00f067aa0ba902b7", entry["span_id"])
	assert.NotContains(t, entry, "character_guid")
}

func TestHandler_CharacterContext(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup("charcore", "1.0.0", "json", &buf).With("component", "load")

	ctx := WithCharacter(context.Background(), 1001, 7)
	logger.WarnContext(ctx, "skipping unknown item")

	entry := decode(t, &buf)
	assert.InDelta(t, 1001, entry["character_guid"], 0)
	assert.InDelta(t, 7, entry["account_id"], 0)
	assert.Equal(t, "load", entry["component"])

	guid, account, ok := CharacterFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, int64(1001), guid)
	assert.Equal(t, int64(7), account)

	_, _, ok = CharacterFromContext(context.Background())
	assert.False(t, ok)
}

func TestSetDefault(t *testing.T) {
	original := slog.Default()
	defer slog.SetDefault(original)

	logger := SetDefault("charcore", "2.0.0", "json")

	assert.Same(t, logger, slog.Default())
}
