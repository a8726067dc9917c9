// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CypherCore Contributors

// Package logging provides structured logging with OpenTelemetry trace
// context and character identity.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"

	"go.opentelemetry.io/otel/trace"
)

type characterKey struct{}

type characterIdentity struct {
	guid    int64
	account int64
}

// WithCharacter returns a context whose log records carry the character
// guid and account id.
func WithCharacter(ctx context.Context, guid, account int64) context.Context {
	return context.WithValue(ctx, characterKey{}, characterIdentity{guid: guid, account: account})
}

// CharacterFromContext returns the identity stored by WithCharacter.
func CharacterFromContext(ctx context.Context) (guid, account int64, ok bool) {
	id, ok := ctx.Value(characterKey{}).(characterIdentity)
	return id.guid, id.account, ok
}

// contextHandler wraps a slog.Handler to add trace and character context.
type contextHandler struct {
	handler slog.Handler
	service string
	version string
}

// Handle stamps the record with service, trace and character attributes.
func (h *contextHandler) Handle(ctx context.Context, r slog.Record) error {
	r.AddAttrs(
		slog.String("service", h.service),
		slog.String("version", h.version),
	)

	spanCtx := trace.SpanContextFromContext(ctx)
	if spanCtx.HasTraceID() {
		r.AddAttrs(slog.String("trace_id", spanCtx.TraceID().String()))
	}
	if spanCtx.HasSpanID() {
		r.AddAttrs(slog.String("span_id", spanCtx.SpanID().String()))
	}
	if guid, account, ok := CharacterFromContext(ctx); ok {
		r.AddAttrs(
			slog.Int64("character_guid", guid),
			slog.Int64("account_id", account),
		)
	}
	//nolint:wrapcheck // Handler interface requires unwrapped error passthrough
	return h.handler.Handle(ctx, r)
}

// Enabled returns true if the level is enabled.
func (h *contextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// WithAttrs returns a new handler with the given attributes.
func (h *contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &contextHandler{handler: h.handler.WithAttrs(attrs), service: h.service, version: h.version}
}

// WithGroup returns a new handler with the given group.
func (h *contextHandler) WithGroup(name string) slog.Handler {
	return &contextHandler{handler: h.handler.WithGroup(name), service: h.service, version: h.version}
}

// Setup creates a configured slog.Logger.
// format: "json" or "text" (defaults to "json" if empty)
// If w is nil, writes to os.Stderr.
func Setup(service, version, format string, w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}

	opts := &slog.HandlerOptions{Level: slog.LevelDebug}
	var base slog.Handler
	if format == "text" {
		base = slog.NewTextHandler(w, opts)
	} else {
		base = slog.NewJSONHandler(w, opts)
	}
	return slog.New(&contextHandler{handler: base, service: service, version: version})
}

// SetDefault sets up and installs the default logger.
func SetDefault(service, version, format string) *slog.Logger {
	logger := Setup(service, version, format, nil)
	slog.SetDefault(logger)
	return logger
}
