package ui

import (
	"context"
	"errors"
	"log/slog"
)

// multiHandler fans each record out to several handlers, so the console and
// a JSON log file can run at different levels.
type multiHandler struct {
	handlers []slog.Handler
}

// NewMultiHandler returns a handler that writes every record to each of hs
// whose level accepts it.
//
//nolint:ireturn // slog.Handler is the contract callers need
func NewMultiHandler(hs ...slog.Handler) slog.Handler {
	return &multiHandler{handlers: hs}
}

func (m *multiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range m.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (m *multiHandler) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range m.handlers {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

//nolint:ireturn // slog.Handler interface
func (m *multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	hs := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		hs[i] = h.WithAttrs(attrs)
	}
	return &multiHandler{handlers: hs}
}

//nolint:ireturn // slog.Handler interface
func (m *multiHandler) WithGroup(name string) slog.Handler {
	hs := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		hs[i] = h.WithGroup(name)
	}
	return &multiHandler{handlers: hs}
}
