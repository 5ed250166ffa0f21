package logging

import (
	"context"
	"errors"
	"log/slog"
)

// ContextProvider returns attributes evaluated at log time, such as the
// current session state.
type ContextProvider func() []slog.Attr

// Fanout is a slog.Handler that stamps each record with the provider's
// attributes and hands it to every output whose level admits it.
type Fanout struct {
	outputs  []slog.Handler
	provider ContextProvider
}

// NewFanout skips nil outputs. provider may be nil.
func NewFanout(provider ContextProvider, outputs ...slog.Handler) *Fanout {
	f := &Fanout{provider: provider}
	for _, h := range outputs {
		if h != nil {
			f.outputs = append(f.outputs, h)
		}
	}
	return f
}

func (f *Fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f.outputs {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

// Handle keeps delivering after a failing output and returns every failure.
func (f *Fanout) Handle(ctx context.Context, r slog.Record) error {
	if f.provider != nil {
		if attrs := f.provider(); len(attrs) > 0 {
			r = r.Clone()
			r.AddAttrs(attrs...)
		}
	}
	var errs []error
	for _, h := range f.outputs {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (f *Fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	return f.derive(func(h slog.Handler) slog.Handler { return h.WithAttrs(attrs) })
}

func (f *Fanout) WithGroup(name string) slog.Handler {
	if name == "" {
		return f
	}
	return f.derive(func(h slog.Handler) slog.Handler { return h.WithGroup(name) })
}

func (f *Fanout) derive(fn func(slog.Handler) slog.Handler) *Fanout {
	out := &Fanout{provider: f.provider, outputs: make([]slog.Handler, len(f.outputs))}
	for i, h := range f.outputs {
		out.outputs[i] = fn(h)
	}
	return out
}
