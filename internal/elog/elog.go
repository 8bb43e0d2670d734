// Package elog adapts the engine's logging convention for subsystems that
// are constructed with an explicit dependency rather than reaching for a
// package-level global.
//
// Subsystem constructors (streamio.NewReader, copyqueue.NewQueue,
// shaderlib.NewLibrary, asset.NewLoader, and job.New through
// Config.Logger) take a *slog.Logger. Passing nil is equivalent to passing Nop(): the
// subsystem produces no output. This mirrors gg's logging levels (Debug for
// internal diagnostics, Info for lifecycle events, Warn for non-fatal
// fallbacks) without gg's package-level atomic logger pointer, since here
// the logger travels with the service-locator-constructed instance instead
// of being shared process-wide.
package elog

import (
	"context"
	"log/slog"
)

// discard is a slog.Handler that silently drops every record, so a
// subsystem built with a nil logger pays no formatting cost.
type discard struct{}

func (discard) Enabled(context.Context, slog.Level) bool  { return false }
func (discard) Handle(context.Context, slog.Record) error { return nil }
func (discard) WithAttrs([]slog.Attr) slog.Handler        { return discard{} }
func (discard) WithGroup(string) slog.Handler             { return discard{} }

// Nop returns a logger that silently discards everything.
func Nop() *slog.Logger { return slog.New(discard{}) }

// Or returns l if non-nil, otherwise a discarding logger. Subsystem
// constructors call this once so callers may pass nil for "no logging".
func Or(l *slog.Logger) *slog.Logger {
	if l == nil {
		return Nop()
	}
	return l
}

// Named returns a logger scoped to a component name, matching the
// "component" attribute every engine subsystem logs under.
func Named(l *slog.Logger, component string) *slog.Logger {
	return Or(l).With("component", component)
}
