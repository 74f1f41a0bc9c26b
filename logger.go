// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gol

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
)

// nopHandler is a slog.Handler that silently discards all log records.
// Enabled returns false so callers skip message formatting entirely.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// loggerPtr stores the active logger.
var loggerPtr atomic.Pointer[slog.Logger]

// devices holds the devices of open simulations that accept a logger.
var devices sync.Map // loggerSetter -> struct{}

func init() {
	loggerPtr.Store(newNopLogger())
}

// SetLogger configures the logger for gol and for the devices of open
// simulations. By default gol produces no log output.
//
// SetLogger is safe for concurrent use. Pass nil to disable logging.
//
// Log levels used by gol:
//   - [slog.LevelDebug]: buffer sizes, dispatches, readbacks
//   - [slog.LevelInfo]: simulation lifecycle
//   - [slog.LevelWarn]: resource release problems
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)

	devices.Range(func(k, _ any) bool {
		k.(loggerSetter).SetLogger(l)
		return true
	})
}

// Logger returns the current logger used by gol.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}

// loggerSetter is implemented by devices that accept a logger.
type loggerSetter interface {
	SetLogger(*slog.Logger)
}

// trackDevice hands the current logger to dev and remembers it for later
// SetLogger calls. It returns a function that forgets dev again.
func trackDevice(dev any) func() {
	ls, ok := dev.(loggerSetter)
	if !ok {
		return func() {}
	}
	ls.SetLogger(Logger())
	devices.Store(ls, struct{}{})
	return func() { devices.Delete(ls) }
}
