// Package rlog provides the resolver's structured logging sink: a thin
// key=value event emitter modeled on a verbose-flag-gated hook split,
// so a CLI can show resolution steps without the core packages
// depending on any particular presentation layer.
package rlog

import (
	"fmt"
	"io"
	"os"
	"sort"
	"sync"

	"github.com/mattn/go-isatty"
)

// Hook receives one structured event. Core packages accept a Hook
// (often nil) rather than a concrete Logger so they never import this
// package directly.
type Hook func(event string, fields map[string]any)

// Logger writes events to an io.Writer in "event key=value key=value"
// form, colorizing the event name when writing to a terminal.
type Logger struct {
	mu     sync.Mutex
	out    io.Writer
	color  bool
	Silent bool
}

// New creates a Logger writing to out. Color is enabled automatically
// when out is a terminal.
func New(out io.Writer) *Logger {
	color := false
	if f, ok := out.(*os.File); ok {
		color = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return &Logger{out: out, color: color}
}

// Hook returns a Hook bound to this Logger, suitable for passing into
// resolver options.
func (l *Logger) Hook() Hook {
	return func(event string, fields map[string]any) {
		l.Emit(event, fields)
	}
}

// Emit writes one event line. Safe for concurrent use.
func (l *Logger) Emit(event string, fields map[string]any) {
	if l.Silent {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	name := event
	if l.color {
		name = "\x1b[36m" + event + "\x1b[0m"
	}
	fmt.Fprint(l.out, name)

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(l.out, " %s=%v", k, fields[k])
	}
	fmt.Fprintln(l.out)
}
