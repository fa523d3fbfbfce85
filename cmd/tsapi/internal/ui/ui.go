// Package ui prints tsapi status lines and errors.
package ui

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/fatih/color"
)

// Printer writes colored, line-oriented output. It is safe for concurrent use.
type Printer struct {
	mu   sync.Mutex
	w    io.Writer
	ok   *color.Color
	info *color.Color
	warn *color.Color
	fail *color.Color
	dim  *color.Color
}

// New returns a Printer writing to w. noColor disables escape codes.
func New(w io.Writer, noColor bool) *Printer {
	p := &Printer{
		w:    w,
		ok:   color.New(color.FgGreen),
		info: color.New(color.FgCyan),
		warn: color.New(color.FgYellow),
		fail: color.New(color.FgRed, color.Bold),
		dim:  color.New(color.Faint),
	}
	if noColor {
		for _, c := range []*color.Color{p.ok, p.info, p.warn, p.fail, p.dim} {
			c.DisableColor()
		}
	}
	return p
}

// Success prints a line prefixed with a check mark.
func (p *Printer) Success(format string, args ...any) {
	p.line(p.ok, "✓", format, args...)
}

// Info prints a neutral status line.
func (p *Printer) Info(format string, args ...any) {
	p.line(p.info, "•", format, args...)
}

// Warn prints a warning line.
func (p *Printer) Warn(format string, args ...any) {
	p.line(p.warn, "!", format, args...)
}

// Error prints err followed by any hints attached to it.
func (p *Printer) Error(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.fail.Fprintf(p.w, "✗ %v\n", err)
	if hints := errors.FlattenHints(err); hints != "" {
		for _, h := range strings.Split(hints, "\n") {
			if h = strings.TrimSpace(h); h != "" {
				p.dim.Fprintf(p.w, "  hint: %s\n", h)
			}
		}
	}
}

func (p *Printer) line(c *color.Color, symbol, format string, args ...any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	c.Fprintf(p.w, "%s %s\n", symbol, fmt.Sprintf(format, args...))
}
