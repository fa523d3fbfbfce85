// Package format canonicalizes generated TypeScript source.
//
// The generator hands its assembled text to a Formatter and returns the
// result verbatim. Canonical is a self-contained formatter for the subset of
// TypeScript the generator writes; Prettier delegates to the prettier CLI.
package format

import (
	"context"
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/evanw/esbuild/pkg/api"
)

// Formatter turns syntactically close-to-valid source into canonical text.
// It fails if the source does not parse.
type Formatter interface {
	Format(ctx context.Context, src string) (string, error)
}

// Func adapts a function to the Formatter interface.
type Func func(ctx context.Context, src string) (string, error)

// Format calls f(ctx, src).
func (f Func) Format(ctx context.Context, src string) (string, error) {
	return f(ctx, src)
}

// Identity returns its input unchanged.
var Identity = Func(func(_ context.Context, src string) (string, error) { return src, nil })

// SyntaxError describes source the formatter could not parse.
type SyntaxError struct {
	Line    int // 1-based; 0 if unknown
	Column  int // 0-based
	Message string
}

func (e *SyntaxError) Error() string {
	if e.Line == 0 {
		return e.Message
	}
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Column, e.Message)
}

// Canonical re-indents by bracket depth, drops statement-terminating
// semicolons, collapses runs of blank lines and ensures a single trailing
// newline. Before formatting it checks that the source is well formed.
type Canonical struct {
	// Indent is one level of indentation. Default: two spaces.
	Indent string

	// SkipParseCheck disables the full TypeScript parse check, leaving
	// only the bracket and literal balance check.
	SkipParseCheck bool
}

// Format implements Formatter.
func (c Canonical) Format(ctx context.Context, src string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	lines, err := scan(src)
	if err != nil {
		return "", err
	}
	if !c.SkipParseCheck {
		if err := CheckSyntax(src); err != nil {
			return "", err
		}
	}
	indent := c.Indent
	if indent == "" {
		indent = "  "
	}
	return render(lines, indent), nil
}

// CheckSyntax parses src as a TypeScript module and returns the first
// syntax error, if any.
func CheckSyntax(src string) error {
	result := api.Transform(src, api.TransformOptions{
		Loader:     api.LoaderTS,
		Sourcefile: "generated.ts",
		LogLevel:   api.LogLevelSilent,
	})
	if len(result.Errors) == 0 {
		return nil
	}
	msg := result.Errors[0]
	serr := &SyntaxError{Message: msg.Text}
	if msg.Location != nil {
		serr.Line = msg.Location.Line
		serr.Column = msg.Location.Column
		if text := strings.TrimSpace(msg.Location.LineText); text != "" {
			serr.Message += " in " + text
		}
	}
	return errors.Wrap(serr, "parse TypeScript")
}

// render writes the scanned lines back out with canonical layout.
func render(lines []line, indent string) string {
	var b strings.Builder
	blank := 0
	wrote := false
	for _, l := range lines {
		if l.text == "" {
			blank++
			continue
		}
		if wrote && blank > 0 {
			b.WriteString("\n")
		}
		blank = 0
		wrote = true

		depth := l.depth
		if depth < 0 {
			depth = 0
		}
		b.WriteString(strings.Repeat(indent, depth))
		if l.inComment && strings.HasPrefix(l.text, "*") {
			// JSDoc continuation lines sit one column right of the opener.
			b.WriteString(" ")
		}
		b.WriteString(l.text)
		b.WriteString("\n")
	}
	return b.String()
}
