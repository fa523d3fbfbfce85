// Package typescript generates TypeScript declarations for an API document:
// one declaration per object type, an optional JSON helper alias, and an
// aggregate type describing every endpoint as an async function.
package typescript

import (
	"bytes"
	"context"
	"log/slog"
	"strings"

	"github.com/broady/tsapi/schema"
	"github.com/cockroachdb/errors"
)

// jsonAlias is emitted once when any type has kind JSON.
const jsonAlias = "type " + JSONTypeName + " = number | string | boolean | null | undefined | " +
	JSONTypeName + "[] | { toJSON(): string } | { [key: string]: " + JSONTypeName + " }\n"

// Generate renders doc as formatted TypeScript source.
func Generate(ctx context.Context, doc *schema.Document, opts Options) (string, error) {
	res, err := GenerateResult(ctx, doc, opts)
	if err != nil {
		return "", err
	}
	return res.Source, nil
}

// GenerateResult is Generate with statistics about what was emitted.
func GenerateResult(ctx context.Context, doc *schema.Document, opts Options) (*Result, error) {
	if doc == nil || doc.Types == nil {
		return nil, errors.New("typescript: nil document")
	}
	logger := opts.logger()
	emitter := NewEmitter(doc.Types, opts)

	var sections []string
	if h := header(opts.Header); h != "" {
		sections = append(sections, h)
	}

	res := &Result{JSONAlias: usesJSON(doc.Types)}
	if res.JSONAlias {
		if err := emitter.claimJSONAlias(); err != nil {
			return nil, err
		}
		sections = append(sections, jsonAlias)
	}

	err := doc.Types.Each(func(id schema.ID, td schema.TypeDescriptor) error {
		var decl bytes.Buffer
		wrote, err := emitter.EmitDeclaration(&decl, id, td)
		if err != nil || !wrote {
			return err
		}
		sections = append(sections, decl.String())
		res.Declarations++
		return nil
	})
	if err != nil {
		return nil, err
	}

	rootName := typeName(opts.rootName())
	if emitter.Exports().Has(rootName) {
		return nil, errors.WithHint(
			errors.Wrapf(ErrDuplicateExportName, "%s (root type)", rootName),
			"choose a different root name or rename the type",
		)
	}
	var root bytes.Buffer
	if ep, ok := doc.API.(*schema.Endpoint); ok {
		emitJSDoc(&root, "", ep.Documentation)
	}
	root.WriteString("export type ")
	root.WriteString(rootName)
	root.WriteString(" = ")
	if err := emitter.EmitTree(&root, doc.API, 0); err != nil {
		return nil, errors.Wrap(err, rootName)
	}
	root.WriteString("\n")
	sections = append(sections, root.String())
	src := strings.Join(sections, "\n")

	logger.Debug("assembled",
		slog.Int("types", doc.Types.Len()),
		slog.Int("declarations", res.Declarations),
		slog.Bool("json_alias", res.JSONAlias),
		slog.Int("bytes", len(src)),
	)

	out, err := opts.formatter().Format(ctx, src)
	if err != nil {
		return nil, errors.Mark(errors.Wrap(err, "format"), ErrFormat)
	}
	res.Source = out
	return res, nil
}

func usesJSON(types *schema.Registry) bool {
	found := false
	_ = types.Each(func(_ schema.ID, td schema.TypeDescriptor) error {
		if td.Kind() == schema.KindJSON {
			found = true
			return errStop
		}
		return nil
	})
	return found
}

var errStop = errors.New("stop")

// header renders text as a block of line comments.
func header(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	var b strings.Builder
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, " \t\r")
		if line == "" {
			b.WriteString("//\n")
			continue
		}
		b.WriteString("// ")
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}
