package typescript

import (
	"log/slog"

	"github.com/broady/tsapi/typescript/format"
)

// DefaultRootName is the name of the aggregate API type.
const DefaultRootName = "API"

// Options configures a single generation.
type Options struct {
	// RootName names the exported aggregate type. Default: DefaultRootName.
	RootName string

	// NamedAliases emits named non-object types as exported aliases of
	// their expansion instead of inlining them at every reference.
	NamedAliases bool

	// Header is written as a line comment block at the top of the output.
	// Empty means no header.
	Header string

	// Formatter canonicalizes the assembled text. Default: format.Canonical{}.
	Formatter format.Formatter

	// Logger receives debug events. Default: discard.
	Logger *slog.Logger
}

func (o Options) rootName() string {
	if o.RootName == "" {
		return DefaultRootName
	}
	return o.RootName
}

func (o Options) formatter() format.Formatter {
	if o.Formatter == nil {
		return format.Canonical{}
	}
	return o.Formatter
}

func (o Options) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return o.Logger
}

// Result describes one generated file.
type Result struct {
	// Source is the formatted TypeScript text.
	Source string

	// Declarations is the number of top-level type declarations written,
	// not counting the JSON alias or the root type.
	Declarations int

	// JSONAlias reports whether the JsonType alias was emitted.
	JSONAlias bool
}
