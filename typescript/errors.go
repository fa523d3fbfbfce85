package typescript

import (
	"fmt"

	"github.com/broady/tsapi/schema"
	"github.com/cockroachdb/errors"
)

// ErrUnresolvedReference is returned when a type id is not in the registry.
// It is the same sentinel the registry itself returns.
var ErrUnresolvedReference = schema.ErrUnresolvedReference

// ErrDuplicateExportName is returned when two declarations share a display name.
var ErrDuplicateExportName = errors.New("duplicate export name")

// ErrReferenceCycle is returned when a type reaches itself only through
// inline composites, which would otherwise expand forever.
var ErrReferenceCycle = errors.New("inline reference cycle")

// ErrFormat is returned when the formatter rejects the generated source.
var ErrFormat = errors.New("format generated source")

// UnsupportedKindError is returned when a descriptor reaches a rendering site
// that has no rule for its kind.
type UnsupportedKindError struct {
	// Site names the rendering step, e.g. "type expression" or "declaration".
	Site string

	// Descriptor is the offending descriptor.
	Descriptor schema.TypeDescriptor
}

func (e *UnsupportedKindError) Error() string {
	kind := "<nil>"
	if e.Descriptor != nil {
		kind = e.Descriptor.Kind().String()
	}
	return fmt.Sprintf("unsupported %s kind %s: %#v", e.Site, kind, e.Descriptor)
}
