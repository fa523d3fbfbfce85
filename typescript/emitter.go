package typescript

import (
	"bytes"
	"log/slog"

	"github.com/broady/tsapi/schema"
	"github.com/cockroachdb/errors"
)

// ExportNames records every name already emitted as a top-level
// declaration, exported or not. One is created per generation; it is never
// shared.
type ExportNames struct {
	owners map[string]string
}

// NewExportNames returns an empty name registry.
func NewExportNames() *ExportNames {
	return &ExportNames{owners: make(map[string]string)}
}

// Claim records name as declared by type id. Claiming a name twice fails
// with ErrDuplicateExportName.
func (n *ExportNames) Claim(name string, id schema.ID) error {
	return n.claim(name, "type "+string(id))
}

func (n *ExportNames) claim(name, owner string) error {
	if prev, ok := n.owners[name]; ok {
		return errors.WithHintf(
			errors.Wrapf(ErrDuplicateExportName, "%s (%s and %s)", name, prev, owner),
			"rename one of the types; two declarations named %s would shadow each other", name,
		)
	}
	n.owners[name] = owner
	return nil
}

// Has reports whether name has been claimed.
func (n *ExportNames) Has(name string) bool {
	_, ok := n.owners[name]
	return ok
}

// Len returns the number of claimed names.
func (n *ExportNames) Len() int { return len(n.owners) }

// Emitter writes TypeScript declarations for the types of one document.
type Emitter struct {
	types    *schema.Registry
	resolver *Resolver
	exports  *ExportNames
	opts     Options
	logger   *slog.Logger
	indent   string
}

// NewEmitter returns an Emitter with a fresh Resolver and ExportNames.
func NewEmitter(types *schema.Registry, opts Options) *Emitter {
	return &Emitter{
		types:    types,
		resolver: NewResolver(types),
		exports:  NewExportNames(),
		opts:     opts,
		logger:   opts.logger(),
		indent:   "  ",
	}
}

// claimJSONAlias reserves the name of the JSON helper alias.
func (e *Emitter) claimJSONAlias() error {
	return e.exports.claim(JSONTypeName, "JSON helper alias")
}

// Exports returns the names claimed so far.
func (e *Emitter) Exports() *ExportNames { return e.exports }

// EmitTypeExpr returns the type expression for a reference to id.
func (e *Emitter) EmitTypeExpr(id schema.ID) (string, error) {
	return e.resolver.Resolve(id)
}

// EmitDeclaration writes the top-level declaration for the registry entry
// id, if it has one. Only Object and Struct types are declared, plus named
// types of other kinds when Options.NamedAliases is set. It reports whether
// anything was written.
func (e *Emitter) EmitDeclaration(buf *bytes.Buffer, id schema.ID, td schema.TypeDescriptor) (bool, error) {
	switch {
	case td.Kind().IsObject():
		obj, ok := td.(*schema.ObjectDescriptor)
		if !ok {
			return false, errors.Wrapf(&UnsupportedKindError{Site: "declaration", Descriptor: td}, "type %s", id)
		}
		return true, e.emitObject(buf, id, obj)
	case e.opts.NamedAliases && td.DisplayName() != "":
		return true, e.emitAlias(buf, id, td)
	default:
		return false, nil
	}
}

// emitObject writes an object type alias. Named objects are exported;
// unnamed ones are declared under their synthetic name for local reference.
func (e *Emitter) emitObject(buf *bytes.Buffer, id schema.ID, obj *schema.ObjectDescriptor) error {
	name := SyntheticName(id)
	exported := obj.DisplayName() != ""
	if exported {
		name = typeName(obj.DisplayName())
	}
	if err := e.exports.Claim(name, id); err != nil {
		return err
	}

	emitJSDoc(buf, "", obj.Doc())
	if exported {
		buf.WriteString("export ")
	}
	buf.WriteString("type ")
	buf.WriteString(name)
	buf.WriteString(" = {")

	if len(obj.Fields) == 0 {
		buf.WriteString("}\n")
		return nil
	}

	buf.WriteString("\n")
	for _, field := range obj.Fields {
		fieldType, err := e.resolver.Resolve(field.Type)
		if err != nil {
			return errors.Wrapf(err, "field %s.%s", name, field.Name)
		}
		emitJSDoc(buf, e.indent, field.Documentation)
		buf.WriteString(e.indent)
		buf.WriteString(propertyKey(field.Name))
		buf.WriteString(": ")
		buf.WriteString(fieldType)
		buf.WriteString("\n")
	}
	buf.WriteString("}\n")

	e.logger.Debug("declared object",
		slog.String("id", string(id)),
		slog.String("name", name),
		slog.Bool("exported", exported),
		slog.Int("fields", len(obj.Fields)),
	)
	return nil
}

// emitAlias writes a named non-object type as an exported alias of its
// inline expansion.
func (e *Emitter) emitAlias(buf *bytes.Buffer, id schema.ID, td schema.TypeDescriptor) error {
	name := typeName(td.DisplayName())
	if err := e.exports.Claim(name, id); err != nil {
		return err
	}
	rhs, err := e.resolver.Expand(id, td)
	if err != nil {
		return err
	}

	emitJSDoc(buf, "", td.Doc())
	buf.WriteString("export type ")
	buf.WriteString(name)
	buf.WriteString(" = ")
	buf.WriteString(rhs)
	buf.WriteString("\n")

	e.logger.Debug("declared alias",
		slog.String("id", string(id)),
		slog.String("name", name),
		slog.String("kind", td.Kind().String()),
	)
	return nil
}
