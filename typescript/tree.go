package typescript

import (
	"bytes"
	"strings"

	"github.com/broady/tsapi/schema"
	"github.com/cockroachdb/errors"
)

// EmitTree writes the structural type of node: a function type for an
// endpoint, a type literal with one member per key for a namespace.
// depth is the nesting level of node, used for indentation.
func (e *Emitter) EmitTree(buf *bytes.Buffer, node schema.Node, depth int) error {
	switch n := node.(type) {
	case *schema.Endpoint:
		sig, err := e.signature(n)
		if err != nil {
			return err
		}
		buf.WriteString(sig)
		return nil
	case *schema.Namespace:
		return e.emitNamespace(buf, n, depth)
	case nil:
		buf.WriteString("{}")
		return nil
	default:
		return errors.Newf("unsupported endpoint tree node %T", node)
	}
}

// signature renders an endpoint as a one-argument function returning a Promise.
func (e *Emitter) signature(ep *schema.Endpoint) (string, error) {
	in, err := e.resolver.Resolve(ep.Input)
	if err != nil {
		return "", errors.Wrap(err, "input")
	}
	out, err := e.resolver.Resolve(ep.Output)
	if err != nil {
		return "", errors.Wrap(err, "output")
	}
	return "(input: " + in + ") => Promise<" + out + ">", nil
}

func (e *Emitter) emitNamespace(buf *bytes.Buffer, ns *schema.Namespace, depth int) error {
	keys := ns.Keys()
	if len(keys) == 0 {
		buf.WriteString("{}")
		return nil
	}

	inner := strings.Repeat(e.indent, depth+1)
	buf.WriteString("{\n")
	for _, key := range keys {
		child, _ := ns.Get(key)
		if ep, ok := child.(*schema.Endpoint); ok {
			emitJSDoc(buf, inner, ep.Documentation)
		}
		buf.WriteString(inner)
		buf.WriteString(propertyKey(key))
		buf.WriteString(": ")
		if err := e.EmitTree(buf, child, depth+1); err != nil {
			return errors.Wrapf(err, "endpoint %s", key)
		}
		buf.WriteString("\n")
	}
	buf.WriteString(strings.Repeat(e.indent, depth))
	buf.WriteString("}")
	return nil
}
