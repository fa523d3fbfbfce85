package typescript

import (
	"math"
	"strconv"
	"strings"

	"github.com/broady/tsapi/schema"
	"github.com/cockroachdb/errors"
)

// JSONTypeName is the alias every JSON-kind type resolves to.
const JSONTypeName = "JsonType"

// SyntheticPrefix is prepended to the id of an unnamed object type to form
// its declaration name.
const SyntheticPrefix = "Type_"

// precedence orders type expressions by how tightly they bind, so that
// composites know when a member needs parentheses.
type precedence int

const (
	precUnion     precedence = iota // A | B
	precIntersect                   // A & B
	precPrimary                     // names, keywords, literals, T[], Record<K, V>
)

// expr is a rendered type expression.
type expr struct {
	text string
	prec precedence
}

func primary(text string) expr { return expr{text: text, prec: precPrimary} }

// wrap parenthesizes e if it binds more loosely than at.
func (e expr) wrap(at precedence) string {
	if e.prec < at {
		return "(" + e.text + ")"
	}
	return e.text
}

// Resolver renders type ids as TypeScript type expressions.
//
// Resolution is not memoized: a type referenced from several places is
// rendered again for each reference. A Resolver is not safe for concurrent
// use; Generate creates one per call.
type Resolver struct {
	types *schema.Registry

	// active holds the inline ids currently being expanded.
	active map[schema.ID]bool
}

// NewResolver returns a Resolver reading from types.
func NewResolver(types *schema.Registry) *Resolver {
	return &Resolver{
		types:  types,
		active: make(map[schema.ID]bool),
	}
}

// Resolve returns the type expression used wherever id is referenced:
// the display name for exported types, a synthetic name for unnamed
// objects, and an inline expansion for everything else.
func (r *Resolver) Resolve(id schema.ID) (string, error) {
	e, err := r.resolve(id)
	if err != nil {
		return "", err
	}
	return e.text, nil
}

// Expand renders td inline even when it has a display name.
// It is used to write the right-hand side of a named alias.
func (r *Resolver) Expand(id schema.ID, td schema.TypeDescriptor) (string, error) {
	e, err := r.expand(id, td)
	if err != nil {
		return "", err
	}
	return e.text, nil
}

func (r *Resolver) resolve(id schema.ID) (expr, error) {
	td, err := r.types.Lookup(id)
	if err != nil {
		return expr{}, err
	}
	if name := td.DisplayName(); name != "" {
		return primary(typeName(name)), nil
	}
	if td.Kind().IsObject() {
		return primary(SyntheticName(id)), nil
	}
	return r.expand(id, td)
}

func (r *Resolver) expand(id schema.ID, td schema.TypeDescriptor) (expr, error) {
	if r.active[id] {
		return expr{}, errors.WithHint(
			errors.Wrapf(ErrReferenceCycle, "type %s", id),
			"give one of the types in the cycle a name so it can be referenced instead of expanded",
		)
	}
	r.active[id] = true
	defer delete(r.active, id)

	switch td.Kind() {
	case schema.KindAny:
		return primary("any"), nil
	case schema.KindJSON:
		return primary(JSONTypeName), nil
	case schema.KindString, schema.KindID:
		return primary("string"), nil
	case schema.KindBoolean:
		return primary("boolean"), nil
	case schema.KindFloat, schema.KindInt, schema.KindNumber:
		return primary("number"), nil
	case schema.KindUnknown:
		return primary("unknown"), nil
	case schema.KindLiteral:
		if d, ok := td.(*schema.LiteralDescriptor); ok {
			return r.literal(id, d)
		}
	case schema.KindRecord:
		if d, ok := td.(*schema.RecordDescriptor); ok {
			item, err := r.resolve(d.Item)
			if err != nil {
				return expr{}, err
			}
			return primary("Record<string, " + item.text + ">"), nil
		}
	case schema.KindNullable:
		if d, ok := td.(*schema.NullableDescriptor); ok {
			item, err := r.resolve(d.Item)
			if err != nil {
				return expr{}, err
			}
			// null and undefined stay distinct.
			return expr{text: item.text + " | null | undefined", prec: precUnion}, nil
		}
	case schema.KindList:
		if d, ok := td.(*schema.ListDescriptor); ok {
			item, err := r.resolve(d.Item)
			if err != nil {
				return expr{}, err
			}
			return primary(item.wrap(precPrimary) + "[]"), nil
		}
	case schema.KindUnion:
		if d, ok := td.(*schema.UnionDescriptor); ok {
			return r.join(d.Items, " | ", precUnion, "never")
		}
	case schema.KindIntersect:
		if d, ok := td.(*schema.IntersectDescriptor); ok {
			return r.join(d.Items, " & ", precIntersect, "unknown")
		}
	}
	return expr{}, errors.Wrapf(&UnsupportedKindError{Site: "type expression", Descriptor: td}, "type %s", id)
}

// join renders members in input order with sep. An empty member list
// renders as the operator's identity type.
func (r *Resolver) join(ids []schema.ID, sep string, prec precedence, empty string) (expr, error) {
	switch len(ids) {
	case 0:
		return primary(empty), nil
	case 1:
		return r.resolve(ids[0])
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		member, err := r.resolve(id)
		if err != nil {
			return expr{}, err
		}
		parts[i] = member.wrap(prec)
	}
	return expr{text: strings.Join(parts, sep), prec: prec}, nil
}

func (r *Resolver) literal(id schema.ID, d *schema.LiteralDescriptor) (expr, error) {
	switch v := d.Value.(type) {
	case string:
		return primary(quote(v)), nil
	case bool:
		return primary(strconv.FormatBool(v)), nil
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return expr{}, errors.Newf("type %s: literal %v has no TypeScript spelling", id, v)
		}
		if v < 0 {
			// -1[] does not parse; make List parenthesize it.
			return expr{text: formatNumber(v), prec: precIntersect}, nil
		}
		return primary(formatNumber(v)), nil
	default:
		return expr{}, errors.Wrapf(&UnsupportedKindError{Site: "literal value", Descriptor: d}, "type %s", id)
	}
}

// formatNumber spells v the way JavaScript's Number#toString does for the
// common range: integers and decimals without exponent.
func formatNumber(v float64) string {
	abs := math.Abs(v)
	if abs != 0 && (abs >= 1e21 || abs < 1e-6) {
		s := strconv.FormatFloat(v, 'e', -1, 64)
		return strings.NewReplacer("e+0", "e+", "e-0", "e-").Replace(s)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// SyntheticName returns the declaration name of the unnamed object type id.
func SyntheticName(id schema.ID) string {
	return typeName(SyntheticPrefix + string(id))
}
