package schema

import (
	"strconv"

	"github.com/cockroachdb/errors"
)

// valueKind identifies the shape of a decoded input value.
type valueKind int

const (
	valueNull valueKind = iota
	valueBool
	valueNumber
	valueString
	valueArray
	valueObject
)

func (k valueKind) String() string {
	switch k {
	case valueNull:
		return "null"
	case valueBool:
		return "boolean"
	case valueNumber:
		return "number"
	case valueString:
		return "string"
	case valueArray:
		return "array"
	case valueObject:
		return "object"
	default:
		return "invalid"
	}
}

// value is a format-neutral decoded document node.
// Objects keep their keys in source order, which JSON and YAML
// map decoding would otherwise discard.
type value struct {
	kind valueKind

	// text is the string contents, or the source text of a number.
	text string
	num  float64
	b    bool

	items []*value

	keys   []string
	fields map[string]*value
}

func (v *value) get(key string) *value {
	if v == nil || v.kind != valueObject {
		return nil
	}
	return v.fields[key]
}

func (v *value) has(key string) bool {
	return v.get(key) != nil
}

// set records key on an object value; a repeated key is an error.
func (v *value) set(key string, child *value) error {
	if v.fields == nil {
		v.fields = make(map[string]*value)
	}
	if _, ok := v.fields[key]; ok {
		return errors.Newf("duplicate key %q", key)
	}
	v.keys = append(v.keys, key)
	v.fields[key] = child
	return nil
}

// str returns the value as a string, or an error naming path.
func (v *value) str(path string) (string, error) {
	if v == nil || v.kind != valueString {
		return "", errors.Newf("%s: expected string, got %s", path, v.kindName())
	}
	return v.text, nil
}

// optString returns the string at key, "" when absent.
func (v *value) optString(key, path string) (string, error) {
	child := v.get(key)
	if child == nil || child.kind == valueNull {
		return "", nil
	}
	return child.str(path + "." + key)
}

// id returns the value as a type id. Numbers and strings are accepted.
func (v *value) id(path string) (ID, error) {
	if v == nil {
		return "", errors.Newf("%s: missing type id", path)
	}
	switch v.kind {
	case valueString:
		return ID(v.text), nil
	case valueNumber:
		if v.text != "" {
			return ID(v.text), nil
		}
		return ID(strconv.FormatFloat(v.num, 'f', -1, 64)), nil
	default:
		return "", errors.Newf("%s: expected type id, got %s", path, v.kind)
	}
}

func (v *value) kindName() string {
	if v == nil {
		return "nothing"
	}
	return v.kind.String()
}
