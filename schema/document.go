package schema

import (
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
)

// Document is a complete description of an API surface: the types it uses
// and the tree of endpoints that reference them.
type Document struct {
	// Types holds every type descriptor, keyed by id.
	Types *Registry

	// API is the root of the endpoint tree, usually a *Namespace.
	API Node
}

// NewDocument returns a document with an empty registry and root namespace.
func NewDocument() *Document {
	return &Document{Types: NewRegistry(), API: NewNamespace()}
}

// Format identifies a document encoding.
type Format int

const (
	FormatJSON Format = iota
	FormatYAML
)

// String returns the format name.
func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatYAML:
		return "yaml"
	default:
		return "unknown"
	}
}

// FormatForPath picks a format from a file extension. Anything that is not
// .yaml or .yml is treated as JSON.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Decode reads a document in the given format.
//
// The top level is an object with a "types" object (id -> descriptor) and an
// "api" object (the endpoint tree). Key order of "types", of every "fields"
// object and of every namespace is preserved.
//
// Decode checks each descriptor's shape (known kind, required ids present)
// but not referential integrity; see Document.Validate.
func Decode(data []byte, format Format) (*Document, error) {
	var (
		root *value
		err  error
	)
	switch format {
	case FormatJSON:
		root, err = parseJSON(data)
	case FormatYAML:
		root, err = parseYAML(data)
	default:
		return nil, errors.Newf("unknown document format %d", format)
	}
	if err != nil {
		return nil, err
	}
	if root.kind != valueObject {
		return nil, errors.Newf("document: expected object, got %s", root.kind)
	}

	doc := NewDocument()
	if types := root.get("types"); types != nil {
		if err := decodeTypes(doc.Types, types); err != nil {
			return nil, err
		}
	}
	if api := root.get("api"); api != nil {
		node, err := decodeNode(api, "api")
		if err != nil {
			return nil, err
		}
		doc.API = node
	}
	return doc, nil
}

func decodeTypes(reg *Registry, types *value) error {
	if types.kind != valueObject {
		return errors.Newf("types: expected object, got %s", types.kind)
	}
	var errs []error
	for _, key := range types.keys {
		td, err := decodeType(ID(key), types.fields[key])
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if err := reg.Add(ID(key), td); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return &DecodeError{Errors: errs}
	}
	return nil
}

// DecodeError collects every malformed descriptor found while decoding.
type DecodeError struct {
	Errors []error
}

func (e *DecodeError) Error() string {
	msgs := make([]string, len(e.Errors))
	for i, err := range e.Errors {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

// Unwrap returns the individual errors.
func (e *DecodeError) Unwrap() []error { return e.Errors }

func decodeType(id ID, v *value) (TypeDescriptor, error) {
	path := "types." + string(id)
	if v.kind != valueObject {
		return nil, errors.Newf("%s: expected object, got %s", path, v.kind)
	}

	raw := rawType{ID: id}
	var err error
	if raw.Kind, err = v.optString("kind", path); err != nil {
		return nil, err
	}
	if raw.Name, err = v.optString("name", path); err != nil {
		return nil, err
	}
	doc, err := decodeDoc(v, path)
	if err != nil {
		return nil, err
	}
	if item := v.get("itemTypeId"); item != nil {
		if raw.ItemTypeID, err = item.id(path + ".itemTypeId"); err != nil {
			return nil, err
		}
	}
	if items := v.get("itemTypeIds"); items != nil {
		if items.kind != valueArray {
			return nil, errors.Newf("%s.itemTypeIds: expected array, got %s", path, items.kind)
		}
		raw.ItemTypeIDs = make([]ID, 0, len(items.items))
		for _, item := range items.items {
			itemID, err := item.id(path + ".itemTypeIds")
			if err != nil {
				return nil, err
			}
			raw.ItemTypeIDs = append(raw.ItemTypeIDs, itemID)
		}
	}
	if lit := v.get("value"); lit != nil {
		raw.ValueKind = lit.kind.String()
	}
	if fields := v.get("fields"); fields != nil {
		if fields.kind != valueObject {
			return nil, errors.Newf("%s.fields: expected object, got %s", path, fields.kind)
		}
		raw.HasFields = true
		for _, name := range fields.keys {
			f, err := decodeField(name, fields.fields[name], path+".fields."+name)
			if err != nil {
				return nil, err
			}
			raw.Fields = append(raw.Fields, f)
		}
	}

	if err := raw.validate(); err != nil {
		return nil, err
	}

	kind, _ := ParseKind(raw.Kind)
	var td TypeDescriptor
	switch kind {
	case KindAny, KindJSON, KindString, KindBoolean, KindFloat, KindID, KindInt, KindNumber, KindUnknown:
		td = primitive(kind)
	case KindLiteral:
		td = literalFromValue(v.get("value"))
	case KindRecord:
		td = Record(raw.ItemTypeID)
	case KindNullable:
		td = Nullable(raw.ItemTypeID)
	case KindList:
		td = List(raw.ItemTypeID)
	case KindUnion:
		td = Union(raw.ItemTypeIDs...)
	case KindIntersect:
		td = Intersect(raw.ItemTypeIDs...)
	case KindObject, KindStruct:
		fields := make([]Field, len(raw.Fields))
		for i, f := range raw.Fields {
			fields[i] = Field{Name: f.Name, Type: f.TypeID, Documentation: f.doc}
		}
		td = &ObjectDescriptor{Fields: fields, Struct: kind == KindStruct}
	default:
		return nil, errors.Newf("%s: unsupported kind %q", path, raw.Kind)
	}
	td = Named(td, raw.Name)
	return Documented(td, doc), nil
}

func literalFromValue(v *value) *LiteralDescriptor {
	switch v.kind {
	case valueString:
		return &LiteralDescriptor{Value: v.text}
	case valueBool:
		return &LiteralDescriptor{Value: v.b}
	default:
		return &LiteralDescriptor{Value: v.num}
	}
}

func decodeField(name string, v *value, path string) (rawField, error) {
	f := rawField{Name: name}
	if v.kind != valueObject {
		// Shorthand: "fieldName": <typeId>
		id, err := v.id(path)
		if err != nil {
			return f, err
		}
		f.TypeID = id
		return f, nil
	}
	if t := v.get("typeId"); t != nil {
		id, err := t.id(path + ".typeId")
		if err != nil {
			return f, err
		}
		f.TypeID = id
	}
	doc, err := decodeDoc(v, path)
	if err != nil {
		return f, err
	}
	f.doc = doc
	return f, nil
}

// decodeDoc reads "description" and "deprecated". A deprecation may be a
// note string or a bare true.
func decodeDoc(v *value, path string) (Documentation, error) {
	var doc Documentation
	desc, err := v.optString("description", path)
	if err != nil {
		return doc, err
	}
	doc.Description = desc
	if dep := v.get("deprecated"); dep != nil {
		switch dep.kind {
		case valueString:
			doc.Deprecated = Deprecated(dep.text)
		case valueBool:
			if dep.b {
				doc.Deprecated = Deprecated("")
			}
		case valueNull:
		default:
			return doc, errors.Newf("%s.deprecated: expected string or boolean, got %s", path, dep.kind)
		}
	}
	return doc, nil
}

func decodeNode(v *value, path string) (Node, error) {
	if v.kind != valueObject {
		return nil, errors.Newf("%s: expected object, got %s", path, v.kind)
	}
	if v.has("input") && v.has("output") {
		return decodeEndpoint(v, path)
	}
	ns := NewNamespace()
	for _, key := range v.keys {
		child, err := decodeNode(v.fields[key], path+"."+key)
		if err != nil {
			return nil, err
		}
		if err := ns.Set(key, child); err != nil {
			return nil, errors.Wrap(err, path)
		}
	}
	return ns, nil
}

func decodeEndpoint(v *value, path string) (*Endpoint, error) {
	in, err := endpointType(v.get("input"), path+".input")
	if err != nil {
		return nil, err
	}
	out, err := endpointType(v.get("output"), path+".output")
	if err != nil {
		return nil, err
	}
	doc, err := decodeDoc(v, path)
	if err != nil {
		return nil, err
	}
	return &Endpoint{Input: in, Output: out, Documentation: doc}, nil
}

// endpointType accepts {"typeId": X} or a bare id.
func endpointType(v *value, path string) (ID, error) {
	if v.kind == valueObject {
		return v.get("typeId").id(path + ".typeId")
	}
	return v.id(path)
}
