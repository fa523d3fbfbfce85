// Package schema defines the serializable description of a typed API surface:
// a registry of type descriptors keyed by id, and a tree of named endpoints
// whose inputs and outputs reference those ids.
package schema

// ID identifies a type descriptor within a Registry.
// Numeric ids from JSON or YAML input are stored as their decimal text.
type ID string

// Documentation holds the human-facing notes attached to a type, field or endpoint.
type Documentation struct {
	// Description is free-form text, emitted as the comment body.
	Description string

	// Deprecated is non-nil if the symbol is deprecated.
	// The string value is the deprecation note (may be empty).
	Deprecated *string
}

// IsZero returns true if the documentation is empty.
func (d Documentation) IsZero() bool {
	return d.Description == "" && d.Deprecated == nil
}

// TypeDescriptor is the base interface for all type descriptors.
type TypeDescriptor interface {
	// Kind returns the descriptor kind for type switching.
	Kind() Kind

	// DisplayName returns the exported name of this type.
	// Empty for inline (structurally anonymous) types.
	DisplayName() string

	// Doc returns associated documentation.
	Doc() Documentation

	// Ensure only types in this package can implement TypeDescriptor.
	sealed()
}

// base carries the attributes every descriptor may have.
type base struct {
	// Name is the display name. A non-empty name marks the type as exported.
	Name string

	// Documentation for this type.
	Documentation Documentation
}

func (b base) DisplayName() string { return b.Name }
func (b base) Doc() Documentation  { return b.Documentation }
func (base) sealed()               {}

// PrimitiveDescriptor represents one of the atomic kinds (Any, JSON, String, ...).
type PrimitiveDescriptor struct {
	base
	Primitive Kind
}

// Kind returns the primitive kind.
func (d *PrimitiveDescriptor) Kind() Kind { return d.Primitive }

// LiteralDescriptor represents a single literal value.
type LiteralDescriptor struct {
	base

	// Value is one of exactly three types: string, float64 or bool.
	Value any
}

// Kind returns KindLiteral.
func (d *LiteralDescriptor) Kind() Kind { return KindLiteral }

// RecordDescriptor represents a string-keyed mapping to Item.
type RecordDescriptor struct {
	base
	Item ID
}

// Kind returns KindRecord.
func (d *RecordDescriptor) Kind() Kind { return KindRecord }

// NullableDescriptor represents Item, null, or an absent value.
type NullableDescriptor struct {
	base
	Item ID
}

// Kind returns KindNullable.
func (d *NullableDescriptor) Kind() Kind { return KindNullable }

// ListDescriptor represents an ordered collection of Item.
type ListDescriptor struct {
	base
	Item ID
}

// Kind returns KindList.
func (d *ListDescriptor) Kind() Kind { return KindList }

// UnionDescriptor represents any one of Items.
// Member order is significant and preserved in output.
type UnionDescriptor struct {
	base
	Items []ID
}

// Kind returns KindUnion.
func (d *UnionDescriptor) Kind() Kind { return KindUnion }

// IntersectDescriptor represents all of Items at once.
// Member order is significant and preserved in output.
type IntersectDescriptor struct {
	base
	Items []ID
}

// Kind returns KindIntersect.
func (d *IntersectDescriptor) Kind() Kind { return KindIntersect }

// ObjectDescriptor represents a set of named fields.
// Object and Struct share a shape; Struct records which one the input used.
type ObjectDescriptor struct {
	base

	// Fields in insertion order.
	Fields []Field

	Struct bool
}

// Kind returns KindStruct or KindObject.
func (d *ObjectDescriptor) Kind() Kind {
	if d.Struct {
		return KindStruct
	}
	return KindObject
}

// Field is a single named member of an ObjectDescriptor.
type Field struct {
	Name string
	Type ID

	// Documentation for this field.
	Documentation Documentation
}
