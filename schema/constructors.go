package schema

// Convenience constructors for descriptors.

func primitive(k Kind) *PrimitiveDescriptor {
	return &PrimitiveDescriptor{Primitive: k}
}

// Any returns a descriptor for an unconstrained value.
func Any() *PrimitiveDescriptor { return primitive(KindAny) }

// JSON returns a descriptor for any JSON-compatible value.
func JSON() *PrimitiveDescriptor { return primitive(KindJSON) }

// String returns a descriptor for a string.
func String() *PrimitiveDescriptor { return primitive(KindString) }

// Boolean returns a descriptor for a boolean.
func Boolean() *PrimitiveDescriptor { return primitive(KindBoolean) }

// Float returns a descriptor for a floating point number.
func Float() *PrimitiveDescriptor { return primitive(KindFloat) }

// IDType returns a descriptor for an opaque identifier.
func IDType() *PrimitiveDescriptor { return primitive(KindID) }

// Int returns a descriptor for an integer.
func Int() *PrimitiveDescriptor { return primitive(KindInt) }

// Number returns a descriptor for any number.
func Number() *PrimitiveDescriptor { return primitive(KindNumber) }

// Unknown returns a descriptor for a value of unknown type.
func Unknown() *PrimitiveDescriptor { return primitive(KindUnknown) }

// Primitive returns a descriptor for the atomic kind k.
// It panics if k is not primitive.
func Primitive(k Kind) *PrimitiveDescriptor {
	if !k.IsPrimitive() {
		panic("schema: not a primitive kind: " + k.String())
	}
	return primitive(k)
}

// Literal returns a descriptor for a literal value.
// Integer values are converted to float64; v must otherwise be a string,
// float64 or bool.
func Literal(v any) *LiteralDescriptor {
	switch n := v.(type) {
	case int:
		v = float64(n)
	case int64:
		v = float64(n)
	}
	return &LiteralDescriptor{Value: v}
}

// Record returns a descriptor for a string-keyed mapping to item.
func Record(item ID) *RecordDescriptor { return &RecordDescriptor{Item: item} }

// Nullable returns a descriptor for item, null, or an absent value.
func Nullable(item ID) *NullableDescriptor { return &NullableDescriptor{Item: item} }

// List returns a descriptor for an ordered collection of item.
func List(item ID) *ListDescriptor { return &ListDescriptor{Item: item} }

// Union returns a descriptor for a union of items.
func Union(items ...ID) *UnionDescriptor { return &UnionDescriptor{Items: items} }

// Intersect returns a descriptor for an intersection of items.
func Intersect(items ...ID) *IntersectDescriptor { return &IntersectDescriptor{Items: items} }

// Object returns a descriptor for a field set of kind Object.
func Object(fields ...Field) *ObjectDescriptor { return &ObjectDescriptor{Fields: fields} }

// Struct returns a descriptor for a field set of kind Struct.
func Struct(fields ...Field) *ObjectDescriptor {
	return &ObjectDescriptor{Fields: fields, Struct: true}
}

// Named sets the display name of td and returns it.
func Named[T TypeDescriptor](td T, name string) T {
	any(td).(interface{ setName(string) }).setName(name)
	return td
}

// Documented sets the documentation of td and returns it.
func Documented[T TypeDescriptor](td T, doc Documentation) T {
	any(td).(interface{ setDoc(Documentation) }).setDoc(doc)
	return td
}

func (b *base) setName(name string)      { b.Name = name }
func (b *base) setDoc(doc Documentation) { b.Documentation = doc }

// Deprecated returns a pointer to note, for use in Documentation literals.
func Deprecated(note string) *string { return &note }
