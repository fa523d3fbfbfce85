package schema

// Kind identifies the category of a type descriptor.
type Kind int

const (
	// Atomic primitives
	KindAny Kind = iota
	KindJSON
	KindString
	KindBoolean
	KindFloat
	KindID
	KindInt
	KindNumber
	KindUnknown

	KindLiteral // Literal value (string, number, boolean)

	// Single-child composites
	KindRecord   // String-keyed mapping to the item type
	KindNullable // Item type, null, or absent
	KindList     // Ordered collection of the item type

	// Multi-child composites
	KindUnion
	KindIntersect

	// Named field sets
	KindObject
	KindStruct
)

var kindNames = [...]string{
	KindAny:       "Any",
	KindJSON:      "JSON",
	KindString:    "String",
	KindBoolean:   "Boolean",
	KindFloat:     "Float",
	KindID:        "ID",
	KindInt:       "Int",
	KindNumber:    "Number",
	KindUnknown:   "Unknown",
	KindLiteral:   "Literal",
	KindRecord:    "Record",
	KindNullable:  "Nullable",
	KindList:      "List",
	KindUnion:     "Union",
	KindIntersect: "Intersect",
	KindObject:    "Object",
	KindStruct:    "Struct",
}

// String returns the wire name of the kind, e.g. "Nullable".
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "Invalid"
	}
	return kindNames[k]
}

// ParseKind returns the Kind with the given wire name.
func ParseKind(s string) (Kind, bool) {
	for k, name := range kindNames {
		if name == s {
			return Kind(k), true
		}
	}
	return 0, false
}

// IsPrimitive reports whether k is one of the atomic primitive kinds.
func (k Kind) IsPrimitive() bool {
	return k >= KindAny && k <= KindUnknown
}

// IsObject reports whether k is Object or Struct.
func (k Kind) IsObject() bool {
	return k == KindObject || k == KindStruct
}

// KindNames returns every wire name in declaration order.
func KindNames() []string {
	names := make([]string, len(kindNames))
	copy(names, kindNames[:])
	return names
}
