package schema

import (
	"slices"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
)

const usersJSON = `{
  "types": {
    "10": {"kind": "String"},
    "2": {"kind": "Struct", "name": "User", "description": "A user.", "fields": {
      "name": 10,
      "age": {"typeId": "3", "description": "Years.", "deprecated": "use birthday"}
    }},
    "3": {"kind": "Int"},
    "lit": {"kind": "Literal", "value": -1.5},
    "opt": {"kind": "Nullable", "itemTypeId": 10},
    "both": {"kind": "Union", "itemTypeIds": [10, "3"]}
  },
  "api": {
    "users": {
      "get": {"input": 10, "output": {"typeId": 2}, "deprecated": true}
    },
    "ping": {"input": "10", "output": "10"}
  }
}`

const usersYAML = `
types:
  10: {kind: String}
  2:
    kind: Struct
    name: User
    description: A user.
    fields:
      name: 10
      age: {typeId: "3", description: Years., deprecated: use birthday}
  3: {kind: Int}
  lit: {kind: Literal, value: -1.5}
  opt: {kind: Nullable, itemTypeId: 10}
  both: {kind: Union, itemTypeIds: [10, "3"]}
api:
  users:
    get: {input: 10, output: {typeId: 2}, deprecated: true}
  ping: {input: "10", output: "10"}
`

func TestDecode(t *testing.T) {
	for _, tt := range []struct {
		name   string
		data   string
		format Format
	}{
		{"json", usersJSON, FormatJSON},
		{"yaml", usersYAML, FormatYAML},
	} {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Decode([]byte(tt.data), tt.format)
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}

			if got := doc.Types.IDs(); !slices.Equal(got, []ID{"10", "2", "3", "lit", "opt", "both"}) {
				t.Errorf("type ids = %v, want source order", got)
			}

			td, _ := doc.Types.Lookup("2")
			user, ok := td.(*ObjectDescriptor)
			if !ok || !user.Struct || user.DisplayName() != "User" || user.Doc().Description != "A user." {
				t.Fatalf("type 2 = %#v", td)
			}
			if len(user.Fields) != 2 || user.Fields[0].Name != "name" || user.Fields[0].Type != "10" {
				t.Errorf("fields = %+v", user.Fields)
			}
			age := user.Fields[1]
			if age.Type != "3" || age.Documentation.Description != "Years." ||
				age.Documentation.Deprecated == nil || *age.Documentation.Deprecated != "use birthday" {
				t.Errorf("age field = %+v", age)
			}

			td, _ = doc.Types.Lookup("lit")
			if lit, ok := td.(*LiteralDescriptor); !ok || lit.Value != -1.5 {
				t.Errorf("lit = %#v", td)
			}
			td, _ = doc.Types.Lookup("both")
			if u, ok := td.(*UnionDescriptor); !ok || !slices.Equal(u.Items, []ID{"10", "3"}) {
				t.Errorf("both = %#v", td)
			}

			root, ok := doc.API.(*Namespace)
			if !ok || !slices.Equal(root.Keys(), []string{"users", "ping"}) {
				t.Fatalf("api = %#v", doc.API)
			}
			users, _ := root.Get("users")
			get, _ := users.(*Namespace).Get("get")
			ep, ok := get.(*Endpoint)
			if !ok || ep.Input != "10" || ep.Output != "2" || ep.Documentation.Deprecated == nil {
				t.Errorf("users.get = %#v", get)
			}
		})
	}
}

func TestDecode_LiteralKinds(t *testing.T) {
	doc, err := Decode([]byte(`{"types": {
		"s": {"kind": "Literal", "value": "ok"},
		"b": {"kind": "Literal", "value": false},
		"n": {"kind": "Literal", "value": 1e3}
	}}`), FormatJSON)
	if err != nil {
		t.Fatal(err)
	}
	want := map[ID]any{"s": "ok", "b": false, "n": 1000.0}
	for id, v := range want {
		td, _ := doc.Types.Lookup(id)
		if got := td.(*LiteralDescriptor).Value; got != v {
			t.Errorf("literal %s = %#v, want %#v", id, got, v)
		}
	}
}

func TestDecode_Empty(t *testing.T) {
	for _, data := range []string{`{}`, `{"types": {}, "api": {}}`} {
		doc, err := Decode([]byte(data), FormatJSON)
		if err != nil {
			t.Fatalf("Decode(%s) error = %v", data, err)
		}
		if doc.Types.Len() != 0 {
			t.Errorf("Decode(%s) has types", data)
		}
		if ns, ok := doc.API.(*Namespace); !ok || ns.Len() != 0 {
			t.Errorf("Decode(%s) API = %#v", data, doc.API)
		}
	}
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name   string
		data   string
		format Format
		want   []string
	}{
		{"json syntax", `{"types": `, FormatJSON, []string{"parse JSON"}},
		{"trailing data", `{} {}`, FormatJSON, []string{"unexpected data"}},
		{"yaml syntax", "types: [\n", FormatYAML, []string{"parse YAML"}},
		{"not an object", `[1, 2]`, FormatJSON, []string{"expected object, got array"}},
		{"duplicate yaml key", "types:\n  1: {kind: String}\n  1: {kind: Int}\n", FormatYAML, []string{"parse YAML"}},
		{"unknown kind", `{"types": {"a": {"kind": "Map"}}}`, FormatJSON, []string{"types.a.kind", "unknown kind \"Map\""}},
		{"missing kind", `{"types": {"a": {}}}`, FormatJSON, []string{"types.a.kind: required"}},
		{"missing item", `{"types": {"a": {"kind": "List"}}}`, FormatJSON, []string{"types.a.itemTypeId: required"}},
		{"missing items", `{"types": {"a": {"kind": "Union"}}}`, FormatJSON, []string{"types.a.itemTypeIds: required"}},
		{"missing value", `{"types": {"a": {"kind": "Literal"}}}`, FormatJSON, []string{"types.a.value: required"}},
		{"null value", `{"types": {"a": {"kind": "Literal", "value": null}}}`, FormatJSON, []string{"types.a.value", "must be one of"}},
		{"missing fields", `{"types": {"a": {"kind": "Object"}}}`, FormatJSON, []string{"types.a.fields: required"}},
		{"field without type", `{"types": {"a": {"kind": "Object", "fields": {"x": {}}}}}`, FormatJSON, []string{"types.a.fields[0].typeId: required"}},
		{"bad id", `{"types": {"a": {"kind": "List", "itemTypeId": true}}}`, FormatJSON, []string{"types.a.itemTypeId: expected type id"}},
		{"bad deprecated", `{"types": {"a": {"kind": "String", "deprecated": 1}}}`, FormatJSON, []string{"types.a.deprecated"}},
		{"endpoint missing id", `{"api": {"get": {"input": 1, "output": {}}}}`, FormatJSON, []string{"api.get.output.typeId: missing type id"}},
		{"namespace not object", `{"api": {"get": 1}}`, FormatJSON, []string{"api.get: expected object"}},
		{
			name:   "collects every descriptor",
			data:   `{"types": {"a": {"kind": "Map"}, "b": {"kind": "String"}, "c": {"kind": "List"}}}`,
			format: FormatJSON,
			want:   []string{"types.a", "types.c"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.data), tt.format)
			if err == nil {
				t.Fatal("Decode() succeeded")
			}
			for _, w := range tt.want {
				if !strings.Contains(err.Error(), w) {
					t.Errorf("error %q does not contain %q", err, w)
				}
			}
		})
	}
}

func TestDecode_DecodeErrorList(t *testing.T) {
	_, err := Decode([]byte(`{"types": {"a": {"kind": "Map"}, "b": {"kind": "List"}}}`), FormatJSON)
	var de *DecodeError
	if !errors.As(err, &de) {
		t.Fatalf("error %T is not a *DecodeError", err)
	}
	if len(de.Errors) != 2 {
		t.Errorf("got %d errors, want 2: %v", len(de.Errors), de.Errors)
	}
}

func TestFormatForPath(t *testing.T) {
	tests := map[string]Format{
		"api.json":      FormatJSON,
		"api.yaml":      FormatYAML,
		"dir/API.YML":   FormatYAML,
		"noext":         FormatJSON,
		"schema.v2.yml": FormatYAML,
	}
	for path, want := range tests {
		if got := FormatForPath(path); got != want {
			t.Errorf("FormatForPath(%q) = %v, want %v", path, got, want)
		}
	}
}
