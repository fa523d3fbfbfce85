package config

import (
	"net/url"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/gorilla/schema"
)

var decoder = schema.NewDecoder()

// Overrides are target settings given on the command line as repeated
// --set key=value flags. Unset fields leave the target unchanged.
type Overrides struct {
	RootName     *string `schema:"rootName"`
	NamedAliases *bool   `schema:"namedAliases"`
	Header       *string `schema:"header"`
	Formatter    *string `schema:"formatter"`

	FormatterCommand *string `schema:"formatterCommand"`
}

// ParseOverrides decodes key=value pairs. Unknown keys are an error.
func ParseOverrides(pairs []string) (Overrides, error) {
	var o Overrides
	if len(pairs) == 0 {
		return o, nil
	}
	values := url.Values{}
	for _, pair := range pairs {
		key, val, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return o, errors.Newf("override %q: want key=value", pair)
		}
		values.Set(key, val)
	}
	if err := decoder.Decode(&o, values); err != nil {
		return o, errors.WithHint(
			errors.Wrap(err, "decode overrides"),
			"known keys: rootName, namedAliases, header, formatter, formatterCommand",
		)
	}
	return o, nil
}

// Apply copies the set fields of o onto t.
func (o Overrides) Apply(t Target) Target {
	if o.RootName != nil {
		t.RootName = *o.RootName
	}
	if o.NamedAliases != nil {
		t.NamedAliases = *o.NamedAliases
	}
	if o.Header != nil {
		t.Header = *o.Header
	}
	if o.Formatter != nil {
		t.Formatter = *o.Formatter
	}
	if o.FormatterCommand != nil {
		t.FormatterCommand = *o.FormatterCommand
	}
	return t
}
