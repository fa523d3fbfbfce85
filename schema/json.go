package schema

import (
	"bytes"
	"io"

	"github.com/cockroachdb/errors"
	"github.com/go-json-experiment/json/jsontext"
)

// parseJSON reads a single JSON value, keeping object keys in source order.
func parseJSON(data []byte) (*value, error) {
	dec := jsontext.NewDecoder(bytes.NewReader(data))
	v, err := readJSONValue(dec)
	if err != nil {
		return nil, errors.Wrap(err, "parse JSON")
	}
	if _, err := dec.ReadToken(); err != io.EOF {
		if err == nil {
			return nil, errors.New("parse JSON: unexpected data after top-level value")
		}
		return nil, errors.Wrap(err, "parse JSON")
	}
	return v, nil
}

func readJSONValue(dec *jsontext.Decoder) (*value, error) {
	tok, err := dec.ReadToken()
	if err != nil {
		return nil, err
	}
	switch tok.Kind() {
	case 'n':
		return &value{kind: valueNull}, nil
	case 't', 'f':
		return &value{kind: valueBool, b: tok.Bool()}, nil
	case '"':
		return &value{kind: valueString, text: tok.String()}, nil
	case '0':
		return &value{kind: valueNumber, text: tok.String(), num: tok.Float()}, nil
	case '[':
		arr := &value{kind: valueArray}
		for dec.PeekKind() != ']' {
			item, err := readJSONValue(dec)
			if err != nil {
				return nil, err
			}
			arr.items = append(arr.items, item)
		}
		if _, err := dec.ReadToken(); err != nil {
			return nil, err
		}
		return arr, nil
	case '{':
		obj := &value{kind: valueObject, fields: make(map[string]*value)}
		for dec.PeekKind() != '}' {
			keyTok, err := dec.ReadToken()
			if err != nil {
				return nil, err
			}
			key := keyTok.String()
			child, err := readJSONValue(dec)
			if err != nil {
				return nil, err
			}
			if err := obj.set(key, child); err != nil {
				return nil, err
			}
		}
		if _, err := dec.ReadToken(); err != nil {
			return nil, err
		}
		return obj, nil
	default:
		return nil, errors.Newf("unexpected JSON token %v", tok.Kind())
	}
}
