package schema

import (
	"strconv"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

// parseYAML reads a YAML document, keeping mapping keys in source order.
func parseYAML(data []byte) (*value, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, "parse YAML")
	}
	if doc.Kind == 0 {
		return &value{kind: valueNull}, nil
	}
	v, err := fromYAML(&doc)
	if err != nil {
		return nil, errors.Wrap(err, "parse YAML")
	}
	return v, nil
}

func fromYAML(n *yaml.Node) (*value, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return &value{kind: valueNull}, nil
		}
		return fromYAML(n.Content[0])
	case yaml.AliasNode:
		return fromYAML(n.Alias)
	case yaml.SequenceNode:
		arr := &value{kind: valueArray}
		for _, c := range n.Content {
			item, err := fromYAML(c)
			if err != nil {
				return nil, err
			}
			arr.items = append(arr.items, item)
		}
		return arr, nil
	case yaml.MappingNode:
		obj := &value{kind: valueObject, fields: make(map[string]*value)}
		for i := 0; i+1 < len(n.Content); i += 2 {
			k, v := n.Content[i], n.Content[i+1]
			child, err := fromYAML(v)
			if err != nil {
				return nil, err
			}
			if err := obj.set(k.Value, child); err != nil {
				return nil, errors.Wrapf(err, "line %d", k.Line)
			}
		}
		return obj, nil
	case yaml.ScalarNode:
		return yamlScalar(n)
	default:
		return nil, errors.Newf("line %d: unsupported YAML node", n.Line)
	}
}

func yamlScalar(n *yaml.Node) (*value, error) {
	switch n.ShortTag() {
	case "!!null":
		return &value{kind: valueNull}, nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return nil, err
		}
		return &value{kind: valueBool, b: b}, nil
	case "!!int", "!!float":
		f, err := strconv.ParseFloat(n.Value, 64)
		if err != nil {
			// Forms such as 0x1F or .inf; let yaml.v3 interpret them.
			if derr := n.Decode(&f); derr != nil {
				return nil, errors.Wrapf(derr, "line %d", n.Line)
			}
		}
		return &value{kind: valueNumber, text: n.Value, num: f}, nil
	default:
		return &value{kind: valueString, text: n.Value}, nil
	}
}
