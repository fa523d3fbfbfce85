package schema

import "github.com/cockroachdb/errors"

// Node is an element of the endpoint tree: either an *Endpoint or a *Namespace.
type Node interface {
	isNode()
}

// Endpoint is a callable operation: one input type, one output type.
type Endpoint struct {
	Input  ID
	Output ID

	// Documentation for this endpoint.
	Documentation Documentation
}

func (*Endpoint) isNode() {}

// Namespace is an interior node mapping unique keys to child nodes.
// Keys keep the order in which they were first set.
type Namespace struct {
	keys     []string
	children map[string]Node
}

func (*Namespace) isNode() {}

// NewNamespace returns an empty namespace.
func NewNamespace() *Namespace {
	return &Namespace{children: make(map[string]Node)}
}

// Set adds child under key. Keys are unique within a namespace.
func (n *Namespace) Set(key string, child Node) error {
	if child == nil {
		return errors.Newf("namespace key %q: nil node", key)
	}
	if n.children == nil {
		n.children = make(map[string]Node)
	}
	if _, ok := n.children[key]; ok {
		return errors.Newf("duplicate namespace key %q", key)
	}
	n.keys = append(n.keys, key)
	n.children[key] = child
	return nil
}

// With is like Set but panics on error and returns n for chaining.
// Intended for tests and fixtures.
func (n *Namespace) With(key string, child Node) *Namespace {
	if err := n.Set(key, child); err != nil {
		panic(err)
	}
	return n
}

// Get returns the child stored under key.
func (n *Namespace) Get(key string) (Node, bool) {
	child, ok := n.children[key]
	return child, ok
}

// Keys returns the keys in insertion order.
func (n *Namespace) Keys() []string {
	keys := make([]string, len(n.keys))
	copy(keys, n.keys)
	return keys
}

// Len returns the number of children.
func (n *Namespace) Len() int { return len(n.keys) }

// Walk calls fn for every endpoint below node, depth first in key order.
// path holds the keys leading to the endpoint.
func Walk(node Node, fn func(path []string, ep *Endpoint) error) error {
	return walk(node, nil, fn)
}

func walk(node Node, path []string, fn func([]string, *Endpoint) error) error {
	switch n := node.(type) {
	case *Endpoint:
		return fn(path, n)
	case *Namespace:
		for _, key := range n.keys {
			if err := walk(n.children[key], append(path[:len(path):len(path)], key), fn); err != nil {
				return err
			}
		}
		return nil
	case nil:
		return nil
	default:
		return errors.Newf("unknown node type %T", node)
	}
}
