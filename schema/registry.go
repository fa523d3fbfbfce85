package schema

import (
	"github.com/cockroachdb/errors"
)

// ErrUnresolvedReference is returned when a type id is absent from the registry.
var ErrUnresolvedReference = errors.New("unresolved type reference")

// ErrDuplicateID is returned when an id is added to a registry twice.
var ErrDuplicateID = errors.New("duplicate type id")

// Registry is an append-only mapping from ID to TypeDescriptor.
// Iteration follows insertion order.
type Registry struct {
	ids   []ID
	types map[ID]TypeDescriptor
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{types: make(map[ID]TypeDescriptor)}
}

// Add registers td under id. Ids are stable and caller-assigned;
// re-using one is an error.
func (r *Registry) Add(id ID, td TypeDescriptor) error {
	if td == nil {
		return errors.Newf("type %s: nil descriptor", id)
	}
	if r.types == nil {
		r.types = make(map[ID]TypeDescriptor)
	}
	if _, ok := r.types[id]; ok {
		return errors.Wrapf(ErrDuplicateID, "type %s", id)
	}
	r.ids = append(r.ids, id)
	r.types[id] = td
	return nil
}

// MustAdd is like Add but panics on error. Intended for tests and fixtures.
func (r *Registry) MustAdd(id ID, td TypeDescriptor) *Registry {
	if err := r.Add(id, td); err != nil {
		panic(err)
	}
	return r
}

// Lookup returns the descriptor registered under id.
func (r *Registry) Lookup(id ID) (TypeDescriptor, error) {
	if r != nil {
		if td, ok := r.types[id]; ok {
			return td, nil
		}
	}
	return nil, errors.WithHint(
		errors.Wrapf(ErrUnresolvedReference, "type %s", id),
		"every itemTypeId, itemTypeIds entry and field typeId must name an entry under \"types\"",
	)
}

// IDs returns the registered ids in insertion order.
func (r *Registry) IDs() []ID {
	if r == nil {
		return nil
	}
	ids := make([]ID, len(r.ids))
	copy(ids, r.ids)
	return ids
}

// Len returns the number of registered types.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.ids)
}

// Each calls fn for every entry in insertion order, stopping at the first error.
func (r *Registry) Each(fn func(id ID, td TypeDescriptor) error) error {
	if r == nil {
		return nil
	}
	for _, id := range r.ids {
		if err := fn(id, r.types[id]); err != nil {
			return err
		}
	}
	return nil
}
