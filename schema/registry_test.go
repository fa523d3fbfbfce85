package schema

import (
	"slices"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
)

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	if err := r.Add("b", String()); err != nil {
		t.Fatal(err)
	}
	if err := r.Add("a", List("b")); err != nil {
		t.Fatal(err)
	}

	if got := r.IDs(); !slices.Equal(got, []ID{"b", "a"}) {
		t.Errorf("IDs() = %v, want insertion order", got)
	}
	if r.Len() != 2 {
		t.Errorf("Len() = %d", r.Len())
	}

	td, err := r.Lookup("a")
	if err != nil || td.Kind() != KindList {
		t.Errorf("Lookup(a) = %v, %v", td, err)
	}

	err = r.Add("a", String())
	if !errors.Is(err, ErrDuplicateID) {
		t.Errorf("Add(duplicate) error = %v, want ErrDuplicateID", err)
	}
	if err := r.Add("c", nil); err == nil {
		t.Error("Add(nil) succeeded")
	}

	_, err = r.Lookup("zz")
	if !errors.Is(err, ErrUnresolvedReference) {
		t.Fatalf("Lookup(missing) error = %v, want ErrUnresolvedReference", err)
	}
	if !strings.Contains(err.Error(), "type zz") {
		t.Errorf("error %q does not name the id", err)
	}
	if errors.FlattenHints(err) == "" {
		t.Error("Lookup(missing) error carries no hint")
	}
}

func TestRegistry_Each(t *testing.T) {
	r := NewRegistry().MustAdd("1", String()).MustAdd("2", Int()).MustAdd("3", Float())

	var seen []ID
	stop := errors.New("stop")
	err := r.Each(func(id ID, td TypeDescriptor) error {
		seen = append(seen, id)
		if id == "2" {
			return stop
		}
		return nil
	})
	if !errors.Is(err, stop) {
		t.Errorf("Each() error = %v", err)
	}
	if !slices.Equal(seen, []ID{"1", "2"}) {
		t.Errorf("visited %v", seen)
	}
}

func TestRegistry_Nil(t *testing.T) {
	var r *Registry
	if r.Len() != 0 || r.IDs() != nil {
		t.Error("nil registry is not empty")
	}
	if _, err := r.Lookup("1"); !errors.Is(err, ErrUnresolvedReference) {
		t.Errorf("nil Lookup error = %v", err)
	}
	if err := r.Each(func(ID, TypeDescriptor) error { return errors.New("called") }); err != nil {
		t.Error("nil Each called fn")
	}
}

func TestNamespace(t *testing.T) {
	ns := NewNamespace().
		With("users", NewNamespace().
			With("get", &Endpoint{Input: "1", Output: "2"}).
			With("list", &Endpoint{Input: "1", Output: "3"})).
		With("ping", &Endpoint{Input: "1", Output: "1"})

	if err := ns.Set("ping", &Endpoint{}); err == nil {
		t.Error("Set(duplicate) succeeded")
	}
	if err := ns.Set("nil", nil); err == nil {
		t.Error("Set(nil) succeeded")
	}
	if got := ns.Keys(); !slices.Equal(got, []string{"users", "ping"}) {
		t.Errorf("Keys() = %v", got)
	}
	if _, ok := ns.Get("users"); !ok || ns.Len() != 2 {
		t.Error("Get(users) failed")
	}

	var paths []string
	err := Walk(ns, func(path []string, ep *Endpoint) error {
		paths = append(paths, strings.Join(path, ".")+"="+string(ep.Output))
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"users.get=2", "users.list=3", "ping=1"}
	if !slices.Equal(paths, want) {
		t.Errorf("Walk visited %v, want %v", paths, want)
	}
}

func TestWalk_PathsAreIndependent(t *testing.T) {
	ns := NewNamespace().With("a", NewNamespace().
		With("x", &Endpoint{}).
		With("y", &Endpoint{}).
		With("z", &Endpoint{}))

	var kept [][]string
	_ = Walk(ns, func(path []string, _ *Endpoint) error {
		kept = append(kept, path)
		return nil
	})
	got := make([]string, len(kept))
	for i, p := range kept {
		got[i] = strings.Join(p, ".")
	}
	if !slices.Equal(got, []string{"a.x", "a.y", "a.z"}) {
		t.Errorf("retained paths = %v", got)
	}
}

func TestWalk_StopsOnError(t *testing.T) {
	ns := NewNamespace().With("a", &Endpoint{}).With("b", &Endpoint{})
	stop := errors.New("stop")
	calls := 0
	err := Walk(ns, func([]string, *Endpoint) error {
		calls++
		return stop
	})
	if !errors.Is(err, stop) || calls != 1 {
		t.Errorf("Walk() = %v after %d calls", err, calls)
	}
	if err := Walk(nil, nil); err != nil {
		t.Errorf("Walk(nil) = %v", err)
	}
}
