package pathbind

import (
	"testing"
)

func TestManagerRegistersAncestors(t *testing.T) {
	typ := NewStateType("Profile")
	m := NewPathManager(typ, []string{"user.address.city"}, nil)

	for _, path := range []string{"user", "user.address", "user.address.city"} {
		if !m.Has(path) {
			t.Errorf("expected %q to be registered", path)
		}
	}
	deps := m.StaticDependencies("user")
	if len(deps) != 1 || deps[0] != "user.address" {
		t.Errorf("unexpected static deps of user: %v", deps)
	}
}

func TestManagerAddPathIdempotent(t *testing.T) {
	typ := NewStateType("Profile")
	m := NewPathManager(typ, []string{"user.name"}, nil)

	before := len(m.Alls())
	m.AddPath("user.name", false)
	m.AddPath("user", false)
	if got := len(m.Alls()); got != before {
		t.Errorf("re-adding known paths should not grow the registry: %d -> %d", before, got)
	}
	if got := len(m.StaticDependencies("user")); got != 1 {
		t.Errorf("static deps should not duplicate: %v", m.StaticDependencies("user"))
	}
}

func TestManagerListClassification(t *testing.T) {
	typ := NewStateType("TodoList")
	m := NewPathManager(typ, nil, []string{"items"})

	if !m.IsList("items") {
		t.Error("list path should classify as a list")
	}
	if !m.IsElement("items.*") {
		t.Error("synthetic element path should classify as an element")
	}
	if !m.Has("items.*") {
		t.Error("element path should be registered")
	}
}

func TestManagerWildcardPathClassifiesParent(t *testing.T) {
	typ := NewStateType("TodoList")
	m := NewPathManager(typ, []string{"groups.*.items.*"}, nil)

	if !m.IsList("groups") || !m.IsList("groups.*.items") {
		t.Error("wildcard segments should classify their parents as lists")
	}
	if !m.IsElement("groups.*") || !m.IsElement("groups.*.items.*") {
		t.Error("wildcard paths should classify as elements")
	}
}

func TestManagerDynamicDependencyIdempotent(t *testing.T) {
	typ := NewStateType("Profile")
	m := NewPathManager(typ, []string{"fullName"}, nil)

	m.AddDynamicDependency("fullName", "firstName")
	m.AddDynamicDependency("fullName", "firstName")

	if got := m.DynamicDependencies("firstName"); len(got) != 1 || got[0] != "fullName" {
		t.Errorf("unexpected dynamic deps: %v", got)
	}
	if !m.Has("firstName") {
		t.Error("an unknown dependency source should be registered on first use")
	}
}

func TestManagerResolverPrefersNearestGetter(t *testing.T) {
	typ := NewStateType("Profile")
	typ.Getter("user", func(rs *ReadonlyState, ref *StatePropertyRef) any { return nil })
	m := NewPathManager(typ, []string{"user.address.city"}, nil)

	resolver, ok := m.Resolver("user.address.city")
	if !ok {
		t.Fatal("deep path without accessors should get a resolver")
	}
	if resolver.Base == nil || resolver.Base.Pattern != "user" {
		t.Fatalf("expected base getter user, got %+v", resolver.Base)
	}
	if len(resolver.Rest) != 2 || resolver.Rest[0] != "address" || resolver.Rest[1] != "city" {
		t.Errorf("unexpected rest segments: %v", resolver.Rest)
	}

	if _, ok := m.Resolver("user"); ok {
		t.Error("a single-segment path should not get a resolver")
	}
}

func TestManagerResolverWithoutGetterChainsFromRoot(t *testing.T) {
	typ := NewStateType("Profile")
	m := NewPathManager(typ, []string{"user.name"}, nil)

	resolver, ok := m.Resolver("user.name")
	if !ok {
		t.Fatal("expected a resolver")
	}
	if resolver.Base != nil {
		t.Errorf("no getter declared, base should be nil, got %v", resolver.Base)
	}
	if len(resolver.Rest) != 2 {
		t.Errorf("rest should be the full segment list, got %v", resolver.Rest)
	}
}
