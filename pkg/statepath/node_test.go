package statepath

import "testing"

func buildTree(t *testing.T, paths ...string) *PathNode {
	t.Helper()
	root := NewRootNode()
	for _, path := range paths {
		node := root
		for _, seg := range Get(path).Segments {
			node = node.AppendChild(seg)
		}
	}
	return root
}

func TestAppendChildLinksLevels(t *testing.T) {
	root := NewRootNode()
	users := root.AppendChild("users")
	star := users.AppendChild("*")
	name := star.AppendChild("name")

	if users.Level != 1 || star.Level != 2 || name.Level != 3 {
		t.Errorf("unexpected levels: %d %d %d", users.Level, star.Level, name.Level)
	}
	if users.CurrentPath != "users" {
		t.Errorf("level-1 CurrentPath should be just the name, got %q", users.CurrentPath)
	}
	if star.CurrentPath != "users.*" || name.CurrentPath != "users.*.name" {
		t.Errorf("unexpected current paths: %q %q", star.CurrentPath, name.CurrentPath)
	}
	if name.ParentPath != "users.*" {
		t.Errorf("expected parent path users.*, got %q", name.ParentPath)
	}
}

func TestAppendChildIdempotent(t *testing.T) {
	root := NewRootNode()
	first := root.AppendChild("users")
	second := root.AppendChild("users")

	if first != second {
		t.Error("re-appending an existing name should return the existing node")
	}
	if len(root.ChildNames()) != 1 {
		t.Errorf("expected exactly one child, got %v", root.ChildNames())
	}
}

func TestFindExactMatchOnly(t *testing.T) {
	root := buildTree(t, "users.*.name", "users.*.age", "title")

	if node := root.Find([]string{"users", "*", "name"}, 0); node == nil || node.CurrentPath != "users.*.name" {
		t.Fatalf("expected users.*.name, got %v", node)
	}
	if node := root.Find([]string{"users", "name"}, 0); node != nil {
		t.Errorf("no partial matching: got %v", node)
	}
	if node := root.Find([]string{"missing"}, 0); node != nil {
		t.Errorf("expected nil for missing path, got %v", node)
	}
}

func TestFindFromOffset(t *testing.T) {
	root := buildTree(t, "users.*.name")
	users := root.Child("users")

	node := users.Find([]string{"users", "*", "name"}, 1)
	if node == nil || node.CurrentPath != "users.*.name" {
		t.Fatalf("expected users.*.name from offset walk, got %v", node)
	}
}

func TestFindByPathCachesResults(t *testing.T) {
	root := buildTree(t, "a.b")

	hit := FindByPath(root, "a.b")
	if hit == nil || hit.CurrentPath != "a.b" {
		t.Fatalf("expected a.b, got %v", hit)
	}
	if FindByPath(root, "a.b") != hit {
		t.Error("repeated lookup should return the cached node")
	}

	// Misses are cached as well; registering the path and invalidating
	// makes it resolvable.
	if FindByPath(root, "a.c") != nil {
		t.Fatal("a.c should not resolve yet")
	}
	root.Child("a").AppendChild("c")
	if FindByPath(root, "a.c") != nil {
		t.Error("cached miss should persist until invalidation")
	}
	InvalidateLookup(root)
	if FindByPath(root, "a.c") == nil {
		t.Error("a.c should resolve after invalidation")
	}
}

func TestFindByPathIsolatedPerRoot(t *testing.T) {
	rootA := buildTree(t, "x.y")
	rootB := buildTree(t, "x")

	if FindByPath(rootA, "x.y") == nil {
		t.Error("x.y should resolve under rootA")
	}
	if FindByPath(rootB, "x.y") != nil {
		t.Error("x.y should not resolve under rootB")
	}
}
