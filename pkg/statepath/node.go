package statepath

// PathNode is one node of a per-component-type prefix tree over path
// segments. The root holds the empty path at level 0; each child's
// CurrentPath is its parent's CurrentPath plus "." plus its name (just the
// name at level 1).
type PathNode struct {
	// ParentPath is the CurrentPath of the parent node.
	ParentPath string

	// CurrentPath is the full path of this node.
	CurrentPath string

	// Name is the last segment of CurrentPath.
	Name string

	// Level is the segment depth (root = 0).
	Level int

	children map[string]*PathNode
}

// NewRootNode creates a tree root holding the empty path.
func NewRootNode() *PathNode {
	return &PathNode{
		children: make(map[string]*PathNode),
	}
}

// AppendChild returns the child named name, creating and linking it if it
// does not exist yet. Re-appending an existing name is a no-op that returns
// the existing node, so the tree has exactly one node per distinct path.
func (n *PathNode) AppendChild(name string) *PathNode {
	if child, ok := n.children[name]; ok {
		return child
	}

	currentPath := name
	if n.CurrentPath != "" {
		currentPath = n.CurrentPath + "." + name
	}
	child := &PathNode{
		ParentPath:  n.CurrentPath,
		CurrentPath: currentPath,
		Name:        name,
		Level:       n.Level + 1,
		children:    make(map[string]*PathNode),
	}
	n.children[name] = child
	return child
}

// Child returns the direct child named name, or nil.
func (n *PathNode) Child(name string) *PathNode {
	return n.children[name]
}

// ChildNames returns the names of all direct children.
// The order is unspecified.
func (n *PathNode) ChildNames() []string {
	names := make([]string, 0, len(n.children))
	for name := range n.children {
		names = append(names, name)
	}
	return names
}

// Children returns the direct child nodes. The order is unspecified.
func (n *PathNode) Children() []*PathNode {
	nodes := make([]*PathNode, 0, len(n.children))
	for _, child := range n.children {
		nodes = append(nodes, child)
	}
	return nodes
}

// Find walks the exact segment sequence starting at segments[from] and
// returns the node it ends on, or nil if any segment is missing. There is
// no partial or fuzzy matching.
func (n *PathNode) Find(segments []string, from int) *PathNode {
	node := n
	for i := from; i < len(segments); i++ {
		node = node.children[segments[i]]
		if node == nil {
			return nil
		}
	}
	return node
}
