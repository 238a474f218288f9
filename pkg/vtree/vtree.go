package vtree

import "strings"

// Kind is the node type discriminator.
type Kind uint8

const (
	KindElement  Kind = iota // <div>, <li>, etc.
	KindText                 // Plain text node
	KindComment              // Comment node (loop anchors)
	KindFragment             // Grouping without wrapper; dissolves on insert
	KindDocument             // Tree root marking "connected"
)

// String returns the string representation of the Kind.
func (k Kind) String() string {
	switch k {
	case KindElement:
		return "Element"
	case KindText:
		return "Text"
	case KindComment:
		return "Comment"
	case KindFragment:
		return "Fragment"
	case KindDocument:
		return "Document"
	default:
		return "Unknown"
	}
}

// Node is one node of the live view tree.
type Node struct {
	Kind  Kind
	Tag   string            // Element tag name
	Text  string            // For KindText and KindComment
	Attrs map[string]string // Element attributes

	parent   *Node
	children []*Node
}

// NewElement creates an element node.
func NewElement(tag string) *Node {
	return &Node{Kind: KindElement, Tag: tag}
}

// NewText creates a text node.
func NewText(text string) *Node {
	return &Node{Kind: KindText, Text: text}
}

// NewComment creates a comment node.
func NewComment(text string) *Node {
	return &Node{Kind: KindComment, Text: text}
}

// NewFragment creates a grouping node. Inserting a fragment into a parent
// splices its children in and leaves the fragment empty.
func NewFragment() *Node {
	return &Node{Kind: KindFragment}
}

// NewDocument creates a tree root. Nodes reachable from a document are
// "connected".
func NewDocument() *Node {
	return &Node{Kind: KindDocument}
}

// SetAttr sets an element attribute.
func (n *Node) SetAttr(key, value string) {
	if n.Attrs == nil {
		n.Attrs = make(map[string]string)
	}
	n.Attrs[key] = value
}

// Parent returns the parent node, nil for detached nodes.
func (n *Node) Parent() *Node {
	return n.parent
}

// Children returns the child slice. Callers must not mutate it.
func (n *Node) Children() []*Node {
	return n.children
}

// ChildCount returns the number of children.
func (n *Node) ChildCount() int {
	return len(n.children)
}

// IndexOf returns the position of child, or -1.
func (n *Node) IndexOf(child *Node) int {
	for i, c := range n.children {
		if c == child {
			return i
		}
	}
	return -1
}

// Connected reports whether the node is reachable from a document root.
func (n *Node) Connected() bool {
	for cur := n; cur != nil; cur = cur.parent {
		if cur.Kind == KindDocument {
			return true
		}
	}
	return false
}

// AppendChild appends child (or, for a fragment, its children).
func (n *Node) AppendChild(child *Node) {
	n.insertAt(child, len(n.children))
}

// InsertBefore inserts child before ref. A nil ref appends.
func (n *Node) InsertBefore(child, ref *Node) {
	idx := len(n.children)
	if ref != nil {
		if i := n.IndexOf(ref); i >= 0 {
			idx = i
		}
	}
	n.insertAt(child, idx)
}

// InsertAfter inserts child immediately after ref. A nil ref prepends.
func (n *Node) InsertAfter(child, ref *Node) {
	idx := 0
	if ref != nil {
		if i := n.IndexOf(ref); i >= 0 {
			idx = i + 1
		}
	}
	n.insertAt(child, idx)
}

func (n *Node) insertAt(child *Node, idx int) {
	if child.Kind == KindFragment {
		moved := child.children
		child.children = nil
		for i, c := range moved {
			c.parent = n
			n.children = append(n.children, nil)
			copy(n.children[idx+i+1:], n.children[idx+i:])
			n.children[idx+i] = c
		}
		return
	}

	child.Detach()
	child.parent = n
	n.children = append(n.children, nil)
	copy(n.children[idx+1:], n.children[idx:])
	n.children[idx] = child
}

// RemoveChild detaches child from this node.
func (n *Node) RemoveChild(child *Node) {
	if i := n.IndexOf(child); i >= 0 {
		n.children = append(n.children[:i], n.children[i+1:]...)
		child.parent = nil
	}
}

// Detach removes the node from its parent, if any.
func (n *Node) Detach() {
	if n.parent != nil {
		n.parent.RemoveChild(n)
	}
}

// Clear removes all children wholesale.
func (n *Node) Clear() {
	for _, c := range n.children {
		c.parent = nil
	}
	n.children = nil
}

// NextSibling returns the node following this one under its parent.
func (n *Node) NextSibling() *Node {
	if n.parent == nil {
		return nil
	}
	i := n.parent.IndexOf(n)
	if i < 0 || i+1 >= len(n.parent.children) {
		return nil
	}
	return n.parent.children[i+1]
}

// PrevSibling returns the node preceding this one under its parent.
func (n *Node) PrevSibling() *Node {
	if n.parent == nil {
		return nil
	}
	i := n.parent.IndexOf(n)
	if i <= 0 {
		return nil
	}
	return n.parent.children[i-1]
}

// IsBlankText reports whether the node is whitespace-only text.
func (n *Node) IsBlankText() bool {
	return n.Kind == KindText && strings.TrimSpace(n.Text) == ""
}
