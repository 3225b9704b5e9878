package doctree

// NumericLeafTag is the generic wrapper some producers nest numeric values in.
const NumericLeafTag = "Double"

// FirstChild returns the first direct child with the given tag.
func (n *Node) FirstChild(tag string) (*Node, bool) {
	if n == nil {
		return nil, false
	}
	for _, c := range n.Children {
		if c.Tag == tag {
			return c, true
		}
	}
	return nil, false
}

// ChildrenByTag returns all direct children with the given tag in document order.
func (n *Node) ChildrenByTag(tag string) []*Node {
	if n == nil {
		return nil
	}
	var out []*Node
	for _, c := range n.Children {
		if c.Tag == tag {
			out = append(out, c)
		}
	}
	return out
}

// Find returns the first descendant (depth-first, excluding n) with the given tag.
func (n *Node) Find(tag string) (*Node, bool) {
	if n == nil {
		return nil, false
	}
	for _, c := range n.Children {
		if c.Tag == tag {
			return c, true
		}
		if found, ok := c.Find(tag); ok {
			return found, true
		}
	}
	return nil, false
}

// TextOr returns the text of the first descendant with the given tag, or def when absent.
func (n *Node) TextOr(tag, def string) string {
	if found, ok := n.Find(tag); ok {
		return found.Text
	}
	return def
}

// NumericLeaf locates the node holding a numeric property value.
// The nested generic leaf (<tag><Double>v</Double></tag>) wins over the
// property node's own text; a property node with other children holds no value.
func NumericLeaf(n *Node, tag string) (*Node, bool) {
	prop, ok := n.FirstChild(tag)
	if !ok {
		return nil, false
	}
	if leaf, ok := prop.FirstChild(NumericLeafTag); ok {
		return leaf, true
	}
	if prop.IsLeaf() {
		return prop, true
	}
	return nil, false
}

// FirstMatch returns the result of the first candidate that succeeds.
func FirstMatch[T any](candidates ...func() (T, bool)) (T, bool) {
	for _, c := range candidates {
		if v, ok := c(); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}

// Walk visits n and its descendants depth-first, stopping a branch when fn returns false.
func Walk(n *Node, fn func(*Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, c := range n.Children {
		Walk(c, fn)
	}
}
