package stackup

import (
	"github.com/codex-k8s/stackupctl/internal/doctree"
)

// binding locates the value of a field inside the tree.
type binding interface {
	get() string
	set(value string)
	writable() bool
	String() string
}

type attrBinding struct {
	node *doctree.Node
	name string
}

func (b attrBinding) get() string {
	v, _ := b.node.Attr(b.name)
	return v
}

func (b attrBinding) set(value string) { b.node.SetAttr(b.name, value) }
func (b attrBinding) writable() bool   { return true }
func (b attrBinding) String() string   { return "@" + b.name }

type textBinding struct {
	node *doctree.Node
	path string
}

func (b textBinding) get() string      { return b.node.Text }
func (b textBinding) set(value string) { b.node.SetText(value) }
func (b textBinding) writable() bool   { return true }
func (b textBinding) String() string   { return b.path }

// tagBinding exposes an element name; tags are never rewritten.
type tagBinding struct {
	node *doctree.Node
}

func (b tagBinding) get() string   { return b.node.Tag }
func (b tagBinding) set(string)    {}
func (b tagBinding) writable() bool { return false }
func (b tagBinding) String() string { return "<tag>" }

// resolver produces a binding for a node when the candidate location exists.
type resolver func(n *doctree.Node) (binding, bool)

func attrResolver(name string) resolver {
	return func(n *doctree.Node) (binding, bool) {
		if _, ok := n.Attr(name); !ok {
			return nil, false
		}
		return attrBinding{node: n, name: name}, true
	}
}

// nonEmptyAttrResolver is attrResolver that treats an empty value as absent.
func nonEmptyAttrResolver(name string) resolver {
	return func(n *doctree.Node) (binding, bool) {
		if v, ok := n.Attr(name); !ok || v == "" {
			return nil, false
		}
		return attrBinding{node: n, name: name}, true
	}
}

func childTextResolver(tag string) resolver {
	return func(n *doctree.Node) (binding, bool) {
		child, ok := n.FirstChild(tag)
		if !ok || !child.IsLeaf() {
			return nil, false
		}
		return textBinding{node: child, path: tag}, true
	}
}

func numericLeafResolver(tag string) resolver {
	return func(n *doctree.Node) (binding, bool) {
		leaf, ok := doctree.NumericLeaf(n, tag)
		if !ok {
			return nil, false
		}
		path := tag
		if leaf.Tag == doctree.NumericLeafTag {
			path = tag + "/" + doctree.NumericLeafTag
		}
		return textBinding{node: leaf, path: path}, true
	}
}

// tagResolver binds the node's own tag unless it is one of the generic record tags.
func tagResolver(generic ...string) resolver {
	return func(n *doctree.Node) (binding, bool) {
		for _, g := range generic {
			if n.Tag == g {
				return nil, false
			}
		}
		return tagBinding{node: n}, true
	}
}

// resolveField evaluates chain in priority order and captures the first hit.
func resolveField(n *doctree.Node, chain []resolver) Field {
	candidates := make([]func() (binding, bool), 0, len(chain))
	for _, r := range chain {
		candidates = append(candidates, func() (binding, bool) { return r(n) })
	}
	b, ok := doctree.FirstMatch(candidates...)
	if !ok {
		return Field{}
	}
	v := b.get()
	return Field{Value: v, original: v, bind: b}
}
