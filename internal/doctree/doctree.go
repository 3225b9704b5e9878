// Package doctree defines the generic element tree shared by both stackup dialects.
package doctree

// Format identifies the textual shape a Document was loaded from.
type Format int

const (
	// FormatUnknown is used when the shape could not be determined.
	FormatUnknown Format = iota
	// FormatStrict is the XML tree-markup form.
	FormatStrict
	// FormatLegacy is the $begin/$end block syntax.
	FormatLegacy
)

// String returns the lower-case name of the format.
func (f Format) String() string {
	switch f {
	case FormatStrict:
		return "strict"
	case FormatLegacy:
		return "legacy"
	default:
		return "unknown"
	}
}

// Document is a parsed stackup file.
type Document struct {
	// Root wraps every top-level section.
	Root *Node
	// Format is the dialect the document was parsed from.
	Format Format
}

// Attr is a single attribute of an element.
type Attr struct {
	Name  string
	Value string
}

// Node is an element with ordered attributes and either children or text.
type Node struct {
	Tag      string
	Attrs    []Attr
	Children []*Node
	Text     string
}

// NewNode constructs an element with the given tag.
func NewNode(tag string) *Node {
	return &Node{Tag: tag}
}

// AppendChild adds child as the last child of n.
func (n *Node) AppendChild(child *Node) {
	n.Children = append(n.Children, child)
}

// IsLeaf reports whether n has no element children.
func (n *Node) IsLeaf() bool {
	return len(n.Children) == 0
}

// Attr returns the value of the named attribute.
func (n *Node) Attr(name string) (string, bool) {
	if n == nil {
		return "", false
	}
	for _, a := range n.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// AddAttr appends an attribute, replacing the value in place when the name already exists.
// It reports whether the attribute already existed.
func (n *Node) AddAttr(name, value string) bool {
	if n.SetAttr(name, value) {
		return true
	}
	n.Attrs = append(n.Attrs, Attr{Name: name, Value: value})
	return false
}

// SetAttr updates an existing attribute and reports whether it was found.
// Missing attributes are never created.
func (n *Node) SetAttr(name, value string) bool {
	if n == nil {
		return false
	}
	for i := range n.Attrs {
		if n.Attrs[i].Name == name {
			n.Attrs[i].Value = value
			return true
		}
	}
	return false
}

// SetText replaces the text payload of a leaf node.
func (n *Node) SetText(value string) {
	n.Text = value
}
