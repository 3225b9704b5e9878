// Package stackup exposes layers and materials of a document tree as editable records
// and merges edits back into the nodes they came from.
package stackup

import (
	"fmt"
	"strings"

	"go.uber.org/multierr"

	"github.com/codex-k8s/stackupctl/internal/doctree"
)

const (
	stackupTag   = "Stackup"
	layersTag    = "Layers"
	layerTag     = "Layer"
	materialsTag = "Materials"
	materialTag  = "Material"
	unitsTag     = "Units"
)

// Field is one record value together with the location it was read from.
type Field struct {
	// Value is the current, possibly edited, value.
	Value string

	original string
	bind     binding
}

// Writable reports whether Apply can store the value back into the tree.
func (f *Field) Writable() bool {
	return f.bind != nil && f.bind.writable()
}

// Source describes where the value was found ("@LayerName", "Permittivity/Double"), empty when absent.
func (f *Field) Source() string {
	if f.bind == nil {
		return ""
	}
	return f.bind.String()
}

// Changed reports whether Value differs from the value read at extraction time.
func (f *Field) Changed() bool {
	return f.Value != f.original
}

// NamedField pairs a field with its canonical name.
type NamedField struct {
	Name  string
	Field *Field
}

// Layer is a live view over one Layer element.
type Layer struct {
	// Index is the zero-based position among the Layer elements.
	Index int

	Name      Field
	Type      Field
	Thickness Field
	Elevation Field
	Material  Field

	TopRoughness    Field
	BottomRoughness Field
	SideRoughness   Field

	TraceCrossSectionShape           Field
	TraceCrossSectionEtchStyle       Field
	TraceCrossSectionTopEdgeRatio    Field
	TraceCrossSectionBottomEdgeRatio Field

	node *doctree.Node
}

// Fields returns the layer's fields in display order.
func (l *Layer) Fields() []NamedField {
	return []NamedField{
		{FieldName, &l.Name},
		{FieldType, &l.Type},
		{FieldThickness, &l.Thickness},
		{FieldElevation, &l.Elevation},
		{FieldMaterial, &l.Material},
		{FieldTopRoughness, &l.TopRoughness},
		{FieldBottomRoughness, &l.BottomRoughness},
		{FieldSideRoughness, &l.SideRoughness},
		{FieldTraceCrossSectionShape, &l.TraceCrossSectionShape},
		{FieldTraceCrossSectionEtchStyle, &l.TraceCrossSectionEtchStyle},
		{FieldTraceCrossSectionTopEdgeRatio, &l.TraceCrossSectionTopEdgeRatio},
		{FieldTraceCrossSectionBottomEdgeRatio, &l.TraceCrossSectionBottomEdgeRatio},
	}
}

// Node returns the backing element.
func (l *Layer) Node() *doctree.Node { return l.node }

// Material is a live view over one child of the Materials section.
type Material struct {
	// Index is the zero-based position among the material elements.
	Index int

	Name         Field
	Permittivity Field
	LossTangent  Field
	Conductivity Field

	node *doctree.Node
}

// Fields returns the material's fields in display order.
func (m *Material) Fields() []NamedField {
	return []NamedField{
		{FieldName, &m.Name},
		{FieldPermittivity, &m.Permittivity},
		{FieldLossTangent, &m.LossTangent},
		{FieldConductivity, &m.Conductivity},
	}
}

// Node returns the backing element.
func (m *Material) Node() *doctree.Node { return m.node }

// Stackup holds the records extracted from one document.
type Stackup struct {
	Doc       *doctree.Document
	Units     string
	Layers    []*Layer
	Materials []*Material
}

// Extract builds layer and material records for doc. Missing sections yield no records.
func Extract(doc *doctree.Document, keys Keys) *Stackup {
	st := &Stackup{Doc: doc}
	if doc == nil || doc.Root == nil {
		return st
	}
	root := doc.Root
	section := findStackup(root)

	layers, hasLayers := section.FirstChild(layersTag)
	st.Units, _ = doctree.FirstMatch(
		func() (string, bool) {
			if root.Tag == unitsTag {
				return root.Text, true
			}
			return "", false
		},
		func() (string, bool) {
			n, ok := root.Find(unitsTag)
			if !ok {
				return "", false
			}
			return n.Text, true
		},
		func() (string, bool) {
			if !hasLayers {
				return "", false
			}
			return layers.Attr("LengthUnit")
		},
	)

	for i, n := range layers.ChildrenByTag(layerTag) {
		l := &Layer{Index: i, node: n}
		for _, nf := range l.Fields() {
			*nf.Field = resolveField(n, keys.layerChain(nf.Name))
		}
		st.Layers = append(st.Layers, l)
	}

	if materials, ok := section.FirstChild(materialsTag); ok {
		for i, n := range materials.Children {
			m := &Material{Index: i, node: n}
			for _, nf := range m.Fields() {
				*nf.Field = resolveField(n, keys.materialChain(nf.Name))
			}
			st.Materials = append(st.Materials, m)
		}
	}
	return st
}

// findStackup returns the root when it is the Stackup section, else the first
// Stackup descendant, else the root itself.
func findStackup(root *doctree.Node) *doctree.Node {
	n, _ := doctree.FirstMatch(
		func() (*doctree.Node, bool) { return root, root.Tag == stackupTag },
		func() (*doctree.Node, bool) { return root.FirstChild(stackupTag) },
		func() (*doctree.Node, bool) { return root.Find(stackupTag) },
		func() (*doctree.Node, bool) { return root, true },
	)
	return n
}

// UnboundFieldError reports an edit to a field the document never defined.
type UnboundFieldError struct {
	Kind   string
	Record string
	Field  string
}

func (e *UnboundFieldError) Error() string {
	return fmt.Sprintf("%s %q: field %s has no writable attribute or element in the document", e.Kind, e.Record, e.Field)
}

// Apply writes every record value back into the binding found at extraction
// time. It never creates or removes nodes or attributes; changed values without
// a writable binding are reported and left out.
func (s *Stackup) Apply() error {
	var errs error
	for _, l := range s.Layers {
		errs = multierr.Append(errs, applyFields(KindLayer, l.label(), l.Fields()))
	}
	for _, m := range s.Materials {
		errs = multierr.Append(errs, applyFields(KindMaterial, m.label(), m.Fields()))
	}
	return errs
}

func applyFields(kind Kind, label string, fields []NamedField) error {
	var errs error
	for _, nf := range fields {
		f := nf.Field
		if f.Writable() {
			f.bind.set(f.Value)
			f.original = f.Value
			continue
		}
		if f.Changed() {
			errs = multierr.Append(errs, &UnboundFieldError{Kind: kind.String(), Record: label, Field: nf.Name})
		}
	}
	return errs
}

func (l *Layer) label() string {
	if l.Name.Value != "" {
		return l.Name.Value
	}
	return fmt.Sprintf("#%d", l.Index)
}

func (m *Material) label() string {
	if m.Name.Value != "" {
		return m.Name.Value
	}
	return fmt.Sprintf("#%d", m.Index)
}

// MaterialNames returns the names of all materials in document order.
func (s *Stackup) MaterialNames() []string {
	names := make([]string, 0, len(s.Materials))
	for _, m := range s.Materials {
		names = append(names, m.Name.Value)
	}
	return names
}

func lookupField(fields []NamedField, name string) (*Field, string, bool) {
	for _, nf := range fields {
		if strings.EqualFold(nf.Name, strings.TrimSpace(name)) {
			return nf.Field, nf.Name, true
		}
	}
	return nil, "", false
}
