package stackup

import "strings"

// Layer field names.
const (
	FieldName                             = "Name"
	FieldType                             = "Type"
	FieldThickness                        = "Thickness"
	FieldElevation                        = "Elevation"
	FieldMaterial                         = "Material"
	FieldTopRoughness                     = "TopRoughness"
	FieldBottomRoughness                  = "BottomRoughness"
	FieldSideRoughness                    = "SideRoughness"
	FieldTraceCrossSectionShape           = "TraceCrossSectionShape"
	FieldTraceCrossSectionEtchStyle       = "TraceCrossSectionEtchStyle"
	FieldTraceCrossSectionTopEdgeRatio    = "TraceCrossSectionTopEdgeRatio"
	FieldTraceCrossSectionBottomEdgeRatio = "TraceCrossSectionBottomEdgeRatio"
)

// Material field names (Name is shared with layers).
const (
	FieldPermittivity = "Permittivity"
	FieldLossTangent  = "LossTangent"
	FieldConductivity = "Conductivity"
)

var layerFieldOrder = []string{
	FieldName,
	FieldType,
	FieldThickness,
	FieldElevation,
	FieldMaterial,
	FieldTopRoughness,
	FieldBottomRoughness,
	FieldSideRoughness,
	FieldTraceCrossSectionShape,
	FieldTraceCrossSectionEtchStyle,
	FieldTraceCrossSectionTopEdgeRatio,
	FieldTraceCrossSectionBottomEdgeRatio,
}

var materialFieldOrder = []string{
	FieldName,
	FieldPermittivity,
	FieldLossTangent,
	FieldConductivity,
}

// Keys lists, per record field, the candidate names tried in priority order.
// Layer keys are attribute names. Material keys name property elements (and,
// as a last resort, attributes) for numeric fields, and attributes or leaf
// children for Name.
type Keys struct {
	Layer    map[string][]string
	Material map[string][]string
}

// DefaultKeys returns the key chains covering the known document dialects.
func DefaultKeys() Keys {
	return Keys{
		Layer: map[string][]string{
			FieldName:                             {"LayerName", "Name"},
			FieldType:                             {"LayerType", "Type"},
			FieldThickness:                        {"Thickness"},
			FieldElevation:                        {"Elevation", "LowerElevation"},
			FieldMaterial:                         {"Material"},
			FieldTopRoughness:                     {"TopRoughness"},
			FieldBottomRoughness:                  {"BottomRoughness"},
			FieldSideRoughness:                    {"SideRoughness"},
			FieldTraceCrossSectionShape:           {"TraceCrossSectionShape"},
			FieldTraceCrossSectionEtchStyle:       {"TraceCrossSectionEtchStyle"},
			FieldTraceCrossSectionTopEdgeRatio:    {"TraceCrossSectionTopEdgeRatio"},
			FieldTraceCrossSectionBottomEdgeRatio: {"TraceCrossSectionBottomEdgeRatio"},
		},
		Material: map[string][]string{
			FieldName:         {"Name"},
			FieldPermittivity: {"Permittivity", "permittivity"},
			FieldLossTangent:  {"LossTangent", "DielectricLossTangent", "dielectric_loss_tangent"},
			FieldConductivity: {"Conductivity", "conductivity"},
		},
	}
}

// WithOverrides returns a copy of k where every non-empty override replaces
// the chain of the matching field. Field names match case-insensitively;
// unknown names are returned for the caller to report.
func (k Keys) WithOverrides(layer, material map[string][]string) (Keys, []string) {
	out := Keys{Layer: cloneChains(k.Layer), Material: cloneChains(k.Material)}
	var unknown []string
	apply := func(dst map[string][]string, order []string, overrides map[string][]string, kind string) {
		for name, chain := range overrides {
			canonical, ok := canonicalField(order, name)
			if !ok {
				unknown = append(unknown, kind+"."+name)
				continue
			}
			if len(chain) > 0 {
				dst[canonical] = append([]string(nil), chain...)
			}
		}
	}
	apply(out.Layer, layerFieldOrder, layer, "layer")
	apply(out.Material, materialFieldOrder, material, "material")
	return out, unknown
}

func cloneChains(in map[string][]string) map[string][]string {
	out := make(map[string][]string, len(in))
	for k, v := range in {
		out[k] = append([]string(nil), v...)
	}
	return out
}

func canonicalField(order []string, name string) (string, bool) {
	for _, f := range order {
		if strings.EqualFold(f, strings.TrimSpace(name)) {
			return f, true
		}
	}
	return "", false
}

func (k Keys) layerChain(field string) []resolver {
	var chain []resolver
	for _, key := range k.Layer[field] {
		chain = append(chain, attrResolver(key))
	}
	return chain
}

func (k Keys) materialChain(field string) []resolver {
	keys := k.Material[field]
	var chain []resolver
	if field == FieldName {
		for _, key := range keys {
			chain = append(chain, nonEmptyAttrResolver(key))
		}
		for _, key := range keys {
			chain = append(chain, childTextResolver(key))
		}
		return append(chain, tagResolver(materialTag))
	}
	for _, key := range keys {
		chain = append(chain, numericLeafResolver(key))
	}
	for _, key := range keys {
		chain = append(chain, attrResolver(key))
	}
	return chain
}
