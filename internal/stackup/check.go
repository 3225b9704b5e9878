package stackup

import "fmt"

// Issue is a consistency problem between records.
type Issue struct {
	Kind   Kind
	Record string
	Msg    string
}

func (i Issue) String() string {
	return fmt.Sprintf("%s %q: %s", i.Kind, i.Record, i.Msg)
}

// Check reports layers referring to undefined materials and duplicate record names.
// Values are not checked for physical plausibility.
func (s *Stackup) Check() []Issue {
	var issues []Issue

	defined := make(map[string]struct{}, len(s.Materials))
	for _, m := range s.Materials {
		if _, dup := defined[m.Name.Value]; dup {
			issues = append(issues, Issue{Kind: KindMaterial, Record: m.label(), Msg: "duplicate material name"})
		}
		defined[m.Name.Value] = struct{}{}
	}

	seen := make(map[string]struct{}, len(s.Layers))
	for _, l := range s.Layers {
		if l.Name.Value == "" {
			issues = append(issues, Issue{Kind: KindLayer, Record: l.label(), Msg: "layer has no name"})
		} else if _, dup := seen[l.Name.Value]; dup {
			issues = append(issues, Issue{Kind: KindLayer, Record: l.label(), Msg: "duplicate layer name"})
		}
		seen[l.Name.Value] = struct{}{}

		if l.Material.Value == "" {
			continue
		}
		if _, ok := defined[l.Material.Value]; !ok {
			issues = append(issues, Issue{
				Kind:   KindLayer,
				Record: l.label(),
				Msg:    fmt.Sprintf("material %q is not defined in Materials", l.Material.Value),
			})
		}
	}
	return issues
}
