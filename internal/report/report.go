// Package report renders a human-readable summary of a stackup.
package report

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/codex-k8s/stackupctl/internal/stackup"
)

var cellEscaper = strings.NewReplacer("|", `\|`, "\n", " ", "\r", "")

// Markdown renders layer and material tables as GitHub-flavored Markdown.
func Markdown(title string, st *stackup.Stackup) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "# %s\n\n", strings.TrimSpace(title))
	if st.Units != "" {
		fmt.Fprintf(&b, "Units: %s\n\n", st.Units)
	}

	fmt.Fprintf(&b, "## Layers (%d)\n\n", len(st.Layers))
	if len(st.Layers) > 0 {
		writeRow(&b, "#", "Name", "Type", "Thickness", "Elevation", "Material")
		writeRow(&b, "---", "---", "---", "---:", "---:", "---")
		for _, l := range st.Layers {
			writeRow(&b, fmt.Sprint(l.Index), l.Name.Value, l.Type.Value, l.Thickness.Value, l.Elevation.Value, l.Material.Value)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "## Materials (%d)\n\n", len(st.Materials))
	if len(st.Materials) > 0 {
		writeRow(&b, "#", "Name", "Permittivity", "Loss tangent", "Conductivity")
		writeRow(&b, "---", "---", "---:", "---:", "---:")
		for _, m := range st.Materials {
			writeRow(&b, fmt.Sprint(m.Index), m.Name.Value, m.Permittivity.Value, m.LossTangent.Value, m.Conductivity.Value)
		}
		b.WriteString("\n")
	}

	if issues := st.Check(); len(issues) > 0 {
		fmt.Fprintf(&b, "## Issues (%d)\n\n", len(issues))
		for _, issue := range issues {
			fmt.Fprintf(&b, "- %s\n", issue.String())
		}
		b.WriteString("\n")
	}
	return b.Bytes()
}

// HTML renders the Markdown report to an HTML fragment.
func HTML(title string, st *stackup.Stackup) ([]byte, error) {
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	var out bytes.Buffer
	if err := md.Convert(Markdown(title, st), &out); err != nil {
		return nil, fmt.Errorf("render report html: %w", err)
	}
	return out.Bytes(), nil
}

func writeRow(b *bytes.Buffer, cells ...string) {
	b.WriteString("|")
	for _, c := range cells {
		b.WriteString(" ")
		b.WriteString(cellEscaper.Replace(c))
		b.WriteString(" |")
	}
	b.WriteString("\n")
}
