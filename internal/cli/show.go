package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/codex-k8s/stackupctl/internal/stackup"
)

// recordView is a serializable snapshot of one layer or material.
type recordView struct {
	Index   int               `json:"index" yaml:"index"`
	Values  map[string]string `json:"values" yaml:"values"`
	Sources map[string]string `json:"sources,omitempty" yaml:"sources,omitempty"`
}

// stackupView is the json/yaml output of the show command.
type stackupView struct {
	File      string       `json:"file" yaml:"file"`
	Format    string       `json:"format" yaml:"format"`
	Units     string       `json:"units,omitempty" yaml:"units,omitempty"`
	Layers    []recordView `json:"layers" yaml:"layers"`
	Materials []recordView `json:"materials" yaml:"materials"`
}

// newShowCommand creates "show" that prints layers and materials.
func newShowCommand(opts *Options) *cobra.Command {
	var (
		output  string
		sources bool
		wide    bool
	)

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the layers and materials of a stackup file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			sess, err := openSession(ctx, cmd, opts, sessionRequest{})
			if err != nil {
				return err
			}
			defer sess.Close()

			st := sess.Stackup()
			out := cmd.OutOrStdout()
			switch strings.ToLower(strings.TrimSpace(output)) {
			case "", "table":
				return writeTables(out, st, wide, sources)
			case "json":
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(buildView(sess.Path(), st, sources))
			case "yaml":
				enc := yaml.NewEncoder(out)
				enc.SetIndent(2)
				if err := enc.Encode(buildView(sess.Path(), st, sources)); err != nil {
					return err
				}
				return enc.Close()
			default:
				return fmt.Errorf("unsupported output %q (table, json, yaml)", output)
			}
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "table", "Output format: table, json or yaml")
	cmd.Flags().BoolVar(&sources, "sources", false, "Show which attribute or element each value came from")
	cmd.Flags().BoolVar(&wide, "wide", false, "Include roughness and trace cross-section columns")

	return cmd
}

func buildView(path string, st *stackup.Stackup, withSources bool) stackupView {
	view := stackupView{
		File:      path,
		Format:    st.Doc.Format.String(),
		Units:     st.Units,
		Layers:    []recordView{},
		Materials: []recordView{},
	}
	for _, l := range st.Layers {
		view.Layers = append(view.Layers, toRecordView(l.Index, l.Fields(), withSources))
	}
	for _, m := range st.Materials {
		view.Materials = append(view.Materials, toRecordView(m.Index, m.Fields(), withSources))
	}
	return view
}

func toRecordView(index int, fields []stackup.NamedField, withSources bool) recordView {
	rv := recordView{Index: index, Values: map[string]string{}}
	if withSources {
		rv.Sources = map[string]string{}
	}
	for _, nf := range fields {
		if nf.Field.Value == "" && nf.Field.Source() == "" {
			continue
		}
		rv.Values[nf.Name] = nf.Field.Value
		if withSources {
			rv.Sources[nf.Name] = nf.Field.Source()
		}
	}
	return rv
}

var (
	narrowLayerColumns = []string{
		stackup.FieldName,
		stackup.FieldType,
		stackup.FieldThickness,
		stackup.FieldElevation,
		stackup.FieldMaterial,
	}
	wideLayerColumns = append(append([]string{}, narrowLayerColumns...),
		stackup.FieldTopRoughness,
		stackup.FieldBottomRoughness,
		stackup.FieldSideRoughness,
		stackup.FieldTraceCrossSectionShape,
		stackup.FieldTraceCrossSectionEtchStyle,
		stackup.FieldTraceCrossSectionTopEdgeRatio,
		stackup.FieldTraceCrossSectionBottomEdgeRatio,
	)
	materialColumns = []string{
		stackup.FieldName,
		stackup.FieldPermittivity,
		stackup.FieldLossTangent,
		stackup.FieldConductivity,
	}
)

func writeTables(w io.Writer, st *stackup.Stackup, wide, withSources bool) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	layerColumns := narrowLayerColumns
	if wide {
		layerColumns = wideLayerColumns
	}
	if st.Units != "" {
		fmt.Fprintf(tw, "UNITS\t%s\n\n", st.Units)
	}
	fmt.Fprintf(tw, "LAYERS (%d)\n", len(st.Layers))
	fmt.Fprintf(tw, "#\t%s\n", strings.ToUpper(strings.Join(layerColumns, "\t")))
	for _, l := range st.Layers {
		writeTableRow(tw, l.Index, l.Fields(), layerColumns, withSources)
	}

	fmt.Fprintf(tw, "\nMATERIALS (%d)\n", len(st.Materials))
	fmt.Fprintf(tw, "#\t%s\n", strings.ToUpper(strings.Join(materialColumns, "\t")))
	for _, m := range st.Materials {
		writeTableRow(tw, m.Index, m.Fields(), materialColumns, withSources)
	}
	return tw.Flush()
}

func writeTableRow(w io.Writer, index int, fields []stackup.NamedField, columns []string, withSources bool) {
	byName := make(map[string]*stackup.Field, len(fields))
	for _, nf := range fields {
		byName[nf.Name] = nf.Field
	}
	cells := make([]string, 0, len(columns)+1)
	cells = append(cells, fmt.Sprint(index))
	for _, col := range columns {
		f := byName[col]
		cell := f.Value
		if cell == "" {
			cell = "-"
		}
		if withSources && f.Source() != "" {
			cell += " (" + f.Source() + ")"
		}
		cells = append(cells, cell)
	}
	fmt.Fprintln(w, strings.Join(cells, "\t"))
}
