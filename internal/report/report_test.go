package report

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codex-k8s/stackupctl/internal/loader"
	"github.com/codex-k8s/stackupctl/internal/stackup"
)

const doc = `<Stackup>
  <Materials>
    <Material Name="copper"><Conductivity>58000000</Conductivity></Material>
  </Materials>
  <Layers LengthUnit="mm">
    <Layer Name="TOP|A" Type="signal" Material="copper" Thickness="0.035" Elevation="0"/>
    <Layer Name="DE1" Type="dielectric" Material="FR4" Thickness="1.5" Elevation="0.035"/>
  </Layers>
</Stackup>`

func load(t *testing.T) *stackup.Stackup {
	t.Helper()
	d, err := loader.Parse([]byte(doc))
	require.NoError(t, err)
	return stackup.Extract(d, stackup.DefaultKeys())
}

func TestMarkdown(t *testing.T) {
	out := string(Markdown("board.xml", load(t)))
	assert.True(t, strings.HasPrefix(out, "# board.xml\n"))
	assert.Contains(t, out, "Units: mm")
	assert.Contains(t, out, "## Layers (2)")
	assert.Contains(t, out, `| 0 | TOP\|A | signal | 0.035 | 0 | copper |`)
	assert.Contains(t, out, "| 0 | copper |  |  | 58000000 |")
	assert.Contains(t, out, "## Issues (1)")
	assert.Contains(t, out, `material "FR4" is not defined`)
}

func TestHTML(t *testing.T) {
	out, err := HTML("board.xml", load(t))
	require.NoError(t, err)
	html := string(out)
	assert.Contains(t, html, "<h1>board.xml</h1>")
	assert.Contains(t, html, "<table>")
	assert.Contains(t, html, "<td>TOP|A</td>")
}
