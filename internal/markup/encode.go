package markup

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"strings"

	"github.com/codex-k8s/stackupctl/internal/doctree"
)

// Header is the declaration written at the top of every serialized document.
const Header = `<?xml version="1.0" encoding="UTF-8"?>` + "\n"

const indentUnit = "  "

var (
	textEscaper = strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		"\r", "&#13;",
	)
	attrEscaper = strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"\n", "&#10;",
		"\r", "&#13;",
		"\t", "&#9;",
	)
)

// Encode writes doc as indented XML with the UTF-8 declaration.
func Encode(w io.Writer, doc *doctree.Document) error {
	if doc == nil || doc.Root == nil {
		return errors.New("markup: document has no root element")
	}
	bw := bufio.NewWriter(w)
	_, _ = bw.WriteString(Header)
	writeNode(bw, doc.Root, 0)
	return bw.Flush()
}

// Marshal returns the serialized form of doc.
func Marshal(doc *doctree.Document) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// writeNode relies on bufio's sticky error; Flush reports failures.
func writeNode(w *bufio.Writer, n *doctree.Node, depth int) {
	indent := strings.Repeat(indentUnit, depth)
	_, _ = w.WriteString(indent)
	_ = w.WriteByte('<')
	_, _ = w.WriteString(n.Tag)
	for _, a := range n.Attrs {
		_ = w.WriteByte(' ')
		_, _ = w.WriteString(a.Name)
		_, _ = w.WriteString(`="`)
		_, _ = attrEscaper.WriteString(w, a.Value)
		_ = w.WriteByte('"')
	}

	switch {
	case len(n.Children) > 0:
		_, _ = w.WriteString(">\n")
		for _, c := range n.Children {
			writeNode(w, c, depth+1)
		}
		_, _ = w.WriteString(indent)
		writeClose(w, n.Tag)
	case n.Text != "":
		_ = w.WriteByte('>')
		_, _ = textEscaper.WriteString(w, n.Text)
		writeClose(w, n.Tag)
	default:
		_, _ = w.WriteString("/>\n")
	}
}

func writeClose(w *bufio.Writer, tag string) {
	_, _ = w.WriteString("</")
	_, _ = w.WriteString(tag)
	_, _ = w.WriteString(">\n")
}
