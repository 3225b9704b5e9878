// Package markup reads and writes the strict XML form of stackup documents.
package markup

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html/charset"

	"github.com/codex-k8s/stackupctl/internal/doctree"
)

// SyntaxError reports a document that is not well-formed.
type SyntaxError struct {
	Line int
	Msg  string
	Err  error
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("markup: line %d: %s", e.Line, e.Msg)
}

func (e *SyntaxError) Unwrap() error { return e.Err }

type openElement struct {
	node *doctree.Node
	text strings.Builder
}

// Decode parses a strict XML document into a tree.
// Namespace prefixes are kept verbatim in tags and attribute names.
// Non-UTF-8 encodings named in the declaration are converted to UTF-8.
func Decode(r io.Reader) (*doctree.Node, error) {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = charset.NewReaderLabel

	var (
		root  *doctree.Node
		stack []*openElement
	)
	line := func() int {
		l, _ := dec.InputPos()
		return l
	}

	for {
		tok, err := dec.RawToken()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var xmlErr *xml.SyntaxError
			if errors.As(err, &xmlErr) {
				return nil, &SyntaxError{Line: xmlErr.Line, Msg: xmlErr.Msg, Err: err}
			}
			return nil, &SyntaxError{Line: line(), Msg: err.Error(), Err: err}
		}

		switch t := tok.(type) {
		case xml.StartElement:
			node := doctree.NewNode(qualifiedName(t.Name))
			for _, a := range t.Attr {
				name := qualifiedName(a.Name)
				if _, dup := node.Attr(name); dup {
					return nil, &SyntaxError{Line: line(), Msg: fmt.Sprintf("duplicate attribute %q on <%s>", name, node.Tag)}
				}
				node.Attrs = append(node.Attrs, doctree.Attr{Name: name, Value: a.Value})
			}
			if len(stack) == 0 {
				if root != nil {
					return nil, &SyntaxError{Line: line(), Msg: fmt.Sprintf("second root element <%s>", node.Tag)}
				}
				root = node
			} else {
				stack[len(stack)-1].node.AppendChild(node)
			}
			stack = append(stack, &openElement{node: node})

		case xml.EndElement:
			name := qualifiedName(t.Name)
			if len(stack) == 0 {
				return nil, &SyntaxError{Line: line(), Msg: fmt.Sprintf("unexpected </%s>", name)}
			}
			top := stack[len(stack)-1]
			if top.node.Tag != name {
				return nil, &SyntaxError{Line: line(), Msg: fmt.Sprintf("element <%s> closed by </%s>", top.node.Tag, name)}
			}
			if top.node.IsLeaf() {
				top.node.Text = strings.TrimSpace(top.text.String())
			}
			stack = stack[:len(stack)-1]

		case xml.CharData:
			if len(stack) == 0 {
				if len(bytes.TrimSpace(t)) > 0 {
					return nil, &SyntaxError{Line: line(), Msg: "character data outside root element"}
				}
				continue
			}
			stack[len(stack)-1].text.Write(t)
		}
	}

	if len(stack) > 0 {
		return nil, &SyntaxError{Line: line(), Msg: fmt.Sprintf("unexpected EOF: <%s> not closed", stack[len(stack)-1].node.Tag)}
	}
	if root == nil {
		return nil, &SyntaxError{Line: line(), Msg: "no root element"}
	}
	return root, nil
}

func qualifiedName(n xml.Name) string {
	if n.Space == "" {
		return n.Local
	}
	return n.Space + ":" + n.Local
}

// Detect guesses the dialect of raw stackup text from its first meaningful line.
// It does not pick a parser; the loader only reports it when strict parsing fails.
func Detect(data []byte) doctree.Format {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	for _, raw := range bytes.Split(data, []byte("\n")) {
		line := bytes.TrimSpace(raw)
		if len(line) == 0 {
			continue
		}
		switch {
		case line[0] == '<':
			return doctree.FormatStrict
		case bytes.HasPrefix(line, []byte("$begin")), bytes.HasPrefix(line, []byte("$end")):
			return doctree.FormatLegacy
		default:
			return doctree.FormatUnknown
		}
	}
	return doctree.FormatUnknown
}
