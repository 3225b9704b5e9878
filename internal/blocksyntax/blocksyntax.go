// Package blocksyntax parses the legacy $begin/$end stackup dialect into a document tree.
//
// Recognized lines (after trimming, blank lines skipped):
//
//	$begin 'Name'            opens a block
//	$end 'Name'              closes the innermost block, names must match
//	Units(value)             leaf, quotes stripped
//	Layer(k=v, k2='v2')      element with ordered attributes
//	Key(value)               leaf with the raw value
//	Key=value                leaf, quotes stripped
//
// Any other line is dropped. Values containing parentheses or commas inside the
// generic forms are split naively.
package blocksyntax

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/codex-k8s/stackupctl/internal/doctree"
)

// RootTag names the synthetic root used when a file has several top-level elements.
const RootTag = "StackupDocument"

var (
	beginPattern = regexp.MustCompile(`^\$begin\s+'([^']+)'`)
	endPattern   = regexp.MustCompile(`^\$end\s+'([^']+)'`)
	namePattern  = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.\-]*$`)
)

// SyntaxError reports a structural problem at a specific line.
type SyntaxError struct {
	// Line is the 1-based line number, 0 when the problem is not tied to a line.
	Line int
	// Construct is the offending source text or block name.
	Construct string
	// Msg describes the problem.
	Msg string
}

func (e *SyntaxError) Error() string {
	if e.Line == 0 {
		return fmt.Sprintf("block syntax: %s", e.Msg)
	}
	return fmt.Sprintf("block syntax: line %d: %s: %q", e.Line, e.Msg, e.Construct)
}

// Options tunes Parse.
type Options struct {
	// OnSkip is called for every non-blank line that matches no pattern.
	OnSkip func(line int, text string)
}

type openBlock struct {
	node *doctree.Node
	line int
}

// Parse reads legacy block syntax and returns the root element.
func Parse(r io.Reader) (*doctree.Node, error) {
	return ParseWithOptions(r, Options{})
}

// ParseWithOptions is Parse with caller-supplied options.
func ParseWithOptions(r io.Reader, opts Options) (*doctree.Node, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	holder := doctree.NewNode(RootTag)
	stack := []openBlock{{node: holder}}
	lineNo := 0

	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		top := stack[len(stack)-1].node

		if m := beginPattern.FindStringSubmatch(line); m != nil {
			name := m[1]
			if !namePattern.MatchString(name) {
				return nil, &SyntaxError{Line: lineNo, Construct: line, Msg: "invalid block name"}
			}
			node := doctree.NewNode(name)
			top.AppendChild(node)
			stack = append(stack, openBlock{node: node, line: lineNo})
			continue
		}

		if m := endPattern.FindStringSubmatch(line); m != nil {
			if len(stack) == 1 {
				return nil, &SyntaxError{Line: lineNo, Construct: line, Msg: "$end without matching $begin"}
			}
			if m[1] != top.Tag {
				return nil, &SyntaxError{
					Line:      lineNo,
					Construct: line,
					Msg:       fmt.Sprintf("$end does not match open block %q (opened at line %d)", top.Tag, stack[len(stack)-1].line),
				}
			}
			stack = stack[:len(stack)-1]
			continue
		}

		node, matched, err := parseLeaf(line)
		if err != nil {
			err.Line = lineNo
			return nil, err
		}
		if !matched {
			if opts.OnSkip != nil {
				opts.OnSkip(lineNo, line)
			}
			continue
		}
		top.AppendChild(node)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read block syntax: %w", err)
	}

	if len(stack) > 1 {
		open := stack[len(stack)-1]
		return nil, &SyntaxError{Line: open.line, Construct: open.node.Tag, Msg: "$begin without matching $end"}
	}

	switch len(holder.Children) {
	case 0:
		return nil, &SyntaxError{Msg: "document contains no elements"}
	case 1:
		return holder.Children[0], nil
	default:
		return holder, nil
	}
}

// parseLeaf converts a single non-block line. matched is false for lines no pattern accepts.
func parseLeaf(line string) (*doctree.Node, bool, *SyntaxError) {
	switch {
	case strings.HasPrefix(line, "Units(") && strings.HasSuffix(line, ")"):
		node := doctree.NewNode("Units")
		node.Text = stripQuotes(line[len("Units(") : len(line)-1])
		return node, true, nil

	case strings.HasPrefix(line, "Layer(") && strings.HasSuffix(line, ")"):
		attrs, err := parseAttrList(line[len("Layer(") : len(line)-1])
		if err != nil {
			err.Construct = line
			return nil, false, err
		}
		return &doctree.Node{Tag: "Layer", Attrs: attrs}, true, nil

	case strings.Contains(line, "(") && strings.HasSuffix(line, ")"):
		key, val, _ := strings.Cut(line[:len(line)-1], "(")
		key = strings.TrimSpace(key)
		if !namePattern.MatchString(key) {
			return nil, false, &SyntaxError{Construct: line, Msg: "invalid element name"}
		}
		node := doctree.NewNode(key)
		node.Text = val
		return node, true, nil

	case strings.Contains(line, "="):
		key, val, _ := strings.Cut(line, "=")
		key = strings.TrimSpace(key)
		if !namePattern.MatchString(key) {
			return nil, false, &SyntaxError{Construct: line, Msg: "invalid element name"}
		}
		node := doctree.NewNode(key)
		node.Text = stripQuotes(strings.TrimSpace(val))
		return node, true, nil
	}
	return nil, false, nil
}

// parseAttrList splits k=v pairs on commas outside single quotes, keeping key order.
func parseAttrList(content string) ([]doctree.Attr, *SyntaxError) {
	var (
		items   []string
		current strings.Builder
		quoted  bool
	)
	for _, r := range content {
		switch {
		case r == '\'':
			quoted = !quoted
			current.WriteRune(r)
		case r == ',' && !quoted:
			items = append(items, current.String())
			current.Reset()
		default:
			current.WriteRune(r)
		}
	}
	if quoted {
		return nil, &SyntaxError{Msg: "unterminated quote in attribute list"}
	}
	items = append(items, current.String())

	var attrs []doctree.Attr
	seen := make(map[string]struct{})
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		key, val, ok := strings.Cut(item, "=")
		if !ok {
			return nil, &SyntaxError{Msg: fmt.Sprintf("attribute %q has no value", item)}
		}
		key = strings.TrimSpace(key)
		if !namePattern.MatchString(key) {
			return nil, &SyntaxError{Msg: fmt.Sprintf("invalid attribute name %q", key)}
		}
		if _, dup := seen[key]; dup {
			return nil, &SyntaxError{Msg: fmt.Sprintf("duplicate attribute %q", key)}
		}
		seen[key] = struct{}{}
		attrs = append(attrs, doctree.Attr{Name: key, Value: stripQuotes(strings.TrimSpace(val))})
	}
	return attrs, nil
}

func stripQuotes(s string) string {
	return strings.Trim(s, `'"`)
}
