// Package xmltree builds an in-memory document tree from raw XML bytes.
//
// The tree is deliberately small: element nodes with ordered attributes,
// ordered child elements, and accumulated character data. It is built once
// per conversion and discarded afterwards; nothing here is shared or cached
// across calls.
//
// The parser is non-validating: well-formedness is enforced (strict decoder),
// DTD/schema rules are not.
package xmltree

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Attr is a single attribute in document order.
type Attr struct {
	Name  string
	Value string
}

// Node is one element of the document tree.
//
// Text holds the element's own character data (not that of descendants):
// whitespace-only segments between child elements are discarded, the
// remainder is concatenated and trimmed. Children holds child elements in
// document order; repeated names are kept as-is.
type Node struct {
	Name     string
	Attrs    []Attr
	Children []*Node
	Text     string
}

// ParseError reports a malformed document. It wraps the underlying decoder
// error (syntax errors, bad entity references, unsupported encodings).
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string { return fmt.Sprintf("parse xml: %v", e.Err) }
func (e *ParseError) Unwrap() error { return e.Err }

// Parse decodes data into a document tree rooted at the single top-level
// element.
//
// Behavior:
//   - Namespace prefixes are dropped; local names are used throughout.
//   - xmlns declarations are not kept as attributes.
//   - Comments, processing instructions and directives are ignored.
//   - A second top-level element, or non-whitespace character data outside
//     the root, fails the parse.
//
// Errors:
//   - Returns *ParseError for any malformed input. There is no partial-tree
//     fallback; the caller gets a tree or nothing.
func Parse(data []byte) (*Node, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Strict = true
	dec.CharsetReader = charsetReader

	var root *Node
	var stack []*Node

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &ParseError{Err: err}
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if root != nil && len(stack) == 0 {
				return nil, &ParseError{Err: fmt.Errorf(
					"multiple root elements: %q and %q", root.Name, t.Name.Local)}
			}

			n := &Node{Name: t.Name.Local}
			for _, a := range t.Attr {
				if a.Name.Space == "xmlns" || a.Name.Local == "xmlns" {
					continue
				}
				n.Attrs = append(n.Attrs, Attr{Name: a.Name.Local, Value: a.Value})
			}

			if len(stack) == 0 {
				root = n
			} else {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, n)
			}
			stack = append(stack, n)

		case xml.EndElement:
			top := stack[len(stack)-1]
			top.Text = strings.TrimSpace(top.Text)
			stack = stack[:len(stack)-1]

		case xml.CharData:
			s := string(t)
			if strings.TrimSpace(s) == "" {
				continue
			}
			if len(stack) == 0 {
				return nil, &ParseError{Err: fmt.Errorf(
					"character data outside root element: %q", strings.TrimSpace(s))}
			}
			stack[len(stack)-1].Text += s
		}
	}

	if root == nil {
		return nil, &ParseError{Err: errors.New("document has no root element")}
	}
	return root, nil
}

// Walk visits n and every descendant element in document order (pre-order).
func Walk(n *Node, visit func(*Node)) {
	if n == nil {
		return
	}
	visit(n)
	for _, c := range n.Children {
		Walk(c, visit)
	}
}

// FindAll returns every element in the tree, root included, whose name
// equals tag, in document order.
func FindAll(n *Node, tag string) []*Node {
	var out []*Node
	Walk(n, func(e *Node) {
		if e.Name == tag {
			out = append(out, e)
		}
	})
	return out
}
