// Package jsonmap converts a document tree into a JSON-ready value under a
// fixed, deterministic convention.
//
// The convention, applied uniformly:
//   - A text-only element with no attributes maps to its text as a JSON
//     string. No numeric or boolean coercion is attempted; "5" stays "5".
//   - Attributes become object keys prefixed with "@" so they cannot collide
//     with child elements of the same name. Attribute values are strings.
//   - N>1 same-named children map to an array of their values in document
//     order; exactly one child of a given name maps to its value directly.
//   - Mixed content keeps the element's text under the reserved key
//     "content" alongside the child keys.
//   - Whitespace-only character data is ignored; retained text is trimmed.
//   - An element with no attributes, children or text maps to "".
//
// The root element's name becomes the single key of the returned top-level
// object.
package jsonmap

import (
	"xmljson/internal/xmltree"
)

// AttrPrefix marks attribute keys in mapped objects.
const AttrPrefix = "@"

// ContentKey holds element text when it coexists with attributes or children.
const ContentKey = "content"

// MappingError reports a tree shape the convention cannot represent.
//
// A well-formed tree never triggers it; it exists so callers can distinguish
// mapping failures from parse failures in error handling.
type MappingError struct {
	Reason string
}

func (e *MappingError) Error() string { return "map xml tree: " + e.Reason }

// Map converts the tree rooted at root into {root.Name: value}.
func Map(root *xmltree.Node) (map[string]any, error) {
	if root == nil {
		return nil, &MappingError{Reason: "nil document root"}
	}
	return map[string]any{root.Name: mapNode(root)}, nil
}

// mapNode applies the convention to a single element.
func mapNode(n *xmltree.Node) any {
	if len(n.Attrs) == 0 && len(n.Children) == 0 {
		return n.Text
	}

	obj := make(map[string]any, len(n.Attrs)+len(n.Children)+1)

	for _, a := range n.Attrs {
		obj[AttrPrefix+a.Name] = a.Value
	}

	// Group children by name; document order is preserved inside each group.
	grouped := make(map[string][]any)
	for _, c := range n.Children {
		grouped[c.Name] = append(grouped[c.Name], mapNode(c))
	}
	for name, vals := range grouped {
		if len(vals) == 1 {
			obj[name] = vals[0]
		} else {
			obj[name] = vals
		}
	}

	if n.Text != "" {
		obj[ContentKey] = n.Text
	}
	return obj
}
