package xmltree

import (
	"errors"
	"testing"
)

// TestParse_Nested verifies element nesting, attributes, and text capture.
func TestParse_Nested(t *testing.T) {
	t.Parallel()

	root, err := Parse([]byte(`<Response id="7" kind="match">
		<ResultBlock>
			<Score> 12 </Score>
		</ResultBlock>
	</Response>`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if root.Name != "Response" {
		t.Fatalf("root name = %q, want Response", root.Name)
	}
	if len(root.Attrs) != 2 || root.Attrs[0] != (Attr{"id", "7"}) || root.Attrs[1] != (Attr{"kind", "match"}) {
		t.Fatalf("unexpected attrs: %#v", root.Attrs)
	}
	if len(root.Children) != 1 || root.Children[0].Name != "ResultBlock" {
		t.Fatalf("unexpected children: %#v", root.Children)
	}

	sc := root.Children[0].Children[0]
	if sc.Name != "Score" || sc.Text != "12" {
		t.Fatalf("score node = %q text=%q, want Score/12", sc.Name, sc.Text)
	}
}

// TestParse_WhitespaceOnlyTextIgnored verifies indentation between elements
// does not leak into Text.
func TestParse_WhitespaceOnlyTextIgnored(t *testing.T) {
	t.Parallel()

	root, err := Parse([]byte("<a>\n\t<b>x</b>\n</a>"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if root.Text != "" {
		t.Fatalf("expected empty text on <a>, got %q", root.Text)
	}
}

// TestParse_MixedContent verifies text interleaved with child elements is
// kept on the parent.
func TestParse_MixedContent(t *testing.T) {
	t.Parallel()

	root, err := Parse([]byte(`<p>before <b>bold</b> after</p>`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if root.Text != "before  after" {
		t.Fatalf("mixed text = %q", root.Text)
	}
	if len(root.Children) != 1 || root.Children[0].Text != "bold" {
		t.Fatalf("unexpected children: %#v", root.Children)
	}
}

// TestParse_Malformed verifies well-formedness failures surface as *ParseError.
func TestParse_Malformed(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"unclosed tag":    `<a><b></a>`,
		"truncated":       `<a>`,
		"bad entity":      `<a>&nosuch;</a>`,
		"no root":         `   `,
		"second root":     `<a/><b/>`,
		"text outside":    `<a/>junk`,
		"attr not quoted": `<a x=1/>`,
		"empty input":     ``,
	}

	for name, in := range cases {
		if _, err := Parse([]byte(in)); err == nil {
			t.Errorf("%s: expected error", name)
		} else {
			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Errorf("%s: error is %T, want *ParseError", name, err)
			}
		}
	}
}

// TestParse_DeclaredCharset verifies transcoding of a declared non-UTF-8
// encoding through the IANA index.
func TestParse_DeclaredCharset(t *testing.T) {
	t.Parallel()

	// "é" in ISO-8859-1 is the single byte 0xE9.
	doc := append([]byte(`<?xml version="1.0" encoding="ISO-8859-1"?><name>caf`), 0xE9)
	doc = append(doc, []byte(`</name>`)...)

	root, err := Parse(doc)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if root.Text != "café" {
		t.Fatalf("text = %q, want café", root.Text)
	}
}

// TestParse_UnknownCharset verifies an undecodable charset fails the parse.
func TestParse_UnknownCharset(t *testing.T) {
	t.Parallel()

	_, err := Parse([]byte(`<?xml version="1.0" encoding="NO-SUCH-CHARSET"?><a/>`))
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected *ParseError, got %v", err)
	}
}

// TestFindAll_DocumentOrder verifies matches are returned in document order
// from any depth, root included.
func TestFindAll_DocumentOrder(t *testing.T) {
	t.Parallel()

	root, err := Parse([]byte(`<Score>
		<x><Score>1</Score></x>
		<Score>2</Score>
		<y><z><Score>3</Score></z></y>
	</Score>`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	got := FindAll(root, "Score")
	if len(got) != 4 {
		t.Fatalf("expected 4 matches, got %d", len(got))
	}
	for i, want := range []string{"", "1", "2", "3"} {
		if got[i].Text != want {
			t.Fatalf("match %d text = %q, want %q", i, got[i].Text, want)
		}
	}
}

// TestParse_NamespacesDropped verifies prefixes and xmlns declarations do not
// appear in the tree.
func TestParse_NamespacesDropped(t *testing.T) {
	t.Parallel()

	root, err := Parse([]byte(`<r xmlns="urn:a" xmlns:p="urn:b" p:attr="v"><p:c>t</p:c></r>`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(root.Attrs) != 1 || root.Attrs[0] != (Attr{"attr", "v"}) {
		t.Fatalf("unexpected attrs: %#v", root.Attrs)
	}
	if root.Children[0].Name != "c" {
		t.Fatalf("child name = %q, want c", root.Children[0].Name)
	}
}
