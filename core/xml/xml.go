// Package xml wraps xmlquery with a small document model for the
// XML-based annotation exchange formats.
package xml

import (
	"bytes"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"

	"github.com/hbuschme/TextGridTools/core/errors"
)

// Document holds a parsed XML tree ready for XPath queries.
type Document struct {
	root *xmlquery.Node
}

// Node is an element within a Document.
type Node struct {
	node *xmlquery.Node
}

// Parse builds a Document from raw XML bytes.
func Parse(data []byte) (*Document, error) {
	root, err := xmlquery.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(err, "parse xml")
	}
	return &Document{root: root}, nil
}

// Root returns the document element, or nil for a document without one.
func (d *Document) Root() *Node {
	for child := d.root.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == xmlquery.ElementNode {
			return &Node{node: child}
		}
	}
	return nil
}

// XPath executes an XPath query against the document and returns the
// matching nodes.
func (d *Document) XPath(expr string) ([]*Node, error) {
	if _, err := xpath.Compile(expr); err != nil {
		return nil, errors.Wrapf(err, "invalid xpath %q", expr)
	}
	nodes, err := xmlquery.QueryAll(d.root, expr)
	if err != nil {
		return nil, errors.Wrapf(err, "xpath %q", expr)
	}
	out := make([]*Node, len(nodes))
	for i, n := range nodes {
		out[i] = &Node{node: n}
	}
	return out, nil
}

// XPathFirst executes an XPath query and returns the first match, or nil
// when nothing matches.
func (d *Document) XPathFirst(expr string) (*Node, error) {
	if _, err := xpath.Compile(expr); err != nil {
		return nil, errors.Wrapf(err, "invalid xpath %q", expr)
	}
	node, err := xmlquery.Query(d.root, expr)
	if err != nil {
		return nil, errors.Wrapf(err, "xpath %q", expr)
	}
	if node == nil {
		return nil, nil
	}
	return &Node{node: node}, nil
}

// Name returns the element's tag name.
func (n *Node) Name() string {
	return n.node.Data
}

// Text returns the text content of the node and its descendants.
func (n *Node) Text() string {
	return n.node.InnerText()
}

// Attr returns the value of the named attribute, or "" when absent.
func (n *Node) Attr(name string) string {
	return n.node.SelectAttr(name)
}

// Children returns the element children of n, skipping text and
// comment nodes.
func (n *Node) Children() []*Node {
	var out []*Node
	for child := n.node.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == xmlquery.ElementNode {
			out = append(out, &Node{node: child})
		}
	}
	return out
}
