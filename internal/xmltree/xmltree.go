// Package xmltree parses XML into a generic element tree with
// namespace-tolerant lookups. The vendor API is observed to serve the same
// documents with and without its XML namespaces depending on deployment, so
// callers express lookups as an ordered list of candidate queries and take
// the first non-empty result.
package xmltree

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// Element is one parsed XML element.
type Element struct {
	// Space is the namespace URI, empty for unnamespaced elements.
	Space string
	// Local is the element name without any namespace prefix.
	Local    string
	Attr     []xml.Attr
	Text     string
	Children []*Element
}

// Query identifies child elements by name. An empty Space matches on local
// name alone, regardless of the element's namespace.
type Query struct {
	Space string
	Local string
}

// Parse reads an XML document and returns its root element.
func Parse(r io.Reader) (*Element, error) {
	dec := xml.NewDecoder(r)

	var root *Element
	var stack []*Element
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("xmltree: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			el := &Element{
				Space: t.Name.Space,
				Local: t.Name.Local,
				Attr:  append([]xml.Attr(nil), t.Attr...),
			}
			if len(stack) == 0 {
				if root != nil {
					return nil, fmt.Errorf("xmltree: multiple root elements")
				}
				root = el
			} else {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, el)
			}
			stack = append(stack, el)
		case xml.EndElement:
			if len(stack) == 0 {
				return nil, fmt.Errorf("xmltree: unbalanced end element %s", t.Name.Local)
			}
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].Text += string(t)
			}
		}
	}

	if root == nil {
		return nil, fmt.Errorf("xmltree: empty document")
	}
	if len(stack) != 0 {
		return nil, fmt.Errorf("xmltree: unexpected end of document")
	}
	root.trim()
	return root, nil
}

// trim normalizes accumulated character data, recursively. Elements whose
// text is pure whitespace (indentation) end up with empty Text.
func (e *Element) trim() {
	e.Text = strings.TrimSpace(e.Text)
	for _, c := range e.Children {
		c.trim()
	}
}

// matches reports whether the element satisfies the query.
func (e *Element) matches(q Query) bool {
	if e.Local != q.Local {
		return false
	}
	return q.Space == "" || e.Space == q.Space
}

// FindAll returns the direct children matching the query, in document order.
func (e *Element) FindAll(q Query) []*Element {
	var out []*Element
	for _, c := range e.Children {
		if c.matches(q) {
			out = append(out, c)
		}
	}
	return out
}

// FindFirst tries each candidate query in order and returns the result of
// the first one that matches at least one child. A nil return means no
// candidate matched.
func (e *Element) FindFirst(queries ...Query) []*Element {
	for _, q := range queries {
		if found := e.FindAll(q); len(found) > 0 {
			return found
		}
	}
	return nil
}

// AttrValue returns the value of the named attribute, matching on local
// name. Missing attributes return the empty string.
func (e *Element) AttrValue(local string) string {
	for _, a := range e.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

// HasAttr reports whether the named attribute is present, matching on local
// name.
func (e *Element) HasAttr(local string) bool {
	for _, a := range e.Attr {
		if a.Name.Local == local {
			return true
		}
	}
	return false
}
