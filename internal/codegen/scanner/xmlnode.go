package scanner

import (
	"encoding/xml"
	"fmt"
	"io"
)

// Node is a generic element of the SWIG XML tree.
type Node struct {
	XMLName  xml.Name
	Attrs    []xml.Attr `xml:",any,attr"`
	Children []Node     `xml:",any"`
}

// Tag returns the local element name.
func (n *Node) Tag() string { return n.XMLName.Local }

// Find returns the first direct child with the given tag.
func (n *Node) Find(tag string) *Node {
	for i := range n.Children {
		if n.Children[i].Tag() == tag {
			return &n.Children[i]
		}
	}
	return nil
}

// FindAll returns every direct child with the given tag, in document order.
func (n *Node) FindAll(tag string) []*Node {
	var out []*Node
	for i := range n.Children {
		if n.Children[i].Tag() == tag {
			out = append(out, &n.Children[i])
		}
	}
	return out
}

// Attr returns an XML attribute of the element itself (not of its attributelist).
func (n *Node) Attr(name string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}

// Attributes collects SWIG's <attributelist><attribute name=".." value=".."/></attributelist>
// into a map. n may be the attributelist itself or its parent. Attributes are
// unordered in the source, so lookups must go through the map.
func Attributes(n *Node) (map[string]string, bool) {
	list := n
	if n.Tag() != "attributelist" {
		list = n.Find("attributelist")
		if list == nil {
			return nil, false
		}
	}
	out := make(map[string]string)
	for _, attr := range list.FindAll("attribute") {
		name, ok := attr.Attr("name")
		if !ok {
			continue
		}
		value, _ := attr.Attr("value")
		out[name] = value
	}
	return out, true
}

// DecodeTree reads a whole XML document into a Node tree.
func DecodeTree(r io.Reader) (*Node, error) {
	var root Node
	dec := xml.NewDecoder(r)
	if err := dec.Decode(&root); err != nil {
		return nil, fmt.Errorf("decode XML: %w", err)
	}
	return &root, nil
}
