// Package infoblock models the paragraph-grouped description attached to an
// example: text and link nodes grouped into paragraphs.
package infoblock

import (
	"slices"
	"unicode/utf16"
)

// Kind tags an InfoNode.
type Kind int

const (
	KindText Kind = iota
	KindLink
	KindBreak
)

// Serialized tag values used in generated modules.
const (
	TagText = "text"
	TagLink = "a"
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindLink:
		return "link"
	case KindBreak:
		return "break"
	default:
		return "unknown"
	}
}

// Node is one element of a description: Text{Content}, Link{Content, URL} or Break.
type Node struct {
	Kind    Kind
	Content string
	URL     string
}

// Text builds a text node.
func Text(content string) Node { return Node{Kind: KindText, Content: content} }

// Link builds a link node.
func Link(content, url string) Node { return Node{Kind: KindLink, Content: content, URL: url} }

// Break builds a paragraph separator.
func Break() Node { return Node{Kind: KindBreak} }

// Paragraph is an ordered run of Text and Link nodes.
type Paragraph []Node

// Block is the canonical description shape: an ordered list of paragraphs.
type Block []Paragraph

// Group splits a flattened node sequence into paragraphs.
//
// With at least one Break, the result is the maximal non-empty runs between
// Breaks (consecutive Breaks collapse). Without any Break the whole sequence,
// even an empty one, is a single paragraph.
func Group(nodes []Node) Block {
	if !slices.ContainsFunc(nodes, func(n Node) bool { return n.Kind == KindBreak }) {
		p := make(Paragraph, len(nodes))
		copy(p, nodes)
		return Block{p}
	}

	var block Block
	current := Paragraph{}
	for _, n := range nodes {
		if n.Kind != KindBreak {
			current = append(current, n)
			continue
		}
		if len(current) > 0 {
			block = append(block, current)
			current = Paragraph{}
		}
	}
	if len(current) > 0 {
		block = append(block, current)
	}
	if block == nil {
		block = Block{}
	}
	return block
}

// RenderedLength is the display length used by the normalizer heuristic: a
// Link contributes " " + content + " ", a Text its raw content. Length is
// counted in UTF-16 code units, as the page measures string length, so a
// character outside the Basic Multilingual Plane counts as two.
func (p Paragraph) RenderedLength() int {
	n := 0
	for _, node := range p {
		switch node.Kind {
		case KindLink:
			n += utf16Len(node.Content) + 2
		case KindText:
			n += utf16Len(node.Content)
		}
	}
	return n
}

func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		if l := utf16.RuneLen(r); l > 0 {
			n += l
		} else {
			n++
		}
	}
	return n
}

// Equal reports structural equality of two blocks.
func (b Block) Equal(other Block) bool {
	return slices.EqualFunc(b, other, func(x, y Paragraph) bool { return slices.Equal(x, y) })
}
