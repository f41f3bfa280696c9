package infoblock

import (
	"context"
	"fmt"
	"strings"

	"git.home.luguber.info/inful/corpusgen/internal/jsparse"
)

// Literal renders b as the JavaScript array literal embedded in generated
// modules. indent is the indentation of the line the literal starts on; the
// closing bracket is written at that indentation without a trailing newline.
func (b Block) Literal(indent string) string {
	var sb strings.Builder
	inner := indent + "  "
	sb.WriteString("[\n")
	for _, p := range b {
		if len(p) == 0 {
			sb.WriteString(inner + "[],\n")
			continue
		}
		sb.WriteString(inner + "[\n")
		for _, n := range p {
			sb.WriteString(inner + "  " + nodeLiteral(n) + ",\n")
		}
		sb.WriteString(inner + "],\n")
	}
	sb.WriteString(indent + "]")
	return sb.String()
}

func nodeLiteral(n Node) string {
	if n.Kind == KindLink {
		return fmt.Sprintf("{ tag: %s, link: %s, content: %s }",
			jsparse.Quote(TagLink), jsparse.Quote(n.URL), jsparse.Quote(n.Content))
	}
	return fmt.Sprintf("{ tag: %s, content: %s }", jsparse.Quote(TagText), jsparse.Quote(n.Content))
}

// ParseLiteral recovers a Block from the literal text of a generated
// module's info field. The text is parsed as data, never evaluated.
func ParseLiteral(ctx context.Context, src string) (Block, error) {
	value, err := jsparse.ParseLiteral(ctx, src)
	if err != nil {
		return nil, err
	}
	paragraphs, ok := value.([]any)
	if !ok {
		return nil, fmt.Errorf("info must be an array of paragraphs, got %T", value)
	}

	block := make(Block, 0, len(paragraphs))
	for i, raw := range paragraphs {
		items, ok := raw.([]any)
		if !ok {
			return nil, fmt.Errorf("paragraph %d: expected array, got %T", i, raw)
		}
		p := make(Paragraph, 0, len(items))
		for j, item := range items {
			n, err := nodeFromValue(item)
			if err != nil {
				return nil, fmt.Errorf("paragraph %d node %d: %w", i, j, err)
			}
			p = append(p, n)
		}
		block = append(block, p)
	}
	return block, nil
}

func nodeFromValue(v any) (Node, error) {
	obj, ok := v.(map[string]any)
	if !ok {
		return Node{}, fmt.Errorf("expected object, got %T", v)
	}
	tag, _ := obj["tag"].(string)
	content, ok := obj["content"].(string)
	if !ok {
		return Node{}, fmt.Errorf("missing string content")
	}
	switch tag {
	case TagText:
		return Text(content), nil
	case TagLink:
		url, _ := obj["link"].(string)
		return Link(content, url), nil
	default:
		return Node{}, fmt.Errorf("unsupported tag %q", tag)
	}
}
