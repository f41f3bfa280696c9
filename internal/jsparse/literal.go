package jsparse

import (
	"context"
	"fmt"
	"strconv"

	sitter "github.com/smacker/go-tree-sitter"
)

// ParseLiteral recovers a data value from JavaScript literal source without
// evaluating it. Arrays become []any, objects map[string]any, numbers
// float64; strings, booleans and null map to their Go counterparts. Any
// other expression (identifiers, calls, spreads, template substitutions) is
// rejected.
func ParseLiteral(ctx context.Context, src string) (any, error) {
	wrapped := []byte("(" + src + "\n)")
	tree, err := Parse(ctx, wrapped, JavaScript)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	root := tree.Root()
	if bad := FirstError(root); bad != nil {
		return nil, fmt.Errorf("syntax error at byte %d", int(bad.StartByte())-1)
	}
	stmts := nonComments(root)
	if len(stmts) != 1 || stmts[0].Type() != "expression_statement" {
		return nil, fmt.Errorf("expected a single literal expression")
	}
	expr := nonComments(stmts[0])
	if len(expr) != 1 || expr[0].Type() != "parenthesized_expression" {
		return nil, fmt.Errorf("expected a single literal expression")
	}
	inner := nonComments(expr[0])
	if len(inner) != 1 {
		return nil, fmt.Errorf("expected a single literal expression")
	}
	return literalValue(tree, inner[0])
}

func literalValue(tree *Tree, n *sitter.Node) (any, error) {
	switch n.Type() {
	case "array":
		items := nonComments(n)
		out := make([]any, 0, len(items))
		for _, item := range items {
			v, err := literalValue(tree, item)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	case "object":
		out := make(map[string]any)
		for _, member := range nonComments(n) {
			if member.Type() != "pair" {
				return nil, fmt.Errorf("unsupported object member %q", member.Type())
			}
			key, err := propertyKey(tree, member.ChildByFieldName("key"))
			if err != nil {
				return nil, err
			}
			v, err := literalValue(tree, member.ChildByFieldName("value"))
			if err != nil {
				return nil, err
			}
			out[key] = v
		}
		return out, nil
	case "string":
		return Unquote(tree.Text(n))
	case "template_string":
		for _, c := range NamedChildren(n) {
			if c.Type() == "template_substitution" {
				return nil, fmt.Errorf("template substitutions are not literal values")
			}
		}
		text := tree.Text(n)
		return text[1 : len(text)-1], nil
	case "number":
		return parseNumber(tree.Text(n))
	case "true":
		return true, nil
	case "false":
		return false, nil
	case "null":
		return nil, nil
	case "parenthesized_expression":
		inner := nonComments(n)
		if len(inner) != 1 {
			return nil, fmt.Errorf("unsupported parenthesized expression")
		}
		return literalValue(tree, inner[0])
	default:
		return nil, fmt.Errorf("%s is not a literal value: %q", n.Type(), tree.Text(n))
	}
}

func propertyKey(tree *Tree, n *sitter.Node) (string, error) {
	if n == nil {
		return "", fmt.Errorf("object pair without key")
	}
	switch n.Type() {
	case "property_identifier":
		return tree.Text(n), nil
	case "string":
		return Unquote(tree.Text(n))
	case "number":
		return tree.Text(n), nil
	default:
		return "", fmt.Errorf("unsupported object key %q", tree.Text(n))
	}
}

func parseNumber(text string) (float64, error) {
	if v, err := strconv.ParseFloat(text, 64); err == nil {
		return v, nil
	}
	i, err := strconv.ParseInt(text, 0, 64)
	if err != nil {
		return 0, fmt.Errorf("unsupported number %q", text)
	}
	return float64(i), nil
}

func nonComments(n *sitter.Node) []*sitter.Node {
	var out []*sitter.Node
	for _, c := range NamedChildren(n) {
		if c.Type() != "comment" {
			out = append(out, c)
		}
	}
	return out
}
