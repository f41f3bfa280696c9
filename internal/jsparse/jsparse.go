// Package jsparse wraps tree-sitter for the statement-level parsing corpusgen
// performs on example scripts and generated modules.
package jsparse

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// Dialect selects the grammar used to parse a script.
type Dialect int

const (
	JavaScript Dialect = iota
	TypeScript
)

// DialectFor maps a script block's lang attribute to a Dialect.
func DialectFor(lang string) Dialect {
	switch strings.ToLower(strings.TrimSpace(lang)) {
	case "ts", "typescript", "tsx":
		return TypeScript
	default:
		return JavaScript
	}
}

func (d Dialect) String() string {
	if d == TypeScript {
		return "typescript"
	}
	return "javascript"
}

// Tree is a parsed source together with the bytes it was parsed from.
type Tree struct {
	tree *sitter.Tree
	src  []byte
}

// Parse parses src with a fresh parser; tree-sitter parsers are not safe for
// concurrent use, trees are.
func Parse(ctx context.Context, src []byte, dialect Dialect) (*Tree, error) {
	parser := sitter.NewParser()
	defer parser.Close()

	if dialect == TypeScript {
		parser.SetLanguage(typescript.GetLanguage())
	} else {
		parser.SetLanguage(javascript.GetLanguage())
	}

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", dialect, err)
	}
	return &Tree{tree: tree, src: src}, nil
}

// Root returns the program node.
func (t *Tree) Root() *sitter.Node { return t.tree.RootNode() }

// Source returns the parsed bytes.
func (t *Tree) Source() []byte { return t.src }

// Text returns the verbatim source text covered by n.
func (t *Tree) Text(n *sitter.Node) string {
	return string(t.src[n.StartByte():n.EndByte()])
}

// Close releases the underlying tree.
func (t *Tree) Close() { t.tree.Close() }

// NamedChildren returns the named children of n in source order.
func NamedChildren(n *sitter.Node) []*sitter.Node {
	count := int(n.NamedChildCount())
	out := make([]*sitter.Node, 0, count)
	for i := 0; i < count; i++ {
		out = append(out, n.NamedChild(i))
	}
	return out
}

// FirstError returns the first ERROR or MISSING node below n, or nil.
func FirstError(n *sitter.Node) *sitter.Node {
	if n.IsError() || n.IsMissing() {
		return n
	}
	if !n.HasError() {
		return nil
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		if e := FirstError(n.Child(i)); e != nil {
			return e
		}
	}
	return n
}

// Unquote decodes a single- or double-quoted JavaScript string literal.
func Unquote(raw string) (string, error) {
	if len(raw) < 2 {
		return "", fmt.Errorf("invalid string literal %q", raw)
	}
	quote := raw[0]
	if (quote != '\'' && quote != '"') || raw[len(raw)-1] != quote {
		return "", fmt.Errorf("invalid string literal %q", raw)
	}
	body := raw[1 : len(raw)-1]
	if !strings.ContainsRune(body, '\\') {
		return body, nil
	}

	var b strings.Builder
	b.Grow(len(body))
	for i := 0; i < len(body); {
		c := body[i]
		if c != '\\' {
			r, size := utf8.DecodeRuneInString(body[i:])
			b.WriteRune(r)
			i += size
			continue
		}
		if i+1 >= len(body) {
			return "", fmt.Errorf("dangling escape in %q", raw)
		}
		esc := body[i+1]
		i += 2
		switch esc {
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 't':
			b.WriteByte('\t')
		case 'b':
			b.WriteByte('\b')
		case 'f':
			b.WriteByte('\f')
		case 'v':
			b.WriteByte('\v')
		case '0':
			b.WriteByte(0)
		case '\n':
			// line continuation
		case '\r':
			if i < len(body) && body[i] == '\n' {
				i++
			}
		case 'x':
			if i+2 > len(body) {
				return "", fmt.Errorf("short \\x escape in %q", raw)
			}
			v, err := strconv.ParseUint(body[i:i+2], 16, 8)
			if err != nil {
				return "", fmt.Errorf("bad \\x escape in %q: %w", raw, err)
			}
			b.WriteRune(rune(v))
			i += 2
		case 'u':
			r, n, err := decodeUnicodeEscape(body[i:])
			if err != nil {
				return "", fmt.Errorf("bad \\u escape in %q: %w", raw, err)
			}
			i += n
			if utf16IsHighSurrogate(r) && strings.HasPrefix(body[i:], "\\u") {
				if lo, m, err := decodeUnicodeEscape(body[i+2:]); err == nil && utf16IsLowSurrogate(lo) {
					r = (r-0xD800)<<10 + (lo - 0xDC00) + 0x10000
					i += 2 + m
				}
			}
			b.WriteRune(r)
		default:
			b.WriteByte(esc)
		}
	}
	return b.String(), nil
}

func decodeUnicodeEscape(s string) (rune, int, error) {
	if strings.HasPrefix(s, "{") {
		end := strings.IndexByte(s, '}')
		if end < 0 {
			return 0, 0, fmt.Errorf("unterminated code point")
		}
		v, err := strconv.ParseUint(s[1:end], 16, 32)
		if err != nil {
			return 0, 0, err
		}
		return rune(v), end + 1, nil
	}
	if len(s) < 4 {
		return 0, 0, fmt.Errorf("short escape")
	}
	v, err := strconv.ParseUint(s[:4], 16, 16)
	if err != nil {
		return 0, 0, err
	}
	return rune(v), 4, nil
}

func utf16IsHighSurrogate(r rune) bool { return r >= 0xD800 && r < 0xDC00 }
func utf16IsLowSurrogate(r rune) bool  { return r >= 0xDC00 && r < 0xE000 }

// Quote encodes s as a single-quoted JavaScript string literal.
func Quote(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('\'')
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '\'':
			b.WriteString(`\'`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case '\u2028':
			b.WriteString(`\u2028`)
		case '\u2029':
			b.WriteString(`\u2029`)
		default:
			if r < 0x20 {
				fmt.Fprintf(&b, `\x%02x`, r)
				continue
			}
			b.WriteRune(r)
		}
	}
	b.WriteByte('\'')
	return b.String()
}
