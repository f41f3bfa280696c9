// Package script rewrites the behavior block of a raw example into the
// pieces of a generated module: hoisted imports, the loader list and the
// init expression.
package script

import (
	"context"
	"log/slog"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"git.home.luguber.info/inful/corpusgen/internal/config"
	"git.home.luguber.info/inful/corpusgen/internal/foundation/errors"
	"git.home.luguber.info/inful/corpusgen/internal/jsparse"
	"git.home.luguber.info/inful/corpusgen/internal/util/sets"
)

// EmptyLoaders is used when a script never calls the loader hook.
const EmptyLoaders = "[]"

// Result is a transformed behavior block.
type Result struct {
	ImportLines     []string
	LoaderArrayText string
	InitExpression  string
}

// Transformer classifies top-level statements by kind and relocates them.
type Transformer struct {
	cfg      config.ScriptConfig
	reserved sets.Set[string]
	marker   string
	logger   *slog.Logger
}

// New creates a Transformer for the configured plumbing identifiers.
func New(cfg config.ScriptConfig, logger *slog.Logger) *Transformer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Transformer{
		cfg:      cfg,
		reserved: sets.New(cfg.LoaderHook, cfg.LinkHelper, cfg.LayoutComponent),
		marker:   commentBody(cfg.AnalysisMarker),
		logger:   logger,
	}
}

// Transform rewrites body. It fails with a TransformError when any top-level
// statement is not an import, the analysis marker, the loader-hook call or the
// init binding, or when the init value is not a bare parenthesised function
// expression.
func (t *Transformer) Transform(ctx context.Context, body string, dialect jsparse.Dialect) (*Result, error) {
	tree, err := jsparse.Parse(ctx, []byte(body), dialect)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryTransform, "failed to parse script").Build()
	}
	defer tree.Close()

	if bad := jsparse.FirstError(tree.Root()); bad != nil {
		return nil, errors.TransformError("script does not parse").
			WithContext("line", int(bad.StartPoint().Row)+1).
			Build()
	}

	res := &Result{LoaderArrayText: EmptyLoaders}
	var initValue *sitter.Node
	loaderSeen := false

	for _, stmt := range jsparse.NamedChildren(tree.Root()) {
		switch stmt.Type() {
		case "import_statement":
			if t.onlyReserved(tree, stmt) {
				continue
			}
			res.ImportLines = append(res.ImportLines, tree.Text(stmt))

		case "comment":
			if commentBody(tree.Text(stmt)) != t.marker {
				t.logger.Debug("Dropping top-level comment", "comment", tree.Text(stmt))
			}

		case "expression_statement":
			args := t.loaderCallArgs(tree, stmt)
			if args == nil {
				return nil, manualTransform("unexpected top-level expression", tree, stmt)
			}
			if loaderSeen {
				return nil, manualTransform("loader hook called more than once", tree, stmt)
			}
			loaderSeen = true
			var items []*sitter.Node
			for _, n := range jsparse.NamedChildren(args) {
				if n.Type() != "comment" {
					items = append(items, n)
				}
			}
			switch {
			case len(items) == 0:
			case len(items) == 1 && items[0].Type() == "array":
				res.LoaderArrayText = tree.Text(items[0])
			default:
				return nil, manualTransform("loader hook argument must be a single array literal", tree, stmt)
			}

		case "lexical_declaration", "variable_declaration", "export_statement":
			value := t.initValue(tree, stmt)
			if value == nil {
				return nil, manualTransform("unexpected top-level declaration", tree, stmt)
			}
			if initValue != nil {
				return nil, manualTransform("init declared more than once", tree, stmt)
			}
			initValue = value

		default:
			return nil, manualTransform("unexpected top-level statement", tree, stmt)
		}
	}

	if initValue == nil {
		return nil, errors.TransformError("needs manual transform: no init binding").
			WithContext("binding", t.cfg.InitBinding).
			Build()
	}
	expr := strings.TrimSpace(tree.Text(initValue))
	if !strings.HasPrefix(expr, "(") {
		return nil, manualTransform("init is not a bare function expression", tree, initValue)
	}
	res.InitExpression = expr
	return res, nil
}

// onlyReserved reports whether an import binds nothing but plumbing
// identifiers. Side-effect imports bind nothing and are kept.
func (t *Transformer) onlyReserved(tree *jsparse.Tree, stmt *sitter.Node) bool {
	names := importedNames(tree, stmt)
	if len(names) == 0 {
		return false
	}
	for _, name := range names {
		if !t.reserved.Has(name) {
			return false
		}
	}
	return true
}

func importedNames(tree *jsparse.Tree, stmt *sitter.Node) []string {
	var names []string
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		switch n.Type() {
		case "import_specifier":
			name := n.ChildByFieldName("name")
			if alias := n.ChildByFieldName("alias"); alias != nil {
				name = alias
			}
			if name != nil {
				names = append(names, tree.Text(name))
			}
			return
		case "identifier":
			names = append(names, tree.Text(n))
			return
		case "string":
			return
		}
		for _, c := range jsparse.NamedChildren(n) {
			walk(c)
		}
	}
	for _, c := range jsparse.NamedChildren(stmt) {
		if c.Type() == "import_clause" {
			walk(c)
		}
	}
	return names
}

// loaderCallArgs returns the arguments node when stmt is a bare call of the
// loader hook.
func (t *Transformer) loaderCallArgs(tree *jsparse.Tree, stmt *sitter.Node) *sitter.Node {
	exprs := jsparse.NamedChildren(stmt)
	if len(exprs) != 1 || exprs[0].Type() != "call_expression" {
		return nil
	}
	call := exprs[0]
	fn := call.ChildByFieldName("function")
	if fn == nil || fn.Type() != "identifier" || tree.Text(fn) != t.cfg.LoaderHook {
		return nil
	}
	return call.ChildByFieldName("arguments")
}

// initValue returns the initializer of `[export] const|let|var <init> = ...`.
func (t *Transformer) initValue(tree *jsparse.Tree, stmt *sitter.Node) *sitter.Node {
	if stmt.Type() == "export_statement" {
		decl := stmt.ChildByFieldName("declaration")
		if decl == nil {
			return nil
		}
		return t.initValue(tree, decl)
	}
	if stmt.Type() != "lexical_declaration" && stmt.Type() != "variable_declaration" {
		return nil
	}
	var declarators []*sitter.Node
	for _, c := range jsparse.NamedChildren(stmt) {
		if c.Type() == "variable_declarator" {
			declarators = append(declarators, c)
		}
	}
	if len(declarators) != 1 {
		return nil
	}
	name := declarators[0].ChildByFieldName("name")
	if name == nil || name.Type() != "identifier" || tree.Text(name) != t.cfg.InitBinding {
		return nil
	}
	return declarators[0].ChildByFieldName("value")
}

func manualTransform(reason string, tree *jsparse.Tree, n *sitter.Node) error {
	return errors.TransformError("needs manual transform: "+reason).
		WithContext("line", int(n.StartPoint().Row)+1).
		WithContext("statement", firstLine(tree.Text(n))).
		Build()
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

func commentBody(comment string) string {
	c := strings.TrimSpace(comment)
	switch {
	case strings.HasPrefix(c, "//"):
		c = strings.TrimPrefix(c, "//")
	case strings.HasPrefix(c, "/*"):
		c = strings.TrimSuffix(strings.TrimPrefix(c, "/*"), "*/")
	}
	return strings.TrimSpace(c)
}
