// Package extract turns the markup block of a raw example into its
// paragraph-grouped description.
package extract

import (
	"log/slog"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/text/unicode/norm"

	"git.home.luguber.info/inful/corpusgen/internal/config"
	"git.home.luguber.info/inful/corpusgen/internal/foundation/errors"
	"git.home.luguber.info/inful/corpusgen/internal/infoblock"
	"git.home.luguber.info/inful/corpusgen/internal/sfc"
)

// Extractor locates the description container in a markup block and
// classifies its immediate children.
type Extractor struct {
	infoAttribute string
	paragraphTag  string
	logger        *slog.Logger
}

// New creates an Extractor for the configured container marker.
func New(cfg config.MarkupConfig, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{
		infoAttribute: strings.ToLower(cfg.InfoAttribute),
		paragraphTag:  strings.ToLower(cfg.ParagraphTag),
		logger:        logger,
	}
}

// Extract returns the InfoBlock of src. A non-empty style block is rejected.
func (e *Extractor) Extract(src *sfc.Source) (infoblock.Block, error) {
	if src.HasNonEmptyStyle() {
		return nil, errors.ParseError("style block is not supported").
			ForExample(src.ID).
			Build()
	}
	block, err := e.ExtractMarkup(src.Template)
	if err != nil {
		if classified, ok := errors.AsClassified(err); ok {
			return nil, classified.ForExample(src.ID)
		}
		return nil, err
	}
	return block, nil
}

// ExtractMarkup classifies the container's children and groups them.
func (e *Extractor) ExtractMarkup(markup string) (infoblock.Block, error) {
	nodes, err := e.Nodes(markup)
	if err != nil {
		return nil, err
	}
	return infoblock.Group(nodes), nil
}

// Nodes returns the flattened node sequence, Breaks included.
func (e *Extractor) Nodes(markup string) ([]infoblock.Node, error) {
	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	roots, err := html.ParseFragment(strings.NewReader(markup), body)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryParse, "failed to parse markup").Build()
	}

	var container *html.Node
	for _, root := range roots {
		if container = e.findContainer(root); container != nil {
			break
		}
	}
	if container == nil {
		return nil, errors.ParseError("description container not found").
			WithContext("attribute", e.infoAttribute).
			Build()
	}

	var nodes []infoblock.Node
	for child := container.FirstChild; child != nil; child = child.NextSibling {
		classified, err := e.classify(child)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, classified...)
	}
	return nodes, nil
}

func (e *Extractor) findContainer(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && hasAttr(n, e.infoAttribute) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := e.findContainer(c); found != nil {
			return found
		}
	}
	return nil
}

// classify maps one child of the container to zero or more nodes.
func (e *Extractor) classify(n *html.Node) ([]infoblock.Node, error) {
	switch n.Type {
	case html.TextNode:
		text := collapse(n.Data)
		if text == "" {
			return nil, nil
		}
		return []infoblock.Node{infoblock.Text(text)}, nil
	case html.ElementNode:
	default:
		return nil, nil
	}

	switch n.Data {
	case "br":
		return []infoblock.Node{infoblock.Break()}, nil
	case "a":
		if hasElementChild(n) {
			return nil, errors.ParseError("nested element inside link").
				WithContext("href", attrValue(n, "href")).
				Build()
		}
		return []infoblock.Node{infoblock.Link(collapse(textContent(n)), attrValue(n, "href"))}, nil
	case e.paragraphTag:
		if hasElementChild(n) {
			return nil, errors.ParseError("nested element inside paragraph text").Build()
		}
		var out []infoblock.Node
		for _, line := range strings.Split(textContent(n), "\n") {
			if text := collapse(line); text != "" {
				out = append(out, infoblock.Text(text))
			}
		}
		return out, nil
	default:
		e.logger.Debug("Dropping unsupported description element", "element", n.Data)
		return nil, nil
	}
}

// collapse folds whitespace runs to a single space, trims and NFC-normalises.
func collapse(s string) string {
	return norm.NFC.String(strings.Join(strings.Fields(s), " "))
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

func hasElementChild(n *html.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			return true
		}
	}
	return false
}

func hasAttr(n *html.Node, key string) bool {
	for _, a := range n.Attr {
		if a.Key == key {
			return true
		}
	}
	return false
}

func attrValue(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
