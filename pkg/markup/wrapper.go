package markup

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/goliatone/go-tplreg/pkg/registry"
)

// NodeWrapper converts rendered markup into parsed node fragments. It
// implements both wrapper contracts, so wrapped renders always come back as
// []*html.Node.
type NodeWrapper struct{}

var (
	_ registry.Wrapper      = (*NodeWrapper)(nil)
	_ registry.MarkupParser = (*NodeWrapper)(nil)
)

// Wrap implements registry.Wrapper by parsing the markup, keeping the
// wrapped and parsed paths agreed on the returned shape.
func (w *NodeWrapper) Wrap(markup string) (any, error) {
	return w.ParseMarkup(markup)
}

// ParseMarkup implements registry.MarkupParser.
func (w *NodeWrapper) ParseMarkup(markup string) (any, error) {
	return ParseFragment(markup)
}

// ParseFragment parses markup as a body fragment and returns its top-level
// nodes.
func ParseFragment(markup string) ([]*html.Node, error) {
	nodes, err := html.ParseFragment(strings.NewReader(markup), &html.Node{
		Type:     html.ElementNode,
		Data:     "body",
		DataAtom: atom.Body,
	})
	if err != nil {
		return nil, fmt.Errorf("markup: parse fragment: %w", err)
	}
	return nodes, nil
}
