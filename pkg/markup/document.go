// Package markup hosts the HTML-backed capabilities the registry core stays
// independent of: locating template sources inside a parsed document and
// wrapping rendered output back into nodes. Documents satisfy the registry
// Locator contract, NodeWrapper the Wrapper contract.
package markup

import (
	"fmt"
	"io"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"

	"github.com/goliatone/go-tplreg/pkg/registry"
)

// Document is a parsed HTML document that serves inner markup by selector.
// Supported selectors are "#id", ".class", and a bare tag name; the first
// match in document order wins.
type Document struct {
	root      *html.Node
	sanitizer *bluemonday.Policy
}

// Option configures a Document during parsing.
type Option func(*Document)

// WithSanitizer runs every located source through the policy before it is
// returned. No sanitizing happens without one.
func WithSanitizer(policy *bluemonday.Policy) Option {
	return func(d *Document) {
		d.sanitizer = policy
	}
}

var _ registry.Locator = (*Document)(nil)

// Parse reads an HTML document from r.
func Parse(r io.Reader, opts ...Option) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("markup: parse document: %w", err)
	}
	d := &Document{root: root}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
	return d, nil
}

// ParseString parses an HTML document held in a string.
func ParseString(s string, opts ...Option) (*Document, error) {
	return Parse(strings.NewReader(s), opts...)
}

// InnerHTML implements registry.Locator. Children of script and style
// carriers come back as raw text, so inline template syntax survives
// unescaped.
func (d *Document) InnerHTML(selector string) (string, bool) {
	node := d.find(selector)
	if node == nil {
		return "", false
	}

	var inner string
	if isRawText(node) {
		var sb strings.Builder
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.TextNode {
				sb.WriteString(c.Data)
			}
		}
		inner = sb.String()
	} else {
		var sb strings.Builder
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			if err := html.Render(&sb, c); err != nil {
				return "", false
			}
		}
		inner = sb.String()
	}

	if d.sanitizer != nil {
		inner = d.sanitizer.Sanitize(inner)
	}
	return inner, true
}

func (d *Document) find(selector string) *html.Node {
	sel := strings.TrimSpace(selector)
	if sel == "" {
		return nil
	}

	var match func(*html.Node) bool
	switch {
	case strings.HasPrefix(sel, "#"):
		id := sel[1:]
		if id == "" {
			return nil
		}
		match = func(n *html.Node) bool { return attrValue(n, "id") == id }
	case strings.HasPrefix(sel, "."):
		class := sel[1:]
		if class == "" {
			return nil
		}
		match = func(n *html.Node) bool { return hasClass(n, class) }
	default:
		tag := strings.ToLower(sel)
		match = func(n *html.Node) bool { return n.Data == tag }
	}

	return findFirst(d.root, match)
}

func findFirst(root *html.Node, match func(*html.Node) bool) *html.Node {
	var found *html.Node
	var traverse func(*html.Node)
	traverse = func(n *html.Node) {
		if found != nil {
			return
		}
		if n.Type == html.ElementNode && match(n) {
			found = n
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			traverse(c)
		}
	}
	traverse(root)
	return found
}

func attrValue(n *html.Node, name string) string {
	for _, attr := range n.Attr {
		if attr.Key == name {
			return attr.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attrValue(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

func isRawText(n *html.Node) bool {
	switch n.Data {
	case "script", "style", "textarea", "title":
		return true
	}
	return false
}
