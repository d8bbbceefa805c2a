package markup_test

import (
	"strings"
	"testing"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"

	"github.com/goliatone/go-tplreg/pkg/markup"
	"github.com/goliatone/go-tplreg/pkg/registry"
)

const page = `<!DOCTYPE html>
<html>
<head><title>fixtures</title></head>
<body>
<div id="item-tpl"><li>{{name}}</li></div>
<section class="card tpl-box">Hi <b>there</b></section>
<nav><a href="/">Home</a></nav>
<script type="text/template" id="row-tpl"><tr><td>{{name}}</td></tr></script>
</body>
</html>`

func parsePage(t *testing.T, opts ...markup.Option) *markup.Document {
	t.Helper()

	doc, err := markup.ParseString(page, opts...)
	if err != nil {
		t.Fatalf("parse page: %v", err)
	}
	return doc
}

func TestInnerHTML_Selectors(t *testing.T) {
	doc := parsePage(t)

	cases := []struct {
		name     string
		selector string
		want     string
		ok       bool
	}{
		{name: "id", selector: "#item-tpl", want: "<li>{{name}}</li>", ok: true},
		{name: "class", selector: ".tpl-box", want: "Hi <b>there</b>", ok: true},
		{name: "tag", selector: "nav", want: `<a href="/">Home</a>`, ok: true},
		{name: "script raw text", selector: "#row-tpl", want: "<tr><td>{{name}}</td></tr>", ok: true},
		{name: "miss", selector: "#absent", ok: false},
		{name: "empty selector", selector: "", ok: false},
		{name: "bare hash", selector: "#", ok: false},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, ok := doc.InnerHTML(tc.selector)
			if ok != tc.ok {
				t.Fatalf("selector %q: want ok=%v, got ok=%v", tc.selector, tc.ok, ok)
			}
			if ok && got != tc.want {
				t.Fatalf("selector %q: want %q, got %q", tc.selector, tc.want, got)
			}
		})
	}
}

func TestInnerHTML_FirstMatchWins(t *testing.T) {
	doc, err := markup.ParseString(`<body><p class="x">first</p><p class="x">second</p></body>`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	got, ok := doc.InnerHTML(".x")
	if !ok || got != "first" {
		t.Fatalf("first match: want %q, got %q (ok=%v)", "first", got, ok)
	}
}

func TestInnerHTML_Sanitized(t *testing.T) {
	doc, err := markup.ParseString(
		`<div id="tpl"><b>bold</b><script>alert(1)</script></div>`,
		markup.WithSanitizer(bluemonday.UGCPolicy()),
	)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	got, ok := doc.InnerHTML("#tpl")
	if !ok {
		t.Fatal("selector missed")
	}
	if strings.Contains(got, "script") || strings.Contains(got, "alert") {
		t.Fatalf("sanitizer left script content behind: %q", got)
	}
	if !strings.Contains(got, "<b>bold</b>") {
		t.Fatalf("sanitizer dropped allowed markup: %q", got)
	}
}

func TestParseFragment(t *testing.T) {
	nodes, err := markup.ParseFragment("<li>a</li><li>b</li>")
	if err != nil {
		t.Fatalf("parse fragment: %v", err)
	}
	if len(nodes) != 2 {
		t.Fatalf("fragment nodes: want 2, got %d", len(nodes))
	}
	for i, n := range nodes {
		if n.Type != html.ElementNode || n.Data != "li" {
			t.Fatalf("node %d: want li element, got type=%v data=%q", i, n.Type, n.Data)
		}
	}
}

func TestDocumentBacksSelectorRegistration(t *testing.T) {
	doc := parsePage(t)
	reg := registry.New(
		registry.WithLocator(doc),
		registry.WithWrapper(&markup.NodeWrapper{}),
		registry.WithEngine(registry.CompileFunc(func(source string) (registry.Template, error) {
			return registry.TemplateFunc(func(data map[string]any) (string, error) {
				out := source
				for key, value := range data {
					out = strings.ReplaceAll(out, "{{"+key+"}}", value.(string))
				}
				return out, nil
			}), nil
		})),
	)

	reg.Register("#item-tpl", nil)

	out, err := reg.Render("#item-tpl", map[string]any{"name": "Ada"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if out != "<li>Ada</li>" {
		t.Fatalf("render: want %q, got %q", "<li>Ada</li>", out)
	}

	wrapped, err := reg.RenderWrapped("#item-tpl", map[string]any{"name": "Ada"})
	if err != nil {
		t.Fatalf("render wrapped: %v", err)
	}
	nodes, ok := wrapped.([]*html.Node)
	if !ok {
		t.Fatalf("wrapped render: want []*html.Node, got %T", wrapped)
	}
	if len(nodes) != 1 || nodes[0].Data != "li" {
		t.Fatalf("wrapped nodes: want one li, got %d nodes", len(nodes))
	}
}
