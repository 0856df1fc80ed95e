package renderer

import (
	"strings"
	"testing"

	"github.com/benedict2310/siteindex/pkg/model"
	"golang.org/x/net/html"
)

type anchor struct {
	Href  string
	Text  string
	Class string
}

// parseAnchors parses a rendered document and returns its links in
// document order, optionally limited to the element with the given id.
func parseAnchors(t *testing.T, doc, scopeID string) []anchor {
	t.Helper()
	root, err := html.Parse(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("html.Parse() error = %v", err)
	}
	if scopeID != "" {
		root = findByID(root, scopeID)
		if root == nil {
			t.Fatalf("element #%s not found in %s", scopeID, doc)
		}
	}

	var out []anchor
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			out = append(out, anchor{Href: attr(n, "href"), Text: textOf(n), Class: attr(n, "class")})
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return out
}

func countElements(t *testing.T, doc, scopeID, tag string) int {
	t.Helper()
	root, err := html.Parse(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("html.Parse() error = %v", err)
	}
	if scopeID != "" {
		root = findByID(root, scopeID)
		if root == nil {
			t.Fatalf("element #%s not found", scopeID)
		}
	}
	count := 0
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == tag {
			count++
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return count
}

func findByID(n *html.Node, id string) *html.Node {
	if n.Type == html.ElementNode && attr(n, "id") == id {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findByID(c, id); found != nil {
			return found
		}
	}
	return nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func textOf(n *html.Node) string {
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
	return strings.TrimSpace(b.String())
}

func hrefs(anchors []anchor) []string {
	out := make([]string, 0, len(anchors))
	for _, a := range anchors {
		out = append(out, a.Href)
	}
	return out
}

// scenarioTree is a.html, B.html and sub/c.html in locale order.
func scenarioTree() *model.FolderNode {
	return &model.FolderNode{
		Name: "site",
		Subfolders: []*model.FolderNode{
			{
				Name:         "sub",
				RelativePath: "sub",
				Pages:        []model.PageEntry{{Name: "c.html", RelativePath: "sub/c.html"}},
			},
		},
		Pages: []model.PageEntry{
			{Name: "a.html", RelativePath: "a.html"},
			{Name: "B.html", RelativePath: "B.html"},
		},
	}
}

func deepTree() *model.FolderNode {
	return &model.FolderNode{
		Name: "site",
		Subfolders: []*model.FolderNode{
			{
				Name:         "docs",
				RelativePath: "docs",
				Subfolders: []*model.FolderNode{
					{
						Name:         "api",
						RelativePath: "docs/api",
						Pages:        []model.PageEntry{{Name: "ref.html", RelativePath: "docs/api/ref.html"}},
					},
				},
				Pages: []model.PageEntry{{Name: "guide.html", RelativePath: "docs/guide.html"}},
			},
		},
		Pages: []model.PageEntry{{Name: "home.html", RelativePath: "home.html"}},
	}
}
