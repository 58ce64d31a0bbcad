package fetcher

import (
	"bytes"
	"net/url"
	"strings"

	"github.com/aleister1102/motosearch/internal/models"
	"github.com/aleister1102/motosearch/internal/urlhandler"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Elements whose text never reaches the output
var skippedElements = map[atom.Atom]bool{
	atom.Script:   true,
	atom.Style:    true,
	atom.Noscript: true,
	atom.Template: true,
	atom.Svg:      true,
	atom.Head:     true,
	atom.Iframe:   true,
}

// Elements that start and end their own line
var blockElements = map[atom.Atom]bool{
	atom.Address: true, atom.Article: true, atom.Aside: true, atom.Blockquote: true,
	atom.Dd: true, atom.Div: true, atom.Dl: true, atom.Dt: true, atom.Figcaption: true,
	atom.Figure: true, atom.Footer: true, atom.Form: true, atom.Header: true, atom.Hr: true,
	atom.Li: true, atom.Main: true, atom.Nav: true, atom.Ol: true, atom.P: true,
	atom.Pre: true, atom.Section: true, atom.Table: true, atom.Tr: true, atom.Ul: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
}

var headingLevels = map[atom.Atom]int{
	atom.H1: 1, atom.H2: 2, atom.H3: 3, atom.H4: 4, atom.H5: 5, atom.H6: 6,
}

// RenderMarkdown converts an HTML page into line-oriented markdown-like text.
// ExcludeTags are removed first; when IncludeTags is set only text inside those
// elements is kept. Images become ![alt](src) and links [text](href), with URLs
// resolved against pageURL.
func RenderMarkdown(rawHTML []byte, pageURL string, opts models.ScrapeOptions) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(rawHTML))
	if err != nil {
		return ""
	}

	if len(opts.ExcludeTags) > 0 {
		doc.Find(strings.Join(opts.ExcludeTags, ", ")).Remove()
	}

	r := &markdownRenderer{include: make(map[string]bool, len(opts.IncludeTags))}
	for _, tag := range opts.IncludeTags {
		r.include[strings.ToLower(strings.TrimSpace(tag))] = true
	}
	if base, err := url.Parse(pageURL); err == nil && base.IsAbs() {
		r.base = base
	}

	body := doc.Find("body")
	if body.Length() == 0 {
		body = doc.Selection
	}
	for _, n := range body.Nodes {
		r.walk(n, len(r.include) == 0)
	}
	r.flush()

	return strings.Join(r.lines, "\n")
}

// DocumentTitle returns the trimmed <title> text, or ""
func DocumentTitle(rawHTML []byte) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(rawHTML))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(doc.Find("title").First().Text())
}

type markdownRenderer struct {
	base    *url.URL
	include map[string]bool
	lines   []string
	current strings.Builder
}

func (r *markdownRenderer) walk(n *html.Node, included bool) {
	switch n.Type {
	case html.TextNode:
		if included {
			r.write(n.Data)
		}
		return
	case html.ElementNode:
	case html.DocumentNode:
		r.walkChildren(n, included)
		return
	default:
		return
	}

	if skippedElements[n.DataAtom] {
		return
	}
	if !included && r.include[n.Data] {
		included = true
	}

	switch n.DataAtom {
	case atom.Br:
		r.flush()
		return
	case atom.Img:
		if included {
			r.writeImage(n)
		}
		return
	case atom.A:
		if included && !containsElement(n, atom.Img) {
			r.writeLink(n)
			return
		}
	}

	block := blockElements[n.DataAtom]
	if block {
		r.flush()
	}
	if level, ok := headingLevels[n.DataAtom]; ok && included {
		r.current.WriteString(strings.Repeat("#", level) + " ")
	}
	if n.DataAtom == atom.Li && included {
		r.current.WriteString("- ")
	}

	r.walkChildren(n, included)

	if block {
		r.flush()
	}
}

func (r *markdownRenderer) walkChildren(n *html.Node, included bool) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		r.walk(c, included)
	}
}

func (r *markdownRenderer) write(text string) {
	collapsed := strings.Join(strings.Fields(text), " ")
	if collapsed == "" {
		return
	}
	if r.current.Len() > 0 && !strings.HasSuffix(r.current.String(), " ") {
		r.current.WriteByte(' ')
	}
	r.current.WriteString(collapsed)
}

func (r *markdownRenderer) writeImage(n *html.Node) {
	src := r.resolve(attr(n, "src"))
	if src == "" {
		src = r.resolve(attr(n, "data-src"))
	}
	if src == "" {
		return
	}
	r.write("![" + strings.TrimSpace(attr(n, "alt")) + "](" + src + ")")
}

func (r *markdownRenderer) writeLink(n *html.Node) {
	text := strings.Join(strings.Fields(nodeText(n)), " ")
	if text == "" {
		return
	}
	href := r.resolve(attr(n, "href"))
	if href == "" {
		r.write(text)
		return
	}
	r.write("[" + text + "](" + href + ")")
}

func (r *markdownRenderer) resolve(ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" || strings.HasPrefix(ref, "javascript:") || strings.HasPrefix(ref, "data:") {
		return ""
	}
	resolved, err := urlhandler.ResolveURL(ref, r.base)
	if err != nil {
		return ref
	}
	return resolved
}

func (r *markdownRenderer) flush() {
	line := strings.TrimSpace(r.current.String())
	r.current.Reset()
	if line == "" || line == "-" || strings.Trim(line, "# ") == "" {
		return
	}
	r.lines = append(r.lines, line)
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func containsElement(n *html.Node, a atom.Atom) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && (c.DataAtom == a || containsElement(c, a)) {
			return true
		}
	}
	return false
}

func nodeText(n *html.Node) string {
	var sb strings.Builder
	var visit func(*html.Node)
	visit = func(node *html.Node) {
		if node.Type == html.TextNode {
			sb.WriteString(node.Data)
			sb.WriteByte(' ')
			return
		}
		if node.Type == html.ElementNode && skippedElements[node.DataAtom] {
			return
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	visit(n)
	return sb.String()
}
