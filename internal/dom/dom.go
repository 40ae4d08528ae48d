// Package dom models a captured document: its markup, queried with goquery,
// plus the computed layout of every element at capture time.
package dom

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/raysh454/rawdata/internal/geometry"
)

// IndexAttr is the attribute that links an element of the captured markup to
// its entry in the layout table.
const IndexAttr = "data-rd-idx"

// Layout is the computed state of one element at capture time.
type Layout struct {
	Style     geometry.Style `json:"style"`
	Rect      geometry.Rect  `json:"rect"`
	InnerText string         `json:"text"`
	Value     string         `json:"value"`
	Checked   bool           `json:"checked"`
	Disabled  bool           `json:"disabled"`
	ReadOnly  bool           `json:"readOnly"`
	Href      string         `json:"href"`
	Action    string         `json:"action"`
}

// NodeLayout is one row of the layout table.
type NodeLayout struct {
	Index int `json:"i"`
	Layout
}

// Capture is what a renderer reports about a live document.
type Capture struct {
	URL         string            `json:"url"`
	Title       string            `json:"title"`
	ContentType string            `json:"contentType"`
	Viewport    geometry.Viewport `json:"viewport"`
	HTML        string            `json:"html"`
	Nodes       []NodeLayout      `json:"nodes"`
}

// Document is a parsed capture.
type Document struct {
	url         *url.URL
	rawURL      string
	title       string
	contentType string
	viewport    geometry.Viewport
	doc         *goquery.Document
	layout      map[int]Layout
	static      bool
}

// New parses a capture produced by a live renderer.
func New(c Capture) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(c.HTML))
	if err != nil {
		return nil, fmt.Errorf("parse captured html: %w", err)
	}
	layout := make(map[int]Layout, len(c.Nodes))
	for _, n := range c.Nodes {
		layout[n.Index] = n.Layout
	}
	d := &Document{
		rawURL:      c.URL,
		title:       c.Title,
		contentType: c.ContentType,
		viewport:    c.Viewport,
		doc:         doc,
		layout:      layout,
	}
	d.url, _ = url.Parse(c.URL)
	return d, nil
}

func (d *Document) URL() string                 { return d.rawURL }
func (d *Document) Title() string               { return d.title }
func (d *Document) ContentType() string         { return d.contentType }
func (d *Document) Viewport() geometry.Viewport { return d.viewport }

// Host returns the lower-cased host name of the document URL.
func (d *Document) Host() string {
	if d.url == nil {
		return ""
	}
	return strings.ToLower(d.url.Hostname())
}

// Path returns the path of the document URL.
func (d *Document) Path() string {
	if d.url == nil {
		return ""
	}
	return d.url.Path
}

// Find returns every element matching the CSS selector in document order.
func (d *Document) Find(selector string) []*Node {
	return d.wrap(d.doc.Find(selector))
}

// First returns the first element matching selector, or nil.
func (d *Document) First(selector string) *Node {
	s := d.doc.Find(selector).First()
	if s.Length() == 0 {
		return nil
	}
	return d.node(s)
}

// Body returns the body element, or nil for documents without one.
func (d *Document) Body() *Node {
	return d.First("body")
}

func (d *Document) wrap(s *goquery.Selection) []*Node {
	out := make([]*Node, 0, s.Length())
	s.Each(func(_ int, el *goquery.Selection) {
		out = append(out, d.node(el))
	})
	return out
}

func (d *Document) node(s *goquery.Selection) *Node {
	n := &Node{doc: d, sel: s, idx: -1}
	if v, ok := s.Attr(IndexAttr); ok {
		if i, err := strconv.Atoi(v); err == nil {
			n.idx = i
			n.layout, n.hasLayout = d.layout[i]
		}
	}
	return n
}

// Resolve makes ref absolute against the document URL.
func (d *Document) Resolve(ref string) string {
	if d.url == nil {
		return ref
	}
	u, err := d.url.Parse(strings.TrimSpace(ref))
	if err != nil {
		return ref
	}
	return u.String()
}

// Node is one element of a Document.
type Node struct {
	doc       *Document
	sel       *goquery.Selection
	idx       int
	layout    Layout
	hasLayout bool
}

// Index is the element's position in the layout table, or -1.
func (n *Node) Index() int { return n.idx }

// Tag returns the lower-case tag name.
func (n *Node) Tag() string { return goquery.NodeName(n.sel) }

func (n *Node) Attr(name string) (string, bool) { return n.sel.Attr(name) }

// AttrOr returns the attribute value or def when absent.
func (n *Node) AttrOr(name, def string) string { return n.sel.AttrOr(name, def) }

func (n *Node) HasAttr(name string) bool {
	_, ok := n.sel.Attr(name)
	return ok
}

// Is reports whether the element matches selector.
func (n *Node) Is(selector string) bool { return n.sel.Is(selector) }

// Box returns the element's style and bounding rect.
func (n *Node) Box() geometry.Box {
	return geometry.Box{Style: n.layout.Style, Rect: n.layout.Rect}
}

func (n *Node) Rect() geometry.Rect { return n.layout.Rect }

// InnerText is the rendered text of the element.
func (n *Node) InnerText() string {
	if n.doc.static || !n.hasLayout {
		return renderText(n.sel.Nodes[0], n.doc)
	}
	return n.layout.InnerText
}

// TextContent is the raw text of all descendant text nodes.
func (n *Node) TextContent() string { return n.sel.Text() }

func (n *Node) Value() string {
	if n.doc.static {
		return staticValue(n)
	}
	return n.layout.Value
}

func (n *Node) Checked() bool {
	if n.doc.static {
		return n.HasAttr("checked")
	}
	return n.layout.Checked
}

func (n *Node) Disabled() bool {
	if n.doc.static {
		return n.HasAttr("disabled")
	}
	return n.layout.Disabled
}

func (n *Node) ReadOnly() bool {
	if n.doc.static {
		return n.HasAttr("readonly")
	}
	return n.layout.ReadOnly
}

// Href is the resolved link target.
func (n *Node) Href() string {
	if !n.doc.static && n.layout.Href != "" {
		return n.layout.Href
	}
	raw, ok := n.Attr("href")
	if !ok {
		return ""
	}
	if strings.HasPrefix(strings.ToLower(strings.TrimSpace(raw)), "javascript:") {
		return strings.TrimSpace(raw)
	}
	return n.doc.Resolve(raw)
}

// Action is the resolved form submission URL.
func (n *Node) Action() string {
	if !n.doc.static && n.layout.Action != "" {
		return n.layout.Action
	}
	return n.doc.Resolve(n.AttrOr("action", ""))
}

// Find returns descendants matching selector.
func (n *Node) Find(selector string) []*Node { return n.doc.wrap(n.sel.Find(selector)) }

// First returns the first descendant matching selector, or nil.
func (n *Node) First(selector string) *Node {
	s := n.sel.Find(selector).First()
	if s.Length() == 0 {
		return nil
	}
	return n.doc.node(s)
}

// Within reports whether n is a strict descendant of ancestor.
func (n *Node) Within(ancestor *Node) bool {
	target := ancestor.sel.Nodes[0]
	for p := n.sel.Nodes[0].Parent; p != nil; p = p.Parent {
		if p == target {
			return true
		}
	}
	return false
}

// Same reports whether both nodes wrap the same element.
func (n *Node) Same(other *Node) bool {
	return other != nil && n.sel.Nodes[0] == other.sel.Nodes[0]
}

func staticValue(n *Node) string {
	switch n.Tag() {
	case "textarea":
		return n.sel.Text()
	case "select":
		opt := n.sel.Find("option[selected]").First()
		if opt.Length() == 0 {
			opt = n.sel.Find("option").First()
		}
		if opt.Length() == 0 {
			return ""
		}
		if v, ok := opt.Attr("value"); ok {
			return v
		}
		return strings.TrimSpace(opt.Text())
	}
	return n.AttrOr("value", "")
}

func isElement(n *html.Node) bool { return n != nil && n.Type == html.ElementNode }
