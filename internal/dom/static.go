package dom

import (
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/raysh454/rawdata/internal/geometry"
)

// RectAttr lets static markup pin an element's bounding rect as
// "left,top,width,height".
const RectAttr = "data-rd-rect"

const (
	flowLeft   = 8
	flowLine   = 24
	flowHeight = 20
	charWidth  = 8
	inlinePad  = 16
)

// FromHTML builds a Document from markup without a renderer. Styles come from
// inline style attributes and the hidden attribute only; geometry comes from
// data-rd-rect hints or a single-column flow where every element with its own
// text or a form control takes the next line.
func FromHTML(rawURL, contentType string, r io.Reader, vp geometry.Viewport) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	d := &Document{
		rawURL:      rawURL,
		contentType: contentType,
		viewport:    vp,
		doc:         doc,
		layout:      map[int]Layout{},
		static:      true,
	}
	d.url, _ = url.Parse(rawURL)
	d.title = strings.TrimSpace(doc.Find("title").First().Text())

	fl := &flow{vp: vp, out: d.layout, cursor: flowLeft}
	for _, root := range doc.Nodes {
		for c := root.FirstChild; c != nil; c = c.NextSibling {
			fl.walk(c, false, false)
		}
	}
	return d, nil
}

var noRender = map[string]bool{
	"head": true, "script": true, "style": true, "template": true, "noscript": true,
	"meta": true, "link": true, "title": true, "base": true,
}

var ownBox = map[string]bool{
	"input": true, "button": true, "select": true, "textarea": true, "img": true,
	"iframe": true, "embed": true, "object": true, "video": true, "canvas": true, "hr": true,
}

var inlineTags = map[string]bool{
	"a": true, "span": true, "button": true, "input": true, "select": true, "textarea": true,
	"label": true, "img": true, "strong": true, "em": true, "b": true, "i": true,
	"code": true, "small": true, "abbr": true, "sup": true, "sub": true,
}

type flow struct {
	vp     geometry.Viewport
	out    map[int]Layout
	next   int
	cursor float64
}

// walk lays out n and its subtree and returns the vertical extent it covers.
func (f *flow) walk(n *html.Node, hidden, visHidden bool) (top, bottom float64, ok bool) {
	if !isElement(n) {
		return 0, 0, false
	}
	idx := f.next
	f.next++
	n.Attr = append(n.Attr, html.Attribute{Key: IndexAttr, Val: strconv.Itoa(idx)})

	tag := n.Data
	decl := parseStyle(attr(n, "style"))
	st := geometry.Style{Display: defaultDisplay(n), Visibility: "visible", Opacity: "1"}
	if v, ok := decl["display"]; ok {
		st.Display = v
	}
	if visHidden {
		st.Visibility = "hidden"
	}
	if v, ok := decl["visibility"]; ok {
		st.Visibility = v
	}
	if v, ok := decl["opacity"]; ok {
		st.Opacity = v
	}

	collapsed := hidden || st.Display == "none"
	childVisHidden := st.Visibility == "hidden"

	var rect geometry.Rect
	pinned, hasPin := parseRect(attr(n, RectAttr))
	switch {
	case collapsed:
	case hasPin:
		rect = pinned
	case ownBox[tag] || hasOwnText(n):
		rect = geometry.Rect{Left: flowLeft, Top: f.cursor, Width: f.width(n, st), Height: flowHeight}
		f.cursor += flowLine
	}
	if w, ok := pixels(decl["width"]); ok && !collapsed {
		rect.Width = w
	}
	if h, ok := pixels(decl["height"]); ok && !collapsed && (rect.Height > 0 || hasPin) {
		rect.Height = h
	}

	top, bottom, ok = rect.Top, rect.Bottom(), rect.Height > 0 && rect.Width > 0
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		ct, cb, cok := f.walk(c, collapsed, childVisHidden)
		if !cok {
			continue
		}
		if !ok {
			top, bottom, ok = ct, cb, true
			continue
		}
		top = min(top, ct)
		bottom = max(bottom, cb)
	}

	// Containers without their own line span their children.
	if !collapsed && !hasPin && rect.Height == 0 && ok && !noRender[tag] {
		rect = geometry.Rect{Left: flowLeft, Top: top, Width: f.vp.Width - 2*flowLeft, Height: bottom - top}
	}
	if collapsed {
		ok = false
	}

	f.out[idx] = Layout{Style: st, Rect: rect}
	return top, bottom, ok
}

func (f *flow) width(n *html.Node, st geometry.Style) float64 {
	full := f.vp.Width - 2*flowLeft
	if !strings.HasPrefix(st.Display, "inline") {
		return full
	}
	label := collapseSpaces(textOf(n))
	if label == "" {
		label = attr(n, "value")
	}
	if label == "" {
		label = attr(n, "placeholder")
	}
	w := float64(utf8.RuneCountInString(label)*charWidth + inlinePad)
	return min(w, full)
}

func defaultDisplay(n *html.Node) string {
	tag := n.Data
	switch {
	case noRender[tag]:
		return "none"
	case hasAttr(n, "hidden"):
		return "none"
	case tag == "input" && strings.EqualFold(attr(n, "type"), "hidden"):
		return "none"
	case inlineTags[tag]:
		if tag == "button" || tag == "input" || tag == "select" || tag == "textarea" || tag == "img" {
			return "inline-block"
		}
		return "inline"
	case tag == "li":
		return "list-item"
	case tag == "table":
		return "table"
	case tag == "tr":
		return "table-row"
	case tag == "td" || tag == "th":
		return "table-cell"
	}
	return "block"
}

func hasOwnText(n *html.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode && strings.TrimSpace(c.Data) != "" {
			return true
		}
	}
	return false
}

func textOf(n *html.Node) string {
	var b strings.Builder
	var rec func(*html.Node)
	rec = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			rec(c)
		}
	}
	rec(n)
	return b.String()
}

func parseStyle(s string) map[string]string {
	out := map[string]string{}
	for _, decl := range strings.Split(s, ";") {
		k, v, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		v = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(v), "!important"))
		out[strings.ToLower(strings.TrimSpace(k))] = strings.ToLower(v)
	}
	return out
}

func parseRect(s string) (geometry.Rect, bool) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return geometry.Rect{}, false
	}
	var v [4]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return geometry.Rect{}, false
		}
		v[i] = f
	}
	return geometry.Rect{Left: v[0], Top: v[1], Width: v[2], Height: v[3]}, true
}

func pixels(s string) (float64, bool) {
	if !strings.HasSuffix(s, "px") {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(s, "px")), 64)
	return f, err == nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasAttr(n *html.Node, key string) bool {
	for _, a := range n.Attr {
		if a.Key == key {
			return true
		}
	}
	return false
}
